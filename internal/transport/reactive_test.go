package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porelab/porenet/internal/network"
	"github.com/porelab/porenet/internal/phase"
	"github.com/porelab/porenet/internal/physics"
	"github.com/porelab/porenet/internal/solver"
)

func TestReactiveLinearSink(t *testing.T) {
	// Two pores joined by a unit throat, a fixed value of 1 on one side and
	// a first-order sink r = -x on the other. At steady state the inflow
	// g (x0 - x1) balances the consumption, so x1 = g / (g + k) = 0.5.
	net, err := network.New([][3]float64{{0, 0, 0}, {1, 0, 0}}, [][2]int{{0, 1}})
	require.NoError(t, err)
	ph := phase.NewPhase(net, "test")
	require.NoError(t, ph.SetThroatProp("throat.diffusive_conductance", []float64{1}))

	alg := FickianReaction(net, ph)
	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))
	require.NoError(t, alg.AddSource(physics.LinearSource{A1: -1}, []int{1}))

	require.NoError(t, alg.Run(context.Background(), solver.Dense{}))
	assert.InDelta(t, 1.0, alg.X()[0], 1e-8)
	assert.InDelta(t, 0.5, alg.X()[1], 1e-8)
}

func TestReactiveWithoutSourcesMatchesSteady(t *testing.T) {
	net, ph := chain(t, 5)
	alg := FickianReaction(net, ph)
	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))
	require.NoError(t, alg.SetValueBC([]int{4}, []float64{0}, ModeMerge))

	require.NoError(t, alg.Run(context.Background(), solver.Dense{}))
	want := []float64{1, 0.75, 0.5, 0.25, 0}
	for p := range want {
		assert.InDelta(t, want[p], alg.X()[p], 1e-10, "pore %d", p)
	}
}

func TestReactivePowerLawConsumption(t *testing.T) {
	net, ph := chain(t, 5)
	alg := FickianReaction(net, ph)
	alg.Settings.Relaxation = 0.9
	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))
	require.NoError(t, alg.AddSource(physics.PowerLawSource{A1: -0.5, A2: 2}, []int{1, 2, 3, 4}))

	require.NoError(t, alg.Run(context.Background(), solver.Dense{}))

	// Consumption drains the field monotonically away from the inlet.
	x := alg.X()
	for p := 1; p < len(x); p++ {
		assert.Less(t, x[p], x[p-1], "pore %d should sit below pore %d", p, p-1)
		assert.Greater(t, x[p], 0.0, "pore %d", p)
	}
}

func TestReactiveRejectsSourceOnValueBC(t *testing.T) {
	net, ph := chain(t, 3)
	alg := FickianReaction(net, ph)
	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))

	assert.Error(t, alg.AddSource(physics.LinearSource{A1: -1}, []int{0}))
	assert.Error(t, alg.AddSource(physics.LinearSource{A1: -1}, []int{99}))
	assert.NoError(t, alg.AddSource(physics.LinearSource{A1: -1}, []int{1}))
}

func TestReactiveDivergenceReported(t *testing.T) {
	net, ph := chain(t, 3)
	alg := FickianReaction(net, ph)
	alg.Settings.MaxIters = 1
	alg.Settings.Tolerance = 1e-15
	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))
	require.NoError(t, alg.AddSource(physics.PowerLawSource{A1: -1, A2: 3}, []int{1, 2}))

	err := alg.Run(context.Background(), solver.Dense{})
	assert.ErrorIs(t, err, ErrReactiveDiverged)
}
