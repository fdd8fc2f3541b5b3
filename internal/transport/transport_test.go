package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porelab/porenet/internal/network"
	"github.com/porelab/porenet/internal/phase"
	"github.com/porelab/porenet/internal/solver"
)

// chain builds an n-pore linear network with unit diffusive conductance on
// every throat, so analytic profiles are easy to write down.
func chain(t *testing.T, n int) (*network.Network, *phase.Phase) {
	t.Helper()
	net, err := network.Cubic([3]int{n, 1, 1}, 1.0)
	require.NoError(t, err)
	ph := phase.NewPhase(net, "test")
	g := make([]float64, net.Nt())
	for i := range g {
		g[i] = 1.0
	}
	require.NoError(t, ph.SetThroatProp("throat.diffusive_conductance", g))
	return net, ph
}

func TestSteadyLinearProfile(t *testing.T) {
	net, ph := chain(t, 5)
	alg := FickianDiffusion(net, ph)

	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))
	require.NoError(t, alg.SetValueBC([]int{4}, []float64{0}, ModeMerge))
	require.NoError(t, alg.Run(context.Background(), solver.Dense{}))

	want := []float64{1, 0.75, 0.5, 0.25, 0}
	x := alg.X()
	require.Len(t, x, 5)
	for p := range want {
		assert.InDelta(t, want[p], x[p], 1e-10, "pore %d", p)
	}

	// The solved field is also published on the phase.
	c, ok := ph.PoreProp("pore.concentration")
	require.True(t, ok)
	assert.InDelta(t, 0.5, c[2], 1e-10)
}

func TestRateConvention(t *testing.T) {
	net, ph := chain(t, 5)
	alg := FickianDiffusion(net, ph)
	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))
	require.NoError(t, alg.SetValueBC([]int{4}, []float64{0}, ModeMerge))
	require.NoError(t, alg.Run(context.Background(), solver.Dense{}))

	// Positive means material leaves the pore set into the network.
	in, err := alg.Rate([]int{0}, RateGroup)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, in[0], 1e-10)

	out, err := alg.Rate([]int{4}, RateGroup)
	require.NoError(t, err)
	assert.InDelta(t, -0.25, out[0], 1e-10)

	// Interior pores conserve mass, and the whole network sums to zero.
	single, err := alg.Rate([]int{1, 2, 3}, RateSingle)
	require.NoError(t, err)
	for p, q := range single {
		assert.InDelta(t, 0.0, q, 1e-10, "interior pore %d", p+1)
	}
	total, err := alg.Rate([]int{0, 1, 2, 3, 4}, RateGroup)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, total[0], 1e-10)

	// Every throat carries the same flux magnitude on a chain.
	qt, err := alg.ThroatRate([]int{0, 1, 2, 3}, RateSingle)
	require.NoError(t, err)
	for th, q := range qt {
		assert.InDelta(t, 0.25, q, 1e-10, "throat %d", th)
	}
}

func TestRateBCDrivesFlux(t *testing.T) {
	net, ph := chain(t, 5)
	alg := FickianDiffusion(net, ph)
	require.NoError(t, alg.SetValueBC([]int{4}, []float64{0}, ModeMerge))
	require.NoError(t, alg.SetRateBC([]int{0}, []float64{0.25}, ModeMerge))
	require.NoError(t, alg.Run(context.Background(), solver.Dense{}))

	// A 0.25 injection through four unit throats lifts the inlet to 1.
	assert.InDelta(t, 1.0, alg.X()[0], 1e-10)
	assert.InDelta(t, 0.5, alg.X()[2], 1e-10)
}

func TestTotalRateBC(t *testing.T) {
	net, ph := chain(t, 5)
	alg := FickianDiffusion(net, ph)
	require.NoError(t, alg.SetValueBC([]int{4}, []float64{0}, ModeMerge))
	require.NoError(t, alg.SetTotalRateBC([]int{0, 1}, 0.5, ModeMerge))
	require.NoError(t, alg.Run(context.Background(), solver.Dense{}))

	// 0.25 enters at each of pores 0 and 1: throat 0 carries 0.25 and the
	// rest carry the full 0.5.
	want := []float64{1.75, 1.5, 1.0, 0.5, 0}
	for p := range want {
		assert.InDelta(t, want[p], alg.X()[p], 1e-10, "pore %d", p)
	}

	assert.Error(t, alg.SetTotalRateBC(nil, 1.0, ModeMerge))
}

func TestBCMergeKeepsComplementaryKind(t *testing.T) {
	net, ph := chain(t, 5)
	alg := FickianDiffusion(net, ph)
	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))
	require.NoError(t, alg.SetValueBC([]int{4}, []float64{0}, ModeMerge))

	// A rate condition on a pore that already holds a value condition is
	// skipped, not applied on top.
	require.NoError(t, alg.SetRateBC([]int{0}, []float64{99}, ModeMerge))
	assert.Equal(t, []int{0, 4}, alg.BCPores())

	require.NoError(t, alg.Run(context.Background(), solver.Dense{}))
	assert.InDelta(t, 1.0, alg.X()[0], 1e-10)
}

func TestBCOverwriteClearsOwnKind(t *testing.T) {
	net, ph := chain(t, 5)
	alg := FickianDiffusion(net, ph)
	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))
	require.NoError(t, alg.SetValueBC([]int{4}, []float64{0}, ModeMerge))

	require.NoError(t, alg.SetValueBC([]int{4}, []float64{0.5}, ModeOverwrite))
	assert.Equal(t, []int{4}, alg.BCPores())

	// With a single Dirichlet pore the steady field is uniform.
	require.NoError(t, alg.Run(context.Background(), solver.Dense{}))
	assert.InDelta(t, 0.5, alg.X()[0], 1e-10)
}

func TestRemoveBCAndReset(t *testing.T) {
	net, ph := chain(t, 5)
	alg := FickianDiffusion(net, ph)
	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))
	require.NoError(t, alg.SetRateBC([]int{4}, []float64{-1}, ModeMerge))
	assert.Len(t, alg.BCPores(), 2)

	require.NoError(t, alg.RemoveBC([]int{4}, BCRate))
	assert.Equal(t, []int{0}, alg.BCPores())

	require.NoError(t, alg.RemoveBC(nil, BCAll))
	assert.Empty(t, alg.BCPores())

	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))
	alg.Reset(true, true)
	assert.Empty(t, alg.BCPores())
	assert.Nil(t, alg.X())

	assert.Error(t, alg.RemoveBC(nil, "bogus"))
}

func TestSetBCValidation(t *testing.T) {
	net, ph := chain(t, 3)
	alg := FickianDiffusion(net, ph)

	assert.Error(t, alg.SetValueBC([]int{0}, []float64{1}, "sideways"))
	assert.Error(t, alg.SetValueBC([]int{0, 1, 2}, []float64{1, 2}, ModeMerge))
	assert.Error(t, alg.SetValueBC([]int{9}, []float64{1}, ModeMerge))
	assert.Error(t, alg.SetRateBC([]int{-1}, []float64{1}, ModeMerge))
}

func TestRunRequiresValueBC(t *testing.T) {
	net, ph := chain(t, 3)
	alg := FickianDiffusion(net, ph)
	require.NoError(t, alg.SetRateBC([]int{0}, []float64{1}, ModeMerge))

	err := alg.Run(context.Background(), solver.Dense{})
	assert.ErrorIs(t, err, ErrNoValueBC)
}

func TestRunRejectsUnreachableClusters(t *testing.T) {
	// Two disjoint two-pore clusters.
	net, err := network.New(
		[][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}, {1, 2, 0}},
		[][2]int{{0, 1}, {2, 3}},
	)
	require.NoError(t, err)
	ph := phase.NewPhase(net, "test")
	require.NoError(t, ph.SetThroatProp("throat.diffusive_conductance", []float64{1, 1}))

	alg := FickianDiffusion(net, ph)
	require.NoError(t, alg.SetValueBC([]int{0}, []float64{1}, ModeMerge))
	err = alg.Run(context.Background(), solver.Dense{})
	assert.ErrorIs(t, err, ErrDisconnected)

	// A boundary condition on each cluster makes the problem well posed.
	require.NoError(t, alg.SetValueBC([]int{2}, []float64{0}, ModeMerge))
	assert.NoError(t, alg.Run(context.Background(), solver.Dense{}))
}

func TestRateRequiresSolution(t *testing.T) {
	net, ph := chain(t, 3)
	alg := FickianDiffusion(net, ph)
	_, err := alg.Rate([]int{0}, RateGroup)
	assert.Error(t, err)
	_, err = alg.ThroatRate([]int{0}, RateGroup)
	assert.Error(t, err)
}
