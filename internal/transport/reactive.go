package transport

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/porelab/porenet/internal/network"
	"github.com/porelab/porenet/internal/phase"
	"github.com/porelab/porenet/internal/physics"
	"github.com/porelab/porenet/internal/solver"
)

// ErrReactiveDiverged reports a Picard iteration that hit MaxIters without
// meeting the tolerance.
var ErrReactiveDiverged = errors.New("transport: reactive iteration did not converge")

// sourceBinding attaches one source-term model to a set of pores.
type sourceBinding struct {
	term  physics.SourceTerm
	pores []int
}

// Reactive extends Transport with nonlinear source terms. Each outer
// iteration linearizes the sources about the current field (Patankar
// slope/intercept), folds them into the diagonal and right-hand side, and
// re-solves until the field stops changing.
type Reactive struct {
	*Transport
	sources []sourceBinding
}

// NewReactive wraps a Transport for reactive solves.
func NewReactive(t *Transport) *Reactive {
	return &Reactive{Transport: t}
}

// FickianReaction is a diffusion-reaction algorithm on the given phase.
func FickianReaction(net *network.Network, ph *phase.Phase, opts ...Option) *Reactive {
	return NewReactive(FickianDiffusion(net, ph, opts...))
}

// AddSource binds a source term to pores. Pores holding a value BC are
// rejected: a fixed value and a source cannot coexist in one location.
func (r *Reactive) AddSource(term physics.SourceTerm, pores []int) error {
	for _, p := range pores {
		if p < 0 || p >= r.net.Np() {
			return errors.Errorf("transport: source pore %d out of range", p)
		}
		if !math.IsNaN(r.bcValue[p]) {
			return errors.Errorf("transport: pore %d already holds a value BC", p)
		}
	}
	r.sources = append(r.sources, sourceBinding{term: term, pores: pores})
	return nil
}

// applySources linearizes every source about x and folds S1 into the
// diagonal and S2 into b. Signs follow the convention that positive rates
// inject material: sum_j g_ij (x_i - x_j) = S1 x_i + S2 rearranges to
// (A_ii - S1) x_i - ... = S2.
func (r *Reactive) applySources(a *solver.CSR, b, x []float64) error {
	if len(r.sources) == 0 {
		return nil
	}
	s1 := make([]float64, a.N)
	for _, src := range r.sources {
		for _, p := range src.pores {
			sl, in := src.term.Linearize(x[p])
			s1[p] -= sl
			b[p] += in
		}
	}
	return a.AddToDiagonal(s1)
}

// Run performs the Picard iteration. Under-relaxation and stopping
// criteria come from the settings; with no sources attached this reduces
// to a single linear solve.
func (r *Reactive) Run(ctx context.Context, s solver.Solver) error {
	if err := r.validate(); err != nil {
		return err
	}
	if s == nil {
		s = solver.Auto{}
	}
	np := r.net.Np()
	x := make([]float64, np)
	if r.x != nil {
		copy(x, r.x)
	}

	w := r.Settings.Relaxation
	for iter := 0; iter < r.Settings.MaxIters; iter++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		a, err := r.buildA()
		if err != nil {
			return err
		}
		b := make([]float64, np)
		r.applyRateBCs(b)
		r.applyValueBCs(a, b)
		if err := r.applySources(a, b, x); err != nil {
			return err
		}
		if err := checkFinite(a, b); err != nil {
			return err
		}

		xNew, err := s.Solve(ctx, a, b, x)
		if err != nil {
			return err
		}

		maxChange := 0.0
		for i := range x {
			xi := w*xNew[i] + (1-w)*x[i]
			if d := math.Abs(xi - x[i]); d > maxChange {
				maxChange = d
			}
			x[i] = xi
		}

		if len(r.sources) == 0 || maxChange < r.Settings.Tolerance {
			r.x = x
			r.log.Info("reactive transport converged",
				zap.Int("iterations", iter+1),
				zap.Float64("max_change", maxChange))
			return r.ph.SetPoreProp(r.Settings.Quantity, x)
		}
	}
	return errors.Wrapf(ErrReactiveDiverged, "after %d iterations", r.Settings.MaxIters)
}
