package transport

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/porelab/porenet/internal/solver"
)

// Time discretization schemes.
const (
	SchemeImplicit      = "implicit"
	SchemeCrankNicolson = "cranknicolson"
)

// Transient extends a Reactive algorithm with an accumulation term
// V_i/dt and marches it through time. Pore volumes come from
// pore.volume, so zero-volume boundary pores respond instantly, which is
// exactly what reservoir pores should do.
type Transient struct {
	*Reactive

	// Scheme is implicit (backward Euler, default) or cranknicolson.
	Scheme string
	// Dt is the fixed timestep and Duration the total simulated time.
	Dt       float64
	Duration float64
	// SaveEvery decimates the stored snapshots; 1 keeps every step.
	SaveEvery int
	// Initial is the uniform initial field; InitialField overrides it
	// per pore when non-nil.
	Initial      float64
	InitialField []float64
}

// TransientResult is the stored time series of fields.
type TransientResult struct {
	Times  []float64
	Fields [][]float64
}

// Final returns the last stored field.
func (r *TransientResult) Final() []float64 {
	if len(r.Fields) == 0 {
		return nil
	}
	return r.Fields[len(r.Fields)-1]
}

// NewTransient wraps a Reactive algorithm for time stepping.
func NewTransient(r *Reactive) *Transient {
	return &Transient{
		Reactive:  r,
		Scheme:    SchemeImplicit,
		Dt:        1.0,
		Duration:  100.0,
		SaveEvery: 1,
	}
}

func (tr *Transient) theta() (float64, error) {
	switch tr.Scheme {
	case SchemeImplicit, "":
		return 1.0, nil
	case SchemeCrankNicolson:
		return 0.5, nil
	}
	return 0, errors.Errorf("transport: unknown scheme %q", tr.Scheme)
}

// Step advances the field one timestep, running the Picard iteration for
// sources within the step, and returns the new field.
func (tr *Transient) step(ctx context.Context, s solver.Solver, pure *solver.CSR, vdt, xOld []float64, theta float64) ([]float64, error) {
	np := pure.N
	shift := make([]float64, np)
	pure.MatVec(xOld, shift)

	x := append([]float64(nil), xOld...)
	w := tr.Settings.Relaxation

	for iter := 0; iter < tr.Settings.MaxIters; iter++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		a := pure.Clone()
		a.Scale(theta)
		if err := a.AddToDiagonal(vdt); err != nil {
			return nil, err
		}
		b := make([]float64, np)
		for i := range b {
			b[i] = vdt[i]*xOld[i] - (1-theta)*shift[i]
		}
		tr.applyRateBCs(b)
		tr.applyValueBCs(a, b)

		// Sources: the implicit part is linearized at the current iterate,
		// the explicit part evaluated at the old field.
		if len(tr.sources) > 0 {
			s1 := make([]float64, np)
			for _, src := range tr.sources {
				for _, p := range src.pores {
					sl, in := src.term.Linearize(x[p])
					s1[p] -= theta * sl
					b[p] += theta * in
					if theta < 1 {
						b[p] += (1 - theta) * src.term.Rate(xOld[p])
					}
				}
			}
			if err := a.AddToDiagonal(s1); err != nil {
				return nil, err
			}
		}
		if err := checkFinite(a, b); err != nil {
			return nil, err
		}

		xNew, err := s.Solve(ctx, a, b, x)
		if err != nil {
			return nil, err
		}

		maxChange := 0.0
		for i := range x {
			xi := w*xNew[i] + (1-w)*x[i]
			if d := math.Abs(xi - x[i]); d > maxChange {
				maxChange = d
			}
			x[i] = xi
		}
		if len(tr.sources) == 0 || maxChange < tr.Settings.Tolerance {
			return x, nil
		}
	}
	return nil, errors.Wrap(ErrReactiveDiverged, "within timestep")
}

// Run marches the field from the initial condition to Duration, storing
// decimated snapshots. The final field is also written to the phase under
// Settings.Quantity.
func (tr *Transient) Run(ctx context.Context, s solver.Solver) (*TransientResult, error) {
	if err := tr.validate(); err != nil {
		return nil, err
	}
	if tr.Dt <= 0 || tr.Duration <= 0 {
		return nil, errors.Errorf("transport: dt and duration must be positive, got %g and %g", tr.Dt, tr.Duration)
	}
	theta, err := tr.theta()
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = solver.Auto{}
	}
	vol, ok := tr.net.Prop("pore.volume")
	if !ok {
		return nil, errors.New("transport: pore.volume missing, assign geometry first")
	}

	np := tr.net.Np()
	x := make([]float64, np)
	if tr.InitialField != nil {
		if len(tr.InitialField) != np {
			return nil, errors.Errorf("transport: initial field length %d, want %d", len(tr.InitialField), np)
		}
		copy(x, tr.InitialField)
	} else {
		for i := range x {
			x[i] = tr.Initial
		}
	}
	// Dirichlet pores start on their imposed value.
	for p, v := range tr.bcValue {
		if !math.IsNaN(v) {
			x[p] = v
		}
	}

	vdt := make([]float64, np)
	for i, v := range vol {
		vdt[i] = v / tr.Dt
	}

	pure, err := tr.buildA()
	if err != nil {
		return nil, err
	}

	saveEvery := tr.SaveEvery
	if saveEvery < 1 {
		saveEvery = 1
	}
	steps := int(math.Round(tr.Duration / tr.Dt))
	result := &TransientResult{
		Times:  []float64{0},
		Fields: [][]float64{append([]float64(nil), x...)},
	}

	for step := 1; step <= steps; step++ {
		x, err = tr.step(ctx, s, pure, vdt, x, theta)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d (t=%.4g)", step, float64(step)*tr.Dt)
		}
		if step%saveEvery == 0 || step == steps {
			result.Times = append(result.Times, float64(step)*tr.Dt)
			result.Fields = append(result.Fields, append([]float64(nil), x...))
		}
	}

	tr.x = x
	tr.log.Info("transient transport finished",
		zap.Int("steps", steps),
		zap.Int("snapshots", len(result.Times)))
	if err := tr.ph.SetPoreProp(tr.Settings.Quantity, x); err != nil {
		return nil, err
	}
	return result, nil
}
