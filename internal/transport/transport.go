// Package transport implements steady, reactive, and transient transport
// on a pore network. A linear system is assembled from throat conductances
// as a weighted graph Laplacian, boundary conditions are folded in without
// breaking symmetry, and the result is handed to a solver.
package transport

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/porelab/porenet/internal/network"
	"github.com/porelab/porenet/internal/phase"
	"github.com/porelab/porenet/internal/solver"
	"github.com/porelab/porenet/internal/topology"
)

// Boundary condition kinds and application modes.
const (
	BCValue = "value"
	BCRate  = "rate"
	BCAll   = "all"

	ModeMerge     = "merge"
	ModeOverwrite = "overwrite"

	RateGroup  = "group"
	RateSingle = "single"
)

// Sentinel errors.
var (
	ErrDisconnected = errors.New("transport: network has clusters unreachable from boundary pores")
	ErrNoValueBC    = errors.New("transport: at least one value boundary condition is required")
	ErrNaN          = errors.New("transport: system contains NaN entries")
)

// Settings selects what a Transport solves for and how.
type Settings struct {
	// Quantity names the solved field, e.g. "pore.concentration".
	Quantity string
	// Conductance names the throat conductance array on the phase,
	// e.g. "throat.diffusive_conductance".
	Conductance string
	// Cache keeps the assembled Laplacian between runs.
	Cache bool
	// Relaxation is the under-relaxation factor for reactive iteration.
	Relaxation float64
	// Tolerance is the reactive iteration stop criterion (max |dx|).
	Tolerance float64
	// MaxIters bounds the reactive iteration.
	MaxIters int
}

func (s *Settings) applyDefaults() {
	if s.Relaxation <= 0 {
		s.Relaxation = 1.0
	}
	if s.Tolerance <= 0 {
		s.Tolerance = 1e-8
	}
	if s.MaxIters <= 0 {
		s.MaxIters = 100
	}
}

// Transport solves a steady linear transport problem on one network and
// phase. Boundary conditions use NaN as the unset sentinel so value zero
// remains a legal condition.
type Transport struct {
	net      *network.Network
	ph       *phase.Phase
	log      *zap.Logger
	Settings Settings

	bcValue []float64
	bcRate  []float64
	pureA   *solver.CSR
	x       []float64
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger attaches a logger; the default is a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// New creates a Transport with the given settings.
func New(net *network.Network, ph *phase.Phase, s Settings, opts ...Option) *Transport {
	s.applyDefaults()
	t := &Transport{
		net:      net,
		ph:       ph,
		log:      zap.NewNop(),
		Settings: s,
		bcValue:  nanSlice(net.Np()),
		bcRate:   nanSlice(net.Np()),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Network returns the underlying network.
func (t *Transport) Network() *network.Network { return t.net }

// Phase returns the underlying phase.
func (t *Transport) Phase() *phase.Phase { return t.ph }

// X returns the solved field, nil before a successful Run.
func (t *Transport) X() []float64 { return t.x }

// Reset clears cached matrices, and optionally boundary conditions and the
// stored result, so the algorithm can be reused in parametric loops.
func (t *Transport) Reset(bcs, results bool) {
	t.pureA = nil
	if bcs {
		t.bcValue = nanSlice(t.net.Np())
		t.bcRate = nanSlice(t.net.Np())
	}
	if results {
		t.x = nil
	}
}

// SetValueBC applies constant-value (Dirichlet) conditions to pores.
// values must hold one entry, applied everywhere, or one per pore.
func (t *Transport) SetValueBC(pores []int, values []float64, mode string) error {
	return t.setBC(BCValue, pores, values, mode)
}

// SetRateBC applies constant-rate (Neumann) conditions to pores.
func (t *Transport) SetRateBC(pores []int, rates []float64, mode string) error {
	return t.setBC(BCRate, pores, rates, mode)
}

// SetTotalRateBC divides a total rate evenly across the given pores.
func (t *Transport) SetTotalRateBC(pores []int, total float64, mode string) error {
	if len(pores) == 0 {
		return errors.New("transport: no pores given")
	}
	return t.setBC(BCRate, pores, []float64{total / float64(len(pores))}, mode)
}

func (t *Transport) setBC(kind string, pores []int, values []float64, mode string) error {
	if kind != BCValue && kind != BCRate {
		return errors.Errorf("transport: unknown BC kind %q", kind)
	}
	if mode != ModeMerge && mode != ModeOverwrite {
		return errors.Errorf("transport: unknown BC mode %q", mode)
	}
	if len(values) != 1 && len(values) != len(pores) {
		return errors.Errorf("transport: got %d values for %d pores", len(values), len(pores))
	}
	np := t.net.Np()
	for _, p := range pores {
		if p < 0 || p >= np {
			return errors.Errorf("transport: pore %d out of range", p)
		}
	}

	own, other := t.bcValue, t.bcRate
	if kind == BCRate {
		own, other = t.bcRate, t.bcValue
	}
	if mode == ModeOverwrite {
		for i := range own {
			own[i] = math.NaN()
		}
	}

	// Pores already carrying the complementary BC type keep it; a location
	// cannot have both, so those are skipped with a warning.
	var skipped []int
	for i, p := range pores {
		if !math.IsNaN(other[p]) {
			skipped = append(skipped, p)
			continue
		}
		if len(values) == 1 {
			own[p] = values[0]
		} else {
			own[p] = values[i]
		}
	}
	if len(skipped) > 0 {
		t.log.Warn("boundary conditions of the other type already exist, skipping",
			zap.String("kind", kind),
			zap.Ints("pores", skipped))
	}
	return nil
}

// RemoveBC clears boundary conditions of the given kind (value, rate, or
// all) from the given pores; nil pores means everywhere.
func (t *Transport) RemoveBC(pores []int, kind string) error {
	if kind != BCValue && kind != BCRate && kind != BCAll {
		return errors.Errorf("transport: unknown BC kind %q", kind)
	}
	if pores == nil {
		pores = make([]int, t.net.Np())
		for i := range pores {
			pores[i] = i
		}
	}
	for _, p := range pores {
		if kind == BCValue || kind == BCAll {
			t.bcValue[p] = math.NaN()
		}
		if kind == BCRate || kind == BCAll {
			t.bcRate[p] = math.NaN()
		}
	}
	return nil
}

// BCPores returns all pores carrying any boundary condition.
func (t *Transport) BCPores() []int {
	var out []int
	for p := range t.bcValue {
		if !math.IsNaN(t.bcValue[p]) || !math.IsNaN(t.bcRate[p]) {
			out = append(out, p)
		}
	}
	return out
}

// buildA assembles the conductance-weighted graph Laplacian. The "pure"
// matrix, before boundary conditions, is cached when Settings.Cache is on.
func (t *Transport) buildA() (*solver.CSR, error) {
	if t.pureA != nil && t.Settings.Cache {
		return t.pureA.Clone(), nil
	}
	g, ok := t.ph.ThroatProp(t.Settings.Conductance)
	if !ok {
		return nil, errors.Errorf("transport: phase %s has no %s", t.ph.Name(), t.Settings.Conductance)
	}
	np := t.net.Np()
	conns := t.net.Conns()
	coo := solver.NewCOO(np, 4*len(conns)+np)
	// Stored zero diagonal guarantees AddToDiagonal always finds a slot.
	for i := 0; i < np; i++ {
		coo.Add(i, i, 0)
	}
	for tIdx, c := range conns {
		w := g[tIdx]
		coo.Add(c[0], c[1], -w)
		coo.Add(c[1], c[0], -w)
		coo.Add(c[0], c[0], w)
		coo.Add(c[1], c[1], w)
	}
	a, err := coo.ToCSR()
	if err != nil {
		return nil, err
	}
	t.pureA = a
	return a.Clone(), nil
}

// applyRateBCs writes rate conditions into b.
func (t *Transport) applyRateBCs(b []float64) {
	for p, r := range t.bcRate {
		if !math.IsNaN(r) {
			b[p] += r
		}
	}
}

// applyValueBCs imposes Dirichlet conditions by elimination, keeping A
// symmetric: the known values are moved to the right-hand side, BC rows
// and columns are zeroed, and the BC diagonal is set to the mean original
// diagonal so the matrix stays well scaled.
func (t *Transport) applyValueBCs(a *solver.CSR, b []float64) {
	np := a.N
	bcMask := make([]bool, np)
	any := false
	for p, v := range t.bcValue {
		if !math.IsNaN(v) {
			bcMask[p] = true
			any = true
		}
	}
	if !any {
		return
	}

	diag := a.Diagonal()
	f := 0.0
	for _, d := range diag {
		f += d
	}
	f /= float64(np)
	if f == 0 {
		f = 1
	}

	xBC := make([]float64, np)
	for p := range bcMask {
		if bcMask[p] {
			xBC[p] = t.bcValue[p]
		}
	}
	shift := make([]float64, np)
	a.MatVec(xBC, shift)
	for p := 0; p < np; p++ {
		if bcMask[p] {
			b[p] = f * t.bcValue[p]
		} else {
			b[p] -= shift[p]
		}
	}

	for i := 0; i < np; i++ {
		for k := a.RowPtr[i]; k < a.RowPtr[i+1]; k++ {
			j := a.ColIdx[k]
			if !bcMask[i] && !bcMask[j] {
				continue
			}
			if i == j {
				a.Vals[k] = f
			} else {
				a.Vals[k] = 0
			}
		}
	}
}

func (t *Transport) validate() error {
	if t.Settings.Quantity == "" {
		return errors.New("transport: Quantity not set")
	}
	if t.Settings.Conductance == "" {
		return errors.New("transport: Conductance not set")
	}
	bc := t.BCPores()
	if !topology.IsFullyConnected(t.net.Np(), t.net.Conns(), bc) {
		return ErrDisconnected
	}
	hasValue := false
	for _, v := range t.bcValue {
		if !math.IsNaN(v) {
			hasValue = true
			break
		}
	}
	if !hasValue {
		return ErrNoValueBC
	}
	return nil
}

func checkFinite(a *solver.CSR, b []float64) error {
	for _, v := range a.Vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrap(ErrNaN, "coefficient matrix")
		}
	}
	for _, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrap(ErrNaN, "right-hand side")
		}
	}
	return nil
}

// Run assembles and solves the steady linear system, storing the solution
// on the algorithm and, under Settings.Quantity, on the phase.
func (t *Transport) Run(ctx context.Context, s solver.Solver) error {
	if err := t.validate(); err != nil {
		return err
	}
	if s == nil {
		s = solver.Auto{}
	}
	a, err := t.buildA()
	if err != nil {
		return err
	}
	b := make([]float64, t.net.Np())
	t.applyRateBCs(b)
	t.applyValueBCs(a, b)
	if err := checkFinite(a, b); err != nil {
		return err
	}
	x, err := s.Solve(ctx, a, b, t.x)
	if err != nil {
		return err
	}
	t.x = x
	t.log.Info("steady transport solved",
		zap.String("quantity", t.Settings.Quantity),
		zap.Int("pores", t.net.Np()),
		zap.Int("nnz", a.NNZ()))
	return t.ph.SetPoreProp(t.Settings.Quantity, x)
}

// Rate returns the net rate of material leaving the given pores: positive
// values mean material exits the set. With RateGroup the rates are summed
// to one number, with RateSingle they are returned per pore.
func (t *Transport) Rate(pores []int, mode string) ([]float64, error) {
	if t.x == nil {
		return nil, errors.New("transport: no solution, call Run first")
	}
	g, _ := t.ph.ThroatProp(t.Settings.Conductance)
	qp := make([]float64, t.net.Np())
	for tIdx, c := range t.net.Conns() {
		qt := g[tIdx] * (t.x[c[1]] - t.x[c[0]])
		qp[c[0]] -= qt
		qp[c[1]] += qt
	}
	return groupRates(qp, pores, mode)
}

// ThroatRate returns the magnitude of the rate through the given throats.
func (t *Transport) ThroatRate(throats []int, mode string) ([]float64, error) {
	if t.x == nil {
		return nil, errors.New("transport: no solution, call Run first")
	}
	g, _ := t.ph.ThroatProp(t.Settings.Conductance)
	conns := t.net.Conns()
	qt := make([]float64, len(throats))
	for i, tr := range throats {
		if tr < 0 || tr >= len(conns) {
			return nil, errors.Errorf("transport: throat %d out of range", tr)
		}
		c := conns[tr]
		qt[i] = math.Abs(g[tr] * (t.x[c[0]] - t.x[c[1]]))
	}
	if mode == RateGroup {
		sum := 0.0
		for _, q := range qt {
			sum += q
		}
		return []float64{sum}, nil
	}
	return qt, nil
}

func groupRates(qp []float64, pores []int, mode string) ([]float64, error) {
	switch mode {
	case RateGroup, "":
		sum := 0.0
		for _, p := range pores {
			if p < 0 || p >= len(qp) {
				return nil, errors.Errorf("transport: pore %d out of range", p)
			}
			sum += qp[p]
		}
		return []float64{sum}, nil
	case RateSingle:
		out := make([]float64, len(pores))
		for i, p := range pores {
			if p < 0 || p >= len(qp) {
				return nil, errors.Errorf("transport: pore %d out of range", p)
			}
			out[i] = qp[p]
		}
		return out, nil
	}
	return nil, errors.Errorf("transport: unknown rate mode %q", mode)
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
