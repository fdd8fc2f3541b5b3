package solver

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Sentinel errors surfaced by the solvers.
var (
	ErrNotConverged = errors.New("solver: iteration did not converge")
	ErrSingular     = errors.New("solver: matrix is singular")
)

// Solver solves A x = b for the symmetric positive-definite systems the
// transport algorithms assemble. x0 is an optional initial guess.
type Solver interface {
	Solve(ctx context.Context, a *CSR, b, x0 []float64) ([]float64, error)
}

// CG is a Jacobi-preconditioned conjugate gradient solver.
type CG struct {
	Tol     float64 // relative residual target, default 1e-10
	MaxIter int     // default 10 * n
}

// NewCG returns a CG solver with default tolerances.
func NewCG() *CG { return &CG{} }

func (s *CG) Solve(ctx context.Context, a *CSR, b, x0 []float64) ([]float64, error) {
	n := a.N
	if len(b) != n {
		return nil, errors.Errorf("solver: rhs length %d, matrix size %d", len(b), n)
	}
	tol := s.Tol
	if tol <= 0 {
		tol = 1e-10
	}
	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = 10 * n
	}

	x := make([]float64, n)
	if x0 != nil {
		copy(x, x0)
	}

	diag := a.Diagonal()
	minv := make([]float64, n)
	for i, d := range diag {
		if d == 0 {
			return nil, errors.Wrapf(ErrSingular, "zero diagonal at row %d", i)
		}
		minv[i] = 1 / d
	}

	r := make([]float64, n)
	a.MatVec(x, r)
	for i := range r {
		r[i] = b[i] - r[i]
	}
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		return make([]float64, n), nil
	}

	z := make([]float64, n)
	for i := range z {
		z[i] = minv[i] * r[i]
	}
	p := append([]float64(nil), z...)
	ap := make([]float64, n)
	rz := floats.Dot(r, z)

	for iter := 0; iter < maxIter; iter++ {
		if iter%64 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		a.MatVec(p, ap)
		pap := floats.Dot(p, ap)
		if pap <= 0 {
			return nil, errors.Wrap(ErrSingular, "matrix not positive definite")
		}
		alpha := rz / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		if floats.Norm(r, 2)/bnorm < tol {
			return x, nil
		}

		for i := range z {
			z[i] = minv[i] * r[i]
		}
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew
		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
	}
	return nil, errors.Wrapf(ErrNotConverged, "after %d iterations", maxIter)
}

// Dense solves via Cholesky factorization on a dense copy, falling back to
// LU when the matrix is not numerically positive definite. Intended for
// small systems where the O(n^3) cost is irrelevant and exact answers help
// testing.
type Dense struct{}

func (Dense) Solve(ctx context.Context, a *CSR, b, x0 []float64) ([]float64, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	n := a.N
	if len(b) != n {
		return nil, errors.Errorf("solver: rhs length %d, matrix size %d", len(b), n)
	}
	sym := mat.NewSymDense(n, nil)
	dense := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for k := a.RowPtr[i]; k < a.RowPtr[i+1]; k++ {
			j := a.ColIdx[k]
			dense.Set(i, j, a.Vals[k])
			if j >= i {
				sym.SetSym(i, j, a.Vals[k])
			}
		}
	}
	bv := mat.NewVecDense(n, append([]float64(nil), b...))
	var xv mat.VecDense

	var chol mat.Cholesky
	if chol.Factorize(sym) {
		if err := chol.SolveVecTo(&xv, bv); err == nil {
			return vecData(&xv), nil
		}
	}
	var lu mat.LU
	lu.Factorize(dense)
	if err := lu.SolveVecTo(&xv, false, bv); err != nil {
		return nil, errors.Wrap(ErrSingular, err.Error())
	}
	return vecData(&xv), nil
}

// Auto picks Dense below a size threshold and CG above it.
type Auto struct {
	Threshold int // default 500
	cg        CG
}

func (s Auto) Solve(ctx context.Context, a *CSR, b, x0 []float64) ([]float64, error) {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = 500
	}
	if a.N <= threshold {
		return Dense{}.Solve(ctx, a, b, x0)
	}
	return s.cg.Solve(ctx, a, b, x0)
}

// Residual returns ||A x - b||_2, a cheap post-solve sanity check.
func Residual(a *CSR, x, b []float64) float64 {
	r := make([]float64, a.N)
	a.MatVec(x, r)
	sum := 0.0
	for i := range r {
		d := r[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func vecData(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
