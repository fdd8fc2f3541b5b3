package solver_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/porelab/porenet/internal/solver"
)

// tridiagonal builds the SPD matrix with 2 on the diagonal and -1 off it,
// the discrete 1D Laplacian with Dirichlet ends.
func tridiagonal(n int) *solver.CSR {
	coo := solver.NewCOO(n, 3*n)
	for i := 0; i < n; i++ {
		coo.Add(i, i, 2)
		if i > 0 {
			coo.Add(i, i-1, -1)
		}
		if i < n-1 {
			coo.Add(i, i+1, -1)
		}
	}
	m, err := coo.ToCSR()
	Expect(err).NotTo(HaveOccurred())
	return m
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

var _ = Describe("COO to CSR conversion", func() {
	It("sums duplicate triplets", func() {
		coo := solver.NewCOO(2, 4)
		coo.Add(0, 0, 1)
		coo.Add(0, 0, 2)
		coo.Add(1, 1, 5)
		m, err := coo.ToCSR()
		Expect(err).NotTo(HaveOccurred())
		Expect(m.NNZ()).To(Equal(2))
		Expect(m.Diagonal()).To(Equal([]float64{3, 5}))
	})

	It("rejects out-of-range triplets", func() {
		coo := solver.NewCOO(2, 1)
		coo.Add(0, 5, 1)
		_, err := coo.ToCSR()
		Expect(err).To(HaveOccurred())
	})

	It("computes matrix-vector products", func() {
		m := tridiagonal(3)
		y := make([]float64, 3)
		m.MatVec([]float64{1, 2, 3}, y)
		Expect(y).To(Equal([]float64{0, 0, 4}))
	})

	It("adds to the stored diagonal", func() {
		m := tridiagonal(3)
		Expect(m.AddToDiagonal([]float64{1, 1, 1})).To(Succeed())
		Expect(m.Diagonal()).To(Equal([]float64{3, 3, 3}))
	})

	It("refuses to add where no diagonal is stored", func() {
		coo := solver.NewCOO(2, 1)
		coo.Add(0, 1, 1)
		coo.Add(1, 0, 1)
		m, err := coo.ToCSR()
		Expect(err).NotTo(HaveOccurred())
		Expect(m.AddToDiagonal([]float64{1, 1})).NotTo(Succeed())
	})

	It("clones independently", func() {
		m := tridiagonal(3)
		c := m.Clone()
		c.Scale(10)
		Expect(m.Diagonal()).To(Equal([]float64{2, 2, 2}))
		Expect(c.Diagonal()).To(Equal([]float64{20, 20, 20}))
	})
})

var _ = Describe("conjugate gradient", func() {
	ctx := context.Background()

	It("solves a tridiagonal system to tight residual", func() {
		n := 50
		a := tridiagonal(n)
		b := ones(n)

		cg := solver.NewCG()
		x, err := cg.Solve(ctx, a, b, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(solver.Residual(a, x, b)).To(BeNumerically("<", 1e-8))
	})

	It("matches the dense solver", func() {
		n := 20
		a := tridiagonal(n)
		b := make([]float64, n)
		for i := range b {
			b[i] = float64(i % 5)
		}

		xc, err := solver.NewCG().Solve(ctx, a, b, nil)
		Expect(err).NotTo(HaveOccurred())
		xd, err := solver.Dense{}.Solve(ctx, a, b, nil)
		Expect(err).NotTo(HaveOccurred())
		for i := range xc {
			Expect(xc[i]).To(BeNumerically("~", xd[i], 1e-8))
		}
	})

	It("returns zeros for a zero right-hand side", func() {
		a := tridiagonal(5)
		x, err := solver.NewCG().Solve(ctx, a, make([]float64, 5), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(x).To(Equal(make([]float64, 5)))
	})

	It("reports a zero diagonal as singular", func() {
		coo := solver.NewCOO(2, 3)
		coo.Add(0, 0, 0)
		coo.Add(0, 1, 1)
		coo.Add(1, 1, 1)
		a, err := coo.ToCSR()
		Expect(err).NotTo(HaveOccurred())
		_, err = solver.NewCG().Solve(ctx, a, ones(2), nil)
		Expect(err).To(MatchError(ContainSubstring("singular")))
	})

	It("rejects a mismatched right-hand side", func() {
		a := tridiagonal(4)
		_, err := solver.NewCG().Solve(ctx, a, ones(3), nil)
		Expect(err).To(HaveOccurred())
	})

	It("stops when the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := solver.NewCG().Solve(cctx, tridiagonal(100), ones(100), nil)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("dense solver", func() {
	ctx := context.Background()

	It("solves a small system exactly", func() {
		coo := solver.NewCOO(2, 4)
		coo.Add(0, 0, 4)
		coo.Add(0, 1, 1)
		coo.Add(1, 0, 1)
		coo.Add(1, 1, 3)
		a, err := coo.ToCSR()
		Expect(err).NotTo(HaveOccurred())

		// [4 1; 1 3] x = [1; 2] has x = [1/11, 7/11].
		x, err := solver.Dense{}.Solve(ctx, a, []float64{1, 2}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(x[0]).To(BeNumerically("~", 1.0/11, 1e-12))
		Expect(x[1]).To(BeNumerically("~", 7.0/11, 1e-12))
	})
})

var _ = Describe("auto solver", func() {
	ctx := context.Background()

	It("solves regardless of which side of the threshold the system falls", func() {
		for _, n := range []int{10, 40} {
			a := tridiagonal(n)
			b := ones(n)
			x, err := solver.Auto{Threshold: 20}.Solve(ctx, a, b, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(solver.Residual(a, x, b)).To(BeNumerically("<", 1e-7))
		}
	})
})
