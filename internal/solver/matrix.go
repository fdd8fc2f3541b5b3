// Package solver provides the sparse linear algebra behind the transport
// algorithms: a COO/CSR matrix pair, a Jacobi-preconditioned conjugate
// gradient for the SPD systems produced by Laplacian assembly, and a dense
// direct path for small networks.
package solver

import (
	"sort"

	"github.com/pkg/errors"
)

// COO is a coordinate-format triplet accumulator. Duplicate entries are
// legal and are summed on conversion to CSR, which makes Laplacian
// assembly a plain scatter of throat conductances.
type COO struct {
	N    int
	Rows []int
	Cols []int
	Vals []float64
}

// NewCOO creates an empty n-by-n accumulator with capacity for nnz entries.
func NewCOO(n, nnz int) *COO {
	return &COO{
		N:    n,
		Rows: make([]int, 0, nnz),
		Cols: make([]int, 0, nnz),
		Vals: make([]float64, 0, nnz),
	}
}

// Add appends a triplet.
func (c *COO) Add(i, j int, v float64) {
	c.Rows = append(c.Rows, i)
	c.Cols = append(c.Cols, j)
	c.Vals = append(c.Vals, v)
}

// CSR is a compressed sparse row matrix.
type CSR struct {
	N      int
	RowPtr []int
	ColIdx []int
	Vals   []float64
}

// ToCSR converts the accumulator, sorting each row by column and summing
// duplicates.
func (c *COO) ToCSR() (*CSR, error) {
	for k, r := range c.Rows {
		if r < 0 || r >= c.N || c.Cols[k] < 0 || c.Cols[k] >= c.N {
			return nil, errors.Errorf("solver: triplet (%d,%d) outside %dx%d matrix", r, c.Cols[k], c.N, c.N)
		}
	}
	order := make([]int, len(c.Rows))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ka, kb := order[a], order[b]
		if c.Rows[ka] != c.Rows[kb] {
			return c.Rows[ka] < c.Rows[kb]
		}
		return c.Cols[ka] < c.Cols[kb]
	})

	m := &CSR{
		N:      c.N,
		RowPtr: make([]int, c.N+1),
		ColIdx: make([]int, 0, len(order)),
		Vals:   make([]float64, 0, len(order)),
	}
	prevRow, prevCol := -1, -1
	for _, k := range order {
		r, col, v := c.Rows[k], c.Cols[k], c.Vals[k]
		if r == prevRow && col == prevCol {
			m.Vals[len(m.Vals)-1] += v
			continue
		}
		m.ColIdx = append(m.ColIdx, col)
		m.Vals = append(m.Vals, v)
		m.RowPtr[r+1]++
		prevRow, prevCol = r, col
	}
	for i := 0; i < c.N; i++ {
		m.RowPtr[i+1] += m.RowPtr[i]
	}
	return m, nil
}

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int { return len(m.Vals) }

// MatVec computes y = A x.
func (m *CSR) MatVec(x, y []float64) {
	for i := 0; i < m.N; i++ {
		sum := 0.0
		for k := m.RowPtr[i]; k < m.RowPtr[i+1]; k++ {
			sum += m.Vals[k] * x[m.ColIdx[k]]
		}
		y[i] = sum
	}
}

// Diagonal extracts the main diagonal; absent entries read as zero.
func (m *CSR) Diagonal() []float64 {
	d := make([]float64, m.N)
	for i := 0; i < m.N; i++ {
		for k := m.RowPtr[i]; k < m.RowPtr[i+1]; k++ {
			if m.ColIdx[k] == i {
				d[i] = m.Vals[k]
				break
			}
		}
	}
	return d
}

// AddToDiagonal adds v[i] to entry (i,i). Every diagonal entry must be
// present, which assembly guarantees for Laplacians.
func (m *CSR) AddToDiagonal(v []float64) error {
	for i := 0; i < m.N; i++ {
		found := false
		for k := m.RowPtr[i]; k < m.RowPtr[i+1]; k++ {
			if m.ColIdx[k] == i {
				m.Vals[k] += v[i]
				found = true
				break
			}
		}
		if !found {
			return errors.Errorf("solver: no stored diagonal at row %d", i)
		}
	}
	return nil
}

// Clone deep-copies the matrix.
func (m *CSR) Clone() *CSR {
	out := &CSR{
		N:      m.N,
		RowPtr: append([]int(nil), m.RowPtr...),
		ColIdx: append([]int(nil), m.ColIdx...),
		Vals:   append([]float64(nil), m.Vals...),
	}
	return out
}

// Scale multiplies all entries by f.
func (m *CSR) Scale(f float64) {
	for i := range m.Vals {
		m.Vals[i] *= f
	}
}
