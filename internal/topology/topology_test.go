package topology

import (
	"math"
	"testing"
)

func grid(nx, ny, nz int, s float64) [][3]float64 {
	coords := make([][3]float64, 0, nx*ny*nz)
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny; iy++ {
			for iz := 0; iz < nz; iz++ {
				coords = append(coords, [3]float64{
					(float64(ix) + 0.5) * s,
					(float64(iy) + 0.5) * s,
					(float64(iz) + 0.5) * s,
				})
			}
		}
	}
	return coords
}

func TestDimensionality(t *testing.T) {
	tests := []struct {
		name     string
		coords   [][3]float64
		expected [3]bool
	}{
		{"3d grid", grid(2, 2, 2, 1.0), [3]bool{true, true, true}},
		{"xy plane", grid(3, 3, 1, 1.0), [3]bool{true, true, false}},
		{"line", grid(4, 1, 1, 1.0), [3]bool{true, false, false}},
		{"empty", nil, [3]bool{false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dimensionality(tt.coords); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSurfaceNodes(t *testing.T) {
	coords := grid(3, 3, 3, 1.0)
	hits := SurfaceNodes(coords)

	count := 0
	for _, h := range hits {
		if h {
			count++
		}
	}
	// A 3x3x3 grid has a single interior node.
	if count != 26 {
		t.Errorf("expected 26 surface nodes, got %d", count)
	}
}

func TestIsOutside(t *testing.T) {
	coords := [][3]float64{
		{0.5, 0.5, 0.5},
		{1.5, 0.5, 0.5},
		{-0.5, 0.5, 0.5},
	}
	out := IsOutside(coords, [3]float64{1, 1, 1}, 0)
	expected := []bool{false, true, true}
	for i := range expected {
		if out[i] != expected[i] {
			t.Errorf("node %d: expected %v, got %v", i, expected[i], out[i])
		}
	}
}

func TestIsOutsideSphere(t *testing.T) {
	coords := [][3]float64{
		{0, 0, 0},
		{0.5, 0, 0},
		{1.5, 0, 0},
	}
	out := IsOutside(coords, [3]float64{1, 0, 0}, 0)
	if out[0] || out[1] {
		t.Error("interior nodes flagged as outside")
	}
	if !out[2] {
		t.Error("node beyond the radius not flagged")
	}
}

func TestCoplanar(t *testing.T) {
	plane := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	ok, err := Coplanar(plane)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected coplanar points")
	}

	skew := append(plane, [3]float64{0.5, 0.5, 1})
	ok, err = Coplanar(skew)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected non-coplanar points")
	}

	if _, err := Coplanar(plane[:2]); err == nil {
		t.Error("expected error for fewer than 3 points")
	}
}

func TestSpacingAndShape(t *testing.T) {
	coords := grid(4, 3, 2, 2.5)
	spc := Spacing(coords)
	for d, want := range [3]float64{2.5, 2.5, 2.5} {
		if math.Abs(spc[d]-want) > 1e-12 {
			t.Errorf("axis %d: expected spacing %g, got %g", d, want, spc[d])
		}
	}
	if shp := Shape(coords); shp != [3]int{4, 3, 2} {
		t.Errorf("expected shape [4 3 2], got %v", shp)
	}
}

func TestDomainArea(t *testing.T) {
	coords := grid(3, 3, 3, 1.0)
	var inlets, outlets []int
	for i, c := range coords {
		if c[0] == 0.5 {
			inlets = append(inlets, i)
		}
		if c[0] == 2.5 {
			outlets = append(outlets, i)
		}
	}

	area, err := DomainArea(coords, inlets, outlets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Bounding rectangle of the 3x3 face spans 2x2 lattice units.
	if math.Abs(area-4.0) > 1e-12 {
		t.Errorf("expected area 4, got %g", area)
	}

	if _, err := DomainArea(coords, nil, outlets); err == nil {
		t.Error("expected error for empty inlet set")
	}
}

func TestDomainLength(t *testing.T) {
	coords := grid(3, 3, 3, 1.0)
	var inlets, outlets []int
	for i, c := range coords {
		if c[0] == 0.5 {
			inlets = append(inlets, i)
		}
		if c[0] == 2.5 {
			outlets = append(outlets, i)
		}
	}

	length, uniform, err := DomainLength(coords, inlets, outlets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(length-2.0) > 1e-12 {
		t.Errorf("expected length 2, got %g", length)
	}
	if !uniform {
		t.Error("plane-parallel faces should report uniform distance")
	}
}

func TestInternodeDistance(t *testing.T) {
	coords := [][3]float64{{0, 0, 0}, {3, 4, 0}, {1, 0, 0}}
	d := InternodeDistance(coords, []int{0}, []int{1, 2})
	if math.Abs(d[0][0]-5.0) > 1e-12 {
		t.Errorf("expected distance 5, got %g", d[0][0])
	}
	if math.Abs(d[0][1]-1.0) > 1e-12 {
		t.Errorf("expected distance 1, got %g", d[0][1])
	}
}
