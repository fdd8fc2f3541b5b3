package network

import (
	"math"
	"testing"

	"github.com/porelab/porenet/internal/topology"
)

func TestCubicShape(t *testing.T) {
	tests := []struct {
		name  string
		shape [3]int
		np    int
		nt    int
	}{
		{"2x2x2", [3]int{2, 2, 2}, 8, 12},
		{"chain", [3]int{5, 1, 1}, 5, 4},
		{"slab", [3]int{3, 3, 1}, 9, 12},
		{"2x3x4", [3]int{2, 3, 4}, 24, 46},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, err := Cubic(tt.shape, 1e-4)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if net.Np() != tt.np {
				t.Errorf("expected %d pores, got %d", tt.np, net.Np())
			}
			if net.Nt() != tt.nt {
				t.Errorf("expected %d throats, got %d", tt.nt, net.Nt())
			}
		})
	}
}

func TestCubicRejectsBadInput(t *testing.T) {
	if _, err := Cubic([3]int{0, 2, 2}, 1.0); err == nil {
		t.Error("expected error for zero extent")
	}
	if _, err := Cubic([3]int{2, 2, 2}, -1.0); err == nil {
		t.Error("expected error for negative spacing")
	}
}

func TestCubicCoordinates(t *testing.T) {
	net, err := Cubic([3]int{2, 2, 2}, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Cell-centred: first pore sits half a spacing in.
	first := net.Coords()[0]
	for d := 0; d < 3; d++ {
		if math.Abs(first[d]-1.0) > 1e-12 {
			t.Errorf("axis %d: expected 1.0, got %g", d, first[d])
		}
	}
	if spc := topology.Spacing(net.Coords()); math.Abs(spc[0]-2.0) > 1e-12 {
		t.Errorf("expected spacing 2.0, got %g", spc[0])
	}
}

func TestCubicFaceLabels(t *testing.T) {
	net, err := Cubic([3]int{4, 3, 2}, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		label string
		count int
	}{
		{"pore.left", 6},
		{"pore.right", 6},
		{"pore.front", 8},
		{"pore.back", 8},
		{"pore.bottom", 12},
		{"pore.top", 12},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			pores, err := net.Pores([]string{tt.label}, ModeUnion)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(pores) != tt.count {
				t.Errorf("expected %d pores, got %d", tt.count, len(pores))
			}
		})
	}
}

func TestCubic2DSkipsFlatAxisLabels(t *testing.T) {
	net, err := Cubic([3]int{3, 3, 1}, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if net.Label("pore.bottom") != nil {
		t.Error("flat axis should not get face labels")
	}
	if net.Label("pore.left") == nil {
		t.Error("spanned axis should get face labels")
	}
}

func TestRandomConnected(t *testing.T) {
	net, err := Random(200, [3]float64{1, 1, 1}, 0.35, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if net.Np() < 2 {
		t.Fatalf("expected a usable network, got %d pores", net.Np())
	}
	if iso := topology.FindIsolatedPores(net.Np(), net.Conns()); len(iso) != 0 {
		t.Errorf("generator should trim isolated clusters, %d remain", len(iso))
	}
}

func TestRandomDeterministic(t *testing.T) {
	a, err := Random(50, [3]float64{1, 1, 1}, 0.4, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Random(50, [3]float64{1, 1, 1}, 0.4, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Np() != b.Np() || a.Nt() != b.Nt() {
		t.Errorf("same seed should reproduce the network: %d/%d vs %d/%d",
			a.Np(), a.Nt(), b.Np(), b.Nt())
	}
}
