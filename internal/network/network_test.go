package network

import (
	"testing"
)

func TestNewNormalizesConnections(t *testing.T) {
	coords := [][3]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	conns := [][2]int{
		{1, 0},
		{0, 1}, // duplicate after sorting
		{2, 2}, // self loop
		{1, 2},
	}

	net, err := New(coords, conns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if net.Nt() != 2 {
		t.Errorf("expected 2 throats after normalisation, got %d", net.Nt())
	}
	for _, c := range net.Conns() {
		if c[0] >= c[1] {
			t.Errorf("connection %v not sorted low-high", c)
		}
	}
}

func TestNewRejectsOutOfRange(t *testing.T) {
	coords := [][3]float64{{0, 0, 0}, {1, 0, 0}}
	if _, err := New(coords, [][2]int{{0, 5}}); err == nil {
		t.Error("expected error for out-of-range connection")
	}
}

func TestPropValidation(t *testing.T) {
	net, err := Cubic([3]int{2, 2, 1}, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		key     string
		length  int
		wantErr bool
	}{
		{"pore prop", "pore.volume", 4, false},
		{"throat prop", "throat.length", 4, false},
		{"wrong pore length", "pore.volume", 3, true},
		{"wrong throat length", "throat.length", 2, true},
		{"missing prefix", "volume", 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := net.SetProp(tt.key, make([]float64, tt.length))
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSetScalarProp(t *testing.T) {
	net, _ := Cubic([3]int{3, 1, 1}, 1.0)
	if err := net.SetScalarProp("pore.volume", 2.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vals, ok := net.Prop("pore.volume")
	if !ok {
		t.Fatal("property not stored")
	}
	for i, v := range vals {
		if v != 2.5 {
			t.Errorf("pore %d: expected 2.5, got %g", i, v)
		}
	}
}

func TestLabelModes(t *testing.T) {
	net, err := Cubic([3]int{3, 3, 3}, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	left, err := net.Pores([]string{"left"}, ModeUnion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(left) != 9 {
		t.Errorf("expected 9 left pores, got %d", len(left))
	}

	both, err := net.Pores([]string{"left", "bottom"}, ModeUnion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 9 + 9 minus the 3 shared edge pores.
	if len(both) != 15 {
		t.Errorf("expected 15 pores in union, got %d", len(both))
	}

	edge, err := net.Pores([]string{"left", "bottom"}, ModeIntersection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(edge) != 3 {
		t.Errorf("expected 3 pores in intersection, got %d", len(edge))
	}

	rest, err := net.Pores([]string{"surface"}, ModeNot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("expected 1 internal pore in a 3x3x3 lattice, got %d", len(rest))
	}

	if _, err := net.Pores([]string{"nonexistent"}, ModeUnion); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestFindNeighbors(t *testing.T) {
	net, err := Cubic([3]int{2, 2, 2}, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Corner pore 0 at (0,0,0) touches +z, +y and +x neighbours.
	neighbors := net.FindNeighborPores(0)
	expected := []int{1, 2, 4}
	if len(neighbors) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, neighbors)
	}
	for i := range expected {
		if neighbors[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, neighbors)
			break
		}
	}

	throats := net.FindNeighborThroats(0)
	if len(throats) != 3 {
		t.Errorf("expected 3 incident throats, got %d", len(throats))
	}

	z := net.CoordinationNumber()
	for p, c := range z {
		if c != 3 {
			t.Errorf("pore %d: every pore in a 2x2x2 lattice has 3 throats, got %d", p, c)
		}
	}
}
