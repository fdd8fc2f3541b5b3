package geometry

import (
	"math"

	"github.com/pkg/errors"

	"github.com/porelab/porenet/internal/network"
)

// ApplyBoundary overrides geometry on boundary pores so they contribute no
// volume or resistance of their own: zero diameter and volume, unit area.
// Throats touching a boundary pore inherit the diameter of their internal
// neighbour (max rule) and keep a straight centre-to-centre length.
// StickAndBall must have run first.
func ApplyBoundary(net *network.Network, pores []int) error {
	pd, ok := net.Prop("pore.diameter")
	if !ok {
		return errors.New("geometry: pore.diameter missing, run StickAndBall first")
	}
	pvol, _ := net.Prop("pore.volume")
	parea, _ := net.Prop("pore.area")

	isBoundary := make([]bool, net.Np())
	for _, p := range pores {
		if p < 0 || p >= net.Np() {
			return errors.Errorf("geometry: boundary pore %d out of range", p)
		}
		isBoundary[p] = true
		pd[p] = 0
		pvol[p] = 0
		parea[p] = 1.0
	}

	td, _ := net.Prop("throat.diameter")
	tlen, _ := net.Prop("throat.length")
	ttot, _ := net.Prop("throat.total_length")
	tarea, _ := net.Prop("throat.area")
	tvol, _ := net.Prop("throat.volume")
	coords := net.Coords()

	for t, c := range net.Conns() {
		if !isBoundary[c[0]] && !isBoundary[c[1]] {
			continue
		}
		td[t] = math.Max(pd[c[0]], pd[c[1]])
		dx := coords[c[0]][0] - coords[c[1]][0]
		dy := coords[c[0]][1] - coords[c[1]][1]
		dz := coords[c[0]][2] - coords[c[1]][2]
		ctc := math.Sqrt(dx*dx + dy*dy + dz*dz)
		ttot[t] = ctc
		tlen[t] = ctc - pd[c[0]]/2 - pd[c[1]]/2
		tarea[t] = math.Pi / 4 * td[t] * td[t]
		tvol[t] = 0
	}
	return nil
}
