// Package geometry assigns pore-scale geometry to a network: stick-and-ball
// pore bodies and cylindrical throats sized from seeded random values, plus
// zero-volume overrides for boundary pores.
package geometry

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/porelab/porenet/internal/network"
)

const (
	seedLo = 0.2
	seedHi = 0.7
)

// StickAndBall populates the standard geometry chain:
//
//	pore.seed            uniform in [0.2, 0.7)
//	pore.diameter        seed x shortest incident centre-to-centre length
//	throat.diameter      half the smaller neighbouring pore diameter
//	throat.total_length  centre-to-centre distance
//	throat.length        total length minus the two pore radii
//	volumes and areas    spheres and cylinders
//	shape factors        1.0
//
// The seed cap keeps pore bodies from overlapping, so throat lengths stay
// positive without clamping.
func StickAndBall(net *network.Network, seed int64) error {
	np, nt := net.Np(), net.Nt()
	if nt == 0 {
		return errors.New("geometry: network has no throats")
	}
	rng := rand.New(rand.NewSource(seed))
	coords := net.Coords()
	conns := net.Conns()

	ctc := make([]float64, nt)
	minCtc := make([]float64, np)
	for i := range minCtc {
		minCtc[i] = math.Inf(1)
	}
	for t, c := range conns {
		dx := coords[c[0]][0] - coords[c[1]][0]
		dy := coords[c[0]][1] - coords[c[1]][1]
		dz := coords[c[0]][2] - coords[c[1]][2]
		ctc[t] = math.Sqrt(dx*dx + dy*dy + dz*dz)
		minCtc[c[0]] = math.Min(minCtc[c[0]], ctc[t])
		minCtc[c[1]] = math.Min(minCtc[c[1]], ctc[t])
	}

	seeds := make([]float64, np)
	pd := make([]float64, np)
	for p := 0; p < np; p++ {
		seeds[p] = seedLo + (seedHi-seedLo)*rng.Float64()
		if math.IsInf(minCtc[p], 1) {
			minCtc[p] = 0 // isolated pore, no geometry to size against
		}
		pd[p] = seeds[p] * minCtc[p]
	}

	td := make([]float64, nt)
	tlen := make([]float64, nt)
	for t, c := range conns {
		td[t] = 0.5 * math.Min(pd[c[0]], pd[c[1]])
		tlen[t] = ctc[t] - pd[c[0]]/2 - pd[c[1]]/2
	}

	pvol := make([]float64, np)
	parea := make([]float64, np)
	for p := 0; p < np; p++ {
		pvol[p] = math.Pi / 6 * pd[p] * pd[p] * pd[p]
		parea[p] = math.Pi / 4 * pd[p] * pd[p]
	}
	tarea := make([]float64, nt)
	tvol := make([]float64, nt)
	tsurf := make([]float64, nt)
	for t := 0; t < nt; t++ {
		tarea[t] = math.Pi / 4 * td[t] * td[t]
		tvol[t] = tarea[t] * tlen[t]
		tsurf[t] = math.Pi * td[t] * tlen[t]
	}

	sets := map[string][]float64{
		"pore.seed":           seeds,
		"pore.diameter":       pd,
		"pore.volume":         pvol,
		"pore.area":           parea,
		"throat.diameter":     td,
		"throat.length":       tlen,
		"throat.total_length": ctc,
		"throat.area":         tarea,
		"throat.volume":       tvol,
		"throat.surface_area": tsurf,
	}
	for name, vals := range sets {
		if err := net.SetProp(name, vals); err != nil {
			return err
		}
	}
	if err := net.SetScalarProp("pore.shape_factor", 1.0); err != nil {
		return err
	}
	return net.SetScalarProp("throat.shape_factor", 1.0)
}
