// Package physics computes pore-scale transport coefficients: throat
// conductances from geometry and phase properties, and linearized source
// terms for reactive transport.
package physics

import (
	"math"

	"github.com/pkg/errors"

	"github.com/porelab/porenet/internal/network"
	"github.com/porelab/porenet/internal/phase"
)

// conduit fetches the series-resistor geometry of throat t: the two pore
// half-lengths and areas plus the throat length and area. Boundary pores
// have zero diameter and contribute no resistance.
type conduit struct {
	a1, l1 float64
	at, lt float64
	a2, l2 float64
}

func conduits(net *network.Network) ([]conduit, [][2]int, error) {
	pd, ok := net.Prop("pore.diameter")
	if !ok {
		return nil, nil, errors.New("physics: pore.diameter missing, assign geometry first")
	}
	ta, ok := net.Prop("throat.area")
	if !ok {
		return nil, nil, errors.New("physics: throat.area missing, assign geometry first")
	}
	tl, _ := net.Prop("throat.length")
	conns := net.Conns()
	out := make([]conduit, len(conns))
	for t, c := range conns {
		d1, d2 := pd[c[0]], pd[c[1]]
		out[t] = conduit{
			a1: math.Pi / 4 * d1 * d1, l1: d1 / 2,
			a2: math.Pi / 4 * d2 * d2, l2: d2 / 2,
			at: ta[t], lt: tl[t],
		}
	}
	return out, conns, nil
}

// seriesConductance combines the three conduit segments as resistors in
// series, skipping segments with zero length (boundary pores, merged
// throats) which carry no resistance.
func seriesConductance(g1, gt, g2 float64) float64 {
	r := 0.0
	for _, g := range []float64{g1, gt, g2} {
		if g > 0 && !math.IsInf(g, 1) {
			r += 1 / g
		}
	}
	if r == 0 {
		return 0
	}
	return 1 / r
}

func segment(coeff, area, length float64) float64 {
	if length <= 0 {
		return math.Inf(1) // no resistance
	}
	if area <= 0 || coeff <= 0 {
		return 0
	}
	return coeff * area / length
}

// DiffusiveConductance computes throat.diffusive_conductance on the phase
// from pore.diffusivity, treating each conduit as pore-half, throat, and
// pore-half diffusive resistances in series.
func DiffusiveConductance(net *network.Network, ph *phase.Phase) error {
	cond, conns, err := conduits(net)
	if err != nil {
		return err
	}
	diff, ok := ph.PoreProp("pore.diffusivity")
	if !ok {
		return errors.Errorf("physics: phase %s has no pore.diffusivity", ph.Name())
	}
	g := make([]float64, len(cond))
	for t, cd := range cond {
		d1, d2 := diff[conns[t][0]], diff[conns[t][1]]
		dt := (d1 + d2) / 2
		g[t] = seriesConductance(
			segment(d1, cd.a1, cd.l1),
			segment(dt, cd.at, cd.lt),
			segment(d2, cd.a2, cd.l2),
		)
	}
	return ph.SetThroatProp("throat.diffusive_conductance", g)
}

// HydraulicConductance computes throat.hydraulic_conductance on the phase
// using the Hagen-Poiseuille form with shape factors,
// g = G A^2 / (8 pi mu L) per segment, combined in series.
func HydraulicConductance(net *network.Network, ph *phase.Phase) error {
	cond, conns, err := conduits(net)
	if err != nil {
		return err
	}
	mu, ok := ph.PoreProp("pore.viscosity")
	if !ok {
		return errors.Errorf("physics: phase %s has no pore.viscosity", ph.Name())
	}
	psf, _ := net.Prop("pore.shape_factor")
	tsf, _ := net.Prop("throat.shape_factor")
	shape := func(arr []float64, i int) float64 {
		if arr == nil {
			return 1.0
		}
		return arr[i]
	}
	g := make([]float64, len(cond))
	for t, cd := range cond {
		p1, p2 := conns[t][0], conns[t][1]
		mu1, mu2 := mu[p1], mu[p2]
		mut := (mu1 + mu2) / 2
		hp := func(G, area, length, visc float64) float64 {
			if length <= 0 {
				return math.Inf(1)
			}
			if area <= 0 {
				return 0
			}
			return G * area * area / (8 * math.Pi * visc * length)
		}
		g[t] = seriesConductance(
			hp(shape(psf, p1), cd.a1, cd.l1, mu1),
			hp(shape(tsf, t), cd.at, cd.lt, mut),
			hp(shape(psf, p2), cd.a2, cd.l2, mu2),
		)
	}
	return ph.SetThroatProp("throat.hydraulic_conductance", g)
}
