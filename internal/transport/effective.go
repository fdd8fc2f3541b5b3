package transport

import (
	"math"

	"github.com/pkg/errors"

	"github.com/porelab/porenet/internal/topology"
)

// faceDelta pulls the driving force between two BC faces from the applied
// value boundary conditions.
func (t *Transport) faceDelta(inlets, outlets []int) (float64, error) {
	mean := func(pores []int) (float64, error) {
		sum, n := 0.0, 0
		for _, p := range pores {
			if math.IsNaN(t.bcValue[p]) {
				continue
			}
			sum += t.bcValue[p]
			n++
		}
		if n == 0 {
			return 0, errors.New("transport: face has no value boundary conditions")
		}
		return sum / float64(n), nil
	}
	vin, err := mean(inlets)
	if err != nil {
		return 0, err
	}
	vout, err := mean(outlets)
	if err != nil {
		return 0, err
	}
	d := math.Abs(vin - vout)
	if d == 0 {
		return 0, errors.New("transport: zero driving force between faces")
	}
	return d, nil
}

// domainGeometry resolves the cross-sectional area and length between the
// inlet and outlet faces.
func (t *Transport) domainGeometry(inlets, outlets []int) (area, length float64, err error) {
	coords := t.net.Coords()
	area, err = topology.DomainArea(coords, inlets, outlets)
	if err != nil {
		return 0, 0, err
	}
	length, uniform, err := topology.DomainLength(coords, inlets, outlets)
	if err != nil {
		return 0, 0, err
	}
	if !uniform {
		t.log.Warn("inlet-outlet distance is not uniform, using the minimum")
	}
	return area, length, nil
}

// EffectiveDiffusivity computes D_eff = N L / (A dC) from the rate through
// the inlet face of a solved diffusion problem. Units follow the network's.
func EffectiveDiffusivity(alg *Transport, inlets, outlets []int) (float64, error) {
	rate, err := alg.Rate(inlets, RateGroup)
	if err != nil {
		return 0, err
	}
	area, length, err := alg.domainGeometry(inlets, outlets)
	if err != nil {
		return 0, err
	}
	dc, err := alg.faceDelta(inlets, outlets)
	if err != nil {
		return 0, err
	}
	return math.Abs(rate[0]) * length / (area * dc), nil
}

// Permeability computes K = Q mu L / (A dP) from a solved Stokes flow
// problem, with the viscosity taken as the phase mean.
func Permeability(alg *Transport, inlets, outlets []int) (float64, error) {
	rate, err := alg.Rate(inlets, RateGroup)
	if err != nil {
		return 0, err
	}
	area, length, err := alg.domainGeometry(inlets, outlets)
	if err != nil {
		return 0, err
	}
	dp, err := alg.faceDelta(inlets, outlets)
	if err != nil {
		return 0, err
	}
	mu, ok := alg.ph.PoreProp("pore.viscosity")
	if !ok {
		return 0, errors.Errorf("transport: phase %s has no pore.viscosity", alg.ph.Name())
	}
	muMean := 0.0
	for _, m := range mu {
		muMean += m
	}
	muMean /= float64(len(mu))
	return math.Abs(rate[0]) * muMean * length / (area * dp), nil
}
