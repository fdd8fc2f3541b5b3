// Package phase holds thermophysical properties of the fluids occupying a
// network: per-pore property arrays for pure phases, and mixtures that
// track per-component mole fractions.
package phase

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/porelab/porenet/internal/network"
)

// Phase stores per-pore and per-throat property arrays for one fluid on
// one network. Conductance models write their results into the throat
// arrays, which is where transport algorithms look them up.
type Phase struct {
	name  string
	np    int
	nt    int
	pore  map[string][]float64
	throt map[string][]float64
}

// NewPhase creates an empty phase bound to a network's dimensions.
func NewPhase(net *network.Network, name string) *Phase {
	return &Phase{
		name:  name,
		np:    net.Np(),
		nt:    net.Nt(),
		pore:  make(map[string][]float64),
		throt: make(map[string][]float64),
	}
}

// Name returns the phase name.
func (p *Phase) Name() string { return p.name }

// Np returns the number of pores the phase spans.
func (p *Phase) Np() int { return p.np }

// SetPoreProp stores a per-pore array.
func (p *Phase) SetPoreProp(name string, vals []float64) error {
	if len(vals) != p.np {
		return errors.Errorf("phase: %s needs %d values, got %d", name, p.np, len(vals))
	}
	p.pore[name] = vals
	return nil
}

// SetPoreScalar stores the same value in every pore.
func (p *Phase) SetPoreScalar(name string, val float64) {
	vals := make([]float64, p.np)
	for i := range vals {
		vals[i] = val
	}
	p.pore[name] = vals
}

// PoreProp returns a per-pore array by name.
func (p *Phase) PoreProp(name string) ([]float64, bool) {
	v, ok := p.pore[name]
	return v, ok
}

// SetThroatProp stores a per-throat array.
func (p *Phase) SetThroatProp(name string, vals []float64) error {
	if len(vals) != p.nt {
		return errors.Errorf("phase: %s needs %d values, got %d", name, p.nt, len(vals))
	}
	p.throt[name] = vals
	return nil
}

// ThroatProp returns a per-throat array by name.
func (p *Phase) ThroatProp(name string) ([]float64, bool) {
	v, ok := p.throt[name]
	return v, ok
}

// Props lists stored property names, pore arrays first, each group sorted.
func (p *Phase) Props() []string {
	var names []string
	for k := range p.pore {
		names = append(names, k)
	}
	sort.Strings(names)
	var tnames []string
	for k := range p.throt {
		tnames = append(tnames, k)
	}
	sort.Strings(tnames)
	return append(names, tnames...)
}

// Standard conditions used by the builtin phases.
const (
	Temperature = 298.15  // K
	Pressure    = 101325  // Pa
	GasConstant = 8.31446 // J/(mol K)
)

// Water returns liquid water at standard conditions with a generic
// dissolved-solute diffusivity.
func Water(net *network.Network) *Phase {
	p := NewPhase(net, "water")
	p.SetPoreScalar("pore.temperature", Temperature)
	p.SetPoreScalar("pore.pressure", Pressure)
	p.SetPoreScalar("pore.viscosity", 8.93e-4)
	p.SetPoreScalar("pore.diffusivity", 1.0e-9)
	p.SetPoreScalar("pore.molar_density", 55500)
	p.SetPoreScalar("pore.molecular_weight", 0.01802)
	return p
}

// Air returns air at standard conditions with the O2-in-N2 diffusivity.
func Air(net *network.Network) *Phase {
	p := NewPhase(net, "air")
	p.SetPoreScalar("pore.temperature", Temperature)
	p.SetPoreScalar("pore.pressure", Pressure)
	p.SetPoreScalar("pore.viscosity", 1.84e-5)
	p.SetPoreScalar("pore.diffusivity", 2.06e-5)
	p.SetPoreScalar("pore.molar_density", Pressure/(GasConstant*Temperature))
	p.SetPoreScalar("pore.molecular_weight", 0.02896)
	return p
}
