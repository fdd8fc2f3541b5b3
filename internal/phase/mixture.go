package phase

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/porelab/porenet/internal/network"
)

// Mixture is a multicomponent gas phase. Each component is a pure Phase;
// per-pore mole fractions are stored per component and their sum is
// maintained so it can be checked against unity.
type Mixture struct {
	*Phase
	components map[string]*Phase
	fractions  map[string][]float64
}

// NewMixture builds a mixture from component phases. Mole fractions start
// at zero and must be assigned before mixture properties are queried.
func NewMixture(net *network.Network, name string, components ...*Phase) (*Mixture, error) {
	m := &Mixture{
		Phase:      NewPhase(net, name),
		components: make(map[string]*Phase),
		fractions:  make(map[string][]float64),
	}
	for _, c := range components {
		if err := m.SetComponent(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Components returns the component names, sorted.
func (m *Mixture) Components() []string {
	names := make([]string, 0, len(m.components))
	for k := range m.components {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetComponent adds a component to the mixture.
func (m *Mixture) SetComponent(c *Phase) error {
	if c.Np() != m.np {
		return errors.Errorf("phase: component %s spans %d pores, mixture spans %d", c.Name(), c.Np(), m.np)
	}
	if _, ok := m.components[c.Name()]; ok {
		return errors.Errorf("phase: component %s already present", c.Name())
	}
	m.components[c.Name()] = c
	m.fractions[c.Name()] = make([]float64, m.np)
	return nil
}

// RemoveComponent drops a component and its mole fractions.
func (m *Mixture) RemoveComponent(name string) error {
	if _, ok := m.components[name]; !ok {
		return errors.Errorf("phase: no component %s", name)
	}
	delete(m.components, name)
	delete(m.fractions, name)
	return nil
}

// SetMoleFraction assigns a uniform mole fraction to one component.
func (m *Mixture) SetMoleFraction(name string, x float64) error {
	f, ok := m.fractions[name]
	if !ok {
		return errors.Errorf("phase: no component %s", name)
	}
	for i := range f {
		f[i] = x
	}
	return nil
}

// MoleFraction returns the per-pore mole fraction array of a component.
func (m *Mixture) MoleFraction(name string) ([]float64, bool) {
	f, ok := m.fractions[name]
	return f, ok
}

// MoleFractionSum returns the per-pore sum over all components.
func (m *Mixture) MoleFractionSum() []float64 {
	sum := make([]float64, m.np)
	for _, f := range m.fractions {
		for i, v := range f {
			sum[i] += v
		}
	}
	return sum
}

// CheckHealth reports whether mole fractions sum to unity in every pore.
func (m *Mixture) CheckHealth() bool {
	const tol = 1e-8
	for _, s := range m.MoleFractionSum() {
		if math.Abs(s-1) > tol {
			return false
		}
	}
	return true
}

// MixtureProp computes a mole-fraction-weighted per-pore property from the
// component phases, e.g. viscosity or molecular weight.
func (m *Mixture) MixtureProp(name string) ([]float64, error) {
	out := make([]float64, m.np)
	for cname, c := range m.components {
		vals, ok := c.PoreProp(name)
		if !ok {
			return nil, errors.Errorf("phase: component %s has no %s", cname, name)
		}
		f := m.fractions[cname]
		for i := range out {
			out[i] += f[i] * vals[i]
		}
	}
	return out, nil
}
