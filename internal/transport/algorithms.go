package transport

import (
	"github.com/porelab/porenet/internal/network"
	"github.com/porelab/porenet/internal/phase"
)

// FickianDiffusion solves steady diffusion for pore.concentration using
// throat.diffusive_conductance.
func FickianDiffusion(net *network.Network, ph *phase.Phase, opts ...Option) *Transport {
	return New(net, ph, Settings{
		Quantity:    "pore.concentration",
		Conductance: "throat.diffusive_conductance",
		Cache:       true,
	}, opts...)
}

// StokesFlow solves creeping flow for pore.pressure using
// throat.hydraulic_conductance.
func StokesFlow(net *network.Network, ph *phase.Phase, opts ...Option) *Transport {
	return New(net, ph, Settings{
		Quantity:    "pore.pressure",
		Conductance: "throat.hydraulic_conductance",
		Cache:       true,
	}, opts...)
}
