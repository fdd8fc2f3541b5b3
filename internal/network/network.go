package network

import (
	"sort"

	"github.com/pkg/errors"
)

// Label set modes for Pores and Throats queries.
const (
	ModeUnion        = "union"
	ModeIntersection = "intersection"
	ModeNot          = "not"
)

// Network is a pore network: node coordinates, throat connections, and a
// flat store of named property and label arrays. Property names carry a
// "pore." or "throat." prefix which determines their required length, the
// same convention the transport algorithms use to look up conductances.
type Network struct {
	coords [][3]float64
	conns  [][2]int
	props  map[string][]float64
	labels map[string][]bool
}

// New builds a network from coordinates and throat connections. Connections
// are normalised: each pair sorted low-high, self loops and duplicates
// dropped, out-of-range endpoints rejected.
func New(coords [][3]float64, conns [][2]int) (*Network, error) {
	np := len(coords)
	seen := make(map[[2]int]bool, len(conns))
	clean := make([][2]int, 0, len(conns))
	for _, c := range conns {
		if c[0] > c[1] {
			c[0], c[1] = c[1], c[0]
		}
		if c[0] == c[1] {
			continue
		}
		if c[0] < 0 || c[1] >= np {
			return nil, errors.Errorf("network: connection %v out of range for %d pores", c, np)
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		clean = append(clean, c)
	}
	return &Network{
		coords: coords,
		conns:  clean,
		props:  make(map[string][]float64),
		labels: make(map[string][]bool),
	}, nil
}

// Np returns the number of pores.
func (n *Network) Np() int { return len(n.coords) }

// Nt returns the number of throats.
func (n *Network) Nt() int { return len(n.conns) }

// Coords returns the pore coordinate array. The slice is shared, not copied.
func (n *Network) Coords() [][3]float64 { return n.coords }

// Conns returns the throat connection array. The slice is shared, not copied.
func (n *Network) Conns() [][2]int { return n.conns }

func (n *Network) lengthFor(name string) (int, error) {
	switch {
	case isPoreKey(name):
		return n.Np(), nil
	case isThroatKey(name):
		return n.Nt(), nil
	}
	return 0, errors.Errorf("network: property %q must start with pore. or throat.", name)
}

// SetProp stores a property array, validating its length against the prefix.
func (n *Network) SetProp(name string, vals []float64) error {
	want, err := n.lengthFor(name)
	if err != nil {
		return err
	}
	if len(vals) != want {
		return errors.Errorf("network: %s needs %d values, got %d", name, want, len(vals))
	}
	n.props[name] = vals
	return nil
}

// SetScalarProp stores a property with the same value in every location.
func (n *Network) SetScalarProp(name string, val float64) error {
	want, err := n.lengthFor(name)
	if err != nil {
		return err
	}
	vals := make([]float64, want)
	for i := range vals {
		vals[i] = val
	}
	n.props[name] = vals
	return nil
}

// Prop returns a property array by name.
func (n *Network) Prop(name string) ([]float64, bool) {
	v, ok := n.props[name]
	return v, ok
}

// Props lists the stored property names, sorted.
func (n *Network) Props() []string {
	names := make([]string, 0, len(n.props))
	for k := range n.props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetLabel marks the given locations under a label, creating it on demand.
func (n *Network) SetLabel(name string, locs []int) error {
	want, err := n.lengthFor(name)
	if err != nil {
		return err
	}
	arr, ok := n.labels[name]
	if !ok {
		arr = make([]bool, want)
		n.labels[name] = arr
	}
	for _, i := range locs {
		if i < 0 || i >= want {
			return errors.Errorf("network: label %s index %d out of range", name, i)
		}
		arr[i] = true
	}
	return nil
}

// Label returns the boolean mask for a label, or nil if absent.
func (n *Network) Label(name string) []bool { return n.labels[name] }

// Labels lists the stored label names, sorted.
func (n *Network) Labels() []string {
	names := make([]string, 0, len(n.labels))
	for k := range n.labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Pores returns pore indices matching the given labels combined under mode:
// union (any label), intersection (all labels), or not (none of them).
// With no labels all pores are returned.
func (n *Network) Pores(labels []string, mode string) ([]int, error) {
	return n.query(labels, mode, true)
}

// Throats is the throat-indexed counterpart of Pores.
func (n *Network) Throats(labels []string, mode string) ([]int, error) {
	return n.query(labels, mode, false)
}

func (n *Network) query(labels []string, mode string, pores bool) ([]int, error) {
	size := n.Nt()
	if pores {
		size = n.Np()
	}
	if len(labels) == 0 {
		all := make([]int, size)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	masks := make([][]bool, 0, len(labels))
	for _, l := range labels {
		key := l
		if !isPoreKey(key) && !isThroatKey(key) {
			if pores {
				key = "pore." + key
			} else {
				key = "throat." + key
			}
		}
		m, ok := n.labels[key]
		if !ok {
			return nil, errors.Errorf("network: unknown label %q", key)
		}
		masks = append(masks, m)
	}
	var out []int
	for i := 0; i < size; i++ {
		hit := 0
		for _, m := range masks {
			if m[i] {
				hit++
			}
		}
		switch mode {
		case ModeUnion, "":
			if hit > 0 {
				out = append(out, i)
			}
		case ModeIntersection:
			if hit == len(masks) {
				out = append(out, i)
			}
		case ModeNot:
			if hit == 0 {
				out = append(out, i)
			}
		default:
			return nil, errors.Errorf("network: unknown label mode %q", mode)
		}
	}
	return out, nil
}

// FindNeighborPores returns the pores directly connected to pore p.
func (n *Network) FindNeighborPores(p int) []int {
	var out []int
	for _, c := range n.conns {
		if c[0] == p {
			out = append(out, c[1])
		} else if c[1] == p {
			out = append(out, c[0])
		}
	}
	sort.Ints(out)
	return out
}

// FindNeighborThroats returns the throats incident on pore p.
func (n *Network) FindNeighborThroats(p int) []int {
	var out []int
	for t, c := range n.conns {
		if c[0] == p || c[1] == p {
			out = append(out, t)
		}
	}
	return out
}

// CoordinationNumber returns the number of throats per pore.
func (n *Network) CoordinationNumber() []int {
	z := make([]int, n.Np())
	for _, c := range n.conns {
		z[c[0]]++
		z[c[1]]++
	}
	return z
}

func isPoreKey(name string) bool {
	return len(name) > 5 && name[:5] == "pore."
}

func isThroatKey(name string) bool {
	return len(name) > 7 && name[:7] == "throat."
}
