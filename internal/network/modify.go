package network

import (
	"github.com/pkg/errors"
)

// Trim removes the given pores, all throats touching them, and reindexes
// every property and label array to match.
func (n *Network) Trim(pores []int) error {
	np := n.Np()
	drop := make([]bool, np)
	for _, p := range pores {
		if p < 0 || p >= np {
			return errors.Errorf("network: trim index %d out of range", p)
		}
		drop[p] = true
	}

	remap := make([]int, np)
	kept := 0
	for p := 0; p < np; p++ {
		if drop[p] {
			remap[p] = -1
			continue
		}
		remap[p] = kept
		kept++
	}

	newCoords := make([][3]float64, 0, kept)
	for p := 0; p < np; p++ {
		if !drop[p] {
			newCoords = append(newCoords, n.coords[p])
		}
	}

	keepT := make([]bool, n.Nt())
	newConns := make([][2]int, 0, n.Nt())
	for t, c := range n.conns {
		if drop[c[0]] || drop[c[1]] {
			continue
		}
		keepT[t] = true
		newConns = append(newConns, [2]int{remap[c[0]], remap[c[1]]})
	}

	for name, vals := range n.props {
		if isPoreKey(name) {
			n.props[name] = filterFloats(vals, drop, true)
		} else {
			n.props[name] = filterFloats(vals, keepT, false)
		}
	}
	for name, mask := range n.labels {
		if isPoreKey(name) {
			n.labels[name] = filterBools(mask, drop, true)
		} else {
			n.labels[name] = filterBools(mask, keepT, false)
		}
	}

	n.coords = newCoords
	n.conns = newConns
	return nil
}

// TrimThroats removes the given throats, leaving pores in place.
func (n *Network) TrimThroats(throats []int) error {
	nt := n.Nt()
	drop := make([]bool, nt)
	for _, t := range throats {
		if t < 0 || t >= nt {
			return errors.Errorf("network: trim throat index %d out of range", t)
		}
		drop[t] = true
	}
	newConns := make([][2]int, 0, nt)
	for t, c := range n.conns {
		if !drop[t] {
			newConns = append(newConns, c)
		}
	}
	for name, vals := range n.props {
		if isThroatKey(name) {
			n.props[name] = filterFloats(vals, drop, true)
		}
	}
	for name, mask := range n.labels {
		if isThroatKey(name) {
			n.labels[name] = filterBools(mask, drop, true)
		}
	}
	n.conns = newConns
	return nil
}

// AddPores appends pores, extending pore arrays with zeros, and returns
// the new indices.
func (n *Network) AddPores(coords [][3]float64) []int {
	start := n.Np()
	n.coords = append(n.coords, coords...)
	for name, vals := range n.props {
		if isPoreKey(name) {
			n.props[name] = append(vals, make([]float64, len(coords))...)
		}
	}
	for name, mask := range n.labels {
		if isPoreKey(name) {
			n.labels[name] = append(mask, make([]bool, len(coords))...)
		}
	}
	idx := make([]int, len(coords))
	for i := range idx {
		idx[i] = start + i
	}
	return idx
}

// AddThroats appends throats, extending throat arrays with zeros, and
// returns the new indices. Pairs are normalised low-high.
func (n *Network) AddThroats(conns [][2]int) ([]int, error) {
	np := n.Np()
	start := n.Nt()
	for _, c := range conns {
		if c[0] > c[1] {
			c[0], c[1] = c[1], c[0]
		}
		if c[0] < 0 || c[1] >= np || c[0] == c[1] {
			return nil, errors.Errorf("network: invalid throat %v", c)
		}
		n.conns = append(n.conns, c)
	}
	for name, vals := range n.props {
		if isThroatKey(name) {
			n.props[name] = append(vals, make([]float64, len(conns))...)
		}
	}
	for name, mask := range n.labels {
		if isThroatKey(name) {
			n.labels[name] = append(mask, make([]bool, len(conns))...)
		}
	}
	idx := make([]int, len(conns))
	for i := range idx {
		idx[i] = start + i
	}
	return idx, nil
}

// AddReservoirPore adds a single zero-volume pore connected to all the
// given pores and labels it. The reservoir sits beyond the centroid of the
// target pores, offset outward along the axis of largest spread from the
// domain centre. Used when exporting to pnflow-style formats, which expect
// explicit inlet/outlet reservoirs.
func (n *Network) AddReservoirPore(pores []int, label string) (int, error) {
	if len(pores) == 0 {
		return -1, errors.New("network: no pores given for reservoir")
	}
	var centroid, domain [3]float64
	for _, p := range pores {
		for d := 0; d < 3; d++ {
			centroid[d] += n.coords[p][d]
		}
	}
	for d := 0; d < 3; d++ {
		centroid[d] /= float64(len(pores))
	}
	for _, c := range n.coords {
		for d := 0; d < 3; d++ {
			domain[d] += c[d]
		}
	}
	for d := 0; d < 3; d++ {
		domain[d] /= float64(n.Np())
	}
	// Push outward along the axis where the face sits furthest off-centre.
	axis, best := 0, 0.0
	for d := 0; d < 3; d++ {
		if off := centroid[d] - domain[d]; off*off > best*best {
			axis, best = d, off
		}
	}
	pos := centroid
	offset := best
	if offset == 0 {
		offset = 1
	}
	pos[axis] += offset

	newP := n.AddPores([][3]float64{pos})[0]
	conns := make([][2]int, len(pores))
	for i, p := range pores {
		conns[i] = [2]int{p, newP}
	}
	ts, err := n.AddThroats(conns)
	if err != nil {
		return -1, err
	}
	if err := n.SetLabel("pore."+label, []int{newP}); err != nil {
		return -1, err
	}
	if err := n.SetLabel("throat."+label, ts); err != nil {
		return -1, err
	}
	return newP, nil
}

func filterFloats(vals []float64, mask []bool, maskIsDrop bool) []float64 {
	out := vals[:0:0]
	for i, v := range vals {
		if i < len(mask) && mask[i] == maskIsDrop {
			continue
		}
		out = append(out, v)
	}
	return out
}

func filterBools(vals []bool, mask []bool, maskIsDrop bool) []bool {
	out := vals[:0:0]
	for i, v := range vals {
		if i < len(mask) && mask[i] == maskIsDrop {
			continue
		}
		out = append(out, v)
	}
	return out
}
