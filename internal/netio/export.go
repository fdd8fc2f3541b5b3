package netio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/porelab/porenet/internal/network"
)

// ExportStatoil writes a network as the four Statoil dat files under path.
// Pores carrying the pore.inlet / pore.outlet labels get an extra throat
// to the corresponding reservoir (neighbour 0 or -1). Missing geometry
// props fall back to zeros so a bare topology still exports.
func ExportStatoil(net *network.Network, path, prefix string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.Wrap(err, "netio: creating export directory")
	}

	np, nt := net.Np(), net.Nt()
	coords := net.Coords()
	conns := net.Conns()
	coord := net.CoordinationNumber()

	pVol := propOrZeros(net, "pore.volume", np)
	pDia := propOrZeros(net, "pore.diameter", np)
	pShape := propOrDefault(net, "pore.shape_factor", np, 1.0)
	pClay := propOrZeros(net, "pore.clay_volume", np)
	tDia := propOrZeros(net, "throat.diameter", nt)
	tShape := propOrDefault(net, "throat.shape_factor", nt, 1.0)
	tTotal := propOrZeros(net, "throat.total_length", nt)
	tLen := propOrZeros(net, "throat.length", nt)
	tVol := propOrZeros(net, "throat.volume", nt)
	tClay := propOrZeros(net, "throat.clay_volume", nt)

	inlet := net.Label("pore.inlet")
	outlet := net.Label("pore.outlet")

	var sx, sy, sz float64
	for _, c := range coords {
		sx = maxFloat(sx, c[0])
		sy = maxFloat(sy, c[1])
		sz = maxFloat(sz, c[2])
	}

	node1, err := os.Create(filepath.Join(path, prefix+"_node1.dat"))
	if err != nil {
		return errors.Wrap(err, "netio: creating node1")
	}
	defer node1.Close()
	fmt.Fprintf(node1, "%d %.6e %.6e %.6e\n", np, sx, sy, sz)
	for i, c := range coords {
		fmt.Fprintf(node1, "%d %.6e %.6e %.6e %d\n", i+1, c[0], c[1], c[2], coord[i])
	}

	node2, err := os.Create(filepath.Join(path, prefix+"_node2.dat"))
	if err != nil {
		return errors.Wrap(err, "netio: creating node2")
	}
	defer node2.Close()
	for i := 0; i < np; i++ {
		fmt.Fprintf(node2, "%d %.6e %.6e %.6e %.6e\n",
			i+1, pVol[i], pDia[i]/2, pShape[i], pClay[i])
	}

	// Reservoir throats reuse the adjacent pore's geometry.
	type resThroat struct{ pore, side int }
	var extra []resThroat
	for p := 0; p < np; p++ {
		if inlet != nil && inlet[p] {
			extra = append(extra, resThroat{p, 0})
		}
		if outlet != nil && outlet[p] {
			extra = append(extra, resThroat{p, -1})
		}
	}

	link1, err := os.Create(filepath.Join(path, prefix+"_link1.dat"))
	if err != nil {
		return errors.Wrap(err, "netio: creating link1")
	}
	defer link1.Close()
	fmt.Fprintf(link1, "%d\n", nt+len(extra))
	for t, c := range conns {
		fmt.Fprintf(link1, "%d %d %d %.6e %.6e %.6e\n",
			t+1, c[0]+1, c[1]+1, tDia[t]/2, tShape[t], tTotal[t])
	}
	for k, r := range extra {
		fmt.Fprintf(link1, "%d %d %d %.6e %.6e %.6e\n",
			nt+k+1, r.pore+1, r.side, pDia[r.pore]/2, pShape[r.pore], pDia[r.pore])
	}

	link2, err := os.Create(filepath.Join(path, prefix+"_link2.dat"))
	if err != nil {
		return errors.Wrap(err, "netio: creating link2")
	}
	defer link2.Close()
	for t, c := range conns {
		half := (tTotal[t] - tLen[t]) / 2
		fmt.Fprintf(link2, "%d %d %d %.6e %.6e %.6e %.6e %.6e\n",
			t+1, c[0]+1, c[1]+1, half, half, tLen[t], tVol[t], tClay[t])
	}
	for k, r := range extra {
		fmt.Fprintf(link2, "%d %d %d %.6e %.6e %.6e %.6e %.6e\n",
			nt+k+1, r.pore+1, r.side, pDia[r.pore]/2, 0.0, pDia[r.pore]/2, 0.0, 0.0)
	}
	return nil
}

func propOrZeros(net *network.Network, name string, n int) []float64 {
	if v, ok := net.Prop(name); ok {
		return v
	}
	return make([]float64, n)
}

func propOrDefault(net *network.Network, name string, n int, def float64) []float64 {
	if v, ok := net.Prop(name); ok {
		return v
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = def
	}
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
