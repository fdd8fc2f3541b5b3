// Package netio reads and writes pore networks in external formats: the
// Statoil dat-file quartet consumed by pnflow, and a JSON representation
// for round-tripping networks between runs.
package netio

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/porelab/porenet/internal/network"
)

// The Statoil format stores a network in four whitespace-separated files
// with 1-based pore numbering:
//
//	<prefix>_node1.dat  Np and the physical domain size on line one, then
//	                    per pore: index, x, y, z, coordination number.
//	<prefix>_node2.dat  per pore: index, volume, radius, shape factor,
//	                    clay volume.
//	<prefix>_link1.dat  Nt on line one, then per throat: index, pore1,
//	                    pore2, radius, shape factor, total length.
//	<prefix>_link2.dat  per throat: index, pore1, pore2, pore1 length,
//	                    pore2 length, throat length, volume, clay volume.
//
// Neighbour index 0 denotes the inlet reservoir and -1 the outlet
// reservoir; throats ending there mark their internal pore with the
// pore.inlet / pore.outlet label instead of materialising a reservoir.

// throatRec carries one link1/link2 row through import. Reservoir throats
// stay in the record list (so link2 rows line up) but are not kept.
type throatRec struct {
	keep       bool
	radius     float64
	shape      float64
	totalLen   float64
	length     float64
	volume     float64
	clayVolume float64
}

// ImportStatoil loads a network from path/prefix_*.dat.
func ImportStatoil(path, prefix string) (*network.Network, error) {
	node1, err := readRows(filepath.Join(path, prefix+"_node1.dat"))
	if err != nil {
		return nil, err
	}
	if len(node1) < 1 || len(node1[0]) < 1 {
		return nil, errors.New("netio: node1 file is empty")
	}
	np := int(node1[0][0])
	if len(node1) != np+1 {
		return nil, errors.Errorf("netio: node1 declares %d pores but has %d rows", np, len(node1)-1)
	}

	coords := make([][3]float64, np)
	for _, row := range node1[1:] {
		if len(row) < 4 {
			return nil, errors.New("netio: short row in node1")
		}
		i := int(row[0]) - 1
		if i < 0 || i >= np {
			return nil, errors.Errorf("netio: pore index %d out of range in node1", i+1)
		}
		coords[i] = [3]float64{row[1], row[2], row[3]}
	}

	link1, err := readRows(filepath.Join(path, prefix+"_link1.dat"))
	if err != nil {
		return nil, err
	}
	if len(link1) < 1 {
		return nil, errors.New("netio: link1 file is empty")
	}
	nt := int(link1[0][0])
	if len(link1) != nt+1 {
		return nil, errors.Errorf("netio: link1 declares %d throats but has %d rows", nt, len(link1)-1)
	}

	recs := make([]throatRec, 0, nt)
	var conns [][2]int
	var inletPores, outletPores []int
	for _, row := range link1[1:] {
		if len(row) < 6 {
			return nil, errors.New("netio: short row in link1")
		}
		p1, p2 := int(row[1]), int(row[2])
		rec := throatRec{radius: row[3], shape: row[4], totalLen: row[5]}
		switch {
		case p1 >= 1 && p2 >= 1:
			rec.keep = true
			conns = append(conns, [2]int{p1 - 1, p2 - 1})
		case p1 == 0 || p2 == 0:
			if p := maxInt(p1, p2); p >= 1 {
				inletPores = append(inletPores, p-1)
			}
		default:
			if p := maxInt(p1, p2); p >= 1 {
				outletPores = append(outletPores, p-1)
			}
		}
		recs = append(recs, rec)
	}

	link2, err := readRows(filepath.Join(path, prefix+"_link2.dat"))
	if err != nil {
		return nil, err
	}
	for _, row := range link2 {
		if len(row) < 7 {
			return nil, errors.New("netio: short row in link2")
		}
		i := int(row[0]) - 1
		if i < 0 || i >= len(recs) {
			return nil, errors.Errorf("netio: throat index %d out of range in link2", i+1)
		}
		recs[i].length = row[5]
		recs[i].volume = row[6]
		if len(row) > 7 {
			recs[i].clayVolume = row[7]
		}
	}

	net, err := network.New(coords, conns)
	if err != nil {
		return nil, err
	}

	throatProps := map[string][]float64{
		"throat.radius":       nil,
		"throat.diameter":     nil,
		"throat.shape_factor": nil,
		"throat.total_length": nil,
		"throat.length":       nil,
		"throat.volume":       nil,
		"throat.clay_volume":  nil,
	}
	for name := range throatProps {
		throatProps[name] = make([]float64, 0, len(conns))
	}
	for _, rec := range recs {
		if !rec.keep {
			continue
		}
		throatProps["throat.radius"] = append(throatProps["throat.radius"], rec.radius)
		throatProps["throat.diameter"] = append(throatProps["throat.diameter"], 2*rec.radius)
		throatProps["throat.shape_factor"] = append(throatProps["throat.shape_factor"], rec.shape)
		throatProps["throat.total_length"] = append(throatProps["throat.total_length"], rec.totalLen)
		throatProps["throat.length"] = append(throatProps["throat.length"], rec.length)
		throatProps["throat.volume"] = append(throatProps["throat.volume"], rec.volume)
		throatProps["throat.clay_volume"] = append(throatProps["throat.clay_volume"], rec.clayVolume)
	}
	for name, vals := range throatProps {
		if err := net.SetProp(name, vals); err != nil {
			return nil, err
		}
	}

	if err := importNode2(filepath.Join(path, prefix+"_node2.dat"), net); err != nil {
		return nil, err
	}
	if len(inletPores) > 0 {
		if err := net.SetLabel("pore.inlet", inletPores); err != nil {
			return nil, err
		}
	}
	if len(outletPores) > 0 {
		if err := net.SetLabel("pore.outlet", outletPores); err != nil {
			return nil, err
		}
	}
	return net, nil
}

func importNode2(path string, net *network.Network) error {
	rows, err := readRows(path)
	if err != nil {
		return err
	}
	np := net.Np()
	vol := make([]float64, np)
	rad := make([]float64, np)
	shape := make([]float64, np)
	clay := make([]float64, np)
	for _, row := range rows {
		if len(row) < 4 {
			return errors.New("netio: short row in node2")
		}
		i := int(row[0]) - 1
		if i < 0 || i >= np {
			return errors.Errorf("netio: pore index %d out of range in node2", i+1)
		}
		vol[i], rad[i], shape[i] = row[1], row[2], row[3]
		if len(row) > 4 {
			clay[i] = row[4]
		}
	}
	dia := make([]float64, np)
	for i, r := range rad {
		dia[i] = 2 * r
	}
	for name, vals := range map[string][]float64{
		"pore.volume":       vol,
		"pore.radius":       rad,
		"pore.diameter":     dia,
		"pore.shape_factor": shape,
		"pore.clay_volume":  clay,
	} {
		if err := net.SetProp(name, vals); err != nil {
			return err
		}
	}
	return nil
}

func readRows(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "netio: opening %s", path)
	}
	defer f.Close()

	var rows [][]float64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, fl := range fields {
			v, err := strconv.ParseFloat(fl, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "netio: parsing %s", path)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, sc.Err()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
