package netio

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/porelab/porenet/internal/network"
)

// networkJSON is the on-disk shape of a network. Labels are stored as
// index lists rather than masks to keep the files readable.
type networkJSON struct {
	Coords [][3]float64         `json:"coords"`
	Conns  [][2]int             `json:"conns"`
	Props  map[string][]float64 `json:"props,omitempty"`
	Labels map[string][]int     `json:"labels,omitempty"`
}

// SaveJSON writes the complete network, props and labels included.
func SaveJSON(net *network.Network, path string) error {
	doc := networkJSON{
		Coords: net.Coords(),
		Conns:  net.Conns(),
		Props:  make(map[string][]float64),
		Labels: make(map[string][]int),
	}
	for _, name := range net.Props() {
		v, _ := net.Prop(name)
		doc.Props[name] = v
	}
	for _, name := range net.Labels() {
		mask := net.Label(name)
		var locs []int
		for i, on := range mask {
			if on {
				locs = append(locs, i)
			}
		}
		doc.Labels[name] = locs
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "netio: creating json file")
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(doc), "netio: encoding network")
}

// LoadJSON reads a network written by SaveJSON.
func LoadJSON(path string) (*network.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "netio: opening json file")
	}
	defer f.Close()

	var doc networkJSON
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "netio: decoding network")
	}

	net, err := network.New(doc.Coords, doc.Conns)
	if err != nil {
		return nil, err
	}
	for name, vals := range doc.Props {
		if err := net.SetProp(name, vals); err != nil {
			return nil, errors.Wrapf(err, "netio: prop %s", name)
		}
	}
	for name, locs := range doc.Labels {
		if err := net.SetLabel(name, locs); err != nil {
			return nil, errors.Wrapf(err, "netio: label %s", name)
		}
	}
	return net, nil
}
