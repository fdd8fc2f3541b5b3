package storage

import (
	"encoding/json"
	"io"
	"os"
)

// ExportData is the JSON shape of a full run export.
type ExportData struct {
	Meta   RunMetadata `json:"meta"`
	Times  []float64   `json:"times,omitempty"`
	Fields [][]float64 `json:"fields,omitempty"`
	Field  []float64   `json:"field,omitempty"`
}

// ExportJSON writes a stored run as a single JSON document. Transient
// runs include the full series, steady runs just the final field. An
// empty path writes to stdout.
func (s *Store) ExportJSON(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	data := ExportData{Meta: *meta}
	if meta.Transient {
		times, fields, err := s.LoadSeries(runID)
		if err != nil {
			return err
		}
		data.Times, data.Fields = times, fields
	} else {
		field, err := s.LoadField(runID)
		if err != nil {
			return err
		}
		data.Field = field
	}

	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
