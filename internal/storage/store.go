// Package storage persists solved runs on the filesystem. Each run gets
// its own directory under the base dir holding metadata.json, the final
// field as field.csv and, for transient runs, the full series as
// series.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Algorithm string             `json:"algorithm"`
	Quantity  string             `json:"quantity"`
	Phase     string             `json:"phase"`
	Np        int                `json:"np"`
	Nt        int                `json:"nt"`
	Timestamp time.Time          `json:"timestamp"`
	Transient bool               `json:"transient"`
	Dt        float64            `json:"dt,omitempty"`
	Duration  float64            `json:"duration,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Save writes a steady run: metadata plus the final field. The run ID is
// "<algorithm>-<short uuid>".
func (s *Store) Save(meta RunMetadata, field []float64) (string, error) {
	runID := fmt.Sprintf("%s-%s", meta.Algorithm, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	if err := writeMetadata(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeField(filepath.Join(runDir, "field.csv"), field); err != nil {
		return "", err
	}
	return runID, nil
}

// SaveSeries writes a transient run: metadata, the final field, and the
// full time series.
func (s *Store) SaveSeries(meta RunMetadata, times []float64, fields [][]float64) (string, error) {
	if len(fields) == 0 {
		return "", errors.New("storage: empty series")
	}
	meta.Transient = true
	runID, err := s.Save(meta, fields[len(fields)-1])
	if err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"time"}
	for i := range fields[0] {
		header = append(header, fmt.Sprintf("p%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for i, field := range fields {
		row := []string{strconv.FormatFloat(times[i], 'g', 8, 64)}
		for _, v := range field {
			row = append(row, strconv.FormatFloat(v, 'g', 8, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadField reads the final field of a run.
func (s *Store) LoadField(runID string) ([]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "field.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	field := make([]float64, 0, len(records))
	for i, record := range records {
		if i == 0 || len(record) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		field = append(field, v)
	}
	return field, nil
}

// LoadSeries reads the time series of a transient run.
func (s *Store) LoadSeries(runID string) ([]float64, [][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, [][]float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	fields := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		field := make([]float64, 0, len(record)-1)
		for _, cell := range record[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			field = append(field, v)
		}
		times = append(times, t)
		fields = append(fields, field)
	}
	return times, fields, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeField(path string, field []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"pore", "value"}); err != nil {
		return err
	}
	for i, v := range field {
		if err := w.Write([]string{strconv.Itoa(i), strconv.FormatFloat(v, 'g', 8, 64)}); err != nil {
			return err
		}
	}
	return nil
}
