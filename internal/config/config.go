package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSpacing    = 1e-4
	DefaultShape      = 10
	DefaultDt         = 0.1
	DefaultDuration   = 10.0
	DefaultRelaxation = 1.0
	DefaultTolerance  = 1e-8
	DefaultMaxIters   = 100
)

type Config struct {
	Network   NetworkConfig   `yaml:"network"`
	Phase     string          `yaml:"phase"`
	Algorithm string          `yaml:"algorithm"`
	BCs       []BCConfig      `yaml:"bcs"`
	Sources   []SourceConfig  `yaml:"sources"`
	Transient TransientConfig `yaml:"transient"`
	Solver    SolverConfig    `yaml:"solver"`
	Seed      int64           `yaml:"seed"`
}

type NetworkConfig struct {
	// Generator is cubic or random; File overrides both with a JSON or
	// Statoil network on disk.
	Generator string  `yaml:"generator"`
	Nx        int     `yaml:"nx"`
	Ny        int     `yaml:"ny"`
	Nz        int     `yaml:"nz"`
	Spacing   float64 `yaml:"spacing"`
	Points    int     `yaml:"points"`
	Rmax      float64 `yaml:"rmax"`
	File      string  `yaml:"file"`
	Prefix    string  `yaml:"prefix"`
}

type BCConfig struct {
	// Kind is value or rate, Face a pore label like left or right.
	Kind  string  `yaml:"kind"`
	Face  string  `yaml:"face"`
	Value float64 `yaml:"value"`
}

type SourceConfig struct {
	// Kind is linear or powerlaw, Face the pore label to bind to.
	Kind string  `yaml:"kind"`
	Face string  `yaml:"face"`
	A1   float64 `yaml:"a1"`
	A2   float64 `yaml:"a2"`
	A3   float64 `yaml:"a3"`
}

type TransientConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Scheme    string  `yaml:"scheme"`
	Dt        float64 `yaml:"dt"`
	Duration  float64 `yaml:"duration"`
	SaveEvery int     `yaml:"save_every"`
	Initial   float64 `yaml:"initial"`
}

type SolverConfig struct {
	// Kind is auto, cg or dense.
	Kind       string  `yaml:"kind"`
	Tolerance  float64 `yaml:"tolerance"`
	MaxIters   int     `yaml:"max_iters"`
	Relaxation float64 `yaml:"relaxation"`
}

func DefaultConfig() *Config {
	return &Config{
		Network: NetworkConfig{
			Generator: "cubic",
			Nx:        DefaultShape, Ny: DefaultShape, Nz: DefaultShape,
			Spacing: DefaultSpacing,
			Rmax:    2 * DefaultSpacing,
			Prefix:  "network",
		},
		Phase:     "water",
		Algorithm: "fickian",
		BCs: []BCConfig{
			{Kind: "value", Face: "left", Value: 1.0},
			{Kind: "value", Face: "right", Value: 0.0},
		},
		Transient: TransientConfig{
			Scheme:    "implicit",
			Dt:        DefaultDt,
			Duration:  DefaultDuration,
			SaveEvery: 1,
		},
		Solver: SolverConfig{
			Kind:       "auto",
			Tolerance:  DefaultTolerance,
			MaxIters:   DefaultMaxIters,
			Relaxation: DefaultRelaxation,
		},
	}
}

// Normalize backfills zero-valued fields with defaults so presets can
// stay terse.
func (c *Config) Normalize() {
	if c.Network.Spacing == 0 {
		c.Network.Spacing = DefaultSpacing
	}
	if c.Network.Rmax == 0 {
		c.Network.Rmax = 2 * c.Network.Spacing
	}
	if c.Network.Prefix == "" {
		c.Network.Prefix = "network"
	}
	if c.Solver.Kind == "" {
		c.Solver.Kind = "auto"
	}
	if c.Solver.Tolerance == 0 {
		c.Solver.Tolerance = DefaultTolerance
	}
	if c.Solver.MaxIters == 0 {
		c.Solver.MaxIters = DefaultMaxIters
	}
	if c.Solver.Relaxation == 0 {
		c.Solver.Relaxation = DefaultRelaxation
	}
	if c.Transient.Scheme == "" {
		c.Transient.Scheme = "implicit"
	}
	if c.Transient.Dt == 0 {
		c.Transient.Dt = DefaultDt
	}
	if c.Transient.Duration == 0 {
		c.Transient.Duration = DefaultDuration
	}
	if c.Transient.SaveEvery == 0 {
		c.Transient.SaveEvery = 1
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
