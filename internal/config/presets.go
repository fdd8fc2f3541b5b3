package config

var Presets = map[string]map[string]*Config{
	"fickian": {
		"baseline": {
			Network: NetworkConfig{
				Generator: "cubic", Nx: 10, Ny: 10, Nz: 10, Spacing: 1e-4,
			},
			Phase:     "water",
			Algorithm: "fickian",
			BCs: []BCConfig{
				{Kind: "value", Face: "left", Value: 1.0},
				{Kind: "value", Face: "right", Value: 0.0},
			},
		},
		"thin-slab": {
			Network: NetworkConfig{
				Generator: "cubic", Nx: 30, Ny: 10, Nz: 1, Spacing: 1e-4,
			},
			Phase:     "air",
			Algorithm: "fickian",
			BCs: []BCConfig{
				{Kind: "value", Face: "left", Value: 1.0},
				{Kind: "value", Face: "right", Value: 0.0},
			},
		},
		"injection": {
			Network: NetworkConfig{
				Generator: "cubic", Nx: 15, Ny: 15, Nz: 15, Spacing: 1e-4,
			},
			Phase:     "water",
			Algorithm: "fickian",
			BCs: []BCConfig{
				{Kind: "rate", Face: "left", Value: 1e-10},
				{Kind: "value", Face: "right", Value: 0.0},
			},
		},
	},
	"stokes": {
		"permeability": {
			Network: NetworkConfig{
				Generator: "cubic", Nx: 15, Ny: 15, Nz: 15, Spacing: 1e-4,
			},
			Phase:     "water",
			Algorithm: "stokes",
			BCs: []BCConfig{
				{Kind: "value", Face: "left", Value: 200000},
				{Kind: "value", Face: "right", Value: 100000},
			},
		},
		"gas": {
			Network: NetworkConfig{
				Generator: "cubic", Nx: 15, Ny: 15, Nz: 15, Spacing: 1e-4,
			},
			Phase:     "air",
			Algorithm: "stokes",
			BCs: []BCConfig{
				{Kind: "value", Face: "left", Value: 150000},
				{Kind: "value", Face: "right", Value: 100000},
			},
		},
	},
	"reaction": {
		"consumption": {
			Network: NetworkConfig{
				Generator: "cubic", Nx: 12, Ny: 12, Nz: 12, Spacing: 1e-4,
			},
			Phase:     "water",
			Algorithm: "reaction",
			BCs: []BCConfig{
				{Kind: "value", Face: "left", Value: 1.0},
			},
			Sources: []SourceConfig{
				{Kind: "powerlaw", Face: "right", A1: -1e-10, A2: 1.0},
			},
			Solver: SolverConfig{Relaxation: 0.9},
		},
		"first-order": {
			Network: NetworkConfig{
				Generator: "cubic", Nx: 12, Ny: 12, Nz: 12, Spacing: 1e-4,
			},
			Phase:     "water",
			Algorithm: "reaction",
			BCs: []BCConfig{
				{Kind: "value", Face: "left", Value: 1.0},
			},
			Sources: []SourceConfig{
				{Kind: "linear", Face: "internal", A1: -1e-12},
			},
		},
	},
	"transient": {
		"step-change": {
			Network: NetworkConfig{
				Generator: "cubic", Nx: 20, Ny: 10, Nz: 1, Spacing: 1e-4,
			},
			Phase:     "water",
			Algorithm: "fickian",
			BCs: []BCConfig{
				{Kind: "value", Face: "left", Value: 1.0},
				{Kind: "value", Face: "right", Value: 0.0},
			},
			Transient: TransientConfig{
				Enabled: true, Scheme: "implicit",
				Dt: 0.5, Duration: 50, SaveEvery: 2,
			},
		},
		"crank-nicolson": {
			Network: NetworkConfig{
				Generator: "cubic", Nx: 20, Ny: 10, Nz: 1, Spacing: 1e-4,
			},
			Phase:     "water",
			Algorithm: "fickian",
			BCs: []BCConfig{
				{Kind: "value", Face: "left", Value: 1.0},
				{Kind: "value", Face: "right", Value: 0.0},
			},
			Transient: TransientConfig{
				Enabled: true, Scheme: "cranknicolson",
				Dt: 0.5, Duration: 50, SaveEvery: 2,
			},
		},
	},
}

// GetPreset returns a copy-by-pointer of a named preset, or nil.
func GetPreset(algorithm, name string) *Config {
	group, ok := Presets[algorithm]
	if !ok {
		return nil
	}
	return group[name]
}

// ListPresets names the presets available for an algorithm, or nil.
func ListPresets(algorithm string) []string {
	group, ok := Presets[algorithm]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}
