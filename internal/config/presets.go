package config

import (
	"maps"
	"slices"
)

var Presets = map[string]map[string]*Config{
	"sir": {
		"default": {
			Name:         "sir",
			Compartments: []string{"S", "I", "R"},
			Transitions: []TransitionConfig{
				{Name: "infection", From: "S", To: "I", Rate: 0.3, Pressure: []string{"I"}},
				{Name: "recovery", From: "I", To: "R", Rate: 0.1},
			},
			Initial:  map[string]float64{"S": 990, "I": 10},
			Replicas: 20, Start: 0, End: 150, Dt: 1,
		},
		"fast": {
			Name:         "sir",
			Compartments: []string{"S", "I", "R"},
			Transitions: []TransitionConfig{
				{Name: "infection", From: "S", To: "I", Rate: 0.8, Pressure: []string{"I"}},
				{Name: "recovery", From: "I", To: "R", Rate: 0.2},
			},
			Initial:  map[string]float64{"S": 9990, "I": 10},
			Replicas: 20, Start: 0, End: 60, Dt: 0.5,
		},
	},
	"seir": {
		"default": {
			Name:         "seir",
			Compartments: []string{"S", "E", "I", "R"},
			Transitions: []TransitionConfig{
				{Name: "exposure", From: "S", To: "E", Rate: 0.4, Pressure: []string{"I"}},
				{Name: "onset", From: "E", To: "I", Rate: 0.2},
				{Name: "recovery", From: "I", To: "R", Rate: 0.14},
			},
			Initial:  map[string]float64{"S": 9995, "I": 5},
			Replicas: 20, Start: 0, End: 200, Dt: 1,
		},
	},
	"sis": {
		"default": {
			Name:         "sis",
			Compartments: []string{"S", "I"},
			Transitions: []TransitionConfig{
				{Name: "infection", From: "S", To: "I", Rate: 0.25, Pressure: []string{"I"}},
				{Name: "recovery", From: "I", To: "S", Rate: 0.1},
			},
			Initial:  map[string]float64{"S": 980, "I": 20},
			Replicas: 10, Start: 0, End: 300, Dt: 1,
		},
	},
	"sird": {
		"default": {
			Name:         "sird",
			Compartments: []string{"S", "I", "R", "D"},
			Transitions: []TransitionConfig{
				{Name: "infection", From: "S", To: "I", Rate: 0.35, Pressure: []string{"I"}},
				{Name: "recovery", From: "I", To: "R", Rate: 0.1},
				{Name: "death", From: "I", To: "D", Rate: 0.005},
			},
			Initial:  map[string]float64{"S": 4990, "I": 10},
			Replicas: 20, Start: 0, End: 180, Dt: 1,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(modelPresets))
}

func ListModels() []string {
	return slices.Sorted(maps.Keys(Presets))
}
