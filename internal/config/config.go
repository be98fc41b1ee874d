package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/chainsim/internal/chainbinom"
	"github.com/san-kum/chainsim/internal/models"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStart    = 0.0
	DefaultEnd      = 100.0
	DefaultDt       = 1.0
	DefaultReplicas = 1
)

var ErrInvalidConfig = errors.New("config: invalid model file")

type Config struct {
	Name         string             `yaml:"name"`
	Compartments []string           `yaml:"compartments"`
	Transitions  []TransitionConfig `yaml:"transitions"`
	Initial      map[string]float64 `yaml:"initial"`
	Replicas     int                `yaml:"replicas"`
	Start        float64            `yaml:"start"`
	End          float64            `yaml:"end"`
	Dt           float64            `yaml:"dt"`
	Seed         int64              `yaml:"seed"`
}

type TransitionConfig struct {
	Name     string   `yaml:"name"`
	From     string   `yaml:"from"`
	To       string   `yaml:"to,omitempty"`
	Rate     float64  `yaml:"rate"`
	Pressure []string `yaml:"pressure,omitempty"`
}

// DefaultConfig returns the "sir" preset.
func DefaultConfig() *Config {
	return GetPreset("sir", "default")
}

// Load reads a model file. Fields absent from the file keep the values of an
// empty model with the default time range and replica count.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Replicas: DefaultReplicas,
		Start:    DefaultStart,
		End:      DefaultEnd,
		Dt:       DefaultDt,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Validate checks the run settings and that the model resolves.
func (c *Config) Validate() error {
	if c.Replicas < 1 {
		return fmt.Errorf("%w: replicas must be at least 1, got %d", ErrInvalidConfig, c.Replicas)
	}
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if math.IsNaN(c.Start) || math.IsNaN(c.End) || math.IsInf(c.Start, 0) || math.IsInf(c.End, 0) {
		return fmt.Errorf("%w: time range [%g, %g) is not finite", ErrInvalidConfig, c.Start, c.End)
	}
	m, err := c.Model()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := m.InitialState(c.Initial, c.Replicas); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) Model() (*models.Model, error) {
	transitions := make([]models.Transition, len(c.Transitions))
	for i, tc := range c.Transitions {
		name := tc.Name
		if name == "" {
			name = fmt.Sprintf("%s->%s", tc.From, tc.To)
		}
		transitions[i] = models.Transition{
			Name:     name,
			From:     tc.From,
			To:       tc.To,
			Rate:     tc.Rate,
			Pressure: tc.Pressure,
		}
	}
	return models.New(c.Name, c.Compartments, transitions)
}

// InitialState replicates the initial counts across every replica.
func (c *Config) InitialState(m *models.Model) (*mat.Dense, error) {
	return m.InitialState(c.Initial, c.Replicas)
}

func (c *Config) SimConfig() chainbinom.Config {
	return chainbinom.Config{
		Start: c.Start,
		End:   c.End,
		Dt:    c.Dt,
		Seed:  c.Seed,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Compartments = append([]string(nil), c.Compartments...)
	out.Transitions = make([]TransitionConfig, len(c.Transitions))
	for i, tc := range c.Transitions {
		tc.Pressure = append([]string(nil), tc.Pressure...)
		out.Transitions[i] = tc
	}
	out.Initial = make(map[string]float64, len(c.Initial))
	for k, v := range c.Initial {
		out.Initial[k] = v
	}
	return &out
}
