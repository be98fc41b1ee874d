package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process settings taken from the environment. CLI flags override
// them when set explicitly.
type Env struct {
	DataDir     string `env:"CHAINSIM_DATA_DIR" envDefault:".chainsim"`
	LogLevel    string `env:"CHAINSIM_LOG_LEVEL" envDefault:"info"`
	MetricsAddr string `env:"CHAINSIM_METRICS_ADDR"`
	Seed        int64  `env:"CHAINSIM_SEED"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadEnv() (Env, error) {
	var e Env
	err := ParseEnv(&e)
	return e, err
}
