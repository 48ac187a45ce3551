package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./journal.yaml"

// Load reads configuration from a YAML file (if present) and environment
// variables, then validates the result.
//
// File resolution: CONFIG_PATH env var, falling back to ./journal.yaml.
// If CONFIG_PATH is set explicitly and the file does not exist, Load
// returns an error. Without CONFIG_PATH a missing default file is fine
// and only environment variables are read.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_PATH"))
}

// LoadFrom is Load with an explicit path. An empty path behaves like an
// unset CONFIG_PATH.
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		if explicit && errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: file not found: %s", path)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}
