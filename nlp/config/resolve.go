package config

import (
	"errors"
	"log"
	"os"
)

// Resolve loads path over Defaults when the file exists, applies envPath and the ORACLE_*
// variables, and validates the result.
func Resolve(path, envPath string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		loaded, err := Load(path)
		switch {
		case err == nil:
			cfg = *loaded
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(envPath); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Resolve for program startup: any error is fatal.
func MustLoad(path, envPath string) *Config {
	cfg, err := Resolve(path, envPath)
	if err != nil {
		log.Fatalf("failed to load %s: %v", path, err)
	}
	return cfg
}
