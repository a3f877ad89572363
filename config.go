package desigo

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Environment variables understood by ConfigFromEnv.
const (
	// EnvReduxRoot names the directory (or bucket prefix) that holds one
	// subdirectory per spectroscopic production.
	EnvReduxRoot = "DESI_SPECTRO_REDUX"

	// EnvSpecprod selects the production by name, e.g. "fuji".
	EnvSpecprod = "SPECPROD"

	// EnvTemplateDir points at a directory of redrock template files
	// used for model reconstruction. Optional.
	EnvTemplateDir = "RR_TEMPLATE_DIR"
)

// EnvConfig locates a spectroscopic production. ReduxRoot is the top of
// the reduction tree and Specprod the production inside it, matching the
// two environment variables the survey pipelines export.
type EnvConfig struct {
	ReduxRoot   string `env:"DESI_SPECTRO_REDUX"`
	Specprod    string `env:"SPECPROD"`
	TemplateDir string `env:"RR_TEMPLATE_DIR"`
}

// ConfigFromEnv reads the release location from the environment.
// Unset variables are left empty; call Validate to require them.
func ConfigFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that the variables the release layout needs are set.
func (c EnvConfig) Validate() error {
	if c.ReduxRoot == "" {
		return fmt.Errorf("%s: %w", EnvReduxRoot, ErrMissingEnv)
	}
	if c.Specprod == "" {
		return fmt.Errorf("%s: %w", EnvSpecprod, ErrMissingEnv)
	}
	return nil
}

// Release returns the path helper for the configured production.
func (c EnvConfig) Release() Release {
	return Release{Prod: c.Specprod}
}
