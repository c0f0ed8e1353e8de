package types

import (
	"errors"
	"strings"
)

// Config holds backend selection and parameters for Backend.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// WithDefaults returns a copy of c with an empty Backend set to sqlite and
// surrounding whitespace trimmed, so a blank backend key in config.yaml
// selects the default backend.
func (c Config) WithDefaults() Config {
	c.Backend = strings.TrimSpace(c.Backend)
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	c.DataDir = strings.TrimSpace(c.DataDir)
	return c
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}
