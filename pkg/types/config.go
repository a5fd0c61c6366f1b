package types

import "errors"

// Config selects the backend a Store is loaded from and the view options
// shared by the CLI and the HTTP host.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
	// Depth is the number of generations an ancestor tree shows: 3 or 4.
	// Zero means DefaultDepth.
	Depth int `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendJSONL  = "jsonl"
	BackendYAML   = "yaml"
)

// Supported tree depths.
const (
	DepthParents      = 3
	DepthGrandparents = 4
	DefaultDepth      = DepthParents
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDepthInvalid   = errors.New("depth must be 3 or 4")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendJSONL:  true,
	BackendYAML:   true,
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
	if c.Depth != 0 && c.Depth != DepthParents && c.Depth != DepthGrandparents {
		return ErrDepthInvalid
	}
	return nil
}

// EffectiveDepth returns Depth, or DefaultDepth when Depth is unset.
func (c Config) EffectiveDepth() int {
	if c.Depth == 0 {
		return DefaultDepth
	}
	return c.Depth
}
