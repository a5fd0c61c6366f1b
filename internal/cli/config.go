package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/lineage/internal/paths"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys.
	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyDepth    = "depth"
	cfgKeyLogLevel = "log_level"
	cfgKeyAddr     = "addr"

	defaultBackend  = types.BackendSQLite
	defaultLogLevel = "warn"
	defaultAddr     = "127.0.0.1:8080"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# lineage configuration

# Backend selection: sqlite, jsonl or yaml
backend: sqlite

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# Ancestor tree depth: 3 (parents) or 4 (grandparents)
depth: 3

# Log level: debug, info, warn or error
log_level: warn

# Listen address for "lineage serve"
addr: 127.0.0.1:8080
`

// settings is the resolved configuration of one command run.
type settings struct {
	configDir string
	config    types.Config
	logLevel  string
	addr      string
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. Backend, depth, log
// level and address may also come from LINEAGE_* environment variables.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyDepth, types.DefaultDepth)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyAddr, defaultAddr)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("LINEAGE")
	for _, key := range []string{cfgKeyBackend, cfgKeyDepth, cfgKeyLogLevel, cfgKeyAddr} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// resolve merges flags over config.yaml and validates the result.
func (f *rootFlags) resolve() (settings, error) {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return settings{}, sysError("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return settings{}, sysError("load config: %w", err)
	}
	dataDir, err := paths.ResolveDataDir(f.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, sysError("resolve data dir: %w", err)
	}

	s := settings{
		configDir: configDir,
		config: types.Config{
			Backend: v.GetString(cfgKeyBackend),
			DataDir: dataDir,
			Depth:   v.GetInt(cfgKeyDepth),
		},
		logLevel: v.GetString(cfgKeyLogLevel),
		addr:     v.GetString(cfgKeyAddr),
	}
	if f.backend != "" {
		s.config.Backend = f.backend
	}
	if f.depth != 0 {
		s.config.Depth = f.depth
	}
	if f.logLevel != "" {
		s.logLevel = f.logLevel
	}
	if err := s.config.Validate(); err != nil {
		return settings{}, userError("invalid configuration: %w", err)
	}
	return s, nil
}

// newLogger builds the text logger used by every command.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, userError("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
