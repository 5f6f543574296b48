package config

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dshills/lineview/internal/config/loader"
	"github.com/dshills/lineview/internal/input/keymap"
)

// Backend names.
const (
	BackendTCell = "tcell"
	BackendANSI  = "ansi"
)

// Backends lists the accepted viewer.backend values.
var Backends = []string{BackendTCell, BackendANSI}

// LogLevels lists the accepted logging.level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Config holds all viewer settings.
type Config struct {
	Viewer  ViewerConfig  `toml:"viewer" yaml:"viewer"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Keys    KeysConfig    `toml:"keys" yaml:"keys"`

	// Watch reloads key bindings when the config file changes.
	Watch bool `toml:"watch" yaml:"watch"`
}

// ViewerConfig selects the display backend.
type ViewerConfig struct {
	// Backend is "tcell" or "ansi".
	Backend string `toml:"backend" yaml:"backend"`
}

// LoggingConfig controls the session log.
type LoggingConfig struct {
	// Level is the minimum level written ("debug", "info", "warn", "error").
	Level string `toml:"level" yaml:"level"`

	// File is the log file path. Empty disables logging, since the
	// terminal is owned by the display.
	File string `toml:"file" yaml:"file"`
}

// KeysConfig lists key names per command.
type KeysConfig struct {
	Up    []string `toml:"up" yaml:"up"`
	Down  []string `toml:"down" yaml:"down"`
	Left  []string `toml:"left" yaml:"left"`
	Right []string `toml:"right" yaml:"right"`
	Exit  []string `toml:"exit" yaml:"exit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	d := keymap.DefaultBindings()
	return &Config{
		Viewer:  ViewerConfig{Backend: BackendTCell},
		Logging: LoggingConfig{Level: "info"},
		Keys: KeysConfig{
			Up:    d[keymap.Up],
			Down:  d[keymap.Down],
			Left:  d[keymap.Left],
			Right: d[keymap.Right],
			Exit:  d[keymap.Exit],
		},
	}
}

// DefaultPath returns the user config file path,
// $XDG_CONFIG_HOME/lineview/config.toml on Linux.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lineview", "config.toml")
}

// Load returns the defaults overlaid with the file at path. A missing file
// or an empty path yields the defaults.
func Load(path string) (*Config, error) {
	return LoadWith(loader.New(), path)
}

// LoadWith is Load with a custom loader.
func LoadWith(l *loader.Loader, path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := l.LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envMapping maps environment variables to setting paths.
func envMapping() map[string]string {
	return map[string]string{
		"LINEVIEW_BACKEND":   "viewer.backend",
		"LINEVIEW_LOG_LEVEL": "logging.level",
		"LINEVIEW_LOG_FILE":  "logging.file",
		"LINEVIEW_WATCH":     "watch",
	}
}

// ApplyEnv overrides settings from LINEVIEW_* environment variables.
func (c *Config) ApplyEnv() error {
	return c.applyOverrides(loader.NewEnvLoader(envMapping()).Load())
}

func (c *Config) applyOverrides(overrides []loader.Override) error {
	for _, o := range overrides {
		if err := c.Set(o.Path, o.Value); err != nil {
			return err
		}
	}
	return nil
}

// Set assigns a setting by path from its string form.
func (c *Config) Set(path, value string) error {
	switch path {
	case "viewer.backend":
		c.Viewer.Backend = strings.ToLower(value)
	case "logging.level":
		c.Logging.Level = strings.ToLower(value)
	case "logging.file":
		c.Logging.File = value
	case "watch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &ValidationError{Path: path, Message: "expected a boolean", Value: value, Code: ErrCodeTypeMismatch}
		}
		c.Watch = b
	default:
		return &ValidationError{Path: path, Message: "unknown setting", Value: value, Code: ErrCodeInvalidEnum}
	}
	return nil
}

// Validate checks enumerated settings and key bindings.
func (c *Config) Validate() error {
	if !slices.Contains(Backends, c.Viewer.Backend) {
		return &ValidationError{
			Path:    "viewer.backend",
			Message: "must be one of " + strings.Join(Backends, ", "),
			Value:   c.Viewer.Backend,
			Code:    ErrCodeInvalidEnum,
		}
	}
	if !slices.Contains(LogLevels, c.Logging.Level) {
		return &ValidationError{
			Path:    "logging.level",
			Message: "must be one of " + strings.Join(LogLevels, ", "),
			Value:   c.Logging.Level,
			Code:    ErrCodeInvalidEnum,
		}
	}
	if _, err := c.KeyMap(); err != nil {
		return &ValidationError{
			Path:    "keys",
			Message: err.Error(),
			Value:   c.Keys,
			Code:    ErrCodeInvalidBinding,
		}
	}
	return nil
}

// Bindings returns the key names per command.
func (k KeysConfig) Bindings() map[keymap.Command][]string {
	return map[keymap.Command][]string{
		keymap.Up:    k.Up,
		keymap.Down:  k.Down,
		keymap.Left:  k.Left,
		keymap.Right: k.Right,
		keymap.Exit:  k.Exit,
	}
}

// KeyMap builds the key map described by the configuration.
func (c *Config) KeyMap() (*keymap.Map, error) {
	return keymap.New(c.Keys.Bindings())
}
