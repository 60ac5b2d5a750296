package app

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFilename is the config file name inside the home directory.
const ConfigFilename = "config.toml"

// Handshake store backends.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Duration is a time.Duration written as a string such as "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds runtime options for building the app.
type Config struct {
	// Home is the data directory, e.g. $HOME/.securejoin. It is not read
	// from the file.
	Home string `toml:"-"`

	RelayURL     string   `toml:"relay_url"`
	Username     string   `toml:"username"`
	StoreBackend string   `toml:"store_backend"`
	LogLevel     string   `toml:"log_level"`
	LogFormat    string   `toml:"log_format"`
	HTTPTimeout  Duration `toml:"http_timeout"`
}

// DefaultConfig returns the settings used for keys missing from the file.
func DefaultConfig(home string) *Config {
	return &Config{
		Home:         home,
		RelayURL:     "http://127.0.0.1:8080",
		StoreBackend: BackendBolt,
		LogLevel:     "info",
		LogFormat:    "text",
		HTTPTimeout:  Duration{10 * time.Second},
	}
}

// Validate returns nil if the config is valid and otherwise an error.
func (cfg *Config) Validate() error {
	if cfg.Home == "" {
		return errors.New("config: home is not set")
	}
	if cfg.RelayURL == "" {
		return errors.New("config: relay_url is not set")
	}
	switch cfg.StoreBackend {
	case BackendBolt, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown store_backend %q", cfg.StoreBackend)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log_format %q", cfg.LogFormat)
	}
	if cfg.HTTPTimeout.Duration < 0 {
		return errors.New("config: http_timeout is negative")
	}
	return nil
}

// Load parses b over the defaults for home and validates the result.
func Load(home string, b []byte) (*Config, error) {
	cfg := DefaultConfig(home)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadHome loads <home>/config.toml. A missing file yields the defaults.
func LoadHome(home string) (*Config, error) {
	b, err := os.ReadFile(filepath.Join(home, ConfigFilename))
	if errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig(home)
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, err
	}
	return Load(home, b)
}

// Save writes cfg to <home>/config.toml.
func (cfg *Config) Save() error {
	if err := EnsureHome(cfg.Home); err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cfg.Home, ConfigFilename), buf.Bytes(), 0o600)
}
