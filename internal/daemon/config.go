// Package daemon holds configuration for the long-running serve mode.
// Config is TOML, loaded from an explicit path or ~/.reckon/config.toml.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full daemon configuration.
type Config struct {
	API    APIConfig    `toml:"api"`
	Engine EngineConfig `toml:"engine"`
	Export ExportConfig `toml:"export"`
}

// APIConfig configures the HTTP ingest surface.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"` // expose /metrics
}

// EngineConfig sizes the engine's duplicate screen.
type EngineConfig struct {
	// ExpectedTransactions sizes the Bloom filter in front of the
	// transaction history cache.
	ExpectedTransactions int     `toml:"expected_transactions"`
	BloomFPRate          float64 `toml:"bloom_fp_rate"`
}

// ExportConfig configures the optional report archive.
type ExportConfig struct {
	// Database is the sqlite file finished runs are archived to.
	// Empty disables archiving.
	Database string `toml:"database"`
}

// Addr returns the host:port to bind.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DefaultConfig returns the defaults used when no config file exists.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    7401,
			Metrics: true,
		},
		Engine: EngineConfig{
			ExpectedTransactions: 1_000_000,
			BloomFPRate:          0.001,
		},
	}
}

// DefaultPath returns the conventional config location.
func DefaultPath() string {
	if env := os.Getenv("RECKON_HOME"); env != "" {
		return filepath.Join(env, "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".reckon", "config.toml")
}

// Load reads TOML from path over the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists, otherwise (or for an empty
// path) returns the defaults.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}
