// Package config loads pcbgen's TOML configuration. Defaults come from the
// embedded config.example.toml; a .env file and PCBGEN_* variables override.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "pcbgen.toml"

// Environment variables consulted by Resolve.
const (
	EnvConfig    = "PCBGEN_CONFIG"
	EnvLogLevel  = "PCBGEN_LOG_LEVEL"
	EnvOutputDir = "PCBGEN_OUTPUT_DIR"
	EnvDatabase  = "PCBGEN_DATABASE"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Output   OutputConfig   `toml:"output"`
	KiCad    KiCadConfig    `toml:"kicad"`
	Plot     PlotConfig     `toml:"plot"`
	Log      LogConfig      `toml:"log"`
	Database DatabaseConfig `toml:"database"`
	Watch    WatchConfig    `toml:"watch"`
}

// OutputConfig selects where and what `build` writes.
type OutputConfig struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"`
}

// KiCadConfig holds .kicad_pcb header values.
type KiCadConfig struct {
	Version   int     `toml:"version"`
	Generator string  `toml:"generator"`
	Thickness float64 `toml:"thickness"`
	Margin    float64 `toml:"margin"`
}

// PlotConfig is the placement plot size in centimetres.
type PlotConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Debounce returns the watch debounce as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// LoadConfig reads a TOML file on top of the defaults, so a file only
// needs the keys it changes.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	md, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile writes the embedded example config to path.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Resolve loads .env from the working directory if present, then the
// config file (explicit path, $PCBGEN_CONFIG, or pcbgen.toml when it
// exists), then applies environment overrides. The returned string is the
// file that was read, empty when running on defaults.
func Resolve(path string) (*Config, string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("failed to load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath
	}

	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil || explicit {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, "", err
		}
		config = loaded
	} else {
		path = ""
	}

	config.applyEnv()
	return config, path, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}
	if v, ok := os.LookupEnv(EnvDatabase); ok {
		c.Database.Path = v
	}
}
