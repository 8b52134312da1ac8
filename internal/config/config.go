// Package config loads the optional dnp3snoop configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the TOML file schema. Command line flags override any value
// set here.
type Config struct {
	// CtxMax caps live reassembly contexts per dissector instance.
	CtxMax int `toml:"ctx_max"`

	// BufLen sizes the rolling input buffer and the per-context raw
	// frame accumulator.
	BufLen int `toml:"buf_len"`

	// Port is the TCP port treated as DNP3 when reading captures.
	Port int `toml:"port"`

	// Raw adds frame hex dumps to the output.
	Raw bool `toml:"raw"`

	// Quiet limits output to application layer events.
	Quiet bool `toml:"quiet"`

	// Verbose enables diagnostic logging.
	Verbose bool `toml:"verbose"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		CtxMax: 16,
		BufLen: 4096,
		Port:   20000,
	}
}

// Load reads a TOML config file, filling unset values with defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("error locating config file: %w", err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file: %w", err)
	}

	if cfg.CtxMax <= 0 || cfg.BufLen < 512 {
		return cfg, fmt.Errorf("invalid sizing: ctx_max=%d buf_len=%d", cfg.CtxMax, cfg.BufLen)
	}

	return cfg, nil
}
