// Package config reads the optional TOML configuration file the CLI
// accepts (spec §6). Engine semantics themselves never depend on it —
// it only assembles the few driver-level settings the CLI needs
// (ledger path, prompt string, mirror DSN).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Mirror holds the optional MySQL mirroring settings.
type Mirror struct {
	DSN string `toml:"dsn"`
}

// Config is the top-level shape of the CLI's TOML configuration file.
type Config struct {
	LedgerFile string `toml:"ledger_file"`
	Prompt     string `toml:"prompt"`
	Mirror     Mirror `toml:"mirror"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		LedgerFile: "ledgerlite.jsonl",
		Prompt:     "ledgerlite> ",
	}
}

// Load reads and decodes the TOML file at path, filling in defaults
// for any field the file leaves unset.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %q: %w", path, err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse %q: %w", path, err)
	}
	if cfg.LedgerFile == "" {
		cfg.LedgerFile = Default().LedgerFile
	}
	if cfg.Prompt == "" {
		cfg.Prompt = Default().Prompt
	}
	return cfg, nil
}
