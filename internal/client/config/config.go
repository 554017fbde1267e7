// Package config handles configuration for the siegesync CLI: defaults, an
// optional JSON file given with -c/-config, and command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the siegesync HTTP API.
//   - RequestTimeout: per-request timeout of the HTTP client.
//   - AdminSecret: HMAC secret used to mint admin tokens for populate and
//     clear. The value "-" means "prompt for it".
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	AdminSecret    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8787"
	c.RequestTimeout = 10 * time.Second
	c.AdminSecret = ""
}

// LoadConfig constructs a Config from defaults, the JSON file and flags, and
// returns the remaining positional arguments (the command and its operands).
func LoadConfig() (*Config, []string) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, []string) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	rest := parseFlags(cfg, args)
	return cfg, rest
}
