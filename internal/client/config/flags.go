package config

import (
	"flag"
	"io"
	"time"
)

// parseFlags populates cfg from command-line flags and returns the
// positional arguments that follow them.
//
// Supported flags:
//
//	-c, -config string  config file (consumed by parseJson)
//	-u string           server base URL
//	-t int              request timeout in seconds
//	-s string           admin secret, "-" to prompt
//
// Parsing stops at the first positional argument, so flags go before the
// command. It panics on malformed flags.
func parseFlags(cfg *Config, args []string) []string {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configFile string
	fs.StringVar(&configFile, "c", "", "path to config file (short)")
	fs.StringVar(&configFile, "config", "", "path to config file")
	fs.StringVar(&cfg.ServerURL, "u", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.AdminSecret, "s", cfg.AdminSecret, "admin secret, - to prompt")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return fs.Args()
}
