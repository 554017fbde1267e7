package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/siegesync/internal/flagx"
)

// serverFlags lists the short flags handled by parseFlags.
var serverFlags = []string{
	"-a", "-g", "-k", "-d", "-l", "-u", "-p", "-b", "-r", "-e",
	"-t", "-n", "-x", "-s", "-v",
}

// serverBoolFlags are the serverFlags that take no separate value.
var serverBoolFlags = []string{"-x"}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8787")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-k string   store backend: memory, postgres, sqlite, s3
//	-d string   PostgreSQL DSN
//	-l string   SQLite database path
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-r string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-t int      user record TTL, hours
//	-n int      signal TTL, hours
//	-x bool     enable /test/populate and /admin/clear (-x, -x=false, -x false)
//	-s string   admin JWT secret for the dev routes
//	-v string   log level
//
// Arguments are filtered with flagx.FilterArgs first, so flags owned by the
// config file loader (-c/-config) do not collide.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port of the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.StoreBackend, "k", config.StoreBackend, "store backend (memory, postgres, sqlite, s3)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SQLitePath, "l", config.SQLitePath, "SQLite database path")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	userTTL := fs.Int("t", int(config.UserTTL.Hours()), "user record TTL (in hours)")
	signalTTL := fs.Int("n", int(config.SignalTTL.Hours()), "signal TTL (in hours)")

	fs.BoolVar(&config.EnableDevRoutes, "x", config.EnableDevRoutes, "enable dev/admin routes")
	fs.StringVar(&config.AdminSecret, "s", config.AdminSecret, "admin secret")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags, serverBoolFlags...)); err != nil {
		panic(err)
	}

	// Only explicit hour flags override, so sub-hour TTLs from a file survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.UserTTL = time.Duration(*userTTL) * time.Hour
		case "n":
			config.SignalTTL = time.Duration(*signalTTL) * time.Hour
		}
	})
}
