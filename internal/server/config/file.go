package config

import (
	"encoding/json"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/siegesync/internal/flagx"
	"github.com/dmitrijs2005/siegesync/internal/timex"
)

// FileConfig is the on-disk shape of the configuration, JSON or YAML.
// Durations accept strings such as "168h" or integer nanoseconds. Fields left
// out of the file keep their current value.
type FileConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	StoreBackend     string         `json:"store_backend" yaml:"store_backend"`
	DatabaseDSN      string         `json:"database_dsn" yaml:"database_dsn"`
	SQLitePath       string         `json:"sqlite_path" yaml:"sqlite_path"`
	S3RootUser       string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region         string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	UserTTL          timex.Duration `json:"user_ttl" yaml:"user_ttl"`
	SignalTTL        timex.Duration `json:"signal_ttl" yaml:"signal_ttl"`
	ActiveWindow     timex.Duration `json:"active_window" yaml:"active_window"`
	PurgeInterval    timex.Duration `json:"purge_interval" yaml:"purge_interval"`
	HealthInterval   timex.Duration `json:"health_interval" yaml:"health_interval"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	EnableDevRoutes  *bool          `json:"enable_dev_routes" yaml:"enable_dev_routes"`
	AdminSecret      string         `json:"admin_secret" yaml:"admin_secret"`
	LogLevel         string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c / -config (if any) into config.
// The decoder is chosen by extension (.yaml/.yml, otherwise JSON).
// An unreadable or malformed file panics: the server must not start on a
// config it could not read.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	if flagx.ConfigFormat(path) == flagx.FormatYAML {
		err = yaml.Unmarshal(data, c)
	} else {
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.StoreBackend, c.StoreBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SQLitePath, c.SQLitePath)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.AdminSecret, c.AdminSecret)
	setString(&config.LogLevel, c.LogLevel)

	setDuration(&config.UserTTL, c.UserTTL)
	setDuration(&config.SignalTTL, c.SignalTTL)
	setDuration(&config.ActiveWindow, c.ActiveWindow)
	setDuration(&config.PurgeInterval, c.PurgeInterval)
	setDuration(&config.HealthInterval, c.HealthInterval)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)

	if c.EnableDevRoutes != nil {
		config.EnableDevRoutes = *c.EnableDevRoutes
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
