package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitMB caps request bodies, including batch uploads.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"32"`
	// ShutdownSeconds bounds how long shutdown waits for running batches.
	ShutdownSeconds int `mapstructure:"shutdown_seconds" default:"30"`
}

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 4 * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}

// ShutdownTimeout returns the graceful shutdown window.
func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.ShutdownSeconds) * time.Second
}
