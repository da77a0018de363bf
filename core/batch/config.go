package batch

import "time"

// Config holds batch execution settings.
type Config struct {
	// Workers bounds the rows processed concurrently per batch.
	Workers int `mapstructure:"workers" default:"8"`
	// RowTimeoutSeconds bounds all remote calls of one row.
	RowTimeoutSeconds int `mapstructure:"row_timeout_seconds" default:"120"`
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return 8
	}
	return c.Workers
}

func (c Config) rowTimeout() time.Duration {
	if c.RowTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.RowTimeoutSeconds) * time.Second
}
