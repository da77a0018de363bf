package catalog

import "time"

// Config holds dataspace connector management API settings.
type Config struct {
	BaseURL        string `mapstructure:"base_url" default:"http://localhost:9193/management/v3"`
	APIKey         string `mapstructure:"api_key"`
	DataAddressURL string `mapstructure:"data_address_url" default:"http://localhost:8080/api/submodel"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"30"`
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
