package twin

import "time"

// Config holds digital twin registry settings.
type Config struct {
	BaseURL        string `mapstructure:"base_url" default:"http://localhost:8081/api/v3"`
	APIKey         string `mapstructure:"api_key"`
	ManufacturerID string `mapstructure:"manufacturer_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"30"`
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
