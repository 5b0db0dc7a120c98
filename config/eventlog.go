package config

import "fmt"

// EventLogConfig defines the cyber event log sink.
type EventLogConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
	// Truncate discards the previous log at run start.
	Truncate bool `json:"truncate"`
}

// SetDefaults applies sane defaults.
func (c *EventLogConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "logs/cyber_events.txt"
	}
}

// Validate checks mandatory fields.
func (c EventLogConfig) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("event log path is required")
	}
	return nil
}

// ForecastConfig enables the advisory load forecaster.
type ForecastConfig struct {
	Enabled bool `json:"enabled"`
	// Period is the seasonality of the naive forecaster in timesteps.
	Period int `json:"period"`
}

// SetDefaults applies sane defaults.
func (c *ForecastConfig) SetDefaults() {
	if c.Period == 0 {
		c.Period = 24
	}
}
