// Package config loads the service configuration from YAML or JSON files
// with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/gridwise/microgrid/core/controller"
	"github.com/gridwise/microgrid/core/cyber"
	coremetrics "github.com/gridwise/microgrid/core/metrics"
	"github.com/gridwise/microgrid/core/profile"
	"github.com/gridwise/microgrid/core/sim"
	"github.com/gridwise/microgrid/infra/mqtt"
)

// Config is the root configuration.
type Config struct {
	Assets     AssetsConfig       `json:"assets"`
	Controller controller.Config  `json:"controller"`
	Detector   cyber.Thresholds   `json:"detector"`
	Simulation sim.Config         `json:"simulation"`
	Profile    profile.Config     `json:"profile"`
	Forecast   ForecastConfig     `json:"forecast"`
	Attacks    []AttackConfig     `json:"attacks"`
	Metrics    coremetrics.Config `json:"metrics"`
	MQTT       mqtt.Config        `json:"mqtt"`
	EventLog   EventLogConfig     `json:"event_log"`
}

// Load reads the configuration at path. YAML and JSON are supported, chosen
// by file extension. Environment variables prefixed MG_ override file
// values, with __ as the nesting separator.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("MG_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "mg_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Assets.SetDefaults()
	c.Controller.SetDefaults()
	c.Detector.SetDefaults()
	c.Simulation.SetDefaults()
	c.Profile.SetDefaults()
	c.Forecast.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
	c.EventLog.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Assets.Validate(); err != nil {
		return err
	}
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	for i, a := range c.Attacks {
		if _, err := a.ToModel(); err != nil {
			return fmt.Errorf("attack %d: %w", i, err)
		}
	}
	return c.EventLog.Validate()
}
