// Package scenarios loads and runs YAML-defined simulation scenarios used
// as acceptance tests for the dispatch pipeline.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gridwise/microgrid/core/model"
)

// AttackDef describes one attack campaign in a scenario file.
type AttackDef struct {
	Type       string   `yaml:"type"`
	Start      int      `yaml:"start"`
	End        *int     `yaml:"end,omitempty"`
	SpoofValue float64  `yaml:"spoof_value,omitempty"`
	Scale      *float64 `yaml:"scale,omitempty"`
	Offset     float64  `yaml:"offset,omitempty"`
}

// ToModel converts the attack definition. An omitted end means unbounded;
// an omitted scale keeps the identity transform.
func (a AttackDef) ToModel() (model.Attack, error) {
	out := model.Attack{Start: a.Start, End: -1, SpoofValue: a.SpoofValue, Scale: 1, Offset: a.Offset}
	if a.End != nil {
		out.End = *a.End
	}
	if a.Scale != nil {
		out.Scale = *a.Scale
	}
	switch a.Type {
	case "soc_spoof":
		out.Type = model.AttackSoCSpoof
	case "load_spoof":
		out.Type = model.AttackLoadSpoof
	case "solar_spoof":
		out.Type = model.AttackSolarSpoof
	default:
		return model.Attack{}, fmt.Errorf("unknown attack type %q", a.Type)
	}
	return out, nil
}

// Expected holds the summary counts a scenario must produce.
type Expected struct {
	Blackouts          int  `yaml:"blackouts"`
	CyberAlertCount    int  `yaml:"cyber_alert_count"`
	CyberFirstTimestep *int `yaml:"cyber_first_timestep,omitempty"`
	UnsafeSteps        int  `yaml:"unsafe_steps"`
	ValidatorFailures  int  `yaml:"validator_failures"`
	SafeModeSteps      int  `yaml:"safe_mode_steps"`
}

// Scenario is one acceptance case: explicit profiles, an optional attack
// campaign and the expected run summary.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	LoadKW      []float64   `yaml:"load_kw"`
	SolarKW     []float64   `yaml:"solar_kw"`
	InitialSoC  float64     `yaml:"initial_soc"`
	NoGenerator bool        `yaml:"no_generator,omitempty"`
	Forecast    bool        `yaml:"forecast,omitempty"`
	Attacks     []AttackDef `yaml:"attacks,omitempty"`
	Expected    Expected    `yaml:"expected"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.LoadKW) == 0 {
		return nil, fmt.Errorf("scenario %s: load_kw is required", sc.Name)
	}
	if len(sc.SolarKW) != len(sc.LoadKW) {
		return nil, fmt.Errorf("scenario %s: solar_kw length mismatch", sc.Name)
	}
	return &sc, nil
}
