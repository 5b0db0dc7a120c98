package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridwise/microgrid/core/model"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const sampleYAML = `
assets:
  solar:
    max_power_kw: 150
  battery:
    capacity_kwh: 400
    initial_soc: 0.6
simulation:
  critical_load_kw: 25
  no_generator: true
attacks:
  - type: soc_spoof
    start: 10
    spoof_value: 0.95
  - type: load_spoof
    start: 4
    end: 8
    scale: 2.5
mqtt:
  enabled: true
  broker: tcp://localhost:1883
`

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 150.0, cfg.Assets.Solar.MaxPowerKW)
	assert.Equal(t, 400.0, cfg.Assets.Battery.CapacityKWh)
	assert.Equal(t, 0.6, cfg.Assets.Battery.InitialSoC)
	assert.Equal(t, 25.0, cfg.Simulation.CriticalLoadKW)
	assert.True(t, cfg.Simulation.NoGenerator)
	assert.True(t, cfg.MQTT.Enabled)

	// Untouched sections keep their defaults.
	assert.Equal(t, 100.0, cfg.Assets.Generator.MaxPowerKW)
	assert.Equal(t, 0.35, cfg.Controller.PreemptSoC)
	assert.Equal(t, 0.08, cfg.Detector.MaxSoCJump)
	assert.Equal(t, []float64{0, 0.10, 0.30, 1.0}, cfg.Simulation.Shedding.TierFractions)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"profile": {"steps": 24, "seed": 7}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Profile.Steps)
	assert.Equal(t, int64(7), cfg.Profile.Seed)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "x = 1")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MG_SIMULATION__CRITICAL_LOAD_KW", "42")
	path := writeConfig(t, "config.yaml", "simulation:\n  critical_load_kw: 25\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42.0, cfg.Simulation.CriticalLoadKW)
}

func TestLoadRejectsInvalidSection(t *testing.T) {
	path := writeConfig(t, "config.yaml", "assets:\n  battery:\n    initial_soc: 1.5\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "initial_soc")

	path = writeConfig(t, "config.yaml", "attacks:\n  - type: dns_spoof\n    start: 0\n")
	_, err = Load(path)
	assert.ErrorContains(t, err, "unknown attack type")
}

func TestAttackToModelDefaults(t *testing.T) {
	a, err := AttackConfig{Type: "soc_spoof", Start: 5, SpoofValue: 0.9}.ToModel()
	require.NoError(t, err)
	assert.Equal(t, model.AttackSoCSpoof, a.Type)
	assert.Equal(t, -1, a.End, "omitted end means the attack never expires")
	assert.Equal(t, 1.0, a.Scale, "omitted scale is the identity")
}

func TestAttackToModelExplicitValues(t *testing.T) {
	end := 8
	scale := 2.5
	a, err := AttackConfig{Type: "load_spoof", Start: 4, End: &end, Scale: &scale}.ToModel()
	require.NoError(t, err)
	assert.Equal(t, model.AttackLoadSpoof, a.Type)
	assert.Equal(t, 8, a.End)
	assert.Equal(t, 2.5, a.Scale)

	// A literal zero scale stays zero rather than defaulting.
	zero := 0.0
	a, err = AttackConfig{Type: "solar_spoof", Scale: &zero}.ToModel()
	require.NoError(t, err)
	assert.Equal(t, 0.0, a.Scale)
}

func TestAttacksToModelFailsFast(t *testing.T) {
	_, err := AttacksToModel([]AttackConfig{
		{Type: "soc_spoof"},
		{Type: "bogus"},
	})
	assert.ErrorContains(t, err, "attack 1")
}

func TestSheddingOverrideValidated(t *testing.T) {
	path := writeConfig(t, "config.yaml",
		"simulation:\n  shedding:\n    tier_fractions: [0, 0.5, 0.3, 1]\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "non-decreasing")
}
