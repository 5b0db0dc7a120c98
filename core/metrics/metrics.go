// Package metrics defines the observability records emitted by the
// simulation loop and the sink interfaces that consume them.
package metrics

import "github.com/gridwise/microgrid/core/model"

// StepRecord is the structured result of one simulation timestep.
type StepRecord struct {
	Time            int                    `json:"time"`
	LoadKW          float64                `json:"load_kw"`
	SensedLoadKW    float64                `json:"sensed_load_kw"`
	SolarKW         float64                `json:"solar_kw"`
	SensedSolarKW   float64                `json:"sensed_solar_kw"`
	GeneratorKW     float64                `json:"generator_kw"`
	BatteryKW       float64                `json:"battery_kw"`
	BatteryChargeKW float64                `json:"battery_charge_kw"`
	BatterySoC      float64                `json:"battery_soc"`
	GeneratorCmd    model.GeneratorCommand `json:"-"`
	GeneratorOn     bool                   `json:"generator_on"`
	State           model.SystemState      `json:"-"`
	CyberAlert      bool                   `json:"cyber_alert"`
	CyberAnomalyNow bool                   `json:"cyber_anomaly_now"`
	CyberReason     string                 `json:"cyber_reason,omitempty"`
	AttackActive    bool                   `json:"attack_active"`
	AttackTypes     string                 `json:"attack_types,omitempty"`
	AIForecast      bool                   `json:"ai_forecast"`
	AITriggered     bool                   `json:"ai_triggered"`
	ForecastNextKW  float64                `json:"ai_forecast_next_kw,omitempty"`
	ForecastAvgKW   float64                `json:"ai_forecast_avg_kw,omitempty"`
	ShedTier        model.ShedTier         `json:"load_shed_level"`
	ServedLoadKW    float64                `json:"served_load_kw"`
	Blackout        bool                   `json:"blackout"`
	CriticalServed  bool                   `json:"critical_served"`
	Unsafe          bool                   `json:"unsafe"`
	ValidatorOK     bool                   `json:"validator_ok"`
	Reason          string                 `json:"reason,omitempty"`

	// String forms of the enum fields, kept alongside for JSON consumers.
	GeneratorCmdStr string `json:"generator_cmd"`
	StateStr        string `json:"state"`
}

// Finalize fills the string forms from the enum fields.
func (r *StepRecord) Finalize() {
	r.GeneratorCmdStr = r.GeneratorCmd.String()
	r.StateStr = r.State.String()
}

// RunSummary aggregates one simulation run.
type RunSummary struct {
	RunID                 string `json:"run_id"`
	Timesteps             int    `json:"timesteps"`
	BlackoutCount         int    `json:"blackout_count"`
	CyberBlackoutCount    int    `json:"cyber_blackout_count"`
	CyberAlertCount       int    `json:"cyber_alert_count"`
	CyberAlertActiveSteps int    `json:"cyber_alert_active_steps"`
	CyberAnomalySteps     int    `json:"cyber_anomaly_steps"`
	AttackActiveSteps     int    `json:"attack_active_steps"`
	// CyberFirstTimestep is the step of the first alert trigger, or -1 if
	// no alert fired during the run.
	CyberFirstTimestep int `json:"cyber_first_timestep"`
	CriticalLostCount  int `json:"critical_lost_count"`
	UnsafeCount        int `json:"unsafe_count"`
	ValidatorFailCount int `json:"validator_fail_count"`
	AIForecastCount    int `json:"ai_forecast_count"`
	AITriggerCount     int `json:"ai_trigger_count"`
}

// StepRecorder consumes per-step records.
type StepRecorder interface {
	RecordStep(rec StepRecord) error
}

// SummaryRecorder consumes the aggregate run summary.
type SummaryRecorder interface {
	RecordSummary(sum RunSummary) error
}

// MetricsSink records simulation results for observability purposes.
type MetricsSink interface {
	StepRecorder
	SummaryRecorder
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordStep(StepRecord) error    { return nil }
func (NopSink) RecordSummary(RunSummary) error { return nil }
