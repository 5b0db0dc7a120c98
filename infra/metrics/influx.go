package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/gridwise/microgrid/core/metrics"
	"github.com/gridwise/microgrid/infra/logger"
)

// InfluxSink writes step records to an InfluxDB instance using the official
// client. One point per timestep, measurement "microgrid_step".
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	started  time.Time
}

// NewInfluxSink creates a new sink configured for the given InfluxDB
// endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
		started:  time.Now(),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing database never blocks a
// simulation run.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStep writes the step record as a single point. Step time is mapped
// onto wall-clock hours from the sink start so runs remain distinguishable.
func (s *InfluxSink) RecordStep(rec coremetrics.StepRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("microgrid_step").
		AddTag("state", rec.State.String()).
		AddTag("generator_cmd", rec.GeneratorCmd.String()).
		AddTag("cyber_alert", strconv.FormatBool(rec.CyberAlert)).
		AddTag("attack_active", strconv.FormatBool(rec.AttackActive)).
		AddField("load_kw", round3(rec.LoadKW)).
		AddField("sensed_load_kw", round3(rec.SensedLoadKW)).
		AddField("solar_kw", round3(rec.SolarKW)).
		AddField("generator_kw", round3(rec.GeneratorKW)).
		AddField("battery_kw", round3(rec.BatteryKW)).
		AddField("battery_charge_kw", round3(rec.BatteryChargeKW)).
		AddField("battery_soc", round3(rec.BatterySoC)).
		AddField("served_load_kw", round3(rec.ServedLoadKW)).
		AddField("load_shed_tier", int(rec.ShedTier)).
		AddField("blackout", rec.Blackout).
		AddField("critical_served", rec.CriticalServed).
		AddField("unsafe", rec.Unsafe).
		AddField("validator_ok", rec.ValidatorOK).
		SetTime(s.started.Add(time.Duration(rec.Time) * time.Hour))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSummary writes the aggregate run summary.
func (s *InfluxSink) RecordSummary(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("microgrid_run").
		AddTag("run_id", sum.RunID).
		AddField("timesteps", sum.Timesteps).
		AddField("blackout_count", sum.BlackoutCount).
		AddField("cyber_blackout_count", sum.CyberBlackoutCount).
		AddField("cyber_alert_count", sum.CyberAlertCount).
		AddField("cyber_alert_active_steps", sum.CyberAlertActiveSteps).
		AddField("cyber_anomaly_steps", sum.CyberAnomalySteps).
		AddField("attack_active_steps", sum.AttackActiveSteps).
		AddField("critical_lost_count", sum.CriticalLostCount).
		AddField("unsafe_count", sum.UnsafeCount).
		AddField("validator_fail_count", sum.ValidatorFailCount).
		AddField("ai_forecast_count", sum.AIForecastCount).
		AddField("ai_trigger_count", sum.AITriggerCount).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
