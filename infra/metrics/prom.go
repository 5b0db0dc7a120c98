package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/gridwise/microgrid/core/metrics"
	"github.com/gridwise/microgrid/core/model"
)

// PromSink records simulation steps in Prometheus metrics.
type PromSink struct {
	steps     *prometheus.CounterVec
	blackouts prometheus.Counter
	alerts    prometheus.Counter
	validator prometheus.Counter
	soc       prometheus.Gauge
	served    prometheus.Gauge
	shedTier  prometheus.Gauge
	runsTotal prometheus.Counter
	deficitKW prometheus.Histogram
	lastAlert bool
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "microgrid_steps_total",
			Help: "Total simulated timesteps by controller state",
		}, []string{"state", "safe_mode"}),
		blackouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "microgrid_blackout_steps_total",
			Help: "Timesteps with supply below served load",
		}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "microgrid_cyber_alert_triggers_total",
			Help: "Rising edges of the latched cyber alert",
		}),
		validator: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "microgrid_validator_failures_total",
			Help: "Timesteps failing the soft acceptance validation",
		}),
		soc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "microgrid_battery_soc",
			Help: "Battery state of charge after dispatch",
		}),
		served: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "microgrid_served_load_kw",
			Help: "Served load after shedding",
		}),
		shedTier: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "microgrid_load_shed_tier",
			Help: "Active load shedding tier",
		}),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "microgrid_runs_total",
			Help: "Completed simulation runs",
		}),
		deficitKW: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "microgrid_supply_deficit_kw",
			Help:    "Unserved power per timestep",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	collectors := []prometheus.Collector{
		s.steps, s.blackouts, s.alerts, s.validator,
		s.soc, s.served, s.shedTier, s.runsTotal, s.deficitKW,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				s.steps = are.ExistingCollector.(*prometheus.CounterVec)
			case 1:
				s.blackouts = are.ExistingCollector.(prometheus.Counter)
			case 2:
				s.alerts = are.ExistingCollector.(prometheus.Counter)
			case 3:
				s.validator = are.ExistingCollector.(prometheus.Counter)
			case 4:
				s.soc = are.ExistingCollector.(prometheus.Gauge)
			case 5:
				s.served = are.ExistingCollector.(prometheus.Gauge)
			case 6:
				s.shedTier = are.ExistingCollector.(prometheus.Gauge)
			case 7:
				s.runsTotal = are.ExistingCollector.(prometheus.Counter)
			case 8:
				s.deficitKW = are.ExistingCollector.(prometheus.Histogram)
			}
		}
	}
	return s, nil
}

// RecordStep updates the per-step metrics.
func (s *PromSink) RecordStep(rec coremetrics.StepRecord) error {
	s.steps.WithLabelValues(rec.State.String(), strconv.FormatBool(rec.State == model.StateSafeMode)).Inc()
	if rec.Blackout {
		s.blackouts.Inc()
	}
	if rec.CyberAlert && !s.lastAlert {
		s.alerts.Inc()
	}
	s.lastAlert = rec.CyberAlert
	if !rec.ValidatorOK {
		s.validator.Inc()
	}
	s.soc.Set(rec.BatterySoC)
	s.served.Set(rec.ServedLoadKW)
	s.shedTier.Set(float64(rec.ShedTier))
	supply := rec.SolarKW + rec.GeneratorKW + rec.BatteryKW
	if deficit := rec.ServedLoadKW - supply; deficit > 0 {
		s.deficitKW.Observe(deficit)
	}
	return nil
}

// RecordSummary counts the completed run.
func (s *PromSink) RecordSummary(coremetrics.RunSummary) error {
	s.runsTotal.Inc()
	return nil
}
