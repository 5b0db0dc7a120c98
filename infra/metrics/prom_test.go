package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/gridwise/microgrid/core/metrics"
	"github.com/gridwise/microgrid/core/model"
)

func newTestPromSink(t *testing.T) (*PromSink, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	return sink, reg
}

func TestPromSinkRecordsSteps(t *testing.T) {
	sink, _ := newTestPromSink(t)

	require.NoError(t, sink.RecordStep(coremetrics.StepRecord{
		State: model.StateNormal, ValidatorOK: true, CriticalServed: true,
	}))
	require.NoError(t, sink.RecordStep(coremetrics.StepRecord{
		State: model.StateSafeMode, CyberAlert: true, Blackout: true,
	}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.steps.WithLabelValues("NORMAL", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.steps.WithLabelValues("SAFE_MODE", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.blackouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.validator))
}

func TestPromSinkAlertRisingEdge(t *testing.T) {
	sink, _ := newTestPromSink(t)

	steps := []bool{false, true, true, true, false, true}
	for _, alert := range steps {
		require.NoError(t, sink.RecordStep(coremetrics.StepRecord{
			State: model.StateNormal, CyberAlert: alert, ValidatorOK: true,
		}))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.alerts))
}

func TestPromSinkGauges(t *testing.T) {
	sink, _ := newTestPromSink(t)

	require.NoError(t, sink.RecordStep(coremetrics.StepRecord{
		State: model.StateStressed, BatterySoC: 0.42, ServedLoadKW: 93,
		ShedTier: model.ShedComfort, ValidatorOK: true,
	}))
	assert.Equal(t, 0.42, testutil.ToFloat64(sink.soc))
	assert.Equal(t, 93.0, testutil.ToFloat64(sink.served))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.shedTier))
}

func TestPromSinkRecordSummary(t *testing.T) {
	sink, _ := newTestPromSink(t)
	require.NoError(t, sink.RecordSummary(coremetrics.RunSummary{Timesteps: 48}))
	require.NoError(t, sink.RecordSummary(coremetrics.RunSummary{Timesteps: 24}))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.runsTotal))
}

// Re-registering on the same registry must reuse the existing collectors
// instead of failing, so repeated runs in one process work.
func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordStep(coremetrics.StepRecord{State: model.StateNormal, ValidatorOK: true}))
	require.NoError(t, second.RecordStep(coremetrics.StepRecord{State: model.StateNormal, ValidatorOK: true}))
	assert.Equal(t, 2.0, testutil.ToFloat64(first.steps.WithLabelValues("NORMAL", "false")))
}

type countingSink struct {
	steps     int
	summaries int
	err       error
}

func (c *countingSink) RecordStep(coremetrics.StepRecord) error {
	c.steps++
	return c.err
}

func (c *countingSink) RecordSummary(coremetrics.RunSummary) error {
	c.summaries++
	return c.err
}

func TestMultiSinkFansOut(t *testing.T) {
	a := &countingSink{}
	b := &countingSink{}
	m := NewMultiSink(a, b)

	require.NoError(t, m.RecordStep(coremetrics.StepRecord{}))
	require.NoError(t, m.RecordSummary(coremetrics.RunSummary{}))
	assert.Equal(t, 1, a.steps)
	assert.Equal(t, 1, b.steps)
	assert.Equal(t, 1, a.summaries)
	assert.Equal(t, 1, b.summaries)
}

func TestMultiSinkJoinsErrorsButReachesAllSinks(t *testing.T) {
	a := &countingSink{err: assert.AnError}
	b := &countingSink{}
	m := NewMultiSink(a, b)

	err := m.RecordStep(coremetrics.StepRecord{})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, b.steps, "later sinks still receive the record")
}
