package metrics

import (
	"errors"

	coremetrics "github.com/gridwise/microgrid/core/metrics"
)

// MultiSink fans records out to several sinks and joins their errors.
type MultiSink struct {
	sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordStep forwards the record to every sink.
func (m *MultiSink) RecordStep(rec coremetrics.StepRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordStep(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordSummary forwards the summary to every sink.
func (m *MultiSink) RecordSummary(sum coremetrics.RunSummary) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordSummary(sum); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
