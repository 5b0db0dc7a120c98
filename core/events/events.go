// Package events defines the payloads published on the internal event bus.
package events

import "github.com/gridwise/microgrid/core/metrics"

// StepEvent is published after every completed simulation timestep.
type StepEvent struct {
	Record metrics.StepRecord
}

// AlertEvent is published on the rising edge of the latched cyber alert.
type AlertEvent struct {
	Timestep int
	Reason   string
}

// SummaryEvent is published once when a run completes.
type SummaryEvent struct {
	Summary metrics.RunSummary
}
