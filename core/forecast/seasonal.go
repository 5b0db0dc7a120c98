package forecast

import (
	"gonum.org/v1/gonum/stat"

	"github.com/gridwise/microgrid/core/model"
)

// SeasonalNaive predicts load as the per-slot mean of the observed history
// over a fixed period (24 steps for hourly data). It stands in for the
// trained regression model used in production deployments.
type SeasonalNaive struct {
	// Period is the seasonality in timesteps. Zero defaults to 24.
	Period int
}

// PredictNext returns the per-slot historical means for the next horizon
// timesteps. It returns nil until at least one full period of history has
// been observed.
func (s SeasonalNaive) PredictNext(history []model.LoadSample, horizon int) []float64 {
	period := s.Period
	if period <= 0 {
		period = 24
	}
	if len(history) < period || horizon <= 0 {
		return nil
	}

	bySlot := make([][]float64, period)
	for _, sample := range history {
		slot := sample.Timestep % period
		bySlot[slot] = append(bySlot[slot], sample.LoadKW)
	}

	last := history[len(history)-1].Timestep
	out := make([]float64, 0, horizon)
	for i := 1; i <= horizon; i++ {
		slot := (last + i) % period
		if len(bySlot[slot]) == 0 {
			// Gap in history for this slot; fall back to the last
			// observed load.
			out = append(out, history[len(history)-1].LoadKW)
			continue
		}
		out = append(out, stat.Mean(bySlot[slot], nil))
	}
	return out
}

// Fixed returns a canned forecast regardless of history. Used in tests and
// scenario replays.
type Fixed struct {
	Values []float64
}

// PredictNext returns a copy of the configured values truncated to horizon.
func (f Fixed) PredictNext(_ []model.LoadSample, horizon int) []float64 {
	if len(f.Values) == 0 || horizon <= 0 {
		return nil
	}
	n := horizon
	if n > len(f.Values) {
		n = len(f.Values)
	}
	out := make([]float64, n)
	copy(out, f.Values[:n])
	return out
}
