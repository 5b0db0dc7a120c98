// Package forecast defines the advisory load forecaster consumed by the
// controller. Forecasts are advisory only: an absent engine or an empty
// forecast must never fail a run.
package forecast

import "github.com/gridwise/microgrid/core/model"

// Engine predicts upcoming load from observed history.
type Engine interface {
	// PredictNext returns up to horizon load predictions in kW for the
	// timesteps following the history. An empty slice means no forecast is
	// available.
	PredictNext(history []model.LoadSample, horizon int) []float64
}
