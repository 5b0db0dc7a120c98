package safety

import "github.com/gridwise/microgrid/core/model"

// SafeModeActions is the hard fail-safe actuation set. It cannot be
// overridden by the controller.
type SafeModeActions struct {
	UseBattery   bool
	UseGenerator bool
	ShedTier     model.ShedTier
}

// EnforceSafeMode returns the fail-safe actions for the observed sensor
// frame: generator on, life-critical loads only, and the battery locked out
// entirely once the measured SOC drops below the absolute floor.
func EnforceSafeMode(frame model.SensorFrame) SafeModeActions {
	actions := SafeModeActions{
		UseBattery:   true,
		UseGenerator: true,
		ShedTier:     model.ShedAllNonCritical,
	}
	if frame.SoC < 0.30 {
		actions.UseBattery = false
	}
	return actions
}
