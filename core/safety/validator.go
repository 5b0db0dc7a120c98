package safety

// Validate is the soft, tracked-but-non-fatal acceptance check run each
// step. A failing step increments a counter in the run summary and the run
// continues; it exists for post-hoc analysis, not for aborting.
func Validate(blackout, criticalServed bool, soc float64) bool {
	if blackout {
		return false
	}
	if !criticalServed {
		return false
	}
	if soc < 0.20 {
		return false
	}
	return true
}
