// Package safety holds the formal safety gate for hospital-grade microgrid
// operation. The invariant checker runs after every controller decision,
// against the actual battery state and the actual decision, so controller
// regressions cannot pass silently.
package safety

import (
	"fmt"

	"github.com/gridwise/microgrid/core/model"
)

// ViolationError reports a non-negotiable safety invariant failure. It is
// fatal: the simulation run must halt and surface it, never swallow it.
type ViolationError struct {
	Invariant string
	Detail    string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("safety invariant %s violated: %s", e.Invariant, e.Detail)
}

// CheckInput is the snapshot the invariant checker validates for one step.
type CheckInput struct {
	SoC                float64
	GeneratorCmd       model.GeneratorCommand
	GeneratorAvailable bool
	ShedTier           model.ShedTier
	SafeMode           bool
}

// Check validates every invariant for a single timestep and returns a
// *ViolationError on the first failure.
func Check(in CheckInput) error {
	// Life-critical loads must survive. Tier 3 shedding is only legitimate
	// under SAFE_MODE while any energy remains.
	if in.ShedTier > model.ShedAllNonCritical {
		return &ViolationError{
			Invariant: "load-shed-range",
			Detail:    fmt.Sprintf("invalid load shedding tier %d", in.ShedTier),
		}
	}
	if in.SoC > 0 && in.ShedTier == model.ShedAllNonCritical && !in.SafeMode {
		return &ViolationError{
			Invariant: "critical-load",
			Detail:    "critical loads shed outside SAFE_MODE",
		}
	}

	// The battery must never be sacrificed while a generator could have
	// prevented it.
	if in.SoC < 0.30 && in.GeneratorAvailable {
		return &ViolationError{
			Invariant: "battery-floor",
			Detail: fmt.Sprintf("SOC %.3f below absolute minimum while generator was available",
				in.SoC),
		}
	}

	// The generator must anticipate a crisis, not react after it.
	if in.SoC < 0.40 && in.GeneratorAvailable && in.GeneratorCmd != model.GenStart {
		return &ViolationError{
			Invariant: "generator-anticipation",
			Detail: fmt.Sprintf("generator command %s during emergency SOC %.3f",
				in.GeneratorCmd, in.SoC),
		}
	}

	// SAFE_MODE's fail-safe guarantee is absolute.
	if in.SafeMode && in.GeneratorCmd != model.GenStart {
		return &ViolationError{
			Invariant: "safe-mode",
			Detail:    "SAFE_MODE active but generator not forced ON",
		}
	}

	// No silent or unknown actuation command.
	if !in.GeneratorCmd.Valid() {
		return &ViolationError{
			Invariant: "command-domain",
			Detail:    fmt.Sprintf("unknown generator command %d", in.GeneratorCmd),
		}
	}

	return nil
}
