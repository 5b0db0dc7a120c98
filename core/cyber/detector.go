// Package cyber implements rule-based detection of sensor spoofing on the
// microgrid's primary measurement channels.
package cyber

import (
	"math"

	"github.com/gridwise/microgrid/core/model"
)

// Thresholds groups the tunable detection limits.
type Thresholds struct {
	// MaxSoCJump is the largest plausible SOC change between two
	// consecutive observations.
	MaxSoCJump float64 `json:"max_soc_jump"`
	// SoCMismatch is the absolute tolerance between the primary SOC
	// reading and the secure redundant channel.
	SoCMismatch float64 `json:"soc_mismatch"`
	// LoadMismatchFrac and SolarMismatchFrac are relative tolerances vs
	// the secure meters, with a 1 kW floor on the denominator.
	LoadMismatchFrac  float64 `json:"load_mismatch_frac"`
	SolarMismatchFrac float64 `json:"solar_mismatch_frac"`
	// MaxLoadJumpKW and MaxSolarJumpKW catch gross step changes.
	MaxLoadJumpKW  float64 `json:"max_load_jump_kw"`
	MaxSolarJumpKW float64 `json:"max_solar_jump_kw"`
}

// SetDefaults fills unset limits with the deployment defaults.
func (t *Thresholds) SetDefaults() {
	if t.MaxSoCJump == 0 {
		t.MaxSoCJump = 0.08
	}
	if t.SoCMismatch == 0 {
		t.SoCMismatch = 0.05
	}
	if t.LoadMismatchFrac == 0 {
		t.LoadMismatchFrac = 0.10
	}
	if t.SolarMismatchFrac == 0 {
		t.SolarMismatchFrac = 0.15
	}
	if t.MaxLoadJumpKW == 0 {
		t.MaxLoadJumpKW = 500
	}
	if t.MaxSolarJumpKW == 0 {
		t.MaxSolarJumpKW = 800
	}
}

// DefaultThresholds returns the deployment defaults.
func DefaultThresholds() Thresholds {
	var t Thresholds
	t.SetDefaults()
	return t
}

// socStepSlack absorbs float rounding when the SOC jump threshold sits
// exactly on the battery's achievable per-step delta.
const socStepSlack = 1e-9

// Detector evaluates sensor frames for spoofing indicators. It is stateful
// across calls: it remembers the last observed value of each signal for jump
// detection and latches the alert once any anomaly is seen.
//
// The latch is monotonic. It never self-clears; Reset models explicit
// operator action.
type Detector struct {
	thresholds   Thresholds
	socStepLimit float64

	alertActive bool
	anomalyNow  bool
	reason      string

	lastSoC   float64
	lastLoad  float64
	lastSolar float64
	hasLast   bool
}

// NewDetector creates a detector with the given thresholds. Unset limits
// fall back to the defaults.
func NewDetector(t Thresholds) *Detector {
	t.SetDefaults()
	return &Detector{thresholds: t}
}

// SetSoCStepLimit raises the SOC jump threshold to the largest change the
// battery can physically produce in one step. Full-rate dispatch is
// legitimate and must never read as spoofing; only changes beyond what the
// hardware can do are anomalous.
func (d *Detector) SetSoCStepLimit(limit float64) { d.socStepLimit = limit }

// AlertActive reports whether the latched alert is set.
func (d *Detector) AlertActive() bool { return d.alertActive }

// AnomalyNow reports whether the most recent Evaluate call detected an
// anomaly, independent of the latch.
func (d *Detector) AnomalyNow() bool { return d.anomalyNow }

// Reason returns the human-readable cause of the latched alert, or "" if no
// anomaly has been detected yet.
func (d *Detector) Reason() string { return d.reason }

// Reset clears the latch and the observation history. In a real deployment
// this corresponds to an operator acknowledging and clearing the alert.
func (d *Detector) Reset() {
	d.alertActive = false
	d.anomalyNow = false
	d.reason = ""
	d.hasLast = false
}

// Evaluate inspects one frame and returns the latched alert state. Detection
// rules run in fixed order per signal; the first match wins. Last-seen
// values update from the observed (possibly corrupted) reading regardless of
// the outcome, so jump detection is always relative to what was last seen,
// not ground truth.
func (d *Detector) Evaluate(frame model.SensorFrame) bool {
	anomaly, reason := d.inspect(frame)

	d.lastSoC = frame.SoC
	d.lastLoad = frame.LoadKW
	d.lastSolar = frame.SolarKW

	d.anomalyNow = anomaly
	if anomaly {
		d.alertActive = true
		d.reason = reason
	}
	d.hasLast = true
	return d.alertActive
}

func (d *Detector) inspect(frame model.SensorFrame) (bool, string) {
	t := d.thresholds
	maxSoCJump := t.MaxSoCJump
	if d.socStepLimit+socStepSlack > maxSoCJump {
		maxSoCJump = d.socStepLimit + socStepSlack
	}

	// SOC channel.
	switch {
	case frame.SoC < 0 || frame.SoC > 1:
		return true, "SOC sensor spoofing detected (out-of-range)"
	case math.Abs(frame.SoC-frame.SoCSecure) > t.SoCMismatch:
		return true, "SOC sensor spoofing detected (mismatch vs secure channel)"
	case d.hasLast && math.Abs(frame.SoC-d.lastSoC) > maxSoCJump:
		return true, "SOC anomaly detected (implausible step change)"
	}

	// Load channel.
	switch {
	case frame.LoadKW < 0:
		return true, "Load sensor spoofing detected (negative)"
	case relMismatch(frame.LoadKW, frame.LoadKWSecure) > t.LoadMismatchFrac:
		return true, "Load sensor spoofing detected (mismatch vs secure channel)"
	case d.hasLast && math.Abs(frame.LoadKW-d.lastLoad) > t.MaxLoadJumpKW:
		return true, "Load anomaly detected (implausible step change)"
	}

	// Solar channel.
	switch {
	case frame.SolarKW < 0:
		return true, "Solar sensor spoofing detected (negative)"
	case relMismatch(frame.SolarKW, frame.SolarKWSecure) > t.SolarMismatchFrac:
		return true, "Solar sensor spoofing detected (mismatch vs secure channel)"
	case d.hasLast && math.Abs(frame.SolarKW-d.lastSolar) > t.MaxSolarJumpKW:
		return true, "Solar anomaly detected (implausible step change)"
	}

	return false, ""
}

// relMismatch returns the relative deviation of observed vs the secure
// reading, with a 1 kW floor so near-zero secure values do not blow up the
// ratio.
func relMismatch(observed, secure float64) float64 {
	denom := math.Abs(secure)
	if denom < 1 {
		denom = 1
	}
	return math.Abs(observed-secure) / denom
}
