package model

// AttackType identifies which sensor channel a simulated attack corrupts.
type AttackType int

const (
	AttackSoCSpoof AttackType = iota
	AttackLoadSpoof
	AttackSolarSpoof
)

func (t AttackType) String() string {
	switch t {
	case AttackSoCSpoof:
		return "soc_spoof"
	case AttackLoadSpoof:
		return "load_spoof"
	case AttackSolarSpoof:
		return "solar_spoof"
	default:
		return "unknown"
	}
}

// Attack describes a sensor-spoofing campaign active on timesteps
// [Start, End]. End < 0 means the attack never expires.
//
// SoC spoofing replaces the observed SOC with SpoofValue. Load and solar
// spoofing transform the observed reading as value*Scale+Offset; ground
// truth is untouched in all cases.
type Attack struct {
	Type       AttackType
	Start      int
	End        int
	SpoofValue float64
	Scale      float64
	Offset     float64
}

// ActiveAt reports whether the attack corrupts readings at timestep t.
func (a Attack) ActiveAt(t int) bool {
	return a.Start <= t && (a.End < 0 || t <= a.End)
}
