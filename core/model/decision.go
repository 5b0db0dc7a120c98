package model

// GeneratorCommand is the actuation command issued to the diesel generator.
type GeneratorCommand int

const (
	GenHold GeneratorCommand = iota
	GenStart
	GenStop
)

// String returns a human-readable representation of the command.
func (c GeneratorCommand) String() string {
	switch c {
	case GenStart:
		return "START"
	case GenStop:
		return "STOP"
	case GenHold:
		return "HOLD"
	default:
		return "unknown"
	}
}

// Valid reports whether the command is one of the known actuation commands.
func (c GeneratorCommand) Valid() bool {
	return c == GenStart || c == GenStop || c == GenHold
}

// BatteryMode selects how the dispatch loop may use the battery this step.
type BatteryMode int

const (
	// BatteryDischarge allows the battery to cover any remaining deficit.
	BatteryDischarge BatteryMode = iota
	// BatteryProtect excludes the battery from discharge to preserve SOC.
	BatteryProtect
)

func (m BatteryMode) String() string {
	if m == BatteryProtect {
		return "PROTECT"
	}
	return "DISCHARGE"
}

// SystemState is the controller's operating state.
type SystemState int

const (
	StateNormal SystemState = iota
	StateStressed
	StateEmergency
	StateSafeMode
)

func (s SystemState) String() string {
	switch s {
	case StateNormal:
		return "NORMAL"
	case StateStressed:
		return "STRESSED"
	case StateEmergency:
		return "EMERGENCY"
	case StateSafeMode:
		return "SAFE_MODE"
	default:
		return "unknown"
	}
}

// ShedTier is the load-shedding severity level, 0 (none) to 3 (life-critical
// loads only).
type ShedTier int

const (
	ShedNone ShedTier = iota
	ShedComfort
	ShedDeferrable
	ShedAllNonCritical
)

// Decision is the controller output for a single timestep. It is immutable
// once produced and consumed by the simulation loop within the same step.
type Decision struct {
	GeneratorCmd GeneratorCommand
	BatteryMode  BatteryMode
	ShedTier     ShedTier
	State        SystemState
	SafeMode     bool
	// UseBattery and UseGenerator gate the dispatch stage. Under safe mode
	// with a depleted battery the loop locks the battery out entirely.
	UseBattery   bool
	UseGenerator bool
	// Predictive is set when an advisory forecast triggered the decision.
	Predictive bool
	Reason     string
}
