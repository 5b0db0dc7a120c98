package assets

// DieselGenerator is the backup generation asset. It is either on or off;
// ramping and fuel dynamics are out of scope.
type DieselGenerator struct {
	MaxPowerKW float64

	on bool
}

// NewDieselGenerator creates a generator with the given rating.
func NewDieselGenerator(maxPowerKW float64) *DieselGenerator {
	return &DieselGenerator{MaxPowerKW: maxPowerKW}
}

// Start switches the generator on.
func (g *DieselGenerator) Start() { g.on = true }

// Stop switches the generator off.
func (g *DieselGenerator) Stop() { g.on = false }

// IsOn reports whether the generator is running.
func (g *DieselGenerator) IsOn() bool { return g.on }

// Power returns the power the generator can deliver right now.
func (g *DieselGenerator) Power() float64 {
	if g.on {
		return g.MaxPowerKW
	}
	return 0
}
