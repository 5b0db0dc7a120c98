package assets

// SolarPV clamps an irradiance-derived power input to the array rating.
// The asset itself is stateless.
type SolarPV struct {
	MaxPowerKW float64
}

// NewSolarPV creates a PV array with the given rating.
func NewSolarPV(maxPowerKW float64) *SolarPV {
	return &SolarPV{MaxPowerKW: maxPowerKW}
}

// Power returns the usable PV output for the given available power.
func (s *SolarPV) Power(availableKW float64) float64 {
	if availableKW < 0 {
		return 0
	}
	if availableKW > s.MaxPowerKW {
		return s.MaxPowerKW
	}
	return availableKW
}
