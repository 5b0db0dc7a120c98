package model

// SensorFrame holds one timestep's readings as seen by the controller. The
// Secure fields model a redundant channel assumed trustworthy (e.g. the BMS
// local measurement); the primary fields may be corrupted by a simulated
// attack. A frame is built fresh each timestep and never persisted.
type SensorFrame struct {
	SoC           float64
	SoCSecure     float64
	LoadKW        float64
	LoadKWSecure  float64
	SolarKW       float64
	SolarKWSecure float64
}

// LoadSample is one observed point of true load history, fed to the
// forecaster.
type LoadSample struct {
	Timestep int
	LoadKW   float64
}
