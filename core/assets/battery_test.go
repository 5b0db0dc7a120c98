package assets

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatteryChargeClampsToRate(t *testing.T) {
	b := NewBattery(300, 0.5, 50, 50)
	got := b.Charge(80, 1)
	assert.Equal(t, 50.0, got)
	assert.InDelta(t, 0.5+50.0/300, b.SoC(), 1e-12)
}

func TestBatteryChargeClampsToHeadroom(t *testing.T) {
	b := NewBattery(100, 0.9, 50, 50)
	got := b.Charge(50, 1)
	assert.InDelta(t, 10.0, got, 1e-12)
	assert.Equal(t, 1.0, b.SoC())

	// Full battery absorbs nothing.
	assert.Equal(t, 0.0, b.Charge(50, 1))
}

func TestBatteryDischargeRespectsFloor(t *testing.T) {
	b := NewBattery(300, 0.32, 50, 50)
	got := b.Discharge(50, 1, 0.30)
	assert.InDelta(t, 6.0, got, 1e-12) // (0.32-0.30)*300 kWh over one hour
	assert.InDelta(t, 0.30, b.SoC(), 1e-12)

	assert.Equal(t, 0.0, b.Discharge(50, 1, 0.30))
}

func TestBatteryDischargeClampsToRate(t *testing.T) {
	b := NewBattery(300, 1.0, 50, 50)
	got := b.Discharge(120, 1, 0)
	assert.Equal(t, 50.0, got)
}

func TestBatteryZeroDurationIsNoop(t *testing.T) {
	b := NewBattery(300, 0.5, 50, 50)
	assert.Equal(t, 0.0, b.Charge(50, 0))
	assert.Equal(t, 0.0, b.Discharge(50, 0, 0))
	assert.Equal(t, 0.5, b.SoC())
}

func TestBatterySoCAlwaysInRange(t *testing.T) {
	b := NewBattery(10, 0.5, 100, 100)
	for i := 0; i < 20; i++ {
		b.Charge(100, 1)
		assert.LessOrEqual(t, b.SoC(), 1.0)
	}
	for i := 0; i < 20; i++ {
		b.Discharge(100, 1, 0)
		assert.GreaterOrEqual(t, b.SoC(), 0.0)
	}
}

// SOC bookkeeping must be exactly reproducible from the charge/discharge
// power sequence.
func TestBatterySoCIntegrationRoundTrip(t *testing.T) {
	b := NewBattery(300, 0.5, 50, 50)
	type delta struct {
		charge, discharge float64
	}
	var trace []delta
	var socs []float64

	steps := []struct {
		charge, discharge float64
	}{
		{0, 40}, {0, 50}, {20, 0}, {0, 10}, {50, 0}, {0, 60},
	}
	for _, st := range steps {
		d := delta{}
		if st.charge > 0 {
			d.charge = b.Charge(st.charge, 1)
		}
		if st.discharge > 0 {
			d.discharge = b.Discharge(st.discharge, 1, 0.30)
		}
		trace = append(trace, d)
		socs = append(socs, b.SoC())
	}

	soc := 0.5
	for i, d := range trace {
		soc += (d.charge - d.discharge) / 300
		if math.Abs(soc-socs[i]) > 1e-9 {
			t.Fatalf("step %d: reconstructed SOC %.12f != recorded %.12f", i, soc, socs[i])
		}
	}
}

func TestSolarClamp(t *testing.T) {
	pv := NewSolarPV(130)
	assert.Equal(t, 0.0, pv.Power(-5))
	assert.Equal(t, 70.0, pv.Power(70))
	assert.Equal(t, 130.0, pv.Power(400))
}

func TestGeneratorStartStop(t *testing.T) {
	g := NewDieselGenerator(100)
	assert.False(t, g.IsOn())
	assert.Equal(t, 0.0, g.Power())
	g.Start()
	assert.True(t, g.IsOn())
	assert.Equal(t, 100.0, g.Power())
	g.Stop()
	assert.False(t, g.IsOn())
}
