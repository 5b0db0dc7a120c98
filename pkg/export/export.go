// Package export writes simulation results in CSV and JSON formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/gridwise/microgrid/core/metrics"
)

// WriteJSON writes the step records to w as a JSON array.
func WriteJSON(w io.Writer, records []metrics.StepRecord) error {
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

// WriteSummaryJSON writes the run summary to w.
func WriteSummaryJSON(w io.Writer, sum metrics.RunSummary) error {
	enc := json.NewEncoder(w)
	return enc.Encode(sum)
}

var csvHeader = []string{
	"time", "load_kw", "sensed_load_kw", "solar_kw", "sensed_solar_kw",
	"generator_kw", "battery_kw", "battery_charge_kw", "battery_soc",
	"generator_cmd", "state", "cyber_alert", "cyber_anomaly_now",
	"attack_active", "attack_types", "ai_forecast", "ai_triggered",
	"load_shed_level", "served_load_kw", "blackout", "critical_served",
	"unsafe", "validator_ok", "reason",
}

// WriteCSV writes the step records to w with a fixed header row.
func WriteCSV(w io.Writer, records []metrics.StepRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			strconv.Itoa(r.Time),
			formatKW(r.LoadKW),
			formatKW(r.SensedLoadKW),
			formatKW(r.SolarKW),
			formatKW(r.SensedSolarKW),
			formatKW(r.GeneratorKW),
			formatKW(r.BatteryKW),
			formatKW(r.BatteryChargeKW),
			strconv.FormatFloat(r.BatterySoC, 'f', 4, 64),
			r.GeneratorCmd.String(),
			r.State.String(),
			strconv.FormatBool(r.CyberAlert),
			strconv.FormatBool(r.CyberAnomalyNow),
			strconv.FormatBool(r.AttackActive),
			r.AttackTypes,
			strconv.FormatBool(r.AIForecast),
			strconv.FormatBool(r.AITriggered),
			strconv.Itoa(int(r.ShedTier)),
			formatKW(r.ServedLoadKW),
			strconv.FormatBool(r.Blackout),
			strconv.FormatBool(r.CriticalServed),
			strconv.FormatBool(r.Unsafe),
			strconv.FormatBool(r.ValidatorOK),
			r.Reason,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatKW(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
