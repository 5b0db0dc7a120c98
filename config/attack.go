package config

import (
	"fmt"

	"github.com/gridwise/microgrid/core/model"
)

// AttackConfig describes one simulated sensor-spoofing campaign. Scale and
// End are pointers so an omitted value keeps the identity transform and an
// unbounded window respectively; a literal zero remains expressible.
type AttackConfig struct {
	Type       string   `json:"type"`
	Start      int      `json:"start"`
	End        *int     `json:"end"`
	SpoofValue float64  `json:"spoof_value"`
	Scale      *float64 `json:"scale"`
	Offset     float64  `json:"offset"`
}

// ToModel converts the attack definition to the simulation model.
func (a AttackConfig) ToModel() (model.Attack, error) {
	out := model.Attack{
		Start:      a.Start,
		End:        -1,
		SpoofValue: a.SpoofValue,
		Scale:      1,
		Offset:     a.Offset,
	}
	if a.End != nil {
		out.End = *a.End
	}
	if a.Scale != nil {
		out.Scale = *a.Scale
	}
	switch a.Type {
	case "soc_spoof":
		out.Type = model.AttackSoCSpoof
	case "load_spoof":
		out.Type = model.AttackLoadSpoof
	case "solar_spoof":
		out.Type = model.AttackSolarSpoof
	default:
		return model.Attack{}, fmt.Errorf("unknown attack type %q", a.Type)
	}
	return out, nil
}

// AttacksToModel converts a list of attack definitions, failing on the
// first invalid entry.
func AttacksToModel(defs []AttackConfig) ([]model.Attack, error) {
	out := make([]model.Attack, 0, len(defs))
	for i, def := range defs {
		a, err := def.ToModel()
		if err != nil {
			return nil, fmt.Errorf("attack %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}
