package metric

// Shade is the resolved presentation of one parish in a metric view.
type Shade struct {
	Value *float64 `json:"value"`
	Label string   `json:"label,omitempty"`
	Color string   `json:"color"`
}

// Shade colors v with the palette; a missing or non-numeric value gets
// the palette's no-data color and keeps only its text label.
func (p Palette) Shade(v Value, ok bool) Shade {
	if !ok || !v.HasValue {
		s := Shade{Color: p.Missing}
		if ok {
			s.Label = v.Label
		}
		return s
	}
	pct := v.Pct
	return Shade{Value: &pct, Label: v.Label, Color: p.Color(pct)}
}

// GrowthShade resolves the growth color of a parish code.
func GrowthShade(t GrowthTable, code string) Shade {
	v, ok := t.Lookup(code)
	return GrowthPalette.Shade(v, ok)
}

// PopulationShade resolves the population color of a parish name.
func PopulationShade(t PopulationTable, name string) Shade {
	v, ok := t.Lookup(name)
	return PopulationPalette.Shade(v, ok)
}
