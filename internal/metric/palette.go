// Package metric joins growth and population tables to parishes and maps
// their values to choropleth colors.
package metric

import (
	"fmt"
	"math"
)

// No-data colors.
const (
	GrowthMissing     = "transparent"
	PopulationMissing = "#CCCCCC"
)

// LegendEntry is one bin of a legend.
type LegendEntry struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// Legend describes a palette for the renderer.
type Legend struct {
	Title   string        `json:"title"`
	Entries []LegendEntry `json:"entries"`
}

// Palette maps a percentage to the color of the first bin whose upper
// bound exceeds it; values at or above the last threshold take the last
// color.
type Palette struct {
	Title      string
	Thresholds []float64 // ascending, len(Colors)-1
	Colors     []string
	Ranges     []string // legend label per color
	Missing    string
}

var blues = []string{"#E6F2FF", "#CCE5FF", "#99CCFF", "#66B3FF", "#3399FF", "#0070C0"}

// GrowthPalette bins annual growth rates.
var GrowthPalette = Palette{
	Title:      "Tasa de crecimiento anual población",
	Thresholds: []float64{-1.64, -0.46, 1.18, 2.44, 3.32},
	Colors:     blues,
	Ranges:     []string{"-2.82 - -1.64", "-1.63 - -0.46", "-0.45 - 1.18", "1.18 - 2.44", "2.44 - 3.32", "3.32 - 4.93"},
	Missing:    GrowthMissing,
}

// PopulationPalette bins each parish's share of the total population.
var PopulationPalette = Palette{
	Title:      "Población parroquias",
	Thresholds: []float64{0.5, 1, 2, 5, 10},
	Colors:     blues,
	Ranges:     []string{"0.00% - 0.50%", "0.50% - 1.00%", "1.00% - 2.00%", "2.00% - 5.00%", "5.00% - 10.00%", "10.00% - 35.00%"},
	Missing:    PopulationMissing,
}

// Color returns the bin color of pct.
func (p Palette) Color(pct float64) string {
	for i, t := range p.Thresholds {
		if pct < t {
			return p.Colors[i]
		}
	}
	return p.Colors[len(p.Colors)-1]
}

// Legend returns the palette legend.
func (p Palette) Legend() Legend {
	entries := make([]LegendEntry, len(p.Colors))
	for i, c := range p.Colors {
		entries[i] = LegendEntry{Color: c, Label: p.Ranges[i]}
	}
	return Legend{Title: p.Title, Entries: entries}
}

// Percent scales fractions in [-1, 1] to percentages and leaves other
// values untouched.
func Percent(v float64) float64 {
	if v >= -1 && v <= 1 {
		return v * 100
	}
	return v
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(pct float64) string {
	if math.IsNaN(pct) {
		return ""
	}
	return fmt.Sprintf("%.2f%%", pct)
}
