package sector

import (
	"go.uber.org/zap"

	"github.com/sells-group/parroquia-maps/internal/geo"
	"github.com/sells-group/parroquia-maps/internal/normalize"
	"github.com/sells-group/parroquia-maps/internal/parish"
)

// Tier names the rule tier that produced a sector.
type Tier string

// Rule tiers in precedence order.
const (
	TierParish   Tier = "por_parroquia"
	TierZone     Tier = "por_zona"
	TierLatitude Tier = "lat_split"
	TierDefault  Tier = "default"
)

// Match is the outcome of classifying one parish.
type Match struct {
	Sector string `json:"sector"`
	Tier   Tier   `json:"tier"`
	Key    string `json:"key,omitempty"` // matched override key
}

// CandidateKeys returns the override keys tried for a parish, highest
// priority first.
func CandidateKeys(name, typ, zone string) []string {
	n := normalize.Name(name)
	t := normalize.Name(typ)
	z := normalize.Name(zone)
	return []string{
		n + "|TIPO:" + t,
		n + "|ZONA:" + z,
		n + "|" + t,
		n + "|" + z,
		n,
	}
}

// Assign runs the cascade for one parish. The latitude tier only applies
// to parishes whose raw Type is URBANO and whose centroid is known.
func Assign(p parish.Parish, cfg Config) Match {
	for _, key := range CandidateKeys(p.Name, p.Type, p.ZoneAdmin) {
		if s, ok := cfg.PorParroquia[key]; ok {
			return Match{Sector: s, Tier: TierParish, Key: key}
		}
	}

	zone := normalize.Name(p.ZoneAdmin)
	if s, ok := cfg.PorZona[zone]; ok {
		return Match{Sector: s, Tier: TierZone, Key: zone}
	}

	if p.Type == parish.TypeUrban && p.HasCentroid() {
		lat := p.Lat()
		switch {
		case lat <= cfg.LatSplit.SurMax:
			return Match{Sector: LabelSur, Tier: TierLatitude}
		case lat >= cfg.LatSplit.NorteMin:
			return Match{Sector: LabelNorte, Tier: TierLatitude}
		default:
			return Match{Sector: LabelCentro, Tier: TierLatitude}
		}
	}

	return Match{Sector: cfg.Default, Tier: TierDefault}
}

// WithCentroids returns a copy of parishes where every parish lacking a
// centroid gets one computed in proj. Parishes whose geometry has no
// centroid keep none.
func WithCentroids(parishes []parish.Parish, proj geo.UTM) []parish.Parish {
	out := make([]parish.Parish, len(parishes))
	copy(out, parishes)
	for i := range out {
		if out[i].HasCentroid() {
			continue
		}
		c, err := geo.Centroid(out[i].Geometry, proj)
		if err != nil {
			zap.L().Warn("sector: centroid unavailable",
				zap.String("parish", out[i].Name),
				zap.Int("index", out[i].Index),
				zap.Error(err),
			)
			continue
		}
		out[i].Centroid = c
	}
	return out
}

// Classify returns a copy of parishes with centroids computed and Sector
// set. The input slice is not modified.
func Classify(parishes []parish.Parish, cfg Config, proj geo.UTM) []parish.Parish {
	out := WithCentroids(parishes, proj)
	for i := range out {
		out[i].Sector = Assign(out[i], cfg).Sector
	}
	return out
}

// Explain classifies like Classify and also reports the tier behind each
// assignment, aligned with the returned parishes.
func Explain(parishes []parish.Parish, cfg Config, proj geo.UTM) ([]parish.Parish, []Match) {
	out := WithCentroids(parishes, proj)
	matches := make([]Match, len(out))
	for i := range out {
		matches[i] = Assign(out[i], cfg)
		out[i].Sector = matches[i].Sector
	}
	return out, matches
}
