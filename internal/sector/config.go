// Package sector assigns one sector label to every parish through a
// cascade of rule tiers: parish overrides, zone overrides, latitude bands
// for urban parishes and a default.
package sector

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/parroquia-maps/internal/normalize"
)

// Built-in configuration used when no rule file exists.
const (
	DefaultSurMax   = -0.22
	DefaultNorteMin = -0.15
	DefaultLabel    = "OTROS"
)

// Directional labels of the latitude tier.
const (
	LabelSur    = "SUR"
	LabelNorte  = "NORTE"
	LabelCentro = "CENTRO"
)

// LatSplit partitions urban parishes into south, center and north bands.
type LatSplit struct {
	SurMax   float64 `yaml:"sur_max" json:"sur_max"`
	NorteMin float64 `yaml:"norte_min" json:"norte_min"`
}

// Config is a sector rule set. Keys of PorParroquia and PorZona are stored
// canonicalized; build it with LoadConfig, ParseConfig or NewConfig.
type Config struct {
	PorParroquia map[string]string `yaml:"por_parroquia" json:"por_parroquia"`
	PorZona      map[string]string `yaml:"por_zona" json:"por_zona"`
	LatSplit     LatSplit          `yaml:"lat_split" json:"lat_split"`
	Default      string            `yaml:"default" json:"default"`
}

// Override is one raw override entry of a rule file.
type Override struct {
	Key    string
	Sector string
}

// Overrides keeps override entries in document order.
type Overrides []Override

// UnmarshalYAML implements yaml.Unmarshaler over the mapping node so that
// entries keep the order they have in the file.
func (o *Overrides) UnmarshalYAML(n *yaml.Node) error {
	if n.ShortTag() == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return eris.Errorf("sector: line %d: overrides must be a mapping", n.Line)
	}
	out := make(Overrides, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var key, value string
		if err := n.Content[i].Decode(&key); err != nil {
			return eris.Wrapf(err, "sector: line %d: override key", n.Content[i].Line)
		}
		if err := n.Content[i+1].Decode(&value); err != nil {
			return eris.Wrapf(err, "sector: line %d: override %q", n.Content[i+1].Line, key)
		}
		out = append(out, Override{Key: key, Sector: value})
	}
	*o = out
	return nil
}

// fileConfig mirrors the rule file; pointers tell absent keys from zeros.
type fileConfig struct {
	PorParroquia Overrides `yaml:"por_parroquia"`
	PorZona      Overrides `yaml:"por_zona"`
	LatSplit     *struct {
		SurMax   *float64 `yaml:"sur_max"`
		NorteMin *float64 `yaml:"norte_min"`
	} `yaml:"lat_split"`
	Default *string `yaml:"default"`
}

// DefaultConfig returns the built-in rule set: no overrides, the default
// latitude split and OTROS.
func DefaultConfig() Config {
	return Config{
		PorParroquia: map[string]string{},
		PorZona:      map[string]string{},
		LatSplit:     LatSplit{SurMax: DefaultSurMax, NorteMin: DefaultNorteMin},
		Default:      DefaultLabel,
	}
}

// NewConfig canonicalizes raw override maps into a Config. Raw keys are
// applied in sorted order, so when two keys share a canonical form the
// greater raw key wins.
func NewConfig(porParroquia, porZona map[string]string, split LatSplit, def string) Config {
	return NewOrderedConfig(sortedOverrides(porParroquia), sortedOverrides(porZona), split, def)
}

// NewOrderedConfig canonicalizes override lists into a Config. Entries are
// applied in order: the last entry of a canonical key wins.
func NewOrderedConfig(porParroquia, porZona Overrides, split LatSplit, def string) Config {
	cfg := Config{
		PorParroquia: make(map[string]string, len(porParroquia)),
		PorZona:      make(map[string]string, len(porZona)),
		LatSplit:     split,
		Default:      def,
	}
	for _, o := range porParroquia {
		cfg.PorParroquia[CanonicalKey(o.Key)] = strings.TrimSpace(o.Sector)
	}
	for _, o := range porZona {
		cfg.PorZona[normalize.Name(o.Key)] = strings.TrimSpace(o.Sector)
	}
	if cfg.Default == "" {
		cfg.Default = DefaultLabel
	}
	return cfg
}

func sortedOverrides(m map[string]string) Overrides {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Overrides, len(keys))
	for i, k := range keys {
		out[i] = Override{Key: k, Sector: m[k]}
	}
	return out
}

// LoadConfig reads a YAML or JSON rule file. A missing file, or an empty
// path, yields DefaultConfig. The file is read on every call.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, eris.Wrapf(err, "sector: read config %s", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, eris.Wrapf(err, "sector: config %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes a rule document. JSON documents parse as YAML.
// Absent keys take their built-in defaults.
func ParseConfig(data []byte) (Config, error) {
	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, eris.Wrap(err, "sector: parse config")
	}

	split := LatSplit{SurMax: DefaultSurMax, NorteMin: DefaultNorteMin}
	if raw.LatSplit != nil {
		if raw.LatSplit.SurMax != nil {
			split.SurMax = *raw.LatSplit.SurMax
		}
		if raw.LatSplit.NorteMin != nil {
			split.NorteMin = *raw.LatSplit.NorteMin
		}
	}

	def := DefaultLabel
	if raw.Default != nil && strings.TrimSpace(*raw.Default) != "" {
		def = strings.TrimSpace(*raw.Default)
	}
	return NewOrderedConfig(raw.PorParroquia, raw.PorZona, split, def), nil
}

// CanonicalKey normalizes a parish override key. The text before the first
// "|" is the parish name; a qualifier containing ":" is split on its first
// ":" and both halves normalized, so "Sangolquí|tipo: urbano" becomes
// "SANGOLQUI|TIPO:URBANO".
func CanonicalKey(key string) string {
	name, qual, found := strings.Cut(key, "|")
	name = normalize.Name(name)
	if !found {
		return name
	}
	if kind, value, ok := strings.Cut(qual, ":"); ok {
		return name + "|" + normalize.Name(kind) + ":" + normalize.Name(value)
	}
	return name + "|" + normalize.Name(qual)
}

// Labels returns every label the config can assign.
func (c Config) Labels() map[string]bool {
	out := map[string]bool{
		LabelSur:    true,
		LabelNorte:  true,
		LabelCentro: true,
		c.Default:   true,
	}
	for _, v := range c.PorParroquia {
		out[v] = true
	}
	for _, v := range c.PorZona {
		out[v] = true
	}
	return out
}
