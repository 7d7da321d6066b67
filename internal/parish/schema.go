package parish

import (
	"math"
	"strconv"

	"github.com/sells-group/parroquia-maps/internal/normalize"
)

// LayerSchema lists the attribute names a layer uses. Candidates are
// tried in order and compared literally: DPA_DESPAR and dpa_despar are
// distinct fields.
type LayerSchema struct {
	NameFields []string `mapstructure:"name_fields" yaml:"name_fields"`
	CodeFields []string `mapstructure:"code_fields" yaml:"code_fields"`
	ZoneFields []string `mapstructure:"zone_fields" yaml:"zone_fields"`
	// TypeField, when set, supplies both Type and ZoneAdmin (other layer).
	TypeField string `mapstructure:"type_field" yaml:"type_field"`
}

// Schemas holds the schema of each layer.
type Schemas struct {
	Rural LayerSchema
	Urban LayerSchema
	Other LayerSchema
}

var (
	defaultNameFields = []string{"nombre", "DPA_DESPAR", "dpa_despar"}
	defaultCodeFields = []string{"DPA_PARROQ", "dpa_parroq"}
)

// DefaultSchemas returns the field names found in the published layers.
func DefaultSchemas() Schemas {
	return Schemas{
		Rural: LayerSchema{
			NameFields: defaultNameFields,
			CodeFields: defaultCodeFields,
			ZoneFields: []string{"zona_admin", "ZONA_ADMIN", "AD_ZONAL", "ad_zonal"},
		},
		Urban: LayerSchema{
			NameFields: defaultNameFields,
			CodeFields: defaultCodeFields,
			ZoneFields: []string{"zona_admin", "ZONA_ADMIN", "AD_ZONAL", "ad_zonal"},
		},
		Other: LayerSchema{
			NameFields: defaultNameFields,
			CodeFields: defaultCodeFields,
			TypeField:  "ur_ru",
		},
	}
}

// CodeTable maps a normalized parish name to its code, for layers that
// carry no code attribute.
type CodeTable map[string]string

// NewCodeTable normalizes the keys of raw.
func NewCodeTable(raw map[string]string) CodeTable {
	t := make(CodeTable, len(raw))
	for name, code := range raw {
		t[normalize.Name(name)] = code
	}
	return t
}

// DefaultCodeTable returns the codes of the parishes in the other layer.
func DefaultCodeTable() CodeTable {
	return NewCodeTable(map[string]string{
		"SANGOLQUÍ":  "170501",
		"RUMIPAMBA":  "170552",
		"COTOGCHOA":  "170551",
		"SAN RAFAEL": "170503",
		"SAN PEDRO":  "170502",
		"FAJARDO":    "170504",
	})
}

// Lookup finds the code for a display name.
func (t CodeTable) Lookup(name string) (string, bool) {
	code, ok := t[normalize.Name(name)]
	return code, ok
}

// attr renders a raw attribute as text. ok is false for absent, null, NaN
// and empty values.
func attr(v any) (string, bool) {
	switch tv := v.(type) {
	case nil:
		return "", false
	case string:
		return tv, tv != ""
	case float64:
		if math.IsNaN(tv) {
			return "", false
		}
		return normalize.FormatNumber(tv), true
	case int:
		return strconv.Itoa(tv), true
	case int64:
		return strconv.FormatInt(tv, 10), true
	case bool:
		return strconv.FormatBool(tv), true
	default:
		return "", false
	}
}

func firstAttr(props map[string]any, fields []string, skip func(string) bool) string {
	for _, f := range fields {
		s, ok := attr(props[f])
		if !ok || (skip != nil && skip(s)) {
			continue
		}
		return s
	}
	return ""
}

func isNaNString(s string) bool {
	return s == "nan"
}

func (s LayerSchema) name(props map[string]any) string {
	if n := firstAttr(props, s.NameFields, nil); n != "" {
		return n
	}
	return NoName
}

func (s LayerSchema) code(props map[string]any, name string, table CodeTable) string {
	if c := firstAttr(props, s.CodeFields, isNaNString); c != "" {
		return c
	}
	if c, ok := table.Lookup(name); ok {
		return c
	}
	return ""
}
