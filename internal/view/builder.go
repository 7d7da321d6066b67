package view

import (
	"context"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/parroquia-maps/internal/cluster"
	"github.com/sells-group/parroquia-maps/internal/fetcher"
	"github.com/sells-group/parroquia-maps/internal/geo"
	"github.com/sells-group/parroquia-maps/internal/metric"
	"github.com/sells-group/parroquia-maps/internal/parish"
	"github.com/sells-group/parroquia-maps/internal/sector"
)

// Categorical colors for sector and cluster views, assigned in label order.
var categorical = []string{
	"#1F77B4", "#FF7F0E", "#2CA02C", "#D62728", "#9467BD",
	"#8C564B", "#E377C2", "#7F7F7F", "#BCBD22", "#17BECF",
}

// UnassignedColor fills parishes left out of clustering.
const UnassignedColor = "#CCCCCC"

// Builder assembles views. Every call reads its inputs from disk; a
// Builder shares no data between calls.
type Builder struct {
	Loader         *parish.Loader
	GrowthPath     string
	PopulationPath string
	SectorConfig   string // rule file path; missing file means defaults
	Sheet          fetcher.XLSXOptions
	Projection     geo.UTM
	Labeler        *cluster.Labeler
	DefaultK       int
}

// Explanation reports how one parish got its sector.
type Explanation struct {
	Index     int          `json:"index"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	ZoneAdmin string       `json:"zone_admin"`
	Lat       float64      `json:"lat"`
	Lon       float64      `json:"lon"`
	Match     sector.Match `json:"match"`
}

// Build dispatches to the named view. k is only used by the clusters view;
// zero means DefaultK.
func (b *Builder) Build(ctx context.Context, name string, scope parish.Scope, k int) (*Table, error) {
	switch name {
	case Growth:
		return b.Growth(ctx, scope)
	case Population:
		return b.Population(ctx)
	case Sectors:
		return b.Sectors(ctx, scope)
	case Clusters:
		return b.Clusters(ctx, scope, k)
	default:
		return nil, eris.Errorf("view: unknown view %q", name)
	}
}

// Growth colors parishes by annual growth rate. Rural and urban scopes use
// the growth compositions; the full scope uses every layer.
func (b *Builder) Growth(ctx context.Context, scope parish.Scope) (*Table, error) {
	var (
		parishes []parish.Parish
		err      error
	)
	if scope.Type() != "" {
		parishes, err = b.Loader.LoadGrowth(ctx, scope)
	} else {
		parishes, err = b.Loader.Load(ctx, scope)
	}
	if err != nil {
		return nil, err
	}
	growth, err := metric.LoadGrowthTable(b.GrowthPath, b.Sheet)
	if err != nil {
		return nil, err
	}

	parishes = sector.WithCentroids(parishes, b.Projection)
	t := b.newTable(Growth, scope, len(parishes))
	t.Legend = metric.GrowthPalette.Legend()
	for _, p := range parishes {
		r := newRow(p)
		shadeRow(&r, metric.GrowthShade(growth, p.Code))
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

// Population colors every parish of every layer by population share.
func (b *Builder) Population(ctx context.Context) (*Table, error) {
	parishes, err := b.Loader.Load(ctx, parish.ScopeAll)
	if err != nil {
		return nil, err
	}
	pop, err := metric.LoadPopulationTable(b.PopulationPath, b.Sheet)
	if err != nil {
		return nil, err
	}

	parishes = sector.WithCentroids(parishes, b.Projection)
	t := b.newTable(Population, parish.ScopeAll, len(parishes))
	t.Legend = metric.PopulationPalette.Legend()
	for _, p := range parishes {
		r := newRow(p)
		shadeRow(&r, metric.PopulationShade(pop, p.Name))
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

// Sectors classifies the parishes of scope with the current rule file.
func (b *Builder) Sectors(ctx context.Context, scope parish.Scope) (*Table, error) {
	parishes, cfg, err := b.loadForSectors(ctx, scope)
	if err != nil {
		return nil, err
	}

	classified := sector.Classify(parishes, cfg, b.Projection)
	labels := make([]string, len(classified))
	for i, p := range classified {
		labels[i] = p.Sector
	}
	colors, legend := categoricalLegend("Sectores", labels)

	t := b.newTable(Sectors, scope, len(classified))
	t.Legend = legend
	for _, p := range classified {
		r := newRow(p)
		r.Sector = p.Sector
		r.Color = colors[p.Sector]
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

// Explain reports the tier and key behind each sector of scope.
func (b *Builder) Explain(ctx context.Context, scope parish.Scope) ([]Explanation, error) {
	parishes, cfg, err := b.loadForSectors(ctx, scope)
	if err != nil {
		return nil, err
	}
	classified, matches := sector.Explain(parishes, cfg, b.Projection)
	out := make([]Explanation, len(classified))
	for i, p := range classified {
		out[i] = Explanation{
			Index:     p.Index,
			Code:      p.Code,
			Name:      p.Name,
			Type:      p.Type,
			ZoneAdmin: p.ZoneAdmin,
			Lat:       p.Lat(),
			Lon:       p.Lon(),
			Match:     matches[i],
		}
	}
	return out, nil
}

// Clusters groups the parishes of scope by growth and population.
func (b *Builder) Clusters(ctx context.Context, scope parish.Scope, k int) (*Table, error) {
	if k == 0 {
		k = b.DefaultK
	}
	if k == 0 {
		k = cluster.DefaultK
	}

	parishes, err := b.Loader.Load(ctx, scope)
	if err != nil {
		return nil, err
	}
	growth, err := metric.LoadGrowthTable(b.GrowthPath, b.Sheet)
	if err != nil {
		return nil, err
	}
	pop, err := metric.LoadPopulationTable(b.PopulationPath, b.Sheet)
	if err != nil {
		return nil, err
	}

	labeler := b.Labeler
	if labeler == nil {
		labeler = cluster.NewLabeler()
	}
	labels, err := labeler.Label(cluster.Assemble(parishes, growth, pop), k)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(labels))
	for _, l := range labels {
		if l != cluster.Unassigned {
			names = append(names, clusterName(l))
		}
	}
	colors, legend := categoricalLegend("Clusters", names)
	legend.Entries = append(legend.Entries, metric.LegendEntry{Color: UnassignedColor, Label: "Sin datos"})

	parishes = sector.WithCentroids(parishes, b.Projection)
	t := b.newTable(Clusters, scope, len(parishes))
	t.Legend = legend
	for i, p := range parishes {
		r := newRow(p)
		r.Color = UnassignedColor
		if labels[i] != cluster.Unassigned {
			l := labels[i]
			r.Cluster = &l
			r.Color = colors[clusterName(l)]
		}
		t.Rows = append(t.Rows, r)
	}

	zap.L().Debug("view: clusters built",
		zap.String("scope", string(scope)),
		zap.Int("k", k),
		zap.Int("parishes", len(parishes)),
	)
	return t, nil
}

func (b *Builder) loadForSectors(ctx context.Context, scope parish.Scope) ([]parish.Parish, sector.Config, error) {
	parishes, err := b.Loader.Load(ctx, scope)
	if err != nil {
		return nil, sector.Config{}, err
	}
	cfg, err := sector.LoadConfig(b.SectorConfig)
	if err != nil {
		return nil, sector.Config{}, err
	}
	return parishes, cfg, nil
}

func (b *Builder) newTable(name string, scope parish.Scope, n int) *Table {
	if scope == "" {
		scope = parish.ScopeAll
	}
	return &Table{
		View:   name,
		Scope:  scope,
		Rows:   make([]Row, 0, n),
		Center: DefaultCenter,
		Zoom:   DefaultZoom,
	}
}

func shadeRow(r *Row, s metric.Shade) {
	r.Value = s.Value
	r.Label = s.Label
	r.Color = s.Color
}

func clusterName(l int) string {
	return "Cluster " + strconv.Itoa(l)
}

// categoricalLegend assigns palette colors to the distinct labels in
// sorted order, cycling when there are more labels than colors.
func categoricalLegend(title string, labels []string) (map[string]string, metric.Legend) {
	seen := map[string]bool{}
	var distinct []string
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			distinct = append(distinct, l)
		}
	}
	sort.Strings(distinct)

	colors := make(map[string]string, len(distinct))
	legend := metric.Legend{Title: title, Entries: make([]metric.LegendEntry, 0, len(distinct))}
	for i, l := range distinct {
		c := categorical[i%len(categorical)]
		colors[l] = c
		legend.Entries = append(legend.Entries, metric.LegendEntry{Color: c, Label: l})
	}
	return colors, legend
}
