package parish

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/parroquia-maps/internal/geo"
)

// excludedFromGrowth is left out of the growth compositions because the
// rural and urban layers already cover its territory.
const excludedFromGrowth = "FAJARDO"

// Source is one layer file. CRS overrides whatever the file declares.
type Source struct {
	Path string `mapstructure:"path"`
	CRS  string `mapstructure:"crs"`
}

// Sources are the three layer files.
type Sources struct {
	Rural Source
	Urban Source
	Other Source
}

// Loader reads the layers and assembles the unified table. A Loader holds
// no state between calls; every Load reads the files again.
type Loader struct {
	Sources Sources
	Schemas Schemas
	Codes   CodeTable
}

// NewLoader returns a Loader with the default schemas and code table.
func NewLoader(src Sources) *Loader {
	return &Loader{
		Sources: src,
		Schemas: DefaultSchemas(),
		Codes:   DefaultCodeTable(),
	}
}

type layerJob struct {
	name   string
	src    Source
	schema LayerSchema
	typ    string // fixed type; empty means read from schema.TypeField
}

// Load returns the parishes of scope in rural, urban, other order.
func (l *Loader) Load(ctx context.Context, scope Scope) ([]Parish, error) {
	jobs, err := l.jobs(scope)
	if err != nil {
		return nil, err
	}
	groups, err := l.read(ctx, jobs)
	if err != nil {
		return nil, err
	}
	return concat(groups), nil
}

// LoadGrowth returns the composition the growth view draws for scope
// (rurales or urbanas): the scope's own layer plus the other-layer records
// whose ur_ru equals the scope type, except FAJARDO.
func (l *Loader) LoadGrowth(ctx context.Context, scope Scope) ([]Parish, error) {
	typ := scope.Type()
	if typ == "" {
		return nil, eris.Errorf("parish: growth view needs scope %s or %s, got %q", ScopeRural, ScopeUrban, scope)
	}

	own := layerJob{name: LayerRural, src: l.Sources.Rural, schema: l.Schemas.Rural, typ: TypeRural}
	if scope == ScopeUrban {
		own = layerJob{name: LayerUrban, src: l.Sources.Urban, schema: l.Schemas.Urban, typ: TypeUrban}
	}
	other := layerJob{name: LayerOther, src: l.Sources.Other, schema: l.Schemas.Other}

	groups, err := l.read(ctx, []layerJob{own, other})
	if err != nil {
		return nil, err
	}

	kept := groups[1][:0]
	for _, p := range groups[1] {
		if p.Type == typ && p.rawName != excludedFromGrowth {
			kept = append(kept, p)
		}
	}
	groups[1] = kept
	return concat(groups), nil
}

func (l *Loader) jobs(scope Scope) ([]layerJob, error) {
	var jobs []layerJob
	switch scope {
	case "", ScopeAll, ScopeRural, ScopeUrban:
	default:
		return nil, eris.Errorf("parish: unknown scope %q", scope)
	}
	if scope != ScopeUrban {
		jobs = append(jobs, layerJob{name: LayerRural, src: l.Sources.Rural, schema: l.Schemas.Rural, typ: TypeRural})
	}
	if scope != ScopeRural {
		jobs = append(jobs, layerJob{name: LayerUrban, src: l.Sources.Urban, schema: l.Schemas.Urban, typ: TypeUrban})
	}
	if scope == "" || scope == ScopeAll {
		jobs = append(jobs, layerJob{name: LayerOther, src: l.Sources.Other, schema: l.Schemas.Other})
	}
	return jobs, nil
}

// record is a Parish plus the raw name attribute used by the growth filter.
type record struct {
	Parish
	rawName string
}

// read loads the jobs concurrently; groups[i] holds jobs[i]'s records.
func (l *Loader) read(ctx context.Context, jobs []layerJob) ([][]record, error) {
	log := zap.L().With(zap.String("component", "parish.loader"))
	groups := make([][]record, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return eris.Wrap(err, "parish: load cancelled")
			}
			if job.src.Path == "" {
				return eris.Errorf("parish: no path configured for %s layer", job.name)
			}
			layer, err := geo.ReadLayer(job.src.Path, job.src.CRS)
			if err != nil {
				return eris.Wrapf(err, "parish: read %s layer", job.name)
			}
			groups[i] = l.records(job, layer)
			log.Debug("layer loaded",
				zap.String("layer", job.name),
				zap.String("path", job.src.Path),
				zap.Stringer("crs", layer.CRS),
				zap.Int("features", len(layer.Features)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (l *Loader) records(job layerJob, layer *geo.Layer) []record {
	out := make([]record, 0, len(layer.Features))
	for _, f := range layer.Features {
		name := job.schema.name(f.Properties)
		rawName, _ := attr(f.Property("nombre"))

		p := Parish{
			Layer:    job.name,
			Name:     name,
			Code:     job.schema.code(f.Properties, name, l.Codes),
			Geometry: f.Geometry,
		}
		if job.typ != "" {
			p.Type = job.typ
			p.ZoneAdmin = firstAttr(f.Properties, job.schema.ZoneFields, nil)
		} else {
			p.Type, _ = attr(f.Property(job.schema.TypeField))
			p.ZoneAdmin = p.Type
		}
		out = append(out, record{Parish: p, rawName: rawName})
	}
	return out
}

func concat(groups [][]record) []Parish {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]Parish, 0, n)
	for _, g := range groups {
		for _, r := range g {
			r.Index = len(out)
			out = append(out, r.Parish)
		}
	}
	return out
}
