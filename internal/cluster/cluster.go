// Package cluster groups parishes by growth rate and population share
// with k-means.
package cluster

import (
	"math"
	"sort"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/rotisserie/eris"

	"github.com/sells-group/parroquia-maps/internal/metric"
	"github.com/sells-group/parroquia-maps/internal/parish"
)

// DefaultK is the number of clusters when none is configured.
const DefaultK = 4

// Unassigned marks parishes lacking a growth or population value.
const Unassigned = -1

// Partitioner splits observations into k clusters. kmeans.Kmeans
// satisfies it.
type Partitioner interface {
	Partition(dataset clusters.Observations, k int) (clusters.Clusters, error)
}

// Vector is the feature vector of one parish: growth % and population %.
type Vector struct {
	Index  int
	Values []float64 // nil when a feature is missing
}

// Assemble builds one vector per parish, aligned with parishes. Growth is
// joined by code and population by normalized name.
func Assemble(parishes []parish.Parish, growth metric.GrowthTable, population metric.PopulationTable) []Vector {
	out := make([]Vector, len(parishes))
	for i, p := range parishes {
		out[i].Index = i
		g, gok := growth.Lookup(p.Code)
		s, sok := population.Lookup(p.Name)
		if !gok || !sok || !g.HasValue || !s.HasValue {
			continue
		}
		out[i].Values = []float64{g.Pct, s.Pct}
	}
	return out
}

// point is an observation that remembers which vector it came from.
type point struct {
	idx    int
	coords clusters.Coordinates
}

func (p point) Coordinates() clusters.Coordinates { return p.coords }

func (p point) Distance(c clusters.Coordinates) float64 { return p.coords.Distance(c) }

// Labeler assigns cluster labels with a Partitioner.
type Labeler struct {
	Partitioner Partitioner
}

// NewLabeler returns a Labeler backed by k-means.
func NewLabeler() *Labeler {
	return &Labeler{Partitioner: kmeans.New()}
}

// Label returns one label per vector. Vectors without values get
// Unassigned. Features are min-max scaled to [0, 1] before partitioning,
// k is capped at the number of distinct points, and labels are ordered by
// ascending cluster growth so label 0 is always the slowest-growing group.
func (l *Labeler) Label(vectors []Vector, k int) ([]int, error) {
	labels := make([]int, len(vectors))
	for i := range labels {
		labels[i] = Unassigned
	}
	if k <= 0 {
		return nil, eris.Errorf("cluster: k must be positive, got %d", k)
	}

	var dataset clusters.Observations
	for i, v := range vectors {
		if v.Values != nil {
			dataset = append(dataset, point{idx: i, coords: append(clusters.Coordinates(nil), v.Values...)})
		}
	}
	if len(dataset) == 0 {
		return labels, nil
	}

	k = min(k, distinct(dataset))
	if k == 1 {
		for _, o := range dataset {
			labels[o.(point).idx] = 0
		}
		return labels, nil
	}

	scale(dataset)
	cc, err := l.Partitioner.Partition(dataset, k)
	if err != nil {
		return nil, eris.Wrap(err, "cluster: partition")
	}

	order := make([]int, len(cc))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ca, cb := cc[order[a]].Center, cc[order[b]].Center
		if len(ca) < 2 || len(cb) < 2 {
			return len(ca) > len(cb)
		}
		if ca[0] != cb[0] {
			return ca[0] < cb[0]
		}
		return ca[1] < cb[1]
	})

	for rank, ci := range order {
		for _, o := range cc[ci].Observations {
			if p, ok := o.(point); ok {
				labels[p.idx] = rank
			}
		}
	}
	return labels, nil
}

// scale maps every dimension to [0, 1] in place. The k-means seeding
// draws centers from that range.
func scale(dataset clusters.Observations) {
	dims := len(dataset[0].Coordinates())
	for d := 0; d < dims; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, o := range dataset {
			v := o.Coordinates()[d]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		span := hi - lo
		for _, o := range dataset {
			c := o.Coordinates()
			if span == 0 {
				c[d] = 0
				continue
			}
			c[d] = (c[d] - lo) / span
		}
	}
}

func distinct(dataset clusters.Observations) int {
	seen := make(map[[2]float64]struct{}, len(dataset))
	for _, o := range dataset {
		c := o.Coordinates()
		var key [2]float64
		copy(key[:], c)
		seen[key] = struct{}{}
	}
	return len(seen)
}
