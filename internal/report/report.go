// Package report dispatches the statistics, metrics and histogram models
// over one vector set and merges their results into a single document.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/segmentio/encoding/json"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/bibstats/internal/histogram"
	"github.com/matsen/bibstats/internal/indices"
	"github.com/matsen/bibstats/internal/record"
	"github.com/matsen/bibstats/internal/result"
	"github.com/matsen/bibstats/internal/stats"
	"github.com/matsen/bibstats/internal/vector"
)

// Model groups, as accepted by Select.
const (
	GroupStatistics = "statistics"
	GroupMetrics    = "metrics"
	GroupHistograms = "histograms"
)

// DefaultGroups lists every model group.
var DefaultGroups = []string{GroupStatistics, GroupMetrics, GroupHistograms}

// Input is the read-only data every model runs over.
type Input struct {
	Vectors         []record.AttributeVector
	Totals          stats.Totals
	MinBiblioLength int
	Histogram       histogram.Options
}

// NewInput derives the totals from vectors.
func NewInput(vectors []record.AttributeVector, minBiblio int, hist histogram.Options) Input {
	cites, refereed := vector.Totals(vectors)
	return Input{
		Vectors:         vectors,
		Totals:          stats.Totals{Citations: cites, RefereedCitations: refereed},
		MinBiblioLength: minBiblio,
		Histogram:       hist,
	}
}

// Model is one unit of work producing a single result family.
type Model struct {
	Name  string
	Group string
	run   func(in Input) result.Result
}

// Run evaluates the model.
func (m Model) Run(in Input) result.Result {
	return m.run(in)
}

// registry holds every model in document order.
var registry = buildRegistry()

func buildRegistry() []Model {
	var models []Model
	for _, f := range stats.Families {
		models = append(models, Model{
			Name:  f.String(),
			Group: GroupStatistics,
			run: func(in Input) result.Result {
				return stats.Compute(f, in.Vectors, in.Totals)
			},
		})
	}
	models = append(models,
		Model{
			Name:  indices.TypeMetrics,
			Group: GroupMetrics,
			run: func(in Input) result.Result {
				return indices.Compute(indices.TypeMetrics, in.Vectors, in.MinBiblioLength)
			},
		},
		Model{
			Name:  indices.TypeRefereedMetrics,
			Group: GroupMetrics,
			run: func(in Input) result.Result {
				return indices.Compute(indices.TypeRefereedMetrics, vector.Refereed(in.Vectors), in.MinBiblioLength)
			},
		},
	)
	for _, k := range histogram.Kinds {
		models = append(models, Model{
			Name:  k.String(),
			Group: GroupHistograms,
			run: func(in Input) result.Result {
				return histogram.Compute(k, in.Vectors, in.Histogram)
			},
		})
	}
	return models
}

// Models returns every registered model.
func Models() []Model {
	return append([]Model(nil), registry...)
}

// Select returns the models belonging to the named groups, in document
// order. Unknown names are ignored; an empty list selects every group.
func Select(groups []string) []Model {
	if len(groups) == 0 {
		return Models()
	}
	want := make(map[string]bool, len(groups))
	for _, g := range groups {
		want[strings.ToLower(strings.TrimSpace(g))] = true
	}
	var models []Model
	for _, m := range registry {
		if want[m.Group] {
			models = append(models, m)
		}
	}
	return models
}

// Document maps a result type to its labeled values.
type Document map[string]result.Values

// Generate runs models over in with at most threads concurrent workers.
// Each worker writes only its own slot; the document is assembled once
// every model has finished.
func Generate(ctx context.Context, in Input, models []Model, threads int) (Document, error) {
	slots := make([]result.Result, len(models))

	g, ctx := errgroup.WithContext(ctx)
	if threads > 0 {
		g.SetLimit(threads)
	}
	for i, m := range models {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slots[i] = m.Run(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}

	doc := make(Document, len(slots))
	for _, r := range slots {
		doc[r.Type] = r.Values
	}
	return doc, nil
}

// WriteJSON writes the document as indented JSON with sorted keys.
func (d Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
