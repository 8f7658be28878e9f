package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/bibstats/internal/histogram"
	"github.com/matsen/bibstats/internal/indices"
	"github.com/matsen/bibstats/internal/record"
	"github.com/matsen/bibstats/internal/result"
)

var allTypes = []string{
	"publications", "reads", "downloads", "citations", "refereed_citations",
	"metrics", "refereed_metrics",
	"publication_histogram", "reads_histogram",
	"refereed_citation_histogram", "non_refereed_citation_histogram",
}

func histOpts() histogram.Options {
	return histogram.Options{Now: func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }}
}

func TestModels_DocumentOrder(t *testing.T) {
	var names []string
	for _, m := range Models() {
		names = append(names, m.Name)
	}
	assert.Equal(t, allTypes, names)
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		want   int
	}{
		{"all by default", nil, 11},
		{"statistics", []string{"statistics"}, 5},
		{"metrics", []string{" Metrics "}, 2},
		{"histograms and metrics", []string{"histograms", "metrics"}, 6},
		{"unknown ignored", []string{"bogus", "metrics"}, 2},
		{"only unknown", []string{"bogus"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Select(tt.groups), tt.want)
		})
	}
}

func TestGenerate_EmptySet(t *testing.T) {
	in := NewInput(nil, indices.DefaultMinBiblioLength, histOpts())
	doc, err := Generate(context.Background(), in, Models(), 3)
	require.NoError(t, err)

	for _, typ := range allTypes {
		assert.Contains(t, doc, typ)
	}
	for _, typ := range []string{"metrics", "refereed_metrics"} {
		m := doc[typ]
		assert.Equal(t, 0, m[indices.LabelH])
		assert.Equal(t, 0, m[indices.LabelG])
		assert.Equal(t, 0, m[indices.LabelI10])
		assert.Equal(t, result.NA, m[indices.LabelE])
		assert.Equal(t, result.NA, m[indices.LabelTori])
		assert.Equal(t, result.NA, m[indices.LabelRiq])
	}
	assert.Equal(t, result.Values{"2026": "0:0:0:0"}, doc["publication_histogram"])
}

func TestGenerate_RefereedMetricsUseRefereedSubset(t *testing.T) {
	ev := record.CitationEvent{Bibcode: "2010X", RefCount: 10, AuthorCount: 1, Year: 2010}
	vectors := []record.AttributeVector{
		{Bibcode: "2001A", Refereed: false, AuthorCount: 1, CitationCount: 3,
			CitationEvents: []record.CitationEvent{ev, ev, ev}, NonRefereedCitationEvents: []record.CitationEvent{ev, ev, ev}},
		{Bibcode: "2005B", Refereed: true, AuthorCount: 1, CitationCount: 1,
			CitationEvents: []record.CitationEvent{ev}, NonRefereedCitationEvents: []record.CitationEvent{ev}},
	}
	in := NewInput(vectors, indices.DefaultMinBiblioLength, histOpts())
	assert.Equal(t, 4, in.Totals.Citations)
	assert.Equal(t, 0, in.Totals.RefereedCitations)

	doc, err := Generate(context.Background(), in, Select([]string{GroupMetrics}), 1)
	require.NoError(t, err)
	require.Len(t, doc, 2)
	assert.Equal(t, 5, doc["metrics"][indices.LabelTimeSpan])
	assert.Equal(t, 1, doc["refereed_metrics"][indices.LabelTimeSpan])
	assert.Equal(t, 1, doc["refereed_metrics"][indices.LabelH])
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, NewInput(nil, 5, histOpts()), Models(), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocument_WriteJSON(t *testing.T) {
	doc := Document{
		"metrics":      result.Values{indices.LabelH: 2, indices.LabelE: result.NA},
		"publications": result.Values{"Number of papers (Total)": 3},
	}
	var buf bytes.Buffer
	require.NoError(t, doc.WriteJSON(&buf))

	var back map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, 2.0, back["metrics"]["H-index"])
	assert.Equal(t, "NA", back["metrics"]["e-index"])
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"metrics"`)), bytes.Index(buf.Bytes(), []byte(`"publications"`)))
}
