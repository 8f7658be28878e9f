// Package aggregate resolves a request into a publication set, gathers
// citation and usage data for it across a bounded worker pool, and builds
// the sorted attribute vectors.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matsen/bibstats/internal/bibcode"
	"github.com/matsen/bibstats/internal/citation"
	"github.com/matsen/bibstats/internal/record"
	"github.com/matsen/bibstats/internal/solr"
	"github.com/matsen/bibstats/internal/telemetry"
	"github.com/matsen/bibstats/internal/vector"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Default pool and batch sizes.
const (
	DefaultThreads   = 4
	DefaultChunkSize = 100
	DefaultMaxHits   = 10000
)

// ErrNoRequest is returned when a request names no publication source.
var ErrNoRequest = errors.New("request needs a query, bibcodes or a library id")

// ErrResolution indicates the publication set could not be resolved.
var ErrResolution = errors.New("resolving publications failed")

// Searcher is the search-index collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, fields []string, rows int) ([]record.Publication, error)
	Publications(ctx context.Context, bibcodes []string, rows int) ([]record.Publication, error)
	Citations(ctx context.Context, bibcode string, rows int) ([]record.Publication, error)
}

// UsageStore is the document-store collaborator holding usage data.
type UsageStore interface {
	Usage(ctx context.Context, bibcode string) (record.Usage, bool, error)
}

// Request names the publications to evaluate. Exactly one source is used,
// checked in the order Query, Bibcodes, LibraryID.
type Request struct {
	Query     string
	Bibcodes  []string
	LibraryID string
}

// Options configures the retrieval pool.
type Options struct {
	Threads   int // Worker pool size
	ChunkSize int // Bibcodes per publication batch
	MaxHits   int // Row limit for every search
}

func (o Options) withDefaults() Options {
	if o.Threads <= 0 {
		o.Threads = DefaultThreads
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.MaxHits <= 0 {
		o.MaxHits = DefaultMaxHits
	}
	return o
}

// Result is the sorted vector collection with run-level citation totals.
type Result struct {
	Vectors                []record.AttributeVector
	TotalCitations         int
	TotalRefereedCitations int
}

// Aggregator runs the retrieval pipeline.
type Aggregator struct {
	search Searcher
	usage  UsageStore
	opts   Options
	log    logrus.FieldLogger
	rec    *telemetry.Recorder
}

// New creates an aggregator. usage may be nil, in which case every
// publication gets zero usage. rec may be nil.
func New(search Searcher, usage UsageStore, opts Options, log logrus.FieldLogger, rec *telemetry.Recorder) *Aggregator {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Aggregator{search: search, usage: usage, opts: opts.withDefaults(), log: log, rec: rec}
}

// Run executes the pipeline. Only resolution failures are returned as
// errors; per-publication fetch failures degrade to default data.
func (a *Aggregator) Run(ctx context.Context, req Request) (*Result, error) {
	bibcodes, pubs, err := a.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	citations, err := a.fetchCitations(ctx, bibcodes, pubs)
	if err != nil {
		return nil, err
	}

	usage, err := a.fetchUsage(ctx, bibcodes)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	vectors := vector.Build(vector.Inputs{
		Bibcodes:     bibcodes,
		Publications: pubs,
		Citations:    citations,
		Usage:        usage,
	})
	vector.SortByCitations(vectors)
	total, refereed := vector.Totals(vectors)
	a.rec.SetVectors(len(vectors))
	a.log.WithFields(logrus.Fields{
		"stage":              "vectors",
		"count":              len(vectors),
		"citations":          total,
		"refereed_citations": refereed,
		"duration":           time.Since(start),
	}).Info("attribute vectors ready")

	return &Result{
		Vectors:                vectors,
		TotalCitations:         total,
		TotalRefereedCitations: refereed,
	}, nil
}

// resolve turns the request into an ordered bibcode set and the publication
// records known for it.
func (a *Aggregator) resolve(ctx context.Context, req Request) ([]string, map[string]record.Publication, error) {
	switch {
	case strings.TrimSpace(req.Query) != "":
		return a.resolveQuery(ctx, req.Query)
	case len(req.Bibcodes) > 0:
		return a.resolveBibcodes(ctx, req.Bibcodes)
	case req.LibraryID != "":
		a.log.WithField("library", req.LibraryID).Warn("private libraries are not yet implemented")
		return nil, map[string]record.Publication{}, nil
	}
	return nil, nil, ErrNoRequest
}

func (a *Aggregator) resolveQuery(ctx context.Context, query string) ([]string, map[string]record.Publication, error) {
	start := time.Now()
	docs, err := a.search.Search(ctx, query, solr.PublicationFields, a.opts.MaxHits)
	a.rec.ObserveFetch(telemetry.StagePublications, err, time.Since(start))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: query %q: %w", ErrResolution, query, err)
	}

	bibcodes := make([]string, 0, len(docs))
	pubs := make(map[string]record.Publication, len(docs))
	for _, doc := range docs {
		if doc.Bibcode == "" {
			continue
		}
		if _, dup := pubs[doc.Bibcode]; dup {
			continue
		}
		pubs[doc.Bibcode] = doc
		bibcodes = append(bibcodes, doc.Bibcode)
	}

	a.log.WithFields(logrus.Fields{
		"stage":    "resolve",
		"count":    len(bibcodes),
		"duration": time.Since(start),
	}).Info("resolved query")
	return bibcodes, pubs, nil
}

// batchResult is what one publication-batch worker hands back at the barrier.
type batchResult struct {
	pubs map[string]record.Publication
	err  error
}

func (a *Aggregator) resolveBibcodes(ctx context.Context, requested []string) ([]string, map[string]record.Publication, error) {
	ids := normalizeBibcodes(requested)
	batches := bibcode.Chunks(ids, a.opts.ChunkSize)
	a.log.WithFields(logrus.Fields{
		"count":      len(ids),
		"batches":    len(batches),
		"chunk_size": a.opts.ChunkSize,
	}).Info("fetching publication data")

	start := time.Now()
	results := make([]batchResult, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Threads)
	for i, batch := range batches {
		g.Go(func() error {
			t0 := time.Now()
			docs, err := a.search.Publications(gctx, batch, a.opts.MaxHits)
			a.rec.ObserveFetch(telemetry.StagePublications, err, time.Since(t0))
			partial := make(map[string]record.Publication, len(docs))
			for _, doc := range docs {
				partial[doc.Bibcode] = doc
			}
			results[i] = batchResult{pubs: partial, err: err}
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	pubs := make(map[string]record.Publication, len(ids))
	failed := make(map[string]bool)
	var failures int
	var lastErr error
	for i, res := range results {
		if res.err != nil {
			failures++
			lastErr = res.err
			a.log.WithFields(logrus.Fields{
				"batch": i,
				"size":  len(batches[i]),
				"error": res.err,
			}).Warn("publication batch fetch failed")
			for _, b := range batches[i] {
				failed[b] = true
			}
			continue
		}
		for b, doc := range res.pubs {
			pubs[b] = doc
		}
	}
	if len(batches) > 0 && failures == len(batches) {
		return nil, nil, fmt.Errorf("%w: all %d publication batches failed: %w", ErrResolution, failures, lastErr)
	}

	// Keep request order. Bibcodes from failed batches stay with default
	// data; bibcodes the index does not know are dropped.
	bibcodes := make([]string, 0, len(ids))
	var unknown int
	for _, b := range ids {
		if _, ok := pubs[b]; ok || failed[b] {
			bibcodes = append(bibcodes, b)
			continue
		}
		unknown++
	}

	a.log.WithFields(logrus.Fields{
		"stage":    "resolve",
		"count":    len(bibcodes),
		"unknown":  unknown,
		"duration": time.Since(start),
	}).Info("resolved bibcodes")
	return bibcodes, pubs, nil
}

// fetchCitations classifies the citers of every bibcode. It returns only
// after all workers finished.
func (a *Aggregator) fetchCitations(ctx context.Context, bibcodes []string, pubs map[string]record.Publication) (map[string]record.CitationLists, error) {
	start := time.Now()

	// pubs is complete and read-only from here on.
	authors := func(b string) (int, bool) {
		pub, ok := pubs[b]
		if !ok {
			return 0, false
		}
		return pub.AuthorCount(), true
	}
	classifier := citation.NewClassifier(a.search, a.opts.MaxHits, authors)

	slots := make([]record.CitationLists, len(bibcodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Threads)
	for i, b := range bibcodes {
		g.Go(func() error {
			t0 := time.Now()
			lists, err := classifier.Classify(gctx, b)
			a.rec.ObserveFetch(telemetry.StageCitations, err, time.Since(t0))
			if err != nil {
				a.log.WithFields(logrus.Fields{"bibcode": b, "error": err}).Warn("citation fetch failed, using empty citation lists")
			}
			slots[i] = lists
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	citations := make(map[string]record.CitationLists, len(bibcodes))
	for i, b := range bibcodes {
		citations[b] = slots[i]
	}

	a.log.WithFields(logrus.Fields{
		"stage":    "citations",
		"count":    len(bibcodes),
		"threads":  a.opts.Threads,
		"duration": time.Since(start),
	}).Info("citation data gathered")
	return citations, nil
}

// usageSlot is one usage lookup result.
type usageSlot struct {
	usage record.Usage
	found bool
}

// fetchUsage looks up usage data for every bibcode. It returns only after
// all workers finished.
func (a *Aggregator) fetchUsage(ctx context.Context, bibcodes []string) (map[string]record.Usage, error) {
	usage := make(map[string]record.Usage, len(bibcodes))
	if a.usage == nil {
		a.log.WithField("stage", "usage").Debug("no document store configured, usage defaults to zero")
		return usage, nil
	}

	start := time.Now()
	slots := make([]usageSlot, len(bibcodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Threads)
	for i, b := range bibcodes {
		g.Go(func() error {
			t0 := time.Now()
			u, found, err := a.usage.Usage(gctx, b)
			a.rec.ObserveFetch(telemetry.StageUsage, err, time.Since(t0))
			if err != nil {
				a.log.WithFields(logrus.Fields{"bibcode": b, "error": err}).Warn("usage lookup failed, using zero usage")
				return nil
			}
			slots[i] = usageSlot{usage: u, found: found}
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var missing int
	for i, b := range bibcodes {
		if !slots[i].found {
			missing++
			continue
		}
		usage[b] = slots[i].usage
	}

	a.log.WithFields(logrus.Fields{
		"stage":    "usage",
		"count":    len(bibcodes),
		"missing":  missing,
		"duration": time.Since(start),
	}).Info("usage data gathered")
	return usage, nil
}

// normalizeBibcodes trims whitespace and drops empty and repeated entries,
// keeping first occurrences in order.
func normalizeBibcodes(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, b := range in {
		b = strings.TrimSpace(b)
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out
}
