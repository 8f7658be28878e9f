// Package vector builds the per-publication attribute vectors consumed by
// the statistics, metrics and histogram models.
package vector

import (
	"sort"

	"github.com/matsen/bibstats/internal/bibcode"
	"github.com/matsen/bibstats/internal/record"
)

// Inputs holds the data gathered for one run, keyed by bibcode.
type Inputs struct {
	Bibcodes     []string // Resolved publication set, in insertion order
	Publications map[string]record.Publication
	Citations    map[string]record.CitationLists
	Usage        map[string]record.Usage
}

// Build creates one vector per bibcode, in the order of in.Bibcodes.
// Missing optional data falls back to defaults: not refereed, one author,
// no citations, zero usage.
func Build(in Inputs) []record.AttributeVector {
	vectors := make([]record.AttributeVector, 0, len(in.Bibcodes))
	for _, b := range in.Bibcodes {
		vectors = append(vectors, buildOne(b, in))
	}
	return vectors
}

func buildOne(b string, in Inputs) record.AttributeVector {
	v := record.AttributeVector{Bibcode: b, AuthorCount: 1}

	if pub, ok := in.Publications[b]; ok {
		v.Refereed = pub.IsRefereed()
		v.AuthorCount = pub.AuthorCount()
	}

	if lists, ok := in.Citations[b]; ok {
		v.CitationEvents = lists.All
		v.RefereedCitationEvents = lists.Refereed
		v.NonRefereedCitationEvents = lists.NonRefereed
	}
	v.CitationCount = len(v.CitationEvents)
	v.RefereedCitationCount = len(v.RefereedCitationEvents)

	if usage, ok := in.Usage[b]; ok {
		v.TotalReads = usage.TotalReads()
		v.TotalDownloads = usage.TotalDownloads()
		v.YearlyReads = usage.Reads
	}

	return v
}

// SortByCitations sorts vectors by citation count, descending. Ties keep
// their original order.
func SortByCitations(vectors []record.AttributeVector) {
	sort.SliceStable(vectors, func(i, j int) bool {
		return vectors[i].CitationCount > vectors[j].CitationCount
	})
}

// Totals returns the number of citation events and refereed citation
// events across all vectors. Each event is counted once.
func Totals(vectors []record.AttributeVector) (citations, refereed int) {
	for _, v := range vectors {
		citations += len(v.CitationEvents)
		refereed += len(v.RefereedCitationEvents)
	}
	return citations, refereed
}

// Bibcodes returns the bibcodes of vectors, in order.
func Bibcodes(vectors []record.AttributeVector) []string {
	out := make([]string, len(vectors))
	for i, v := range vectors {
		out[i] = v.Bibcode
	}
	return out
}

// Refereed returns the vectors of refereed publications, in order.
func Refereed(vectors []record.AttributeVector) []record.AttributeVector {
	var out []record.AttributeVector
	for _, v := range vectors {
		if v.Refereed {
			out = append(out, v)
		}
	}
	return out
}

// Subset restricts vectors to the state of the literature at the end of
// year: publications after year are dropped, citation events from later
// citers are removed and the counts recomputed. The result is re-sorted.
func Subset(vectors []record.AttributeVector, year int) []record.AttributeVector {
	var out []record.AttributeVector
	for _, v := range vectors {
		if y, ok := bibcode.Year(v.Bibcode); ok && y > year {
			continue
		}
		v.CitationEvents = eventsUpTo(v.CitationEvents, year)
		v.RefereedCitationEvents = eventsUpTo(v.RefereedCitationEvents, year)
		v.NonRefereedCitationEvents = eventsUpTo(v.NonRefereedCitationEvents, year)
		v.CitationCount = len(v.CitationEvents)
		v.RefereedCitationCount = len(v.RefereedCitationEvents)
		out = append(out, v)
	}
	SortByCitations(out)
	return out
}

func eventsUpTo(events []record.CitationEvent, year int) []record.CitationEvent {
	var out []record.CitationEvent
	for _, ev := range events {
		if ev.Year <= year {
			out = append(out, ev)
		}
	}
	return out
}
