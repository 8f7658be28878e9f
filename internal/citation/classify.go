// Package citation partitions the papers citing a publication into
// refereed and non-refereed citation events.
package citation

import (
	"context"
	"fmt"

	"github.com/matsen/bibstats/internal/bibcode"
	"github.com/matsen/bibstats/internal/record"
)

// Searcher fetches the documents citing a publication.
type Searcher interface {
	Citations(ctx context.Context, bibcode string, rows int) ([]record.Publication, error)
}

// AuthorLookup returns the author count of a known publication.
// The boolean is false when the publication is unknown.
type AuthorLookup func(bibcode string) (int, bool)

// DefaultAuthorCount is used for citers whose record is unknown.
const DefaultAuthorCount = 1

// Classifier builds citation lists for cited publications.
type Classifier struct {
	search  Searcher
	rows    int
	authors AuthorLookup
}

// NewClassifier creates a classifier. A nil lookup treats every citer as unknown.
func NewClassifier(search Searcher, rows int, authors AuthorLookup) *Classifier {
	if authors == nil {
		authors = func(string) (int, bool) { return 0, false }
	}
	return &Classifier{search: search, rows: rows, authors: authors}
}

// Classify fetches the citers of cited and partitions them. On a fetch
// error the returned lists are empty and the error is returned for the
// caller to log.
func (c *Classifier) Classify(ctx context.Context, cited string) (record.CitationLists, error) {
	docs, err := c.search.Citations(ctx, cited, c.rows)
	if err != nil {
		return record.CitationLists{}, fmt.Errorf("fetching citations of %s: %w", cited, err)
	}
	return Partition(docs, c.authors), nil
}

// Partition converts citing documents into citation events. Refereed status
// comes from the citer's own property set. A citer listed twice is counted once.
func Partition(citers []record.Publication, authors AuthorLookup) record.CitationLists {
	var lists record.CitationLists
	seen := make(map[string]bool, len(citers))
	for _, doc := range citers {
		if doc.Bibcode == "" || seen[doc.Bibcode] {
			continue
		}
		seen[doc.Bibcode] = true
		lists.Add(Event(doc, authors), doc.IsRefereed())
	}
	return lists
}

// Event builds the citation event for one citing document.
func Event(doc record.Publication, authors AuthorLookup) record.CitationEvent {
	n := DefaultAuthorCount
	if authors != nil {
		if known, ok := authors(doc.Bibcode); ok {
			n = max(1, known)
		}
	}
	year, _ := bibcode.Year(doc.Bibcode)
	return record.CitationEvent{
		Bibcode:     doc.Bibcode,
		RefCount:    len(doc.Reference),
		AuthorCount: n,
		Year:        year,
	}
}
