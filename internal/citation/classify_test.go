package citation

import (
	"context"
	"errors"
	"testing"

	"github.com/matsen/bibstats/internal/record"
)

type fakeSearcher struct {
	docs map[string][]record.Publication
	err  error
}

func (f fakeSearcher) Citations(_ context.Context, bibcode string, _ int) ([]record.Publication, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[bibcode], nil
}

func TestClassify_RefereedAndNonRefereed(t *testing.T) {
	search := fakeSearcher{docs: map[string][]record.Publication{
		"2001ApJ...1..1A": {
			{Bibcode: "2005MNRAS.1..1B", Property: []string{"REFEREED"}, Reference: []string{"x", "y", "z"}},
			{Bibcode: "2006arXiv..1..1C", Property: []string{"NOT REFEREED"}},
		},
	}}
	authors := func(b string) (int, bool) {
		if b == "2005MNRAS.1..1B" {
			return 4, true
		}
		return 0, false
	}

	lists, err := NewClassifier(search, 100, authors).Classify(context.Background(), "2001ApJ...1..1A")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if len(lists.All) != 2 || len(lists.Refereed) != 1 || len(lists.NonRefereed) != 1 {
		t.Fatalf("lists = %d/%d/%d, want 2/1/1", len(lists.All), len(lists.Refereed), len(lists.NonRefereed))
	}

	ref := lists.Refereed[0]
	want := record.CitationEvent{Bibcode: "2005MNRAS.1..1B", RefCount: 3, AuthorCount: 4, Year: 2005}
	if ref != want {
		t.Errorf("refereed event = %+v, want %+v", ref, want)
	}

	nonRef := lists.NonRefereed[0]
	if nonRef.Bibcode != "2006arXiv..1..1C" || nonRef.AuthorCount != DefaultAuthorCount || nonRef.RefCount != 0 || nonRef.Year != 2006 {
		t.Errorf("non-refereed event = %+v", nonRef)
	}
}

func TestClassify_FetchErrorYieldsEmptyLists(t *testing.T) {
	boom := errors.New("connection refused")
	lists, err := NewClassifier(fakeSearcher{err: boom}, 10, nil).Classify(context.Background(), "2001ApJ...1..1A")
	if !errors.Is(err, boom) {
		t.Errorf("Classify() error = %v, want wrapped fetch error", err)
	}
	if len(lists.All) != 0 || len(lists.Refereed) != 0 || len(lists.NonRefereed) != 0 {
		t.Errorf("lists not empty on error: %+v", lists)
	}
}

func TestPartition_DeduplicatesCiters(t *testing.T) {
	docs := []record.Publication{
		{Bibcode: "2005MNRAS.1..1B", Property: []string{"REFEREED"}},
		{Bibcode: "2005MNRAS.1..1B", Property: []string{"REFEREED"}},
		{Bibcode: ""},
	}
	lists := Partition(docs, nil)
	if len(lists.All) != 1 {
		t.Errorf("Partition() produced %d events, want 1", len(lists.All))
	}
}

func TestEvent_KnownAuthorCountFloorsAtOne(t *testing.T) {
	ev := Event(record.Publication{Bibcode: "2010A&A...1..1D"}, func(string) (int, bool) { return 0, true })
	if ev.AuthorCount != 1 {
		t.Errorf("AuthorCount = %d, want 1", ev.AuthorCount)
	}
}
