package record

import (
	"strings"
	"testing"
)

func TestAttributeVector_MarshalJSON(t *testing.T) {
	v := AttributeVector{
		Bibcode:       "2001ApJ...1..1A",
		Refereed:      true,
		CitationCount: 1,
		AuthorCount:   2,
		TotalReads:    7,
		YearlyReads:   []int{3, 4},
		CitationEvents: []CitationEvent{
			{Bibcode: "2005MNRAS.1..2B", RefCount: 10, AuthorCount: 1, Year: 2005},
		},
		NonRefereedCitationEvents: []CitationEvent{
			{Bibcode: "2005MNRAS.1..2B", RefCount: 10, AuthorCount: 1, Year: 2005},
		},
	}

	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	got := string(data)
	if !strings.HasPrefix(got, `["2001ApJ...1..1A",1,1,0,2,7,0,[3,4],[`) {
		t.Errorf("MarshalJSON() = %s, unexpected positional prefix", got)
	}
	if !strings.Contains(got, `],[],[`) {
		t.Errorf("MarshalJSON() = %s, want empty refereed list encoded as []", got)
	}
}

func TestAttributeVector_Consistent(t *testing.T) {
	ev := CitationEvent{Bibcode: "2010A&A...1..1C", AuthorCount: 1, Year: 2010}
	tests := []struct {
		name string
		v    AttributeVector
		want bool
	}{
		{"empty", AttributeVector{}, true},
		{"one refereed", AttributeVector{
			CitationCount:          1,
			RefereedCitationCount:  1,
			CitationEvents:         []CitationEvent{ev},
			RefereedCitationEvents: []CitationEvent{ev},
		}, true},
		{"count mismatch", AttributeVector{
			CitationCount:  2,
			CitationEvents: []CitationEvent{ev},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Consistent(); got != tt.want {
				t.Errorf("Consistent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPublication_AuthorCount(t *testing.T) {
	if got := (Publication{}).AuthorCount(); got != 1 {
		t.Errorf("AuthorCount() with no authors = %d, want 1", got)
	}
	p := Publication{AuthorNorm: []string{"Smith, J", "Doe, A", "Roe, R"}}
	if got := p.AuthorCount(); got != 3 {
		t.Errorf("AuthorCount() = %d, want 3", got)
	}
}

func TestCitationLists_Add(t *testing.T) {
	var l CitationLists
	l.Add(CitationEvent{Bibcode: "a"}, true)
	l.Add(CitationEvent{Bibcode: "b"}, false)
	if len(l.All) != 2 || len(l.Refereed) != 1 || len(l.NonRefereed) != 1 {
		t.Fatalf("Add() lists = %d/%d/%d, want 2/1/1", len(l.All), len(l.Refereed), len(l.NonRefereed))
	}
	if l.Refereed[0].Bibcode == l.NonRefereed[0].Bibcode {
		t.Error("refereed and non-refereed lists overlap")
	}
}
