package record

import "github.com/segmentio/encoding/json"

// AttributeVectorLen is the number of positional fields in an AttributeVector.
const AttributeVectorLen = 11

// AttributeVector is the fixed-shape per-publication input to every model.
//
// Field order matches the positional wire form produced by MarshalJSON:
//
//	[bibcode, refereed, citations, refereed citations, authors,
//	 reads, downloads, yearly reads, citation events,
//	 refereed citation events, non-refereed citation events]
type AttributeVector struct {
	Bibcode                   string
	Refereed                  bool
	CitationCount             int
	RefereedCitationCount     int
	AuthorCount               int
	TotalReads                int
	TotalDownloads            int
	YearlyReads               []int
	CitationEvents            []CitationEvent
	RefereedCitationEvents    []CitationEvent
	NonRefereedCitationEvents []CitationEvent
}

// Weight returns the fractional credit 1/authors.
func (v AttributeVector) Weight() float64 {
	return 1.0 / float64(max(1, v.AuthorCount))
}

// NonRefereedCitationCount returns the number of non-refereed citation events.
func (v AttributeVector) NonRefereedCitationCount() int {
	return len(v.NonRefereedCitationEvents)
}

// Consistent reports whether the count fields agree with the event lists.
func (v AttributeVector) Consistent() bool {
	return v.CitationCount == len(v.CitationEvents) &&
		v.RefereedCitationCount == len(v.RefereedCitationEvents) &&
		v.CitationCount == v.RefereedCitationCount+len(v.NonRefereedCitationEvents)
}

// MarshalJSON encodes the vector in its positional array form.
func (v AttributeVector) MarshalJSON() ([]byte, error) {
	refereed := 0
	if v.Refereed {
		refereed = 1
	}
	return json.Marshal([AttributeVectorLen]any{
		v.Bibcode,
		refereed,
		v.CitationCount,
		v.RefereedCitationCount,
		v.AuthorCount,
		v.TotalReads,
		v.TotalDownloads,
		nonNil(v.YearlyReads),
		nonNil(v.CitationEvents),
		nonNil(v.RefereedCitationEvents),
		nonNil(v.NonRefereedCitationEvents),
	})
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
