// Package record defines the core domain types for bibliometric statistics.
package record

// PropertyRefereed marks a peer-reviewed publication in a property set.
const PropertyRefereed = "REFEREED"

// Publication is a publication record as returned by the search index.
type Publication struct {
	Bibcode    string   `json:"bibcode"`
	Reference  []string `json:"reference,omitempty"`   // Bibcodes cited by this publication
	AuthorNorm []string `json:"author_norm,omitempty"` // Normalized author names
	Property   []string `json:"property,omitempty"`    // REFEREED, ARTICLE, ...
	ReadCount  int      `json:"read_count,omitempty"`
}

// IsRefereed reports whether the property set contains REFEREED.
func (p Publication) IsRefereed() bool {
	return HasRefereed(p.Property)
}

// AuthorCount returns the number of authors, never less than 1.
func (p Publication) AuthorCount() int {
	return max(1, len(p.AuthorNorm))
}

// HasRefereed reports whether a property set contains REFEREED.
func HasRefereed(props []string) bool {
	for _, p := range props {
		if p == PropertyRefereed {
			return true
		}
	}
	return false
}

// Usage holds the yearly usage arrays for one publication.
type Usage struct {
	Bibcode   string `json:"bibcode"`
	Reads     []int  `json:"reads,omitempty"`
	Downloads []int  `json:"downloads,omitempty"`
}

// TotalReads sums the yearly reads.
func (u Usage) TotalReads() int {
	return sum(u.Reads)
}

// TotalDownloads sums the yearly downloads.
func (u Usage) TotalDownloads() int {
	return sum(u.Downloads)
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
