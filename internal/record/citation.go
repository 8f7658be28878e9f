package record

// CitationEvent is one citing paper of a cited publication.
type CitationEvent struct {
	Bibcode     string `json:"bibcode"`      // Citing paper
	RefCount    int    `json:"ref_count"`    // Length of the citer's reference list, 0 if absent
	AuthorCount int    `json:"author_count"` // Citer author count, at least 1
	Year        int    `json:"year"`         // Citer publication year
}

// CitationLists partitions the citations of one cited publication.
// All is the disjoint union of Refereed and NonRefereed.
type CitationLists struct {
	All         []CitationEvent
	Refereed    []CitationEvent
	NonRefereed []CitationEvent
}

// Add appends an event to All and to the list matching its refereed status.
func (l *CitationLists) Add(ev CitationEvent, refereed bool) {
	l.All = append(l.All, ev)
	if refereed {
		l.Refereed = append(l.Refereed, ev)
	} else {
		l.NonRefereed = append(l.NonRefereed, ev)
	}
}
