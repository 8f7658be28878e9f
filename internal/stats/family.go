package stats

import (
	"github.com/matsen/bibstats/internal/record"
	"github.com/matsen/bibstats/internal/result"
)

// Family identifies a statistics model.
type Family int

// Statistics families, in report order.
const (
	Publications Family = iota
	Reads
	Downloads
	Citations
	RefereedCitations
)

// Families lists every statistics family.
var Families = []Family{Publications, Reads, Downloads, Citations, RefereedCitations}

var familyNames = map[Family]string{
	Publications:      "publications",
	Reads:             "reads",
	Downloads:         "downloads",
	Citations:         "citations",
	RefereedCitations: "refereed_citations",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "unknown"
}

// Totals are run-level counts some families report verbatim.
type Totals struct {
	Citations         int
	RefereedCitations int
}

// Projector is the per-family strategy: it maps a vector to its (value,
// weight) pair and labels the reductions.
type Projector interface {
	Project(v record.AttributeVector) Pair
	Summarize(all, refereed Reduction, totals Totals) result.Values
}

var registry = map[Family]Projector{
	Publications:      publicationsProjector{},
	Reads:             readsProjector{},
	Downloads:         downloadsProjector{},
	Citations:         citationsProjector{},
	RefereedCitations: refereedCitationsProjector{},
}

// ProjectorFor returns the projector registered for f.
func ProjectorFor(f Family) (Projector, bool) {
	p, ok := registry[f]
	return p, ok
}

// Compute projects every vector, reduces the full and refereed sequences
// and labels the result with the family's type.
func Compute(f Family, vectors []record.AttributeVector, totals Totals) result.Result {
	p, ok := ProjectorFor(f)
	if !ok {
		return result.Result{Type: f.String(), Values: result.Values{}}
	}

	all := make([]Pair, 0, len(vectors))
	var refereed []Pair
	for _, v := range vectors {
		pair := p.Project(v)
		all = append(all, pair)
		if v.Refereed {
			refereed = append(refereed, pair)
		}
	}

	return result.Result{
		Type:   f.String(),
		Values: p.Summarize(Reduce(all), Reduce(refereed), totals),
	}
}

func mean(r Reduction) any       { return result.Number(r.Mean, r.Defined) }
func med(r Reduction) any        { return result.Number(r.Median, r.Defined) }
func normalized(r Reduction) any { return result.Number(r.Normalized, r.Defined) }

type publicationsProjector struct{}

func (publicationsProjector) Project(v record.AttributeVector) Pair {
	return Pair{Value: 1, Weight: v.Weight()}
}

func (publicationsProjector) Summarize(all, ref Reduction, _ Totals) result.Values {
	return result.Values{
		"Number of papers (Total)":          all.Count,
		"Normalized paper count (Total)":    normalized(all),
		"Number of papers (Refereed)":       ref.Count,
		"Normalized paper count (Refereed)": normalized(ref),
	}
}

type readsProjector struct{}

func (readsProjector) Project(v record.AttributeVector) Pair {
	return Pair{Value: float64(v.TotalReads), Weight: v.Weight()}
}

func (readsProjector) Summarize(all, ref Reduction, _ Totals) result.Values {
	return result.Values{
		"Total reads (Total)":         all.Sum,
		"Average reads (Total)":       mean(all),
		"Median reads (Total)":        med(all),
		"Normalized reads (Total)":    normalized(all),
		"Total reads (Refereed)":      ref.Sum,
		"Average reads (Refereed)":    mean(ref),
		"Median reads (Refereed)":     med(ref),
		"Normalized reads (Refereed)": normalized(ref),
	}
}

type downloadsProjector struct{}

func (downloadsProjector) Project(v record.AttributeVector) Pair {
	return Pair{Value: float64(v.TotalDownloads), Weight: v.Weight()}
}

func (downloadsProjector) Summarize(all, ref Reduction, _ Totals) result.Values {
	return result.Values{
		"Total downloads (Total)":         all.Sum,
		"Average downloads (Total)":       mean(all),
		"Median downloads (Total)":        med(all),
		"Normalized downloads (Total)":    normalized(all),
		"Total downloads (Refereed)":      ref.Sum,
		"Average downloads (Refereed)":    mean(ref),
		"Median downloads (Refereed)":     med(ref),
		"Normalized downloads (Refereed)": normalized(ref),
	}
}

type citationsProjector struct{}

func (citationsProjector) Project(v record.AttributeVector) Pair {
	return Pair{Value: float64(v.CitationCount), Weight: v.Weight()}
}

func (citationsProjector) Summarize(all, ref Reduction, totals Totals) result.Values {
	return result.Values{
		"Number of citing papers (Total)":    totals.Citations,
		"Total citations (Total)":            all.Sum,
		"Average citations (Total)":          mean(all),
		"Median citations (Total)":           med(all),
		"Normalized citations (Total)":       normalized(all),
		"Number of citing papers (Refereed)": totals.RefereedCitations,
		"Total citations (Refereed)":         ref.Sum,
		"Average citations (Refereed)":       mean(ref),
		"Median citations (Refereed)":        med(ref),
		"Normalized citations (Refereed)":    normalized(ref),
	}
}

type refereedCitationsProjector struct{}

func (refereedCitationsProjector) Project(v record.AttributeVector) Pair {
	return Pair{Value: float64(v.RefereedCitationCount), Weight: v.Weight()}
}

func (refereedCitationsProjector) Summarize(all, ref Reduction, _ Totals) result.Values {
	return result.Values{
		"Refereed citations (Total)":               all.Sum,
		"Average refereed citations (Total)":       mean(all),
		"Median refereed citations (Total)":        med(all),
		"Normalized refereed citations (Total)":    normalized(all),
		"Refereed citations (Refereed)":            ref.Sum,
		"Average refereed citations (Refereed)":    mean(ref),
		"Median refereed citations (Refereed)":     med(ref),
		"Normalized refereed citations (Refereed)": normalized(ref),
	}
}
