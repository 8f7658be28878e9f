// Package indices computes composite impact indices (h, g, m, i10, e,
// tori, riq) for a set of publications.
package indices

import (
	"math"
	"slices"

	"github.com/matsen/bibstats/internal/bibcode"
	"github.com/matsen/bibstats/internal/record"
	"github.com/matsen/bibstats/internal/result"
	"github.com/matsen/bibstats/internal/vector"
)

// DefaultMinBiblioLength is the default floor of the tori denominator.
const DefaultMinBiblioLength = 5

// Result types.
const (
	TypeMetrics         = "metrics"
	TypeRefereedMetrics = "refereed_metrics"
)

// Result labels.
const (
	LabelH        = "H-index"
	LabelG        = "g-index"
	LabelM        = "m-index"
	LabelI10      = "i10-index"
	LabelE        = "e-index"
	LabelTori     = "tori index"
	LabelRiq      = "riq index"
	LabelTimeSpan = "time span"
)

// HIndex returns the largest rank r such that the r-th count is at least r.
// counts must be sorted in descending order.
func HIndex(counts []int) int {
	h := 0
	for i, c := range counts {
		if c < i+1 {
			break
		}
		h = i + 1
	}
	return h
}

// GIndex returns the largest rank r such that the top r counts sum to at
// least r². counts must be sorted in descending order.
func GIndex(counts []int) int {
	g, cumulative := 0, 0
	for i, c := range counts {
		r := i + 1
		cumulative += c
		if cumulative >= r*r {
			g = r
		}
	}
	return g
}

// I10Index returns the number of publications with at least 10 citations.
func I10Index(counts []int) int {
	n := 0
	for _, c := range counts {
		if c >= 10 {
			n++
		}
	}
	return n
}

// EIndex returns sqrt(Σ top-h counts − h²). The boolean is false when h is
// zero or the excess is negative.
func EIndex(counts []int, h int) (float64, bool) {
	if h <= 0 || h > len(counts) {
		return 0, false
	}
	excess := -h * h
	for _, c := range counts[:h] {
		excess += c
	}
	if excess < 0 {
		return 0, false
	}
	return math.Sqrt(float64(excess)), true
}

// Tori sums 1/(max(citer authors, minBiblio) · citer references) over the
// events. Events without references are skipped. The boolean is false when
// no event contributes.
func Tori(events []record.CitationEvent, minBiblio int) (float64, bool) {
	var tori float64
	for _, ev := range events {
		if ev.RefCount <= 0 {
			continue
		}
		tori += 1.0 / (float64(max(ev.AuthorCount, minBiblio)) * float64(ev.RefCount))
	}
	if tori <= 0 {
		return 0, false
	}
	return tori, true
}

// Riq returns floor(1000·sqrt(tori)/span).
func Riq(tori float64, span int) int {
	return int(math.Floor(1000 * math.Sqrt(tori) / float64(max(span, 1))))
}

// Counts returns the citation counts of vectors in descending order.
func Counts(vectors []record.AttributeVector) []int {
	counts := make([]int, len(vectors))
	for i, v := range vectors {
		counts[i] = v.CitationCount
	}
	slices.Sort(counts)
	slices.Reverse(counts)
	return counts
}

// Compute evaluates every index over vectors and labels the result typ.
func Compute(typ string, vectors []record.AttributeVector, minBiblio int) result.Result {
	counts := Counts(vectors)
	var events []record.CitationEvent
	for _, v := range vectors {
		events = append(events, v.CitationEvents...)
	}
	span := bibcode.TimeSpan(vector.Bibcodes(vectors))

	h := HIndex(counts)
	e, eOK := EIndex(counts, h)
	tori, toriOK := Tori(events, minBiblio)

	values := result.Values{
		LabelH:        h,
		LabelG:        GIndex(counts),
		LabelM:        float64(h) / float64(span),
		LabelI10:      I10Index(counts),
		LabelE:        result.Number(e, eOK),
		LabelTori:     result.Number(tori, toriOK),
		LabelRiq:      result.NA,
		LabelTimeSpan: span,
	}
	if toriOK {
		values[LabelRiq] = Riq(tori, span)
	}
	return result.Result{Type: typ, Values: values}
}

