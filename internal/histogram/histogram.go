// Package histogram computes per-year histograms over attribute vectors.
//
// Every histogram holds four parallel series per year: unweighted over all
// publications, unweighted over refereed publications, and the same two
// with each contribution multiplied by its fractional-credit weight.
package histogram

import (
	"strconv"
	"strings"
	"time"

	"github.com/matsen/bibstats/internal/bibcode"
	"github.com/matsen/bibstats/internal/record"
	"github.com/matsen/bibstats/internal/result"
)

// DefaultReadsFloorYear is the year of the first entry of a yearly reads array.
const DefaultReadsFloorYear = 1996

// Point is one contribution to a histogram.
type Point struct {
	Year     int
	Value    float64
	Weight   float64
	Refereed bool
}

// Bin holds the four series values of one year.
type Bin struct {
	Year             int
	All              float64
	Refereed         float64
	WeightedAll      float64
	WeightedRefereed float64
}

// String encodes the bin as "all:refereed:weighted:weighted refereed".
func (b Bin) String() string {
	parts := []string{
		formatValue(b.All),
		formatValue(b.Refereed),
		formatValue(b.WeightedAll),
		formatValue(b.WeightedRefereed),
	}
	return strings.Join(parts, ":")
}

func formatValue(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Bins accumulates points into consecutive yearly bins. The range spans
// the observed years, starting no later than floor when floor is positive.
// Points with a non-positive year are ignored. Without usable points a
// single zero bin for currentYear is returned.
func Bins(points []Point, floor, currentYear int) []Bin {
	minYear, maxYear, ok := 0, 0, false
	for _, p := range points {
		if p.Year <= 0 {
			continue
		}
		if !ok {
			minYear, maxYear, ok = p.Year, p.Year, true
			continue
		}
		minYear = min(minYear, p.Year)
		maxYear = max(maxYear, p.Year)
	}
	if !ok {
		return []Bin{{Year: currentYear}}
	}
	if floor > 0 {
		minYear = min(minYear, floor)
	}

	bins := make([]Bin, maxYear-minYear+1)
	for i := range bins {
		bins[i].Year = minYear + i
	}
	for _, p := range points {
		if p.Year <= 0 {
			continue
		}
		b := &bins[p.Year-minYear]
		b.All += p.Value
		b.WeightedAll += p.Value * p.Weight
		if p.Refereed {
			b.Refereed += p.Value
			b.WeightedRefereed += p.Value * p.Weight
		}
	}
	return bins
}

// Kind identifies a histogram model.
type Kind int

// Histogram kinds, in report order.
const (
	Publications Kind = iota
	Reads
	RefereedCitations
	NonRefereedCitations
)

// Kinds lists every histogram kind.
var Kinds = []Kind{Publications, Reads, RefereedCitations, NonRefereedCitations}

var kindNames = map[Kind]string{
	Publications:         "publication_histogram",
	Reads:                "reads_histogram",
	RefereedCitations:    "refereed_citation_histogram",
	NonRefereedCitations: "non_refereed_citation_histogram",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Options configures histogram computation.
type Options struct {
	ReadsFloorYear int              // Year of reads[0]; DefaultReadsFloorYear if zero
	Now            func() time.Time // Clock for the degenerate bin; time.Now if nil
}

func (o Options) currentYear() int {
	if o.Now != nil {
		return o.Now().Year()
	}
	return time.Now().Year()
}

func (o Options) readsFloor() int {
	if o.ReadsFloorYear > 0 {
		return o.ReadsFloorYear
	}
	return DefaultReadsFloorYear
}

// Points projects vectors onto the points of kind k.
func Points(k Kind, vectors []record.AttributeVector, opts Options) []Point {
	var points []Point
	for _, v := range vectors {
		switch k {
		case Publications:
			year, _ := bibcode.Year(v.Bibcode)
			points = append(points, Point{Year: year, Value: 1, Weight: v.Weight(), Refereed: v.Refereed})
		case Reads:
			floor := opts.readsFloor()
			for i, n := range v.YearlyReads {
				points = append(points, Point{Year: floor + i, Value: float64(n), Weight: v.Weight(), Refereed: v.Refereed})
			}
		case RefereedCitations:
			points = append(points, citationPoints(v, v.RefereedCitationEvents)...)
		case NonRefereedCitations:
			points = append(points, citationPoints(v, v.NonRefereedCitationEvents)...)
		}
	}
	return points
}

// citationPoints places each event at the citer's year. The refereed series
// follows the cited publication; the weight is the cited paper's credit.
func citationPoints(v record.AttributeVector, events []record.CitationEvent) []Point {
	points := make([]Point, 0, len(events))
	for _, ev := range events {
		points = append(points, Point{Year: ev.Year, Value: 1, Weight: v.Weight(), Refereed: v.Refereed})
	}
	return points
}

// Compute builds histogram k over vectors, keyed by year.
func Compute(k Kind, vectors []record.AttributeVector, opts Options) result.Result {
	floor := 0
	if k == Reads {
		floor = opts.readsFloor()
	}
	bins := Bins(Points(k, vectors, opts), floor, opts.currentYear())

	values := make(result.Values, len(bins))
	for _, b := range bins {
		values[strconv.Itoa(b.Year)] = b.String()
	}
	return result.Result{Type: k.String(), Values: values}
}
