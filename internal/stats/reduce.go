// Package stats computes weighted count, sum, mean and median reductions
// over per-publication (value, weight) pairs.
package stats

import (
	"sort"
)

// Pair is one projected value with its fractional-credit weight.
type Pair struct {
	Value  float64
	Weight float64
}

// Reduction summarizes a sequence of pairs. Mean, WeightedMean, Median and
// Normalized are meaningful only when Defined is true.
type Reduction struct {
	Count        int
	Sum          float64
	Normalized   float64 // Σ value·weight
	Mean         float64
	WeightedMean float64 // Σ value·weight / Σ weight
	Median       float64
	Defined      bool
}

// Reduce computes the reduction of pairs. An empty sequence yields
// Count 0, Sum 0 and Defined false.
func Reduce(pairs []Pair) Reduction {
	r := Reduction{Count: len(pairs)}
	if len(pairs) == 0 {
		return r
	}

	values := make([]float64, len(pairs))
	var weights float64
	for i, p := range pairs {
		values[i] = p.Value
		r.Sum += p.Value
		r.Normalized += p.Value * p.Weight
		weights += p.Weight
	}

	r.Mean = r.Sum / float64(len(pairs))
	if weights > 0 {
		r.WeightedMean = r.Normalized / weights
	}
	r.Median = median(values)
	r.Defined = true
	return r
}

// median returns the middle value, averaging the two middle values of an
// even-length sequence. values is sorted in place.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
