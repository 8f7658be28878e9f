// Package result defines the labeled values produced by every model and
// the sentinel used for undefined quantities.
package result

import "math"

// NA marks a value that is undefined for the input, such as the mean of an
// empty sequence or an e-index when the h-index is zero.
const NA = "NA"

// Values maps human-readable labels to a number or a string.
type Values map[string]any

// Result is the output of one model, tagged with its type.
type Result struct {
	Type   string
	Values Values
}

// Number returns x, or NA when ok is false or x is not finite.
func Number(x float64, ok bool) any {
	if !ok || math.IsNaN(x) || math.IsInf(x, 0) {
		return NA
	}
	return x
}
