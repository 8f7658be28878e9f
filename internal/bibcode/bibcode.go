// Package bibcode provides helpers for publication identifiers (bibcodes).
//
// The first four characters of a bibcode encode the publication year.
package bibcode

import "strconv"

// Year decodes the publication year from the bibcode prefix.
// Returns false if the prefix is not a four-digit year.
func Year(bibcode string) (int, bool) {
	if len(bibcode) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(bibcode[:4])
	if err != nil || year < 0 {
		return 0, false
	}
	return year, true
}

// TimeSpan returns the inclusive year range covered by the bibcodes,
// floored at 1. Bibcodes without a decodable year are ignored.
func TimeSpan(bibcodes []string) int {
	minYear, maxYear, ok := YearRange(bibcodes)
	if !ok {
		return 1
	}
	return max(maxYear-minYear+1, 1)
}

// YearRange returns the smallest and largest decodable year.
func YearRange(bibcodes []string) (minYear, maxYear int, ok bool) {
	for _, b := range bibcodes {
		y, valid := Year(b)
		if !valid {
			continue
		}
		if !ok {
			minYear, maxYear, ok = y, y, true
			continue
		}
		minYear = min(minYear, y)
		maxYear = max(maxYear, y)
	}
	return minYear, maxYear, ok
}

// Chunks splits ids into consecutive batches of at most size elements.
// A non-positive size yields a single batch.
func Chunks(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(ids)
	}
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}
