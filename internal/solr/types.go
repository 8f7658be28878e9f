// Package solr provides a client for the Solr search index holding publication records.
package solr

import (
	"fmt"
	"strings"

	"github.com/matsen/bibstats/internal/record"
)

// Field lists requested from the search index.
var (
	// PublicationFields are the fields needed to build attribute vectors.
	PublicationFields = []string{"bibcode", "reference", "author_norm", "property", "read_count"}

	// CitationFields are the fields needed to classify a citing paper.
	CitationFields = []string{"bibcode", "property", "reference"}
)

// SelectResponse is the JSON body returned by the select handler.
type SelectResponse struct {
	ResponseHeader struct {
		Status int `json:"status"`
		QTime  int `json:"QTime"`
	} `json:"responseHeader"`
	Response struct {
		NumFound int                  `json:"numFound"`
		Start    int                  `json:"start"`
		Docs     []record.Publication `json:"docs"`
	} `json:"response"`
	Error *struct {
		Msg  string `json:"msg"`
		Code int    `json:"code"`
	} `json:"error,omitempty"`
}

// CitationsQuery returns the query selecting all papers that cite bibcode.
func CitationsQuery(bibcode string) string {
	return fmt.Sprintf("citations(bibcode:%s)", bibcode)
}

// BibcodeQuery returns a disjunction selecting every bibcode in the batch.
func BibcodeQuery(bibcodes []string) string {
	terms := make([]string, len(bibcodes))
	for i, b := range bibcodes {
		terms[i] = "bibcode:" + b
	}
	return strings.Join(terms, " OR ")
}
