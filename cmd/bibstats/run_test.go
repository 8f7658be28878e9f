package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/bibstats/internal/aggregate"
	"github.com/matsen/bibstats/internal/config"
	"github.com/matsen/bibstats/internal/report"
	"github.com/matsen/bibstats/internal/result"
	"github.com/matsen/bibstats/internal/solr"
)

func TestBuildRequest(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bibcodes.txt")
	if err := os.WriteFile(file, []byte("# header\n2003MNRAS.1..1B\n\n  2005ApJ...2..2C  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		query        string
		library      string
		args         []string
		file         string
		wantBibcodes []string
		wantErr      bool
	}{
		{name: "query", query: "author:x"},
		{name: "library", library: "lib1"},
		{name: "args", args: []string{"2001ApJ...1..1A"}, wantBibcodes: []string{"2001ApJ...1..1A"}},
		{
			name:         "args then file",
			args:         []string{"2001ApJ...1..1A"},
			file:         file,
			wantBibcodes: []string{"2001ApJ...1..1A", "2003MNRAS.1..1B", "2005ApJ...2..2C"},
		},
		{name: "nothing", wantErr: true},
		{name: "query and args", query: "author:x", args: []string{"2001ApJ...1..1A"}, wantErr: true},
		{name: "missing file", file: filepath.Join(dir, "nope.txt"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := buildRequest(tt.query, tt.library, tt.args, tt.file, strings.NewReader(""))
			if tt.wantErr {
				if err == nil {
					t.Errorf("buildRequest() = %+v, want error", req)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildRequest() error = %v", err)
			}
			if fmt.Sprint(req.Bibcodes) != fmt.Sprint(tt.wantBibcodes) {
				t.Errorf("Bibcodes = %v, want %v", req.Bibcodes, tt.wantBibcodes)
			}
		})
	}
}

func TestBuildRequest_NoSource(t *testing.T) {
	_, err := buildRequest("", "", nil, "", nil)
	if !errors.Is(err, aggregate.ErrNoRequest) {
		t.Errorf("buildRequest() error = %v, want ErrNoRequest", err)
	}
}

func TestReadBibcodes_Stdin(t *testing.T) {
	got, err := readBibcodes("-", strings.NewReader("A\nB\n#C\n"))
	if err != nil {
		t.Fatalf("readBibcodes() error = %v", err)
	}
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("readBibcodes() = %v", got)
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid config", fmt.Errorf("%w: threads", config.ErrInvalid), ExitConfigError},
		{"auth", fmt.Errorf("%w: %w", aggregate.ErrResolution, solr.ErrAuthError), ExitAuthError},
		{"resolution", fmt.Errorf("%w: boom", aggregate.ErrResolution), ExitDataError},
		{"other", errors.New("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrintDocumentHuman(t *testing.T) {
	models := report.Select([]string{report.GroupMetrics})
	doc := report.Document{
		"metrics":          result.Values{"H-index": 2, "e-index": result.NA, "m-index": 0.4},
		"refereed_metrics": result.Values{"H-index": 1},
	}
	var buf bytes.Buffer
	printDocumentHuman(&buf, doc, models)
	out := buf.String()

	for _, want := range []string{"metrics\n", "refereed_metrics\n", "H-index", "NA", "0.4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "e-index") > strings.Index(out, "m-index") {
		t.Errorf("labels not sorted:\n%s", out)
	}
}
