package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/matsen/bibstats/internal/aggregate"
	"github.com/matsen/bibstats/internal/config"
	"github.com/matsen/bibstats/internal/docstore"
	"github.com/matsen/bibstats/internal/histogram"
	"github.com/matsen/bibstats/internal/report"
	"github.com/matsen/bibstats/internal/solr"
	"github.com/matsen/bibstats/internal/telemetry"
	"github.com/matsen/bibstats/internal/vector"
)

var (
	runQuery       string
	runBibcodeFile string
	runLibrary     string
	runTypes       []string
	runYear        int
	runThreads     int
	runOutput      string
	runMetricsFile string
)

var runCmd = &cobra.Command{
	Use:   "run [bibcode...]",
	Short: "Compute statistics, indices and histograms for a publication set",
	Long: `Compute the bibliometric report for a publication set.

The set is taken from --query, from bibcodes given as arguments or read
from --bibcodes (one per line, "-" for stdin), or from --library.

Model groups are selected with --types (statistics, metrics, histograms);
the default comes from the config file. --year restricts the evaluation to
publications and citations up to and including that year.

Examples:
  bibstats run --query 'author:"Smith, J"'
  bibstats run 2001ApJ...550..212S 2003MNRAS.341..345B --types metrics
  bibstats run --bibcodes papers.txt --year 2010 --human`,
	RunE: runStats,
}

func init() {
	runCmd.Flags().StringVarP(&runQuery, "query", "q", "", "Search query resolving the publication set")
	runCmd.Flags().StringVar(&runBibcodeFile, "bibcodes", "", "File with one bibcode per line (- for stdin)")
	runCmd.Flags().StringVar(&runLibrary, "library", "", "Library id resolving the publication set")
	runCmd.Flags().StringSliceVar(&runTypes, "types", nil, "Model groups to compute (statistics,metrics,histograms)")
	runCmd.Flags().IntVar(&runYear, "year", 0, "Only count publications and citations up to this year")
	runCmd.Flags().IntVar(&runThreads, "threads", 0, "Worker pool size (overrides config)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Write the JSON report to a file instead of stdout")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "Write run counters in Prometheus text format")
	rootCmd.AddCommand(runCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if cmd.Flags().Changed("threads") {
		cfg.Threads = runThreads
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	req, err := buildRequest(runQuery, runLibrary, args, runBibcodeFile, os.Stdin)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	log := mustNewLogger().WithField("run_id", uuid.NewString())
	ctx := cmd.Context()
	start := time.Now()

	var usage aggregate.UsageStore
	if cfg.UsageDB != "" {
		db, err := docstore.OpenDB(cfg.UsageDB)
		if err != nil {
			exitWithError(ExitConfigError, "opening usage store: %v", err)
		}
		defer db.Close()
		usage = db
	}

	rec := telemetry.NewRecorder()
	agg := aggregate.New(newSolrClient(cfg), usage, aggregate.Options{
		Threads:   cfg.Threads,
		ChunkSize: cfg.ChunkSize,
		MaxHits:   cfg.MaxHits,
	}, log, rec)

	res, err := agg.Run(ctx, req)
	if err != nil {
		writeMetricsFile(log, rec)
		exitWithError(exitCodeFor(err), "%v", err)
	}

	vectors := res.Vectors
	if runYear > 0 {
		vectors = vector.Subset(vectors, runYear)
		log.WithFields(logrus.Fields{"year": runYear, "count": len(vectors)}).Info("restricted to year")
	}

	groups := runTypes
	if len(groups) == 0 {
		groups = cfg.DefaultModels
	}
	models := report.Select(groups)
	in := report.NewInput(vectors, cfg.MinBiblioLength, histogram.Options{ReadsFloorYear: cfg.ReadsFloorYear})

	doc, err := report.Generate(ctx, in, models, cfg.Threads)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	log.WithFields(logrus.Fields{
		"stage":    "report",
		"models":   len(models),
		"duration": time.Since(start),
	}).Info("report complete")

	writeMetricsFile(log, rec)

	if err := writeReport(doc, models, runOutput); err != nil {
		exitWithError(ExitError, "writing report: %v", err)
	}
	return nil
}

// newSolrClient builds the search client from configuration.
func newSolrClient(cfg *config.Config) *solr.Client {
	return solr.NewClient(cfg.SolrURL,
		solr.WithToken(cfg.APIToken),
		solr.WithRateLimit(cfg.RateLimit),
		solr.WithMaxRetries(cfg.MaxRetries),
		solr.WithTimeout(cfg.Timeout),
	)
}

// buildRequest combines the source flags into a request. Bibcodes from
// arguments come before bibcodes read from file.
func buildRequest(query, library string, args []string, bibcodeFile string, stdin io.Reader) (aggregate.Request, error) {
	req := aggregate.Request{
		Query:     query,
		LibraryID: library,
		Bibcodes:  append([]string(nil), args...),
	}
	if bibcodeFile != "" {
		fromFile, err := readBibcodes(bibcodeFile, stdin)
		if err != nil {
			return req, err
		}
		req.Bibcodes = append(req.Bibcodes, fromFile...)
	}

	sources := 0
	for _, set := range []bool{strings.TrimSpace(req.Query) != "", len(req.Bibcodes) > 0, req.LibraryID != ""} {
		if set {
			sources++
		}
	}
	switch sources {
	case 0:
		return req, aggregate.ErrNoRequest
	case 1:
		return req, nil
	default:
		return req, fmt.Errorf("use only one of --query, bibcodes or --library")
	}
}

// readBibcodes reads one bibcode per line, skipping blank lines and
// lines starting with #. path "-" reads from stdin.
func readBibcodes(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening bibcode file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var bibcodes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		bibcodes = append(bibcodes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading bibcode file: %w", err)
	}
	return bibcodes, nil
}

// writeReport writes the document to path, or to stdout when path is empty.
func writeReport(doc report.Document, models []report.Model, path string) error {
	if path == "" {
		if humanOutput {
			printDocumentHuman(os.Stdout, doc, models)
			return nil
		}
		return doc.WriteJSON(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := doc.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeMetricsFile(log logrus.FieldLogger, rec *telemetry.Recorder) {
	if runMetricsFile == "" {
		return
	}
	if err := rec.WriteTextfile(runMetricsFile); err != nil {
		log.WithError(err).Warn("writing metrics file failed")
	}
}
