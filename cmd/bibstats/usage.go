package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibstats/internal/config"
	"github.com/matsen/bibstats/internal/docstore"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Manage the usage document store",
	Long: `Commands for the local document store holding per-publication usage
data (yearly reads and downloads).

The store is a SQLite file configured with usage_db or BIBSTATS_USAGE_DB.`,
}

var usageImportCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Load usage documents from a JSONL file",
	Long: `Load one JSON document per line into the usage store. Every document
needs a bibcode; documents with a bibcode already in the store replace it.`,
	Args: cobra.ExactArgs(1),
	RunE: runUsageImport,
}

var usageShowCmd = &cobra.Command{
	Use:   "show <bibcode>",
	Short: "Show the usage record of one publication",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsageShow,
}

func init() {
	usageCmd.AddCommand(usageImportCmd)
	usageCmd.AddCommand(usageShowCmd)
	rootCmd.AddCommand(usageCmd)
}

// mustOpenUsageDB opens the configured usage store, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenUsageDB(cfg *config.Config) *docstore.DB {
	if cfg.UsageDB == "" {
		exitWithError(ExitConfigError, "usage_db not configured (set it in %s or %s)", config.Path(), config.EnvUsageDB)
	}
	db, err := docstore.OpenDB(cfg.UsageDB)
	if err != nil {
		exitWithError(ExitError, "opening usage store: %v", err)
	}
	return db
}

func runUsageImport(cmd *cobra.Command, args []string) error {
	db := mustOpenUsageDB(mustLoadConfig())
	defer db.Close()

	n, err := db.ImportJSONL(cmd.Context(), args[0])
	if err != nil {
		exitWithError(ExitDataError, "importing %s: %v", args[0], err)
	}
	total, err := db.Count(cmd.Context())
	if err != nil {
		exitWithError(ExitError, "counting documents: %v", err)
	}

	if humanOutput {
		fmt.Printf("Imported %d documents from %s (%d in store)\n", n, args[0], total)
		return nil
	}
	return outputJSON(ImportResponse{Status: "imported", Path: args[0], Imported: n, Total: total})
}

func runUsageShow(cmd *cobra.Command, args []string) error {
	db := mustOpenUsageDB(mustLoadConfig())
	defer db.Close()

	u, found, err := db.Usage(cmd.Context(), args[0])
	if err != nil {
		exitWithError(ExitError, "reading usage: %v", err)
	}
	if !found {
		exitWithError(ExitDataError, "no usage record for %s", args[0])
	}

	if humanOutput {
		fmt.Printf("%s\n  reads:     %d %v\n  downloads: %d %v\n",
			u.Bibcode, u.TotalReads(), u.Reads, u.TotalDownloads(), u.Downloads)
		return nil
	}
	return outputJSON(u)
}
