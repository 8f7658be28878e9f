package main

import (
	"errors"

	"github.com/matsen/bibstats/internal/aggregate"
	"github.com/matsen/bibstats/internal/config"
	"github.com/matsen/bibstats/internal/solr"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable or invalid config)
	ExitDataError   = 3 // Publication set could not be resolved
	ExitAuthError   = 4 // Search index rejected the API token
)

// exitCodeFor maps a run error onto an exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, config.ErrInvalid):
		return ExitConfigError
	case solr.IsAuthError(err):
		return ExitAuthError
	case errors.Is(err, aggregate.ErrResolution):
		return ExitDataError
	default:
		return ExitError
	}
}
