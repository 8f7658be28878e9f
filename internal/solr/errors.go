package solr

import (
	"errors"
	"fmt"
)

// Common errors returned by the Solr client.
var (
	// ErrAuthError indicates a missing or rejected API token.
	ErrAuthError = errors.New("search index authentication error")

	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("search index rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with search index")

	// ErrInvalidResponse indicates an unexpected response body.
	ErrInvalidResponse = errors.New("invalid response from search index")
)

// APIError represents an error reported by the search index.
type APIError struct {
	StatusCode int
	Message    string
	Query      string // For context in query-related errors
}

func (e *APIError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("search index error (status %d): %s (query: %s)", e.StatusCode, e.Message, e.Query)
	}
	return fmt.Sprintf("search index error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
