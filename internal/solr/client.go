package solr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/bibstats/internal/record"
	"github.com/segmentio/encoding/json"
	"github.com/sethgrid/pester"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default number of requests per second.
	DefaultRateLimit = 10.0

	// DefaultMaxRetries is the number of attempts per request.
	DefaultMaxRetries = 3

	// DefaultRows is used when a non-positive row count is requested.
	DefaultRows = 10000
)

// Client is a rate-limited, retrying client for a Solr select handler.
type Client struct {
	httpClient *pester.Client
	limiter    *rate.Limiter
	baseURL    string
	token      string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the bearer token for authenticated requests.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithRateLimit sets the maximum number of requests per second.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithMaxRetries sets the number of attempts per request.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.httpClient.MaxRetries = n
		}
	}
}

// WithBackoff sets the wait between retries.
func WithBackoff(b pester.BackoffStrategy) ClientOption {
	return func(c *Client) {
		c.httpClient.Backoff = b
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a client for the select handler at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	hc := pester.New()
	hc.Timeout = DefaultTimeout
	hc.MaxRetries = DefaultMaxRetries
	hc.Backoff = pester.ExponentialBackoff
	hc.SetRetryOnHTTP429(true)

	c := &Client{
		httpClient: hc,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, query string) error {
	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == 429:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
			Query:      query,
		}
	}
	return nil
}

// Search runs query against the select handler and returns the matching
// documents restricted to fields. At most rows documents are returned.
func (c *Client) Search(ctx context.Context, query string, fields []string, rows int) ([]record.Publication, error) {
	if rows <= 0 {
		rows = DefaultRows
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("fl", strings.Join(fields, ","))
	params.Set("rows", strconv.Itoa(rows))
	params.Set("wt", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, query); err != nil {
		return nil, err
	}

	var sr SelectResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: decoding select response: %v", ErrInvalidResponse, err)
	}
	if sr.Error != nil {
		return nil, &APIError{StatusCode: sr.Error.Code, Message: sr.Error.Msg, Query: query}
	}

	return sr.Response.Docs, nil
}

// Citations returns the papers citing bibcode, with the fields needed to
// classify them.
func (c *Client) Citations(ctx context.Context, bibcode string, rows int) ([]record.Publication, error) {
	return c.Search(ctx, CitationsQuery(bibcode), CitationFields, rows)
}

// Publications returns the publication records for a batch of bibcodes.
func (c *Client) Publications(ctx context.Context, bibcodes []string, rows int) ([]record.Publication, error) {
	if len(bibcodes) == 0 {
		return nil, nil
	}
	return c.Search(ctx, BibcodeQuery(bibcodes), PublicationFields, rows)
}
