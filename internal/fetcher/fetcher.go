package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/net/html/charset"
)

// DefaultMaxBodySize limits how much of a response body is read.
const DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// Fetcher retrieves page content for a URL.
//
// Design decision: We take the *http.Client from the caller because:
//  1. The timeout and proxy are configured once in NewHTTPClient
//  2. Tests can pass httptest clients
type Fetcher struct {
	// client performs the requests. Its Timeout bounds every fetch.
	client *http.Client

	// maxBodySize limits the number of body bytes read per page.
	maxBodySize int64

	// logger receives debug output for each request.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxBodySize sets the maximum number of body bytes read per page.
// Non-positive values are ignored.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher using client for all requests.
// A nil client falls back to a direct client with DefaultTimeout.
func New(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	f := &Fetcher{
		client:      client,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch issues a GET request for pageURL and returns the body as UTF-8 text.
// Any failure is returned as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	f.logger.Debug("fetched",
		"url", pageURL,
		"status", resp.StatusCode,
		"contentType", resp.Header.Get("Content-Type"),
	)

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return "", &FetchError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status),
		}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("failed to decode body: %w", err)}
	}

	content, err := io.ReadAll(body)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	return string(content), nil
}
