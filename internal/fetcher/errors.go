package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrUnexpectedStatus is wrapped by FetchError when the server answered
	// with a status other than 200 OK.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" form with a port between 1 and 65535.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// FetchError describes why a URL could not be fetched.
// The crawler treats all FetchErrors the same way: the URL is skipped and
// the crawl continues.
type FetchError struct {
	// URL is the URL that was requested.
	URL string

	// StatusCode is the HTTP status code when a response was received,
	// 0 for transport-level failures.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause so errors.Is and errors.As work.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the fetch failed because the request timed out.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Reason returns a short description suitable for reports.
func (e *FetchError) Reason() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP status %d", e.StatusCode)
	case e.Timeout():
		return "timeout"
	default:
		return e.Err.Error()
	}
}
