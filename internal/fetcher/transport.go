package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultTimeout is the fixed per-request timeout.
const DefaultTimeout = 10 * time.Second

// NewHTTPClient creates the HTTP client used by a Fetcher.
//
// When proxyAddress is empty, requests use the default transport.
// Otherwise every connection is dialed through the SOCKS5 proxy at
// proxyAddress ("host:port"). This is how .onion or otherwise
// firewalled sites can be crawled through a local Tor daemon.
//
// The client keeps the net/http defaults for redirects and sends no cookies.
func NewHTTPClient(timeout time.Duration, proxyAddress string) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if proxyAddress == "" {
		return &http.Client{Timeout: timeout}, nil
	}

	if !IsValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	// Nil auth: local SOCKS ports normally don't require credentials.
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	transport.Proxy = nil
	transport.DialContext = dialContextFunc(dialer)

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

// dialContextFunc adapts a proxy.Dialer to http.Transport.DialContext.
// The SOCKS5 dialer from x/net implements proxy.ContextDialer; other
// dialers are wrapped so the context still bounds the wait.
func dialContextFunc(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)

		go func() {
			conn, err := d.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()

		select {
		case result := <-resultCh:
			return result.conn, result.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// IsValidProxyAddress reports whether address is "host:port" with a
// non-empty host and a port in 1..65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}

	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
