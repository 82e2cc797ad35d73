// Package fetcher retrieves page content over HTTP for the crawler.
//
// A Fetcher issues a plain GET request per URL with a fixed timeout and
// succeeds only on HTTP 200. The body is decoded to UTF-8 text using the
// charset declared by the response headers or the document itself.
// Every other outcome (non-200 status, network error, timeout, unreadable
// body) is reported as a *FetchError carrying the cause.
//
// No custom headers or cookies are sent and the default redirect policy of
// net/http applies. Requests can optionally be routed through a SOCKS5
// proxy, see NewHTTPClient.
package fetcher
