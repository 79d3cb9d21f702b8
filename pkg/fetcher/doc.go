// Package fetcher is the scraper's HTTP client.
//
// Get reads a page, Head asks for a Content-Length before a download and
// Download reads a media body, sniffing its type when the server sends no
// Content-Type. Every call takes a context and passes through the optional
// rate limiter. Failures are *errors.Error values typed by cause; an HTTP
// error status is not a failure and is reported by Response.StatusError.
package fetcher
