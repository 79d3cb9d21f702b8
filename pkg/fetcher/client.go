package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"mediascrape/pkg/config"
	"mediascrape/pkg/errors"
	"mediascrape/pkg/logger"
	"mediascrape/pkg/ratelimit"
)

// Response is a fully read HTTP response body
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// StatusError returns a typed error for a non-2xx status, or nil
func (r *Response) StatusError() error {
	if err := errors.FromStatus(r.StatusCode, r.URL); err != nil {
		return err
	}
	return nil
}

// Client fetches pages and media over HTTP
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a client from the HTTP configuration. A positive
// RequestsPerMinute paces every request through a token bucket.
func NewClient(cfg config.HTTPConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		headers: map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
		},
		limiter: ratelimit.PerMinute(cfg.RequestsPerMinute),
		logger:  log.WithField("component", "fetcher"),
	}
}

// SetHeader sets a custom header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// doRequest waits for the limiter, applies the configured headers and sends req
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, errors.New(errors.ErrorTypeNetwork, fmt.Sprintf("rate limit wait aborted for %s", req.URL), err)
		}
	}

	for key, value := range c.headers {
		if value != "" {
			req.Header.Set(key, value)
		}
	}

	start := time.Now()
	c.logger.DebugWithFields("Sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.New(errors.ErrorTypeNetwork, fmt.Sprintf("request to %s failed", req.URL), err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeInvalidURL, fmt.Sprintf("invalid url %q", rawURL), err)
	}
	return req, nil
}

// Get fetches rawURL and reads the whole body. Only transport and read
// failures are errors; a non-2xx body is returned like any other and the
// caller decides what the status means (see Response.StatusError).
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeNetwork, fmt.Sprintf("failed to read body of %s", rawURL), err)
	}

	return &Response{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Head asks for the size of rawURL without downloading it. The second
// return value is false when the size is unknown for any reason.
func (c *Client) Head(ctx context.Context, rawURL string) (int64, bool) {
	req, err := c.newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return 0, false
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || resp.ContentLength < 0 {
		return 0, false
	}
	return resp.ContentLength, true
}

// Download fetches a media file. When the server sends no Content-Type the
// type is sniffed from the body.
func (c *Client) Download(ctx context.Context, rawURL string) (*Response, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if resp.ContentType == "" && len(resp.Body) > 0 {
		resp.ContentType = mimetype.Detect(resp.Body).String()
	}

	c.logger.DebugWithFields("Downloaded media", map[string]interface{}{
		"url":          rawURL,
		"size":         len(resp.Body),
		"content_type": resp.ContentType,
	})

	return resp, nil
}
