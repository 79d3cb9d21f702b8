package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediascrape/pkg/config"
	"mediascrape/pkg/errors"
	"mediascrape/pkg/logger"
)

func newTestClient(t *testing.T, log logger.Logger) *Client {
	t.Helper()
	cfg := config.DefaultConfig().HTTP
	cfg.Timeout = 5 * time.Second
	return NewClient(cfg, log)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func newMediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><title>x</title></html>"))
	})
	mux.HandleFunc("/sized.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1234")
		if r.Method == http.MethodHead {
			return
		}
		w.Write(make([]byte, 1234))
	})
	mux.HandleFunc("/untyped", func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write(pngHeader)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusGone)
		w.Write([]byte("gone"))
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestNewClient(t *testing.T) {
	cfg := config.DefaultConfig().HTTP

	client := NewClient(cfg, logger.NewTestLogger())
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, cfg.Timeout, client.httpClient.Timeout)
	assert.Equal(t, cfg.UserAgent, client.headers["User-Agent"])
	assert.Nil(t, client.limiter)

	cfg.RequestsPerMinute = 10
	client = NewClient(cfg, nil)
	assert.NotNil(t, client.limiter)
	assert.NotNil(t, client.logger)
}

func TestGet(t *testing.T) {
	server := newMediaServer(t)
	client := newTestClient(t, logger.NewTestLogger())

	resp, err := client.Get(context.Background(), server.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.ContentType)
	assert.Equal(t, "<html><title>x</title></html>", string(resp.Body))
}

func TestGetReturnsErrorStatusBodies(t *testing.T) {
	server := newMediaServer(t)
	client := newTestClient(t, logger.NewTestLogger())

	tests := []struct {
		path     string
		wantType errors.ErrorType
		wantCode int
		wantBody string
	}{
		{"/missing", errors.ErrorTypeNotFound, http.StatusNotFound, "404 page not found\n"},
		{"/gone", errors.ErrorTypeNotFound, http.StatusGone, "gone"},
		{"/boom", errors.ErrorTypeServerError, http.StatusInternalServerError, ""},
		{"/forbidden", errors.ErrorTypeClientError, http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := client.Get(context.Background(), server.URL+tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantBody, string(resp.Body))

			statusErr := resp.StatusError()
			require.Error(t, statusErr)
			assert.True(t, errors.IsType(statusErr, tt.wantType), "got %v", statusErr)
		})
	}

	resp, err := client.Get(context.Background(), server.URL+"/page")
	require.NoError(t, err)
	assert.NoError(t, resp.StatusError())
}

func TestDownloadKeepsErrorStatusBody(t *testing.T) {
	server := newMediaServer(t)
	client := newTestClient(t, logger.NewNop())

	resp, err := client.Download(context.Background(), server.URL+"/gone")
	require.NoError(t, err)
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Equal(t, "gone", string(resp.Body))
	assert.True(t, strings.HasPrefix(resp.ContentType, "text/plain"))
}

func TestGetNetworkError(t *testing.T) {
	server := newMediaServer(t)
	url := server.URL + "/page"
	server.Close()

	tl := logger.NewTestLogger()
	client := newTestClient(t, tl)

	_, err := client.Get(context.Background(), url)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	assert.True(t, tl.HasMessage("HTTP request failed"))
}

func TestGetInvalidURL(t *testing.T) {
	client := newTestClient(t, logger.NewNop())

	_, err := client.Get(context.Background(), "http://bad host/")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidURL))
}

func TestGetCancelledContext(t *testing.T) {
	server := newMediaServer(t)
	client := newTestClient(t, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, server.URL+"/page")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHead(t *testing.T) {
	server := newMediaServer(t)
	client := newTestClient(t, logger.NewNop())

	size, ok := client.Head(context.Background(), server.URL+"/sized.bin")
	assert.True(t, ok)
	assert.Equal(t, int64(1234), size)

	_, ok = client.Head(context.Background(), server.URL+"/missing")
	assert.False(t, ok, "non-2xx leaves the size unknown")

	_, ok = client.Head(context.Background(), "http://bad host/")
	assert.False(t, ok)
}

func TestDownloadSniffsMissingContentType(t *testing.T) {
	server := newMediaServer(t)
	client := newTestClient(t, logger.NewNop())

	resp, err := client.Download(context.Background(), server.URL+"/untyped")
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.ContentType)
	assert.Equal(t, pngHeader, resp.Body)

	resp, err = client.Download(context.Background(), server.URL+"/page")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ContentType, "text/html"))
}

func TestRateLimitedRequestsHonourContext(t *testing.T) {
	server := newMediaServer(t)
	cfg := config.DefaultConfig().HTTP
	cfg.RequestsPerMinute = 1
	client := NewClient(cfg, logger.NewNop())

	_, err := client.Get(context.Background(), server.URL+"/page")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.Get(ctx, server.URL+"/page")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCustomHeader(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Test")
	}))
	defer server.Close()

	client := newTestClient(t, logger.NewNop())
	client.SetHeader("X-Test", "yes")

	_, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "yes", got)
}
