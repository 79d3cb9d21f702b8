package scraper

import (
	"context"

	"mediascrape/pkg/fetcher"
)

// Fetcher defines the HTTP operations the pipeline needs
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*fetcher.Response, error)
	Head(ctx context.Context, rawURL string) (int64, bool)
	Download(ctx context.Context, rawURL string) (*fetcher.Response, error)
}
