// Package scraper runs the single-page media scrape.
//
// A scrape fetches one page, stores it as index.html, discovers the media it
// references and walks those candidates strictly in order. Each candidate
// ends in exactly one state:
//
//   - ignored: its extension is on the ignore list
//   - oversized: its preflight or downloaded size is over the limit
//   - skipped: its category is not configured for download
//   - deduplicated: its content already exists in this or an earlier scrape
//   - stored: its content was written under media/
//
// Candidates that fail (network, invalid URL, disk) are logged and left out
// of the manifest. A failure to fetch the page itself aborts the scrape after
// a best-effort summary.scrape is written.
//
// Usage:
//
//	client := fetcher.NewClient(cfg.HTTP, log)
//	s := scraper.New(storage.NewFileSystem(), client, log)
//
//	result, err := s.Scrape(ctx, scraper.Request{
//	    URL:        "https://example.com/",
//	    OutputRoot: cfg.Output.BaseDirectory,
//	    Config:     cfg.Scrape,
//	})
//
// Output layout, per scrape directory:
//
//	index.html              the page body, verbatim
//	media/{n}-{name}        stored media, n is the candidate's position
//	metadata.json           source, fetch time, content type and title
//	manifest.json           one entry per recorded candidate
//	oversized_content.json  only when something was over the limit
//	summary.scrape          plain text summary
package scraper
