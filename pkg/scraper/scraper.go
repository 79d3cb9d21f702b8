package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"

	"mediascrape/pkg/config"
	"mediascrape/pkg/dedup"
	"mediascrape/pkg/errors"
	"mediascrape/pkg/logger"
	"mediascrape/pkg/manifest"
	"mediascrape/pkg/media"
	"mediascrape/pkg/storage"
)

const defaultPageContentType = "text/html"

// Request describes one scrape invocation
type Request struct {
	URL        string
	Name       string
	OutputRoot string
	Config     config.ScrapeConfig
}

// Result is what a successful scrape produced
type Result struct {
	OutputDir string
	Files     []string
	Manifest  *manifest.Manifest
}

// Scraper runs the fetch, discover, classify, gate, dedupe and persist
// pipeline for a single page
type Scraper struct {
	store  storage.Adapter
	client Fetcher
	logger logger.Logger
	now    func() time.Time
}

// New creates a Scraper writing through store and fetching with client
func New(store storage.Adapter, client Fetcher, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		store:  store,
		client: client,
		logger: log.WithField("component", "scraper"),
		now:    time.Now,
	}
}

// SetClock replaces the time source used for directory names and timestamps
func (s *Scraper) SetClock(now func() time.Time) {
	s.now = now
}

// Scrape fetches req.URL and stores the media it references. Only a failure
// to prepare the output directory or to fetch and store the page itself is
// returned as an error; per-candidate failures are logged and skipped. A page
// served with an HTTP error status is still scraped. An empty OutputRoot
// means config.DefaultOutputDirectory.
func (s *Scraper) Scrape(ctx context.Context, req Request) (*Result, error) {
	start := s.now()

	if req.OutputRoot == "" {
		req.OutputRoot = config.DefaultOutputDirectory
	}
	outputRoot, err := filepath.Abs(req.OutputRoot)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeStorage, "failed to resolve output root", err)
	}
	outDir := resolveOutputDir(outputRoot, req, start)

	log := s.logger.WithFields(map[string]interface{}{
		"url":        req.URL,
		"output_dir": outDir,
	})
	log.Info("Scrape started")

	if err := s.store.MkdirAll(outDir); err != nil {
		return nil, errors.New(errors.ErrorTypeStorage, "failed to create output directory", err)
	}

	page, err := s.client.Get(ctx, req.URL)
	if err != nil {
		log.WithError(err).Error("Failed to fetch page")
		s.writeErrorSummary(outDir, req.URL, start, err)
		return nil, fmt.Errorf("failed to fetch %s: %w", req.URL, err)
	}
	fetchedAt := s.now()
	if statusErr := page.StatusError(); statusErr != nil {
		log.WithError(statusErr).WarnWithFields("Page returned an error status, scraping its body", map[string]interface{}{
			"status": page.StatusCode,
		})
	}

	if err := s.store.WriteText(filepath.Join(outDir, manifest.IndexFile), string(page.Body)); err != nil {
		s.writeErrorSummary(outDir, req.URL, start, err)
		return nil, errors.New(errors.ErrorTypeStorage, "failed to write page", err)
	}

	state := &scrapeState{
		outDir:   outDir,
		manifest: manifest.New(req.URL, fetchedAt),
		files:    []string{manifest.IndexFile},
		index:    dedup.Build(s.store, outputRoot, log),
	}

	candidates := resolveReferences(req.URL, media.Extract(string(page.Body)), log)
	log.InfoWithFields("Media references discovered", map[string]interface{}{
		"candidates":     len(candidates),
		"indexed_hashes": state.index.Len(),
	})

	if err := s.store.MkdirAll(filepath.Join(outDir, manifest.MediaDir)); err != nil {
		s.writeErrorSummary(outDir, req.URL, start, err)
		return nil, errors.New(errors.ErrorTypeStorage, "failed to create media directory", err)
	}

	p := newPolicy(req.Config)
	for _, candidate := range candidates {
		state.seq++
		if err := s.step(ctx, state, p, candidate); err != nil {
			log.WithError(err).WarnWithFields("Media candidate failed", map[string]interface{}{
				"candidate": candidate,
				"index":     state.seq,
			})
		}
	}

	s.persist(state, req.URL, page.ContentType, page.Body, fetchedAt, log)

	elapsed := s.now().Sub(start)
	if err := s.store.WriteText(filepath.Join(outDir, manifest.SummaryFile), successSummary(req.URL, elapsed, state)); err != nil {
		log.WithError(err).Warn("Failed to write summary")
	}

	log.InfoWithFields("Scrape completed", map[string]interface{}{
		"entries":      len(state.manifest.Files),
		"stored":       state.counts[outcomeStored],
		"deduplicated": state.counts[outcomeDeduplicated],
		"duration":     elapsed,
	})

	return &Result{
		OutputDir: outDir,
		Files:     state.files,
		Manifest:  state.manifest,
	}, nil
}

// persist writes the metadata, manifest and oversize report. Failures are
// logged; the media files are already on disk at this point.
func (s *Scraper) persist(state *scrapeState, source, contentType string, body []byte, fetchedAt time.Time, log logger.Logger) {
	if contentType == "" {
		contentType = defaultPageContentType
	}

	meta := manifest.Metadata{
		Source:      source,
		FetchedAt:   fetchedAt.UTC(),
		ContentType: contentType,
		Title:       pageTitle(body),
	}
	if s.writeJSON(state, manifest.MetadataFile, meta, log) {
		state.files = append(state.files, manifest.MetadataFile)
	}

	if s.writeJSON(state, manifest.ManifestFile, state.manifest, log) {
		state.files = append(state.files, manifest.ManifestFile)
	}

	if len(state.oversized) > 0 {
		if s.writeJSON(state, manifest.OversizedFile, state.oversized, log) {
			state.files = append(state.files, manifest.OversizedFile)
		}
	}
}

func (s *Scraper) writeJSON(state *scrapeState, name string, v interface{}, log logger.Logger) bool {
	data, err := manifest.Encode(v)
	if err == nil {
		err = s.store.WriteText(filepath.Join(state.outDir, name), string(data))
	}
	if err != nil {
		log.WithError(err).WithField("file", name).Error("Failed to write output file")
		return false
	}
	return true
}

// writeErrorSummary is best effort; the original error is what callers see
func (s *Scraper) writeErrorSummary(outDir, source string, start time.Time, cause error) {
	summary := strings.Join([]string{
		"Source: " + source,
		"Runtime: " + formatRuntime(s.now().Sub(start)),
		"Error: " + cause.Error(),
	}, "\n")
	if err := s.store.WriteText(filepath.Join(outDir, manifest.SummaryFile), summary); err != nil {
		s.logger.WithError(err).Debug("Failed to write error summary")
	}
}

// resolveOutputDir picks the directory this scrape writes into
func resolveOutputDir(outputRoot string, req Request, now time.Time) string {
	millis := now.UnixMilli()
	if req.Config.FolderNaming == config.FolderNamingName {
		name := media.SanitizeFilename(strings.TrimSpace(req.Name))
		if name == "" || name == "." || name == ".." {
			name = fmt.Sprintf("scrape-%d", millis)
		}
		return filepath.Join(outputRoot, name)
	}
	return filepath.Join(outputRoot, fmt.Sprintf("%s-%d", media.Slug(req.URL), millis))
}

// resolveReferences makes every extracted reference absolute against the
// page URL. References that cannot be resolved are dropped.
func resolveReferences(pageURL string, refs []string, log logger.Logger) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		log.WithError(err).Warn("Page URL cannot be used to resolve references")
		return nil
	}

	resolved := make([]string, 0, len(refs))
	for _, ref := range refs {
		u, err := base.Parse(ref)
		if err != nil {
			log.WithError(err).WithField("reference", ref).Warn("Dropping unresolvable reference")
			continue
		}
		resolved = append(resolved, u.String())
	}
	return resolved
}

func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func formatRuntime(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64) + "s"
}

func successSummary(source string, elapsed time.Duration, state *scrapeState) string {
	lines := []string{
		"Source: " + source,
		"Runtime: " + formatRuntime(elapsed),
		"Files:",
	}
	for _, f := range state.files {
		lines = append(lines, " - "+f)
	}

	lines = append(lines,
		"",
		"Totals:",
		fmt.Sprintf(" - entries: %d", len(state.manifest.Files)),
		fmt.Sprintf(" - stored: %d (%s)", state.counts[outcomeStored], humanize.Bytes(uint64(state.storedBytes))),
		fmt.Sprintf(" - deduplicated: %d", state.counts[outcomeDeduplicated]),
		fmt.Sprintf(" - skipped: %d", state.counts[outcomeSkipped]),
		fmt.Sprintf(" - ignored: %d", state.counts[outcomeIgnored]),
		fmt.Sprintf(" - oversized: %d", state.counts[outcomeOversized]),
	)
	return strings.Join(lines, "\n")
}

// relativeMediaPath is the manifest path of a file written by this scrape
func relativeMediaPath(name string) string {
	return path.Join(manifest.MediaDir, name)
}
