package scraper

import (
	"context"
	"fmt"
	"path/filepath"

	"mediascrape/pkg/config"
	"mediascrape/pkg/dedup"
	"mediascrape/pkg/errors"
	"mediascrape/pkg/manifest"
	"mediascrape/pkg/media"
	"mediascrape/pkg/storage"
)

type outcome string

const (
	outcomeIgnored      outcome = "ignored"
	outcomeOversized    outcome = "oversized"
	outcomeSkipped      outcome = "skipped"
	outcomeDeduplicated outcome = "deduplicated"
	outcomeStored       outcome = "stored"
)

// scrapeState is threaded through the candidate loop. seq counts every
// candidate, including those that end up ignored or skipped.
type scrapeState struct {
	outDir      string
	seq         int
	manifest    *manifest.Manifest
	oversized   []manifest.OversizedEntry
	files       []string
	index       *dedup.Index
	counts      map[outcome]int
	storedBytes int64
}

func (st *scrapeState) record(entry manifest.Entry, o outcome) {
	st.manifest.Files = append(st.manifest.Files, entry)
	if st.counts == nil {
		st.counts = make(map[outcome]int)
	}
	st.counts[o]++
}

// policy is the per-scrape view of ScrapeConfig the loop consults
type policy struct {
	categories map[media.Category]bool
	ignored    map[string]bool
	limit      int64
}

func newPolicy(cfg config.ScrapeConfig) policy {
	return policy{
		categories: cfg.Categories(),
		ignored:    cfg.IgnoredExtensions(),
		limit:      downloadLimit(cfg),
	}
}

// downloadLimit is maxDownloadBytes when positive, else the oversize threshold
func downloadLimit(cfg config.ScrapeConfig) int64 {
	if cfg.MaxDownloadBytes > 0 {
		return cfg.MaxDownloadBytes
	}
	if cfg.OversizedThresholdBytes > 0 {
		return cfg.OversizedThresholdBytes
	}
	return config.DefaultOversizedThresholdBytes
}

// exceedsLimit is the single size gate for both preflight and downloaded sizes
func exceedsLimit(size, limit int64) bool {
	return size > limit
}

// step moves one candidate to its terminal state and records it. An error
// means the candidate was abandoned and nothing was recorded for it.
func (s *Scraper) step(ctx context.Context, st *scrapeState, p policy, candidate string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ext := media.ExtensionOf(candidate)
	if p.ignored[ext] {
		st.record(manifest.Ignored(candidate), outcomeIgnored)
		return nil
	}

	var preflight *int64
	if size, ok := s.client.Head(ctx, candidate); ok {
		preflight = &size
	}

	if preflight != nil && exceedsLimit(*preflight, p.limit) {
		st.oversized = append(st.oversized, manifest.OversizedEntry{URL: candidate, Size: *preflight})
		st.record(manifest.Oversized(candidate, "", *preflight), outcomeOversized)
		return nil
	}

	category := media.CategoryOf(ext)
	if !media.ShouldDownload(category, ext, p.categories) {
		st.record(manifest.Skipped(candidate, preflight, category), outcomeSkipped)
		return nil
	}

	resp, err := s.client.Download(ctx, candidate)
	if err != nil {
		return err
	}
	if statusErr := resp.StatusError(); statusErr != nil {
		s.logger.WithError(statusErr).WarnWithFields("Media returned an error status, keeping its body", map[string]interface{}{
			"candidate": candidate,
			"status":    resp.StatusCode,
		})
	}

	size := int64(len(resp.Body))
	if exceedsLimit(size, p.limit) {
		st.oversized = append(st.oversized, manifest.OversizedEntry{URL: candidate, Size: size})
		st.record(manifest.Oversized(candidate, resp.ContentType, size), outcomeOversized)
		return nil
	}

	name := media.FileName(st.seq, candidate)
	mediaPath := filepath.Join(st.outDir, manifest.MediaDir, name)
	if err := s.store.WriteBinary(mediaPath, resp.Body); err != nil {
		return errors.New(errors.ErrorTypeStorage, fmt.Sprintf("failed to write %s", name), err)
	}

	sha := storage.SHA256Hex(resp.Body)

	if existing, ok := st.index.Lookup(sha); ok && existing != mediaPath {
		if err := s.store.Remove(mediaPath); err != nil {
			s.logger.WithError(err).WithField("path", mediaPath).Debug("Failed to remove duplicate file")
		}

		rel, err := filepath.Rel(st.outDir, existing)
		if err != nil {
			return errors.New(errors.ErrorTypeStorage, "failed to relate duplicate to existing file", err)
		}
		rel = filepath.ToSlash(rel)

		st.record(manifest.Stored(candidate, rel, resp.ContentType, sha, size), outcomeDeduplicated)
		st.files = append(st.files, rel)
		return nil
	}

	rel := relativeMediaPath(name)
	st.index.Add(sha, mediaPath)
	st.record(manifest.Stored(candidate, rel, resp.ContentType, sha, size), outcomeStored)
	st.files = append(st.files, rel)
	st.storedBytes += size
	return nil
}
