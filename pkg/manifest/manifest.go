package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"mediascrape/pkg/media"
)

const (
	ManifestFile  = "manifest.json"
	MetadataFile  = "metadata.json"
	OversizedFile = "oversized_content.json"
	IndexFile     = "index.html"
	SummaryFile   = "summary.scrape"
	MediaDir      = "media"
)

// Entry records one discovered media candidate and its disposition.
// A nil Path means no file was materialized for it.
type Entry struct {
	Path         *string        `json:"path"`
	URL          string         `json:"url"`
	MIME         *string        `json:"mime"`
	SHA256       *string        `json:"sha256"`
	Size         *int64         `json:"size"`
	Downloaded   bool           `json:"downloaded"`
	InferredType media.Category `json:"inferredType,omitempty"`
}

// Manifest is the persisted record of every candidate found on one page
type Manifest struct {
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetchedAt"`
	Files     []Entry   `json:"files"`
}

// Metadata describes the root document of a scrape
type Metadata struct {
	Source      string    `json:"source"`
	FetchedAt   time.Time `json:"fetchedAt"`
	ContentType string    `json:"contentType"`
	Title       string    `json:"title,omitempty"`
}

// OversizedEntry is a candidate whose known size exceeded the download limit
type OversizedEntry struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// New creates an empty manifest for source
func New(source string, fetchedAt time.Time) *Manifest {
	return &Manifest{
		Source:    source,
		FetchedAt: fetchedAt.UTC(),
		Files:     make([]Entry, 0),
	}
}

// Ignored is the entry for a candidate whose extension is on the ignore list
func Ignored(url string) Entry {
	return Entry{URL: url}
}

// Oversized is the entry for a candidate over the size limit. mime is empty
// when the size came from a preflight.
func Oversized(url, mime string, size int64) Entry {
	return Entry{
		URL:  url,
		MIME: optionalString(mime),
		Size: &size,
	}
}

// Skipped is the entry for a candidate the category policy declined.
// size is the preflight size, or nil when it is unknown.
func Skipped(url string, size *int64, category media.Category) Entry {
	return Entry{
		URL:          url,
		Size:         size,
		InferredType: category,
	}
}

// Stored is the entry for downloaded content, either freshly written or
// resolved to an earlier copy at path.
func Stored(url, path, mime, sha256 string, size int64) Entry {
	return Entry{
		Path:       &path,
		URL:        url,
		MIME:       optionalString(mime),
		SHA256:     &sha256,
		Size:       &size,
		Downloaded: true,
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Encode renders v as two-space indented JSON without HTML escaping
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Parse decodes a manifest.json document
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
