package dedup

import (
	"encoding/json"
	"path/filepath"

	"mediascrape/pkg/logger"
	"mediascrape/pkg/manifest"
	"mediascrape/pkg/storage"
)

// Index maps a SHA-256 content hash to the absolute path of a stored file.
// It is a snapshot of prior scrapes plus whatever the current scrape has
// stored since; it is not safe for concurrent use.
type Index struct {
	paths map[string]string
}

// manifestFiles is the subset of manifest.json the index needs, so that
// manifests with unexpected top-level fields still contribute entries.
type manifestFiles struct {
	Files []struct {
		Path   *string `json:"path"`
		SHA256 *string `json:"sha256"`
	} `json:"files"`
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{paths: make(map[string]string)}
}

// Build scans every directory directly under outputRoot and indexes the
// stored files listed in its manifest.json. Directories without a readable,
// parseable manifest are skipped.
func Build(store storage.Adapter, outputRoot string, log logger.Logger) *Index {
	if log == nil {
		log = logger.GetLogger()
	}

	idx := NewIndex()

	absRoot, err := filepath.Abs(outputRoot)
	if err != nil {
		absRoot = outputRoot
	}

	dirs, err := store.ListDirs(absRoot)
	if err != nil {
		log.DebugWithFields("No prior scrapes to index", map[string]interface{}{
			"output_root": absRoot,
			"error":       err.Error(),
		})
		return idx
	}

	for _, dir := range dirs {
		manifestPath := filepath.Join(absRoot, dir, manifest.ManifestFile)
		raw, err := store.ReadText(manifestPath)
		if err != nil {
			continue
		}

		var m manifestFiles
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			log.DebugWithFields("Skipping unparseable manifest", map[string]interface{}{
				"manifest": manifestPath,
				"error":    err.Error(),
			})
			continue
		}

		for _, f := range m.Files {
			if f.SHA256 == nil || f.Path == nil || *f.SHA256 == "" || *f.Path == "" {
				continue
			}
			idx.paths[*f.SHA256] = filepath.Join(absRoot, dir, filepath.FromSlash(*f.Path))
		}
	}

	log.DebugWithFields("Dedup index built", map[string]interface{}{
		"output_root": absRoot,
		"directories": len(dirs),
		"hashes":      len(idx.paths),
	})

	return idx
}

// Lookup returns the absolute path stored for hash
func (i *Index) Lookup(hash string) (string, bool) {
	path, ok := i.paths[hash]
	return path, ok
}

// Add records that content with hash is stored at absPath
func (i *Index) Add(hash, absPath string) {
	i.paths[hash] = absPath
}

// Len returns the number of indexed hashes
func (i *Index) Len() int {
	return len(i.paths)
}
