package viewer

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"mediascrape/pkg/manifest"
)

const indexTemplateName = "index"

const indexTemplate = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Scrape outputs</title></head>
<body>
<h1>Scrape outputs</h1>
<ul>
{{range .}}<li><a href="/view/{{.Name}}/">{{.Name}}</a>{{if .Source}} ({{.Source}}, {{.Entries}} entries, {{.StoredSize}}){{end}}</li>
{{end}}</ul>
</body></html>`

// scrapeSummary describes one scrape directory in listings
type scrapeSummary struct {
	Name        string `json:"name"`
	Source      string `json:"source,omitempty"`
	Entries     int    `json:"entries"`
	StoredBytes int64  `json:"storedBytes"`
	StoredSize  string `json:"storedSize"`
}

// listScrapes returns the directories under the root, newest name last.
// A missing root is an empty list.
func (s *Server) listScrapes() []scrapeSummary {
	dirs, err := s.store.ListDirs(s.root)
	if err != nil {
		return []scrapeSummary{}
	}
	sort.Strings(dirs)

	summaries := make([]scrapeSummary, 0, len(dirs))
	for _, dir := range dirs {
		summary := scrapeSummary{Name: dir, StoredSize: humanize.Bytes(0)}
		if m, err := s.readManifest(dir); err == nil {
			summary.Source = m.Source
			summary.Entries = len(m.Files)
			for _, f := range m.Files {
				// entries pointing outside this scrape are deduplicated copies
				if f.Path != nil && f.Size != nil && !strings.HasPrefix(*f.Path, "..") {
					summary.StoredBytes += *f.Size
				}
			}
			summary.StoredSize = humanize.Bytes(uint64(summary.StoredBytes))
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func (s *Server) readManifest(folder string) (*manifest.Manifest, error) {
	raw, err := s.store.ReadText(filepath.Join(s.root, folder, manifest.ManifestFile))
	if err != nil {
		return nil, err
	}
	return manifest.Parse([]byte(raw))
}

// resolve maps a folder and a file path inside it to a location on disk.
// It reports false for anything outside the output root.
func (s *Server) resolve(folder, rest string) (string, bool) {
	if folder == "" || folder == "." || folder == ".." {
		return "", false
	}
	full := filepath.Join(s.root, folder, filepath.FromSlash(rest))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplateName, s.listScrapes())
}

func (s *Server) handleListScrapes(c *gin.Context) {
	c.JSON(http.StatusOK, s.listScrapes())
}

func (s *Server) handleView(c *gin.Context) {
	rest := strings.TrimPrefix(c.Param("path"), "/")
	if rest == "" || strings.HasSuffix(rest, "/") {
		rest += manifest.IndexFile
	}

	full, ok := s.resolve(c.Param("folder"), rest)
	if !ok {
		c.String(http.StatusNotFound, "Not found")
		return
	}

	f, err := os.Open(full)
	if err != nil {
		c.String(http.StatusNotFound, "Not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		c.String(http.StatusNotFound, "Not found")
		return
	}

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

func (s *Server) handleManifest(c *gin.Context) {
	folder := c.Param("folder")
	if _, ok := s.resolve(folder, manifest.ManifestFile); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "scrape not found"})
		return
	}

	m, err := s.readManifest(folder)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "scrape not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "manifest unreadable"})
		return
	}

	c.JSON(http.StatusOK, m)
}
