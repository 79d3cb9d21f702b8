package media

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	slugUnsafe     = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)
	slugDashes     = regexp.MustCompile(`-+`)
	filenameUnsafe = regexp.MustCompile(`[\\/:*?"<>|]`)
)

// Slug derives a filesystem-safe directory name from a URL's host and
// escaped path, so "%20" contributes "-20" rather than a bare dash.
func Slug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return slugUnsafe.ReplaceAllString(rawURL, "-")
	}

	var parts []string
	for _, p := range []string{u.Hostname(), strings.TrimRight(u.EscapedPath(), "/")} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	slug := slugUnsafe.ReplaceAllString(strings.Join(parts, "-"), "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return u.Hostname()
	}
	return slug
}

// SanitizeFilename replaces characters that are invalid in file names on
// common filesystems with "-".
func SanitizeFilename(name string) string {
	return filenameUnsafe.ReplaceAllString(name, "-")
}

// FileName returns the on-disk name for the candidate at the given
// 1-based sequence index: "{index}-{basename}", or "{index}-file-{index}"
// when the URL path has no basename. The basename keeps its percent
// escapes.
func FileName(index int, rawURL string) string {
	base := ""
	if u, err := url.Parse(rawURL); err == nil {
		if p := u.EscapedPath(); !strings.HasSuffix(p, "/") {
			base = path.Base(p)
		}
	}
	if base == "" || base == "." || base == "/" {
		base = fmt.Sprintf("file-%d", index)
	}
	return fmt.Sprintf("%d-%s", index, SanitizeFilename(base))
}
