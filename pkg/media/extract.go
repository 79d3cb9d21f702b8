package media

import "regexp"

// Discovery is pattern based and deliberately permissive: tag nesting is
// not validated and malformed markup is matched on a best-effort basis.
var (
	srcPattern    = regexp.MustCompile(`(?i)<(?:img|audio|video|source)[^>]+src=["']?([^"' >]+)`)
	linkPattern   = regexp.MustCompile(`(?i)<link[^>]+href=["']?([^"' >]+)[^>]*>`)
	anchorPattern = regexp.MustCompile(`(?i)<a[^>]+href=["']?([^"' >]+)[^>]*>`)

	documentLinkPattern = regexp.MustCompile(`(?i)\.(pdf|docx?|xlsx?|zip|tar|gz)$`)
)

// Extract returns the raw media references found in html, in discovery
// order with duplicates removed. Sources on img/audio/video/source come
// first, then every link href, then anchors pointing at documents or archives.
func Extract(html string) []string {
	var refs []string
	seen := make(map[string]bool)

	add := func(ref string) {
		if ref == "" || seen[ref] {
			return
		}
		seen[ref] = true
		refs = append(refs, ref)
	}

	for _, m := range srcPattern.FindAllStringSubmatch(html, -1) {
		add(m[1])
	}
	for _, m := range linkPattern.FindAllStringSubmatch(html, -1) {
		add(m[1])
	}
	for _, m := range anchorPattern.FindAllStringSubmatch(html, -1) {
		if documentLinkPattern.MatchString(m[1]) {
			add(m[1])
		}
	}

	return refs
}
