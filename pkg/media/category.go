package media

import (
	"net/url"
	"strings"
)

// Category is the coarse semantic class of a file, derived from its extension
type Category string

const (
	CategoryImages    Category = "images"
	CategoryVideo     Category = "video"
	CategoryAudio     Category = "audio"
	CategoryFonts     Category = "fonts"
	CategoryDocuments Category = "documents"
	CategoryText      Category = "text"
	CategoryOther     Category = "other"
)

// AllCategories lists every category in display order
var AllCategories = []Category{
	CategoryImages,
	CategoryVideo,
	CategoryAudio,
	CategoryFonts,
	CategoryDocuments,
	CategoryText,
	CategoryOther,
}

var extensionCategories = map[string]Category{
	"jpg": CategoryImages, "jpeg": CategoryImages, "png": CategoryImages, "gif": CategoryImages,
	"webp": CategoryImages, "svg": CategoryImages, "bmp": CategoryImages, "tiff": CategoryImages,
	"ico": CategoryImages,

	"mp4": CategoryVideo, "webm": CategoryVideo, "mov": CategoryVideo, "mkv": CategoryVideo,
	"ogg": CategoryVideo, "ogv": CategoryVideo,

	"mp3": CategoryAudio, "wav": CategoryAudio, "m4a": CategoryAudio, "aac": CategoryAudio,
	"flac": CategoryAudio,

	"woff": CategoryFonts, "woff2": CategoryFonts, "ttf": CategoryFonts, "otf": CategoryFonts,
	"eot": CategoryFonts,

	"pdf": CategoryDocuments, "doc": CategoryDocuments, "docx": CategoryDocuments,
	"xls": CategoryDocuments, "xlsx": CategoryDocuments, "ppt": CategoryDocuments,
	"pptx": CategoryDocuments,

	"css": CategoryText, "js": CategoryText, "map": CategoryText, "json": CategoryText,
	"xml": CategoryText, "txt": CategoryText, "html": CategoryText, "htm": CategoryText,
}

// ParseCategory resolves a configured category name, case-insensitively
func ParseCategory(name string) (Category, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, cat := range AllCategories {
		if string(cat) == name {
			return cat, true
		}
	}
	return "", false
}

// ExtensionOf returns the lowercased text after the last "." of the URL's
// path, or "" when the URL cannot be parsed or the path has no ".".
func ExtensionOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	idx := strings.LastIndex(u.Path, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(u.Path[idx+1:])
}

// CategoryOf maps a lowercase extension to its category. Unknown and empty
// extensions are CategoryOther.
func CategoryOf(ext string) Category {
	if cat, ok := extensionCategories[ext]; ok {
		return cat
	}
	return CategoryOther
}

// ShouldDownload decides whether a candidate is fetched. Text assets and
// extensionless references are always fetched; everything else needs its
// category to be configured.
func ShouldDownload(cat Category, ext string, configured map[Category]bool) bool {
	if cat == CategoryText {
		return true
	}
	if cat == CategoryOther && ext == "" {
		return true
	}
	return configured[cat]
}
