package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/", "example.com"},
		{"https://example.com", "example.com"},
		{"https://example.com/a/b/", "example.com-a-b"},
		{"http://h/", "h"},
		{"https://example.com/blog/post?id=1", "example.com-blog-post"},
		{"https://example.com:8080/x y/z", "example.com-x-20y-z"},
		{"https://example.com/caf%C3%A9/", "example.com-caf-C3-A9"},
		{"not a url", "not-a-url"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.url))
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c-d-e-f-g-h-i-j", SanitizeFilename(`a\b/c:d*e?f"g<h>i|j`))
	assert.Equal(t, "plain-name_1.png", SanitizeFilename("plain-name_1.png"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "1-a.png", FileName(1, "http://h/img/a.png"))
	assert.Equal(t, "7-file-7", FileName(7, "http://h/"))
	assert.Equal(t, "3-file-3", FileName(3, "http://h"))
	assert.Equal(t, "2-b%3Ac.css", FileName(2, "http://h/b%3Ac.css"))
	assert.Equal(t, "4-my%20logo.png", FileName(4, "http://h/img/my%20logo.png"))
	assert.Equal(t, "5-a-b.png", FileName(5, "http://h/a:b.png"))
}
