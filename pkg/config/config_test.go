package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediascrape/pkg/media"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, FolderNamingSlugTimestamp, cfg.Scrape.FolderNaming)
	assert.Empty(t, cfg.Scrape.DownloadMedia)
	assert.Equal(t, int64(5242880), cfg.Scrape.MaxDownloadBytes)
	assert.Equal(t, int64(26214400), cfg.Scrape.OversizedThresholdBytes)
	assert.Empty(t, cfg.Scrape.IgnoreFileExtensions)
	assert.Equal(t, "./output", cfg.Output.BaseDirectory)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 3000, cfg.Viewer.Port)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFileFlatJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "folderNaming": "name",
  "downloadMedia": ["images", "video"],
  "maxDownloadBytes": 1000,
  "ignoreFileExtensions": ["pdf"],
  "somethingElse": true
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "name", cfg.Scrape.FolderNaming)
	assert.Equal(t, StringList{"images", "video"}, cfg.Scrape.DownloadMedia)
	assert.Equal(t, int64(1000), cfg.Scrape.MaxDownloadBytes)
	assert.Equal(t, int64(26214400), cfg.Scrape.OversizedThresholdBytes, "missing keys keep defaults")
	assert.Equal(t, StringList{"pdf"}, cfg.Scrape.IgnoreFileExtensions)
}

func TestLoadFromFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediascrape.yaml")
	content := `
downloadMedia: images
output:
  base_directory: /tmp/scrapes
http:
  timeout: 5s
  requests_per_minute: 120
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, StringList{"images"}, cfg.Scrape.DownloadMedia, "a scalar becomes a one-element list")
	assert.Equal(t, "/tmp/scrapes", cfg.Output.BaseDirectory)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 120, cfg.HTTP.RequestsPerMinute)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("downloadMedia: {a: 1}"), 0644))
	assert.Error(t, cfg.LoadFromFile(bad))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MEDIASCRAPE_OUTPUT_DIR", "/tmp/env-output")
	t.Setenv("MEDIASCRAPE_DOWNLOAD_MEDIA", "images, fonts")
	t.Setenv("MEDIASCRAPE_IGNORE_EXTENSIONS", "none")
	t.Setenv("MEDIASCRAPE_MAX_DOWNLOAD_BYTES", "2048")
	t.Setenv("MEDIASCRAPE_HTTP_TIMEOUT", "10s")
	t.Setenv("MEDIASCRAPE_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "/tmp/env-output", cfg.Output.BaseDirectory)
	assert.Equal(t, StringList{"images", "fonts"}, cfg.Scrape.DownloadMedia)
	assert.Equal(t, StringList{}, cfg.Scrape.IgnoreFileExtensions)
	assert.Equal(t, int64(2048), cfg.Scrape.MaxDownloadBytes)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidNumbers(t *testing.T) {
	t.Setenv("MEDIASCRAPE_MAX_DOWNLOAD_BYTES", "lots")
	t.Setenv("MEDIASCRAPE_REQUESTS_PER_MINUTE", "many")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEDIASCRAPE_MAX_DOWNLOAD_BYTES")
	assert.Contains(t, err.Error(), "MEDIASCRAPE_REQUESTS_PER_MINUTE")
}

func TestNormalize(t *testing.T) {
	s := ScrapeConfig{
		FolderNaming:            "",
		DownloadMedia:           StringList{"Images", "pictures", "images", "VIDEO"},
		MaxDownloadBytes:        -1,
		OversizedThresholdBytes: 0,
		IgnoreFileExtensions:    StringList{".PDF", "pdf", " zip ", ""},
	}

	warnings := s.Normalize()

	assert.Equal(t, FolderNamingSlugTimestamp, s.FolderNaming)
	assert.Equal(t, StringList{"images", "video"}, s.DownloadMedia)
	assert.Equal(t, DefaultMaxDownloadBytes, s.MaxDownloadBytes)
	assert.Equal(t, DefaultOversizedThresholdBytes, s.OversizedThresholdBytes)
	assert.Equal(t, StringList{"pdf", "zip"}, s.IgnoreFileExtensions)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "pictures")
}

func TestScrapeConfigSets(t *testing.T) {
	s := ScrapeConfig{
		DownloadMedia:        StringList{"images", "documents"},
		IgnoreFileExtensions: StringList{"PDF"},
	}

	cats := s.Categories()
	assert.True(t, cats[media.CategoryImages])
	assert.True(t, cats[media.CategoryDocuments])
	assert.False(t, cats[media.CategoryVideo])

	assert.True(t, s.IgnoredExtensions()["pdf"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"bad folder naming", func(c *Config) { c.Scrape.FolderNaming = "random" }, true},
		{"non-positive max bytes", func(c *Config) { c.Scrape.MaxDownloadBytes = 0 }, true},
		{"empty output directory", func(c *Config) { c.Output.BaseDirectory = "" }, true},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }, true},
		{"negative rate limit", func(c *Config) { c.HTTP.RequestsPerMinute = -1 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"port out of range", func(c *Config) { c.Viewer.Port = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"output":             "/tmp/flag-output",
		"download-media":     "none",
		"max-download-bytes": int64(1000),
		"ignore-ext":         "pdf,zip",
		"folder-naming":      "name",
		"log-level":          "debug",
		"port":               8080,
	})

	assert.Equal(t, "/tmp/flag-output", cfg.Output.BaseDirectory)
	assert.Equal(t, StringList{}, cfg.Scrape.DownloadMedia)
	assert.Equal(t, int64(1000), cfg.Scrape.MaxDownloadBytes)
	assert.Equal(t, StringList{"pdf", "zip"}, cfg.Scrape.IgnoreFileExtensions)
	assert.Equal(t, "name", cfg.Scrape.FolderNaming)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 8080, cfg.Viewer.Port)
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxDownloadBytes: 100\ndownloadMedia: [images, bogus]\n"), 0644))

	t.Setenv("MEDIASCRAPE_MAX_DOWNLOAD_BYTES", "200")

	cfg, warnings, err := Load(path, map[string]interface{}{"max-download-bytes": int64(300)})
	require.NoError(t, err)

	assert.Equal(t, int64(300), cfg.Scrape.MaxDownloadBytes, "flags win over env and file")
	assert.Equal(t, StringList{"images"}, cfg.Scrape.DownloadMedia)
	assert.Len(t, warnings, 1)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("folderNaming: sometimes\n"), 0644))

	_, _, err := Load(path, nil)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scrape.DownloadMedia = StringList{"images"}
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, StringList{"images"}, loaded.Scrape.DownloadMedia)
	assert.Equal(t, cfg.Scrape.MaxDownloadBytes, loaded.Scrape.MaxDownloadBytes)
	assert.Equal(t, cfg.Scrape.FolderNaming, loaded.Scrape.FolderNaming)
	assert.Equal(t, cfg.HTTP, loaded.HTTP)
}
