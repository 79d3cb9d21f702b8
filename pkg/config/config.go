package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mediascrape/pkg/media"
)

const (
	FolderNamingSlugTimestamp = "slug-timestamp"
	FolderNamingName          = "name"

	DefaultOversizedThresholdBytes int64 = 26214400
	DefaultMaxDownloadBytes        int64 = 5242880

	DefaultOutputDirectory = "./output"
)

// Config holds all configuration options for the media scraper.
// The scrape policy keys sit at the top level so that flat JSON
// config files (folderNaming, downloadMedia, ...) load unchanged.
type Config struct {
	Scrape ScrapeConfig `yaml:",inline" json:"scrape"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Outbound HTTP settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Preview server settings
	Viewer ViewerConfig `yaml:"viewer" json:"viewer"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScrapeConfig is the policy consumed by the scrape pipeline
type ScrapeConfig struct {
	FolderNaming            string     `yaml:"folderNaming" json:"folderNaming" validate:"oneof=slug-timestamp name"`
	DownloadMedia           StringList `yaml:"downloadMedia" json:"downloadMedia"`
	MaxDownloadBytes        int64      `yaml:"maxDownloadBytes" json:"maxDownloadBytes" validate:"gt=0"`
	OversizedThresholdBytes int64      `yaml:"oversizedThresholdBytes" json:"oversizedThresholdBytes" validate:"gt=0"`
	IgnoreFileExtensions    StringList `yaml:"ignoreFileExtensions" json:"ignoreFileExtensions"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory" validate:"required"`
}

// HTTPConfig holds settings for the page and media HTTP client
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent" validate:"required"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute" validate:"gte=0"`
}

// ViewerConfig holds preview server configuration
type ViewerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port" validate:"gte=1,lte=65535"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level" validate:"oneof=debug info warn warning error fatal panic disabled"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" validate:"gte=0"`
	MaxAge     int    `yaml:"max_age" json:"max_age" validate:"gte=0"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// StringList accepts either a YAML sequence or a single scalar
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || value.Value == "" {
			*s = nil
			return nil
		}
		*s = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*s = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
	}
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			FolderNaming:            FolderNamingSlugTimestamp,
			DownloadMedia:           StringList{},
			MaxDownloadBytes:        DefaultMaxDownloadBytes,
			OversizedThresholdBytes: DefaultOversizedThresholdBytes,
			IgnoreFileExtensions:    StringList{},
		},
		Output: OutputConfig{
			BaseDirectory: DefaultOutputDirectory,
		},
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			RequestsPerMinute: 0,
		},
		Viewer: ViewerConfig{
			Host: "127.0.0.1",
			Port: 3000,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   false,
		},
	}
}

// Categories returns the configured download categories as a set
func (s ScrapeConfig) Categories() map[media.Category]bool {
	set := make(map[media.Category]bool, len(s.DownloadMedia))
	for _, name := range s.DownloadMedia {
		if cat, ok := media.ParseCategory(name); ok {
			set[cat] = true
		}
	}
	return set
}

// IgnoredExtensions returns the configured ignore list as a set
func (s ScrapeConfig) IgnoredExtensions() map[string]bool {
	set := make(map[string]bool, len(s.IgnoreFileExtensions))
	for _, ext := range s.IgnoreFileExtensions {
		set[normalizeExtension(ext)] = true
	}
	return set
}

// Normalize applies defaults to missing or out-of-range values and cleans up
// category and extension lists. It returns a warning per value it dropped.
func (s *ScrapeConfig) Normalize() []string {
	var warnings []string

	s.FolderNaming = strings.ToLower(strings.TrimSpace(s.FolderNaming))
	if s.FolderNaming == "" {
		s.FolderNaming = FolderNamingSlugTimestamp
	}
	if s.MaxDownloadBytes <= 0 {
		s.MaxDownloadBytes = DefaultMaxDownloadBytes
	}
	if s.OversizedThresholdBytes <= 0 {
		s.OversizedThresholdBytes = DefaultOversizedThresholdBytes
	}

	categories := make(StringList, 0, len(s.DownloadMedia))
	seen := make(map[string]bool)
	for _, name := range s.DownloadMedia {
		cat, ok := media.ParseCategory(name)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown media category %q ignored", name))
			continue
		}
		if seen[string(cat)] {
			continue
		}
		seen[string(cat)] = true
		categories = append(categories, string(cat))
	}
	s.DownloadMedia = categories

	extensions := make(StringList, 0, len(s.IgnoreFileExtensions))
	seen = make(map[string]bool)
	for _, ext := range s.IgnoreFileExtensions {
		ext = normalizeExtension(ext)
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		extensions = append(extensions, ext)
	}
	s.IgnoreFileExtensions = extensions

	return warnings
}

func normalizeExtension(ext string) string {
	return strings.TrimLeft(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// ParseList splits a comma separated flag or env value. "none" yields an empty list.
func ParseList(raw string) StringList {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "none") {
		return StringList{}
	}
	var out StringList
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if outputDir := os.Getenv("MEDIASCRAPE_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if naming := os.Getenv("MEDIASCRAPE_FOLDER_NAMING"); naming != "" {
		c.Scrape.FolderNaming = naming
	}
	if mediaList, ok := os.LookupEnv("MEDIASCRAPE_DOWNLOAD_MEDIA"); ok {
		c.Scrape.DownloadMedia = ParseList(mediaList)
	}
	if ignore, ok := os.LookupEnv("MEDIASCRAPE_IGNORE_EXTENSIONS"); ok {
		c.Scrape.IgnoreFileExtensions = ParseList(ignore)
	}
	if raw := os.Getenv("MEDIASCRAPE_MAX_DOWNLOAD_BYTES"); raw != "" {
		val, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MEDIASCRAPE_MAX_DOWNLOAD_BYTES: %w", err))
		} else {
			c.Scrape.MaxDownloadBytes = val
		}
	}
	if raw := os.Getenv("MEDIASCRAPE_OVERSIZED_THRESHOLD_BYTES"); raw != "" {
		val, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MEDIASCRAPE_OVERSIZED_THRESHOLD_BYTES: %w", err))
		} else {
			c.Scrape.OversizedThresholdBytes = val
		}
	}
	if raw := os.Getenv("MEDIASCRAPE_HTTP_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("MEDIASCRAPE_HTTP_TIMEOUT: %w", err))
		} else {
			c.HTTP.Timeout = d
		}
	}
	if userAgent := os.Getenv("MEDIASCRAPE_USER_AGENT"); userAgent != "" {
		c.HTTP.UserAgent = userAgent
	}
	if raw := os.Getenv("MEDIASCRAPE_REQUESTS_PER_MINUTE"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("MEDIASCRAPE_REQUESTS_PER_MINUTE: %w", err))
		} else {
			c.HTTP.RequestsPerMinute = val
		}
	}
	if logLevel := os.Getenv("MEDIASCRAPE_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("MEDIASCRAPE_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML (or JSON) file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"mediascrape.yaml",
		"mediascrape.yml",
		"mediascrape.json",
		filepath.Join("scraper", "config.json"),
		filepath.Join("scraper", "config.example.json"),
	}
	if home != "" {
		locations = append(locations,
			filepath.Join(home, ".config", "mediascrape", "config.yaml"),
			filepath.Join(home, ".config", "mediascrape", "config.yml"),
		)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validate := validator.New()

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	errs := make([]error, 0, len(validationErrs))
	for _, fe := range validationErrs {
		errs = append(errs, fmt.Errorf("%s: failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if naming, ok := flags["folder-naming"].(string); ok && naming != "" {
		c.Scrape.FolderNaming = naming
	}
	if list, ok := flags["download-media"].(string); ok {
		c.Scrape.DownloadMedia = ParseList(list)
	}
	if list, ok := flags["ignore-ext"].(string); ok {
		c.Scrape.IgnoreFileExtensions = ParseList(list)
	}
	if maxBytes, ok := flags["max-download-bytes"].(int64); ok && maxBytes != 0 {
		c.Scrape.MaxDownloadBytes = maxBytes
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.HTTP.Timeout = timeout
	}
	if rpm, ok := flags["rate-limit"].(int); ok && rpm >= 0 {
		c.HTTP.RequestsPerMinute = rpm
	}
	if port, ok := flags["port"].(int); ok && port > 0 {
		c.Viewer.Port = port
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults.
// The returned warnings describe values that normalization dropped.
func Load(configPath string, flags map[string]interface{}) (*Config, []string, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	if home := os.Getenv("HOME"); home != "" {
		_ = godotenv.Load(filepath.Join(home, ".mediascrape.env"))
	}

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	config.Logging.Level = strings.ToLower(config.Logging.Level)
	warnings := config.Scrape.Normalize()

	if err := config.Validate(); err != nil {
		return nil, warnings, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, warnings, nil
}
