package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mediascrape/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "valid config with debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name: "config with rotating file output",
			cfg: &config.LoggingConfig{
				Level:      "info",
				File:       filepath.Join(t.TempDir(), "logs", "mediascrape.log"),
				MaxSize:    1,
				MaxBackups: 1,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && l == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestFileOutputIsWritten(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&config.LoggingConfig{Level: "info", File: logFile, MaxSize: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.WithField("url", "http://h/").Info("scrape started")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "scrape started") {
		t.Errorf("Expected message in log file, got %q", string(data))
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewFromWriter(&buf, "warn")
	if err != nil {
		t.Fatal(err)
	}

	l.Info("hidden")
	l.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("Info message should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("Warn message not found in output")
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewFromWriter(&buf, "debug")
	if err != nil {
		t.Fatal(err)
	}

	l.WithField("field1", "value1").
		WithFields(map[string]interface{}{"field2": 2, "field3": true}).
		WithError(errors.New("boom")).
		InfoWithFields("chained fields", map[string]interface{}{
			"elapsed": time.Second,
			"refs":    []string{"a", "b"},
		})

	output := buf.String()
	for _, want := range []string{
		"chained fields",
		`"field1":"value1"`,
		`"field2":2`,
		`"field3":true`,
		`"error":"boom"`,
		`"refs":["a","b"]`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %s in output %s", want, output)
		}
	}
}

func TestWithErrorNil(t *testing.T) {
	l := NewNop()
	if l.WithError(nil) != l {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestTestLoggerCapturesChildMessages(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("component", "scraper")

	child.WarnWithFields("Media candidate failed", map[string]interface{}{"url": "http://h/a.png"})
	tl.Info("done")

	msgs := tl.GetMessages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Fields["component"] != "scraper" || msgs[0].Fields["url"] != "http://h/a.png" {
		t.Errorf("Unexpected fields: %v", msgs[0].Fields)
	}
	if len(tl.GetMessagesByLevel("WARN")) != 1 {
		t.Error("Expected one WARN message")
	}
	if !tl.HasMessage("done") {
		t.Error("Expected to find message 'done'")
	}
}
