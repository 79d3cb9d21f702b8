// Package logger provides a structured logging interface for the media scraper.
//
// It wraps the zerolog library to provide a small API with support for:
//   - Multiple log levels (Debug, Info, Warn, Error)
//   - Structured logging with fields
//   - Console output, colored only when writing to a terminal
//   - Rotating file output via lumberjack
//   - Global logger instance for the command line tool
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File:  "/var/log/mediascrape.log",
//	}
//	err := logger.Initialize(cfg)
//
//	log := logger.GetLogger()
//	log.Info("Application started")
//	log.WithField("url", pageURL).Info("Scrape started")
//
// Components take a Logger in their constructor and fall back to GetLogger
// when given nil:
//
//	log := logger.GetLogger().WithField("component", "fetcher")
//	log.InfoWithFields("Media stored", map[string]interface{}{
//	    "path": "media/1-logo.png",
//	    "size": 1024,
//	})
//
// Tests use NewTestLogger to capture and assert on messages.
package logger
