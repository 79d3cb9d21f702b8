package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"mediascrape/pkg/fetcher"
	"mediascrape/pkg/scraper"
	"mediascrape/pkg/storage"
	"mediascrape/pkg/ui"
)

var (
	// Scrape command flags
	scrapeURL        string
	scrapeName       string
	outputDir        string
	downloadMedia    string
	maxDownloadBytes int64
	ignoreExt        string
	folderNaming     string
	httpTimeout      time.Duration
	rateLimit        int
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Scrape one page and its media",
	Long: `Fetch a page, discover the media it references and store it.

Text assets (css, js, json, ...) and references without an extension are
always downloaded. Other categories are only downloaded when listed in
--download-media: images, video, audio, fonts, documents, other.`,
	Example: `  # Store the page plus its css/js only
  mediascrape scrape --url https://example.com/

  # Also download images and fonts, into a named folder
  mediascrape scrape -u https://example.com/ --download-media images,fonts \
    --folder-naming name -n example

  # Skip anything larger than 1 MB and never touch pdf files
  mediascrape scrape https://example.com/ --max-download-bytes 1048576 --ignore-ext pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&scrapeURL, "url", "u", "", "page URL to scrape")
	scrapeCmd.Flags().StringVarP(&scrapeName, "name", "n", "", "folder name when --folder-naming is name (default: scrape-<millis>)")
	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output root directory (default: ./output)")
	scrapeCmd.Flags().StringVar(&downloadMedia, "download-media", "", "comma separated categories to download, or none")
	scrapeCmd.Flags().Int64Var(&maxDownloadBytes, "max-download-bytes", 0, "largest file to download, in bytes")
	scrapeCmd.Flags().StringVar(&ignoreExt, "ignore-ext", "", "comma separated extensions to ignore, or none")
	scrapeCmd.Flags().StringVar(&folderNaming, "folder-naming", "", "output folder naming: slug-timestamp or name")
	scrapeCmd.Flags().DurationVar(&httpTimeout, "timeout", 0, "timeout per HTTP request")
	scrapeCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "maximum requests per minute (0 for unlimited)")
}

// scrapeFlags collects only the flags the user actually set
func scrapeFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("output") {
		flags["output"] = outputDir
	}
	if changed("download-media") {
		flags["download-media"] = downloadMedia
	}
	if changed("max-download-bytes") {
		flags["max-download-bytes"] = maxDownloadBytes
	}
	if changed("ignore-ext") {
		flags["ignore-ext"] = ignoreExt
	}
	if changed("folder-naming") {
		flags["folder-naming"] = folderNaming
	}
	if changed("timeout") {
		flags["timeout"] = httpTimeout
	}
	if changed("rate-limit") {
		flags["rate-limit"] = rateLimit
	}
	return flags
}

func runScrape(cmd *cobra.Command, args []string) error {
	target := scrapeURL
	if target == "" && len(args) == 1 {
		target = args[0]
	}
	if err := validator.New().Var(target, "required,http_url"); err != nil {
		return fmt.Errorf("a valid http(s) URL is required, via --url or as an argument")
	}

	cfg, log, err := loadConfig(scrapeFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		ui.PrintInfo("Target", target)
	}
	log.WithField("version", version).Info("mediascrape starting")

	s := scraper.New(storage.NewFileSystem(), fetcher.NewClient(cfg.HTTP, log), log)
	result, err := s.Scrape(ctx, scraper.Request{
		URL:        target,
		Name:       scrapeName,
		OutputRoot: cfg.Output.BaseDirectory,
		Config:     cfg.Scrape,
	})
	if err != nil {
		ui.PrintError("SCRAPE FAILED", err.Error())
		return err
	}

	if !quiet {
		ui.PrintReport(result.OutputDir, result.Manifest)
	}
	return nil
}
