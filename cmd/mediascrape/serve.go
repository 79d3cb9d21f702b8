package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mediascrape/pkg/storage"
	"mediascrape/pkg/ui"
	"mediascrape/pkg/viewer"
)

var (
	servePort   int
	serveOutput string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Browse completed scrapes in a local web viewer",
	Long: `Start a small HTTP server listing the scrapes under the output root.

Routes:
  /                                 list of scrape folders
  /view/<folder>/<path>             files of one scrape (index.html by default)
  /api/scrapes                      scrape folders as JSON
  /api/scrapes/<folder>/manifest    the manifest of one scrape`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default 3000)")
	serveCmd.Flags().StringVarP(&serveOutput, "output", "o", "", "output root directory to serve (default: ./output)")
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("port") {
		flags["port"] = servePort
	}
	if cmd.Flags().Changed("output") {
		flags["output"] = serveOutput
	}

	cfg, log, err := loadConfig(flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	server, err := viewer.NewServer(cfg.Viewer, cfg.Output.BaseDirectory, storage.NewFileSystem(), log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintInfo("Viewer", fmt.Sprintf("http://%s/", server.Addr()))
	return server.Run(ctx)
}
