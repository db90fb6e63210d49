package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/doc-leveler/internal/history"
	"github.com/dtnitsch/doc-leveler/internal/process"
	"github.com/dtnitsch/doc-leveler/models"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "doc-leveler",
		Usage: "Rewrite technical documentation pages for beginner, intermediate and advanced readers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.yaml", Usage: "Path to YAML config file (optional)"},
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Value: models.DefaultOutputDir, Usage: "Directory for generated JSON files"},
			&cli.StringFlag{Name: "provider", Usage: "LLM provider: gemini or openai"},
			&cli.StringFlag{Name: "model", Usage: "LLM model name"},
			&cli.StringFlag{Name: "base-url", Usage: "Base URL for an OpenAI-compatible endpoint"},
			&cli.DurationFlag{Name: "cache-ttl", Value: models.DefaultCacheTTL, Usage: "How long fetched pages stay cached"},
			&cli.BoolFlag{Name: "force-fetch", Usage: "Ignore the page cache"},
			&cli.StringFlag{Name: "db", Usage: "Path to the history database (default: next to the binary)"},
			&cli.BoolFlag{Name: "skip-language", Usage: "Skip language detection during analysis"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only log errors"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log debug output"},
		},
		Commands: []*cli.Command{
			{
				Name:      "process",
				Usage:     "Process a single documentation URL",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Also print this level's summary: beginner, intermediate or advanced"},
				},
				Action: process.ProcessAction,
			},
			{
				Name:      "batch",
				Usage:     "Process several URLs in order and write a batch report",
				ArgsUsage: "[url...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "urls", Usage: "Space or comma separated URLs"},
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "File with one URL per line (# comments allowed)"},
					&cli.DurationFlag{Name: "delay", Value: models.DefaultBatchDelay, Usage: "Pause between URLs"},
					&cli.Float64Flag{Name: "rate", Usage: "Max URLs per minute (overrides --delay)"},
					&cli.BoolFlag{Name: "no-history", Usage: "Do not record the batch in the history database"},
				},
				Action: process.BatchAction,
			},
			{
				Name:  "history",
				Usage: "List recorded batches",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum batches to list (0 for all)"},
					&cli.StringFlag{Name: "url", Usage: "Only batches that included this URL"},
				},
				Action: history.HistoryAction,
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Show one batch as YAML (latest if no ID given)",
						ArgsUsage: "[batch-id]",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Include each page's summary for this level, read from the saved report"},
						},
						Action: history.ShowAction,
					},
				},
			},
		},
	}
}
