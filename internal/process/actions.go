package process

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/doc-leveler/internal/common"
	"github.com/dtnitsch/doc-leveler/internal/pipeline"
	"github.com/dtnitsch/doc-leveler/models"
	"github.com/dtnitsch/doc-leveler/pkg/db"
	"github.com/dtnitsch/doc-leveler/pkg/ratelimit"
	"github.com/dtnitsch/doc-leveler/pkg/storage"
)

// ProcessAction runs the pipeline for a single URL.
func ProcessAction(c *cli.Context) error {
	logger := NewLogger(c)

	if c.NArg() != 1 {
		return cli.Exit("Error: exactly one URL is required\n\nUsage:\n  doc-leveler process https://learn.example.com/docs/page", 1)
	}
	urls, invalid := common.SanitizeAndValidateURLs(c.Args().Slice())
	if len(invalid) > 0 {
		return cli.Exit(fmt.Sprintf("Error: URL is malformed (even after cleanup): %s", invalid[0]), 1)
	}

	var level models.Level
	if c.IsSet("level") {
		var err error
		if level, err = models.ParseLevel(c.String("level")); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
	}

	cfg, err := LoadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	p, err := BuildPipeline(c, cfg, logger)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	run, err := p.Process(c.Context, urls[0])
	if err != nil {
		logger.Error("processing failed", "url", urls[0], "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	fmt.Printf("Processed %s\n", urls[0])
	fmt.Printf("  Sections: %d\n", run.Document.Metadata.SectionsCount)
	fmt.Printf("  Output:   %s\n", run.Path)
	fmt.Printf("  Time:     %.2fs\n", run.Elapsed.Seconds())
	if level != "" {
		fmt.Printf("\n%s summary:\n%s\n", level, run.Document.Summary(level))
	}
	return nil
}

// BatchAction processes URLs from arguments, --urls and --file sequentially.
func BatchAction(c *cli.Context) error {
	logger := NewLogger(c)

	rawURLs := append([]string{}, c.Args().Slice()...)
	rawURLs = append(rawURLs, common.SplitURLs(c.String("urls"))...)
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: failed to open URL file: %v", err), 1)
		}
		fromFile, err := common.ReadURLList(f)
		_ = f.Close()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		rawURLs = append(rawURLs, fromFile...)
	}

	if len(rawURLs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No URLs provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  doc-leveler batch https://a.example.com/docs https://b.example.com/docs`)
		fmt.Fprintln(os.Stderr, `  doc-leveler batch --file urls.txt --delay 10s`)
		return cli.Exit("", 1)
	}

	urls, invalid := common.SanitizeAndValidateURLs(rawURLs)
	if len(invalid) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d URL(s) are malformed (even after cleanup):\n", len(invalid))
		for _, bad := range invalid {
			fmt.Fprintf(os.Stderr, "  - %s\n", bad)
		}
		return cli.Exit("", 1)
	}

	cfg, err := LoadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	p, err := BuildPipeline(c, cfg, logger)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	opts := []pipeline.BatchOption{
		pipeline.WithLimiter(newLimiter(cfg)),
		pipeline.WithBatchLogger(logger),
		pipeline.WithReportDir(p.OutputDir()),
	}
	if !c.Bool("no-history") {
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			logger.Warn("history disabled, failed to open database", "error", err)
		} else {
			defer database.Close()
			logger.Debug("recording batch history", "db_path", database.Path())
			opts = append(opts, pipeline.WithRecorder(database))
		}
	}

	batch := pipeline.NewBatch(p, storage.New(), opts...)
	outcomes, runErr := batch.Run(c.Context, urls)

	report := models.NewBatchReport("", outcomes)
	fmt.Printf("Batch: %d/%d URLs successful\n", report.Successful, report.TotalURLs)
	for i, o := range outcomes {
		if o.Status == models.StatusSuccess {
			fmt.Printf("  %d. [ok]    %s -> %s\n", i+1, o.URL, o.OutputFile)
		} else {
			fmt.Printf("  %d. [error] %s: %s\n", i+1, o.URL, o.Error)
		}
	}
	if path := batch.ReportPath(); path != "" {
		fmt.Printf("Report: %s\n", path)
	}

	if runErr != nil {
		logger.Error("batch did not complete cleanly", "error", runErr)
		return cli.Exit("", 2)
	}
	if report.Failed == report.TotalURLs {
		return cli.Exit("", 2)
	}
	if report.Failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func newLimiter(cfg *models.Config) ratelimit.Limiter {
	if cfg.Batch.RatePerMinute > 0 {
		return ratelimit.NewTokenBucket(cfg.Batch.RatePerMinute)
	}
	return ratelimit.NewFixedDelay(cfg.Batch.Delay)
}
