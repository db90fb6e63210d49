package process

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/doc-leveler/internal/pipeline"
	"github.com/dtnitsch/doc-leveler/models"
	"github.com/dtnitsch/doc-leveler/pkg/analyzer"
	"github.com/dtnitsch/doc-leveler/pkg/caching"
	"github.com/dtnitsch/doc-leveler/pkg/fetcher"
	"github.com/dtnitsch/doc-leveler/pkg/llm"
	"github.com/dtnitsch/doc-leveler/pkg/rewriter"
	"github.com/dtnitsch/doc-leveler/pkg/scraper"
	"github.com/dtnitsch/doc-leveler/pkg/storage"
	"github.com/dtnitsch/doc-leveler/pkg/summarizer"
)

// NewLogger builds the JSON stderr logger shared by every command.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	} else if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads the config file and applies CLI flag overrides.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.ReadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("provider") {
		cfg.LLM.Provider = c.String("provider")
	}
	if c.IsSet("model") {
		cfg.LLM.Model = c.String("model")
	}
	if c.IsSet("base-url") {
		cfg.LLM.BaseURL = c.String("base-url")
	}
	if c.IsSet("cache-ttl") {
		cfg.Fetch.CacheTTL = c.Duration("cache-ttl")
	}
	if c.Bool("force-fetch") {
		cfg.Fetch.CacheTTL = -1
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("delay") {
		cfg.Batch.Delay = c.Duration("delay")
	}
	if c.IsSet("rate") {
		cfg.Batch.RatePerMinute = c.Float64("rate")
	}
	cfg.ResolveLLM()
	return cfg, nil
}

// BuildPipeline wires the default collaborators from cfg.
func BuildPipeline(c *cli.Context, cfg *models.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	cache, err := caching.NewCache(cfg.Fetch.CacheDir, cfg.Fetch.CacheTTL)
	if err != nil {
		return nil, err
	}
	f := fetcher.NewFetcher(
		fetcher.WithTimeout(cfg.Fetch.Timeout),
		fetcher.WithUserAgent(cfg.Fetch.UserAgent),
		fetcher.WithCache(cache),
		fetcher.WithLogger(logger),
	)

	gen, err := llm.NewGenerator(c.Context, llm.Options{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s generator: %w", cfg.LLM.Provider, err)
	}

	analyzerOpts := []analyzer.Option{analyzer.WithLogger(logger)}
	if !c.Bool("skip-language") {
		analyzerOpts = append(analyzerOpts, analyzer.WithLanguageDetector(analyzer.NewLinguaDetector()))
	}

	return pipeline.New(
		pipeline.WithScraper(scraper.New(f, logger)),
		pipeline.WithAnalyzer(analyzer.New(analyzerOpts...)),
		pipeline.WithIntermediateRewriter(rewriter.New(models.Intermediate, gen, logger)),
		pipeline.WithBeginnerRewriter(rewriter.New(models.Beginner, gen, logger)),
		pipeline.WithSummarizer(summarizer.New(f, gen)),
		pipeline.WithStore(storage.New()),
		pipeline.WithLogger(logger),
		pipeline.WithOutputDir(cfg.OutputDir),
	)
}
