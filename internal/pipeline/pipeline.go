// Package pipeline runs the single-URL processing flow and the sequential
// batch orchestrator on top of it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dtnitsch/doc-leveler/models"
	"github.com/dtnitsch/doc-leveler/pkg/assembler"
)

// DocumentPrefix names per-URL artifacts.
const DocumentPrefix = "processed_documentation"

var ErrMissingCollaborator = errors.New("missing collaborator")

// Scraper turns a URL into an ordered sequence of sections.
type Scraper interface {
	Scrape(ctx context.Context, url string) ([]models.Section, error)
}

// Analyzer inspects the scraped sections. Its findings are not fed back into the pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, sections []models.Section) error
}

// Rewriter produces a difficulty variant that preserves section count, order, ids and titles.
type Rewriter interface {
	Rewrite(ctx context.Context, sections []models.Section) ([]models.Section, error)
}

// Summarizer produces one whole-page summary per level from the URL.
type Summarizer interface {
	Summarize(ctx context.Context, url string) (models.SummaryBundle, error)
}

// Store is the filesystem collaborator.
type Store interface {
	EnsureDir(dir string) error
	WriteJSON(dir, prefix string, ts time.Time, v any) (string, error)
}

// Run is the outcome of processing one URL.
type Run struct {
	Document *models.FinalDocument
	Path     string
	Elapsed  time.Duration
}

// Pipeline processes a single URL end to end.
type Pipeline struct {
	scraper      Scraper
	analyzer     Analyzer
	beginner     Rewriter
	intermediate Rewriter
	summarizer   Summarizer
	store        Store
	logger       *slog.Logger
	now          func() time.Time
	outputDir    string
}

type Option func(*Pipeline)

func WithScraper(s Scraper) Option { return func(p *Pipeline) { p.scraper = s } }
func WithAnalyzer(a Analyzer) Option { return func(p *Pipeline) { p.analyzer = a } }
func WithBeginnerRewriter(r Rewriter) Option { return func(p *Pipeline) { p.beginner = r } }
func WithSummarizer(s Summarizer) Option { return func(p *Pipeline) { p.summarizer = s } }
func WithStore(s Store) Option { return func(p *Pipeline) { p.store = s } }
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }
func WithOutputDir(dir string) Option { return func(p *Pipeline) { p.outputDir = dir } }

func WithIntermediateRewriter(r Rewriter) Option {
	return func(p *Pipeline) { p.intermediate = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New builds a Pipeline. Every collaborator must be supplied.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		logger:    discardLogger(),
		now:       time.Now,
		outputDir: models.DefaultOutputDir,
	}
	for _, opt := range opts {
		opt(p)
	}

	checks := []struct {
		name    string
		missing bool
	}{
		{"scraper", p.scraper == nil},
		{"analyzer", p.analyzer == nil},
		{"beginner rewriter", p.beginner == nil},
		{"intermediate rewriter", p.intermediate == nil},
		{"summarizer", p.summarizer == nil},
		{"store", p.store == nil},
	}
	for _, c := range checks {
		if c.missing {
			return nil, fmt.Errorf("%w: %s", ErrMissingCollaborator, c.name)
		}
	}
	return p, nil
}

// OutputDir returns the directory documents are written to.
func (p *Pipeline) OutputDir() string {
	return p.outputDir
}

// Process scrapes, analyzes, rewrites, summarizes and assembles url, then
// persists the document. Any collaborator failure aborts before anything is
// written and is returned as is, so the batch report shows the collaborator's
// own message.
func (p *Pipeline) Process(ctx context.Context, url string) (*Run, error) {
	log := p.logger.With("url", url)

	if err := p.store.EnsureDir(p.outputDir); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	start := time.Now()
	log.Info("Starting documentation processing")

	sections, err := p.scraper.Scrape(ctx, url)
	if err != nil {
		return nil, stageFailed(log, "scrape", err)
	}
	log.Info("Scraped sections", "section_count", len(sections))

	if err := p.analyzer.Analyze(ctx, sections); err != nil {
		return nil, stageFailed(log, "analyze", err)
	}
	log.Info("Difficulty analysis complete")

	log.Info("Rewriting", "level", models.Intermediate)
	intermediate, err := p.intermediate.Rewrite(ctx, sections)
	if err != nil {
		return nil, stageFailed(log, "rewrite "+string(models.Intermediate), err)
	}

	log.Info("Rewriting", "level", models.Beginner)
	beginner, err := p.beginner.Rewrite(ctx, sections)
	if err != nil {
		return nil, stageFailed(log, "rewrite "+string(models.Beginner), err)
	}

	advanced := assembler.AdvancedVariant(sections)

	log.Info("Generating summaries")
	summaries, err := p.summarizer.Summarize(ctx, url)
	if err != nil {
		return nil, stageFailed(log, "summarize", err)
	}

	ts := p.now()
	doc, err := assembler.Assemble(url, beginner, intermediate, advanced, summaries, ts)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	log.Info("Assembled document", "section_count", doc.Metadata.SectionsCount)

	path, err := p.store.WriteJSON(p.outputDir, DocumentPrefix, ts, doc)
	if err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}

	elapsed := time.Since(start)
	log.Info("Processing complete", "file_path", path, "elapsed_seconds", elapsed.Seconds())

	return &Run{Document: doc, Path: path, Elapsed: elapsed}, nil
}

// stageFailed logs which stage failed and hands err back untouched.
func stageFailed(log *slog.Logger, stage string, err error) error {
	log.Error("Stage failed", "stage", stage, "error", err)
	return err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
