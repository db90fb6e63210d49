package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dtnitsch/doc-leveler/models"
	"github.com/dtnitsch/doc-leveler/pkg/ratelimit"
)

// ReportPrefix names batch report artifacts.
const ReportPrefix = "batch_results"

// ErrNoResult is recorded when a Processor reports success without a document.
var ErrNoResult = errors.New("processor returned no document")

// Processor handles one URL. *Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, url string) (*Run, error)
}

// Recorder keeps a history of finished batches.
type Recorder interface {
	RecordBatch(ctx context.Context, reportPath string, report *models.BatchReport) error
}

// Batch runs a Processor over many URLs, one at a time, pausing between them.
type Batch struct {
	processor Processor
	store     Store
	limiter   ratelimit.Limiter
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
	reportDir string

	reportPath string
}

type BatchOption func(*Batch)

func WithLimiter(l ratelimit.Limiter) BatchOption { return func(b *Batch) { b.limiter = l } }
func WithRecorder(r Recorder) BatchOption { return func(b *Batch) { b.recorder = r } }
func WithBatchClock(now func() time.Time) BatchOption { return func(b *Batch) { b.now = now } }
func WithReportDir(dir string) BatchOption { return func(b *Batch) { b.reportDir = dir } }

func WithBatchLogger(l *slog.Logger) BatchOption {
	return func(b *Batch) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBatch builds a Batch that pauses models.DefaultBatchDelay between URLs
// unless another limiter is supplied.
func NewBatch(processor Processor, store Store, opts ...BatchOption) *Batch {
	b := &Batch{
		processor: processor,
		store:     store,
		limiter:   ratelimit.NewFixedDelay(models.DefaultBatchDelay),
		logger:    discardLogger(),
		now:       time.Now,
		reportDir: models.DefaultOutputDir,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run processes urls in order. A failing URL is recorded and never stops the
// batch. The report is written once every URL has an outcome. The returned
// error is non-nil only if ctx was cancelled or the report could not be saved;
// outcomes are returned either way.
func (b *Batch) Run(ctx context.Context, urls []string) ([]models.URLOutcome, error) {
	outcomes := make([]models.URLOutcome, 0, len(urls))
	var ctxErr error

	for i, url := range urls {
		if ctxErr == nil {
			ctxErr = ctx.Err()
		}
		if ctxErr != nil {
			outcomes = append(outcomes, failed(url, ctxErr))
			continue
		}

		b.logger.Info("Processing", "index", i+1, "total", len(urls), "url", url)
		run, err := b.processor.Process(ctx, url)
		if err == nil && (run == nil || run.Document == nil) {
			err = ErrNoResult
		}
		if err != nil {
			b.logger.Error("Failed to process URL", "url", url, "error", err)
			outcomes = append(outcomes, failed(url, err))
		} else {
			outcomes = append(outcomes, models.URLOutcome{
				URL:        url,
				Status:     models.StatusSuccess,
				Result:     run.Document,
				OutputFile: run.Path,
			})
		}

		if i < len(urls)-1 {
			if delay, ok := b.limiter.(*ratelimit.FixedDelay); ok {
				b.logger.Info("Waiting before next request", "delay_seconds", delay.Delay.Seconds())
			}
			if err := b.limiter.Wait(ctx); err != nil {
				ctxErr = err
			}
		}
	}

	ts := b.now()
	report := models.NewBatchReport(ts.Format(time.RFC3339), outcomes)
	if err := b.store.EnsureDir(b.reportDir); err != nil {
		return outcomes, fmt.Errorf("report dir: %w", err)
	}
	path, err := b.store.WriteJSON(b.reportDir, ReportPrefix, ts, report)
	if err != nil {
		return outcomes, fmt.Errorf("save batch report: %w", err)
	}
	b.reportPath = path
	b.logger.Info("Batch processing complete",
		"successful", report.Successful,
		"total_urls", report.TotalURLs,
		"file_path", path,
	)

	if b.recorder != nil {
		if err := b.recorder.RecordBatch(context.WithoutCancel(ctx), path, report); err != nil {
			b.logger.Warn("Failed to record batch history", "error", err)
		}
	}

	return outcomes, ctxErr
}

// ReportPath is where the last Run saved its report, or "" if none was saved.
func (b *Batch) ReportPath() string {
	return b.reportPath
}

func failed(url string, err error) models.URLOutcome {
	return models.URLOutcome{
		URL:    url,
		Status: models.StatusError,
		Error:  err.Error(),
	}
}
