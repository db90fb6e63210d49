package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/doc-leveler/models"
	"github.com/dtnitsch/doc-leveler/pkg/ratelimit"
)

func okRun(url string) *Run {
	return &Run{
		Document: &models.FinalDocument{Metadata: models.DocumentMetadata{SourceURL: url}},
		Path:     "out/" + url,
	}
}

func TestBatchRun_MiddleFailure(t *testing.T) {
	urls := []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"}

	proc := &mockProcessor{}
	proc.On("Process", mock.Anything, urls[0]).Return(okRun(urls[0]), nil).Once()
	proc.On("Process", mock.Anything, urls[1]).Return(nil, errBoom).Once()
	proc.On("Process", mock.Anything, urls[2]).Return(okRun(urls[2]), nil).Once()

	limiter := &mockLimiter{}
	limiter.On("Wait", mock.Anything).Return(nil)

	store := newMemStore()
	b := NewBatch(proc, store, WithLimiter(limiter), WithBatchClock(clock), WithReportDir("out"))

	outcomes, err := b.Run(context.Background(), urls)
	require.NoError(t, err)

	require.Len(t, outcomes, 3)
	assert.Equal(t, models.StatusSuccess, outcomes[0].Status)
	assert.Equal(t, models.StatusError, outcomes[1].Status)
	assert.NotEmpty(t, outcomes[1].Error)
	assert.Nil(t, outcomes[1].Result)
	assert.Equal(t, models.StatusSuccess, outcomes[2].Status)
	assert.Equal(t, urls[2], outcomes[2].Result.Metadata.SourceURL)

	reportPath := "out/batch_results_20250102_150405.json"
	assert.Equal(t, reportPath, b.ReportPath())
	require.Contains(t, store.files, reportPath)
	report := store.files[reportPath].(*models.BatchReport)
	assert.Equal(t, 3, report.TotalURLs)
	assert.Equal(t, 2, report.Successful)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, outcomes, report.Results)

	proc.AssertExpectations(t)
	limiter.AssertNumberOfCalls(t, "Wait", 2)
}

func TestBatchRun_LimiterCalls(t *testing.T) {
	tests := []struct {
		name  string
		urls  int
		waits int
	}{
		{"empty", 0, 0},
		{"single", 1, 0},
		{"two", 2, 1},
		{"five", 5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls := make([]string, tt.urls)
			for i := range urls {
				urls[i] = fmt.Sprintf("https://example.com/%d", i)
			}

			proc := &mockProcessor{}
			for _, u := range urls {
				proc.On("Process", mock.Anything, u).Return(okRun(u), nil)
			}
			limiter := &mockLimiter{}
			limiter.On("Wait", mock.Anything).Return(nil)

			store := newMemStore()
			outcomes, err := NewBatch(proc, store, WithLimiter(limiter), WithBatchClock(clock)).Run(context.Background(), urls)
			require.NoError(t, err)

			assert.Len(t, outcomes, tt.urls)
			limiter.AssertNumberOfCalls(t, "Wait", tt.waits)
			assert.Len(t, store.files, 1)
		})
	}
}

func TestBatchRun_EmptyReport(t *testing.T) {
	store := newMemStore()
	outcomes, err := NewBatch(&mockProcessor{}, store, WithLimiter(ratelimit.None{}), WithBatchClock(clock)).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)

	report := store.files["output/batch_results_20250102_150405.json"].(*models.BatchReport)
	assert.Equal(t, 0, report.TotalURLs)
	assert.NotNil(t, report.Results)
}

func TestBatchRun_AllFail(t *testing.T) {
	urls := []string{"https://a.example.com", "https://b.example.com"}
	proc := &mockProcessor{}
	proc.On("Process", mock.Anything, mock.Anything).Return(nil, errBoom)

	store := newMemStore()
	outcomes, err := NewBatch(proc, store, WithLimiter(ratelimit.None{}), WithBatchClock(clock)).Run(context.Background(), urls)
	require.NoError(t, err)

	for _, o := range outcomes {
		assert.Equal(t, models.StatusError, o.Status)
		assert.Equal(t, "boom", o.Error)
	}
	proc.AssertNumberOfCalls(t, "Process", 2)
}

func TestBatchRun_NoResultIsFailure(t *testing.T) {
	urls := []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"}
	proc := &mockProcessor{}
	proc.On("Process", mock.Anything, urls[0]).Return(nil, nil).Once()
	proc.On("Process", mock.Anything, urls[1]).Return(&Run{Path: "output/b.json"}, nil).Once()
	proc.On("Process", mock.Anything, urls[2]).Return(okRun(urls[2]), nil).Once()

	store := newMemStore()
	outcomes, err := NewBatch(proc, store, WithLimiter(ratelimit.None{}), WithBatchClock(clock)).Run(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for _, o := range outcomes[:2] {
		assert.Equal(t, models.StatusError, o.Status)
		assert.Equal(t, ErrNoResult.Error(), o.Error)
		assert.Nil(t, o.Result)
	}
	assert.Equal(t, models.StatusSuccess, outcomes[2].Status)

	report := store.files["output/batch_results_20250102_150405.json"].(*models.BatchReport)
	assert.Equal(t, 1, report.Successful)
	assert.Equal(t, 2, report.Failed)
}

func TestBatchRun_CancelledDuringWait(t *testing.T) {
	urls := []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"}
	proc := &mockProcessor{}
	proc.On("Process", mock.Anything, urls[0]).Return(okRun(urls[0]), nil).Once()

	limiter := &mockLimiter{}
	limiter.On("Wait", mock.Anything).Return(context.Canceled).Once()

	store := newMemStore()
	rec := &fakeRecorder{}
	outcomes, err := NewBatch(proc, store, WithLimiter(limiter), WithBatchClock(clock), WithRecorder(rec)).Run(context.Background(), urls)
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, outcomes, 3)
	assert.Equal(t, models.StatusSuccess, outcomes[0].Status)
	assert.Equal(t, models.StatusError, outcomes[1].Status)
	assert.Equal(t, models.StatusError, outcomes[2].Status)

	require.NotNil(t, rec.report)
	assert.Equal(t, 1, rec.report.Successful)
	assert.Equal(t, 2, rec.report.Failed)
	proc.AssertExpectations(t)
}

func TestBatchRun_ReportSaveFailure(t *testing.T) {
	proc := &mockProcessor{}
	proc.On("Process", mock.Anything, "https://a.example.com").Return(okRun("https://a.example.com"), nil)

	store := newMemStore()
	store.saveErr = errBoom
	outcomes, err := NewBatch(proc, store, WithLimiter(ratelimit.None{})).Run(context.Background(), []string{"https://a.example.com"})
	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, outcomes, 1)
}

func TestBatchRun_RecorderFailureIgnored(t *testing.T) {
	proc := &mockProcessor{}
	proc.On("Process", mock.Anything, "https://a.example.com").Return(okRun("https://a.example.com"), nil)

	store := newMemStore()
	rec := &fakeRecorder{err: errBoom}
	_, err := NewBatch(proc, store, WithLimiter(ratelimit.None{}), WithRecorder(rec), WithBatchClock(clock)).Run(context.Background(), []string{"https://a.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "output/batch_results_20250102_150405.json", rec.path)
}

// The batch drives the real pipeline: the second URL's scrape fails and the
// other two still produce documents.
func TestBatchRun_WithPipeline(t *testing.T) {
	f := newFixture()
	scraper := &urlScraper{fail: "https://b.example.com", sections: docSections()}
	p := f.pipeline(t, WithScraper(scraper))

	urls := []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"}
	outcomes, err := NewBatch(p, f.store, WithLimiter(ratelimit.None{}), WithBatchClock(clock), WithReportDir("out")).Run(context.Background(), urls)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSuccess, outcomes[0].Status)
	assert.Equal(t, models.StatusError, outcomes[1].Status)
	assert.Equal(t, "boom", outcomes[1].Error)
	assert.Equal(t, models.StatusSuccess, outcomes[2].Status)
	assert.Equal(t, 2, outcomes[2].Result.Metadata.SectionsCount)

	// two documents and one report
	assert.Len(t, f.store.files, 3)
}

type urlScraper struct {
	fail     string
	sections []models.Section
}

func (s *urlScraper) Scrape(_ context.Context, url string) ([]models.Section, error) {
	if url == s.fail {
		return nil, errBoom
	}
	return s.sections, nil
}
