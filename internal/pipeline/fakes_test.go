package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dtnitsch/doc-leveler/models"
	"github.com/dtnitsch/doc-leveler/pkg/storage"
)

var fixedNow = time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeScraper struct {
	sections []models.Section
	err      error
	calls    []string
}

func (f *fakeScraper) Scrape(_ context.Context, url string) ([]models.Section, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.sections, nil
}

type fakeAnalyzer struct {
	err   error
	calls int
}

func (f *fakeAnalyzer) Analyze(context.Context, []models.Section) error {
	f.calls++
	return f.err
}

// prefixRewriter writes "<prefix>: <id>" as the single block of every section.
type prefixRewriter struct {
	prefix string
	err    error
	order  *[]string
}

func (r *prefixRewriter) Rewrite(_ context.Context, sections []models.Section) ([]models.Section, error) {
	if r.order != nil {
		*r.order = append(*r.order, r.prefix)
	}
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Section, len(sections))
	for i, s := range sections {
		out[i] = models.Section{
			ID:      s.ID,
			Title:   s.Title,
			Content: []models.ContentBlock{models.Paragraph(r.prefix + ": " + s.ID)},
		}
	}
	return out, nil
}

type fakeSummarizer struct {
	bundle models.SummaryBundle
	err    error
	urls   []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, url string) (models.SummaryBundle, error) {
	f.urls = append(f.urls, url)
	return f.bundle, f.err
}

// memStore records writes in memory.
type memStore struct {
	mu      sync.Mutex
	dirs    []string
	files   map[string]any
	order   []string
	dirErr  error
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{files: map[string]any{}}
}

func (m *memStore) EnsureDir(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, dir)
	return m.dirErr
}

func (m *memStore) WriteJSON(dir, prefix string, ts time.Time, v any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	path := dir + "/" + storage.FileName(prefix, ts)
	if _, ok := m.files[path]; ok {
		path = dir + "/" + prefix + "_" + ts.Format(storage.TimestampLayout) + "_dup.json"
	}
	m.files[path] = v
	m.order = append(m.order, path)
	return path, nil
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Wait(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Process(ctx context.Context, url string) (*Run, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Run), args.Error(1)
}

type fakeRecorder struct {
	path   string
	report *models.BatchReport
	err    error
}

func (f *fakeRecorder) RecordBatch(_ context.Context, path string, report *models.BatchReport) error {
	f.path = path
	f.report = report
	return f.err
}

var errBoom = errors.New("boom")

func docSections() []models.Section {
	return []models.Section{
		{ID: "intro", Title: "Introduction", HTML: "<h2>Introduction</h2><p>Hello</p>", Content: []models.ContentBlock{models.Paragraph("Hello")}},
		{ID: "setup", Title: "Setup", HTML: "<h2>Setup</h2><p>Install it</p>", Content: []models.ContentBlock{models.Paragraph("Install it")}},
	}
}
