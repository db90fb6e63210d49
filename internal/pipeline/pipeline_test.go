package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/doc-leveler/models"
	"github.com/dtnitsch/doc-leveler/pkg/storage"
)

type fixture struct {
	scraper    *fakeScraper
	analyzer   *fakeAnalyzer
	beginner   *prefixRewriter
	inter      *prefixRewriter
	summarizer *fakeSummarizer
	store      *memStore
	order      []string
}

func newFixture() *fixture {
	f := &fixture{
		scraper:    &fakeScraper{sections: docSections()},
		analyzer:   &fakeAnalyzer{},
		summarizer: &fakeSummarizer{bundle: models.SummaryBundle{Beginner: "B", Intermediate: "I", Advanced: "A"}},
		store:      newMemStore(),
	}
	f.beginner = &prefixRewriter{prefix: "beginner", order: &f.order}
	f.inter = &prefixRewriter{prefix: "intermediate", order: &f.order}
	return f
}

func (f *fixture) pipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	base := []Option{
		WithScraper(f.scraper),
		WithAnalyzer(f.analyzer),
		WithBeginnerRewriter(f.beginner),
		WithIntermediateRewriter(f.inter),
		WithSummarizer(f.summarizer),
		WithStore(f.store),
		WithClock(clock),
		WithOutputDir("out"),
	}
	p, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return p
}

func TestNew_MissingCollaborator(t *testing.T) {
	_, err := New(WithScraper(&fakeScraper{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingCollaborator)
	assert.Contains(t, err.Error(), "analyzer")
}

func TestProcess_IntroAndSetup(t *testing.T) {
	f := newFixture()
	p := f.pipeline(t)

	run, err := p.Process(context.Background(), "https://docs.example.com/guide")
	require.NoError(t, err)

	doc := run.Document
	assert.Equal(t, 2, doc.Metadata.SectionsCount)
	assert.Equal(t, "2025-01-02T15:04:05Z", doc.Metadata.ProcessedAt)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "intro", doc.Sections[0].ID)
	assert.Equal(t, "setup", doc.Sections[1].ID)

	for i, s := range doc.Sections {
		require.Len(t, s.Content, 3)
		assert.Equal(t, "beginner: "+s.ID, s.Content[0].Text)
		assert.Equal(t, "intermediate: "+s.ID, s.Content[1].Text)
		assert.Equal(t, docSections()[i].HTML, s.Content[2].Text)
	}

	texts := []string{}
	for _, b := range doc.Summaries.Content {
		texts = append(texts, b.Text)
	}
	assert.Equal(t, []string{"B", "I", "A"}, texts)

	assert.Equal(t, "out/processed_documentation_20250102_150405.json", run.Path)
	assert.Same(t, doc, f.store.files[run.Path])
	assert.Equal(t, []string{"out"}, f.store.dirs)
}

func TestProcess_CollaboratorOrderAndInputs(t *testing.T) {
	f := newFixture()
	p := f.pipeline(t)

	_, err := p.Process(context.Background(), "https://docs.example.com/a")
	require.NoError(t, err)

	assert.Equal(t, []string{"intermediate", "beginner"}, f.order)
	assert.Equal(t, 1, f.analyzer.calls)
	assert.Equal(t, []string{"https://docs.example.com/a"}, f.scraper.calls)
	assert.Equal(t, []string{"https://docs.example.com/a"}, f.summarizer.urls)
}

func TestProcess_ZeroSections(t *testing.T) {
	f := newFixture()
	f.scraper.sections = nil
	p := f.pipeline(t)

	run, err := p.Process(context.Background(), "https://example.com/empty")
	require.NoError(t, err)
	assert.Equal(t, 0, run.Document.Metadata.SectionsCount)
	assert.Len(t, run.Document.Summaries.Content, 3)
	assert.Len(t, f.store.files, 1)
}

func TestProcess_FailuresWriteNothing(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{"scrape", func(f *fixture) { f.scraper.err = errBoom }},
		{"analyze", func(f *fixture) { f.analyzer.err = errBoom }},
		{"intermediate", func(f *fixture) { f.inter.err = errBoom }},
		{"beginner", func(f *fixture) { f.beginner.err = errBoom }},
		{"summarize", func(f *fixture) { f.summarizer.err = errBoom }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)
			p := f.pipeline(t)

			run, err := p.Process(context.Background(), "https://example.com")
			require.Error(t, err)
			assert.Nil(t, run)
			// collaborator errors come back unchanged, not wrapped
			assert.Equal(t, errBoom, err)
			assert.Equal(t, "boom", err.Error())
			assert.Empty(t, f.store.files)
		})
	}
}

func TestProcess_RewriterDropsSection(t *testing.T) {
	f := newFixture()
	p := f.pipeline(t, WithBeginnerRewriter(droppingRewriter{}))

	_, err := p.Process(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assemble")
	assert.Empty(t, f.store.files)
}

type droppingRewriter struct{}

func (droppingRewriter) Rewrite(_ context.Context, sections []models.Section) ([]models.Section, error) {
	return sections[:len(sections)-1], nil
}

func TestProcess_OutputDirFailure(t *testing.T) {
	f := newFixture()
	f.store.dirErr = errBoom
	p := f.pipeline(t)

	_, err := p.Process(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, f.scraper.calls)
}

func TestProcess_WritesFileOnDisk(t *testing.T) {
	f := newFixture()
	f.scraper.sections = []models.Section{
		{ID: "unicode", Title: "Ünïcode", HTML: "<p>café &amp; 日本語 <a href=\"x?a=1&b=2\">link</a></p>"},
	}
	dir := filepath.Join(t.TempDir(), "nested", "output")
	p := f.pipeline(t, WithStore(storage.New()), WithOutputDir(dir))

	run, err := p.Process(context.Background(), "https://example.com/unicode")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "processed_documentation_20250102_150405.json"), run.Path)

	raw, err := os.ReadFile(run.Path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "日本語")
	assert.Contains(t, string(raw), "&b=2")
	assert.Contains(t, string(raw), "\n  \"metadata\": {")

	var doc models.FinalDocument
	require.NoError(t, storage.New().ReadJSON(run.Path, &doc))
	assert.Equal(t, f.scraper.sections[0].HTML, doc.Sections[0].Content[2].Text)
}
