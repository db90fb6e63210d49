package rewriter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/doc-leveler/models"
)

type recordingGenerator struct {
	prompts []string
	reply   func(prompt string) (string, error)
}

func (g *recordingGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.reply != nil {
		return g.reply(prompt)
	}
	return "rewritten", nil
}

func sections() []models.Section {
	return []models.Section{
		{ID: "intro", Title: "Introduction", HTML: "<h2>Introduction</h2><p>Use <code>go run</code> to start.</p>"},
		{ID: "empty", Title: "Empty"},
		{ID: "text-only", Title: "Text", Content: []models.ContentBlock{models.Paragraph("plain body")}},
	}
}

func TestRewrite_PreservesShape(t *testing.T) {
	gen := &recordingGenerator{}
	r := New(models.Beginner, gen, nil)

	got, err := r.Rewrite(context.Background(), sections())
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, s := range sections() {
		assert.Equal(t, s.ID, got[i].ID)
		assert.Equal(t, s.Title, got[i].Title)
		assert.Empty(t, got[i].HTML)
		require.Len(t, got[i].Content, 1)
		assert.Equal(t, models.BlockTypeParagraph, got[i].Content[0].Type)
	}
	assert.Equal(t, "rewritten", got[0].Content[0].Text)
	assert.Equal(t, "Empty", got[1].Content[0].Text)
	assert.Equal(t, "rewritten", got[2].Content[0].Text)

	// the empty section never reaches the model
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "`go run`")
	assert.Contains(t, gen.prompts[0], "complete beginner")
	assert.Contains(t, gen.prompts[1], "plain body")
}

func TestRewrite_LevelPrompt(t *testing.T) {
	gen := &recordingGenerator{}
	_, err := New(models.Intermediate, gen, nil).Rewrite(context.Background(), sections()[:1])
	require.NoError(t, err)
	assert.True(t, strings.Contains(gen.prompts[0], "working developer"))
}

func TestRewrite_PromptOutline(t *testing.T) {
	gen := &recordingGenerator{}
	in := []models.Section{
		{ID: "setup", Title: "Setup", Content: []models.ContentBlock{models.Paragraph("install it")}},
		{ID: "usage", Title: "Usage", Content: []models.ContentBlock{models.Paragraph("run it")}},
	}

	_, err := New(models.Advanced, gen, nil).Rewrite(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, gen.prompts, 2)
	for _, p := range gen.prompts {
		assert.NotContains(t, p, "Page: Setup")
		assert.Contains(t, p, "Page outline: Setup | Usage")
	}
	assert.Contains(t, gen.prompts[1], "Section: Usage")
}

func TestRewrite_GeneratorError(t *testing.T) {
	boom := errors.New("quota exceeded")
	gen := &recordingGenerator{reply: func(string) (string, error) { return "", boom }}

	got, err := New(models.Beginner, gen, nil).Rewrite(context.Background(), sections())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"intro"`)
}

func TestRewrite_Empty(t *testing.T) {
	got, err := New(models.Beginner, &recordingGenerator{}, nil).Rewrite(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRewrite_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(models.Beginner, &recordingGenerator{}, nil).Rewrite(ctx, sections())
	assert.ErrorIs(t, err, context.Canceled)
}
