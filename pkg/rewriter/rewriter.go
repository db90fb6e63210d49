// Package rewriter produces difficulty-specific variants of scraped sections
// with a text generation backend.
package rewriter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/dtnitsch/doc-leveler/models"
	"github.com/dtnitsch/doc-leveler/pkg/llm"
)

// Rewriter rewrites every section for one level. The output keeps section
// count, order, ids and titles, and each section gets exactly one paragraph block.
type Rewriter struct {
	level     models.Level
	generator llm.Generator
	logger    *slog.Logger
}

func New(level models.Level, generator llm.Generator, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Rewriter{level: level, generator: generator, logger: logger}
}

func (r *Rewriter) Rewrite(ctx context.Context, sections []models.Section) ([]models.Section, error) {
	outline := make([]string, len(sections))
	for i, s := range sections {
		outline[i] = s.Title
	}

	out := make([]models.Section, 0, len(sections))
	for i, s := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body := sourceText(s)
		text := s.Title
		if body != "" {
			generated, err := r.generator.Generate(ctx, BuildPrompt(r.level, outline, s.Title, body))
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", s.ID, err)
			}
			text = generated
		}
		r.logger.Debug("section rewritten", "level", r.level, "index", i, "section_id", s.ID)

		out = append(out, models.Section{
			ID:      s.ID,
			Title:   s.Title,
			Content: []models.ContentBlock{models.Paragraph(text)},
		})
	}
	return out, nil
}

// sourceText prefers the section HTML as Markdown and falls back to its plain text.
func sourceText(s models.Section) string {
	if strings.TrimSpace(s.HTML) != "" {
		md, err := htmltomarkdown.ConvertString(s.HTML)
		if err == nil && strings.TrimSpace(md) != "" {
			return strings.TrimSpace(md)
		}
	}
	return s.PlainText()
}
