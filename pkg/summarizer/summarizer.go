// Package summarizer writes one whole-page summary per difficulty level.
package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/doc-leveler/models"
	"github.com/dtnitsch/doc-leveler/pkg/llm"
)

var ErrMalformedSummary = errors.New("malformed summary response")

// maxSourceChars caps how much page text goes into the prompt.
const maxSourceChars = 24000

// HTMLSource returns a page parsed into a goquery document.
type HTMLSource interface {
	GetHtml(ctx context.Context, url string) (*goquery.Document, error)
}

type Summarizer struct {
	source    HTMLSource
	generator llm.Generator
}

func New(source HTMLSource, generator llm.Generator) *Summarizer {
	return &Summarizer{source: source, generator: generator}
}

// Summarize reads the page at url and returns beginner, intermediate and advanced summaries.
func (s *Summarizer) Summarize(ctx context.Context, url string) (models.SummaryBundle, error) {
	doc, err := s.source.GetHtml(ctx, url)
	if err != nil {
		return models.SummaryBundle{}, err
	}

	prompt := buildPrompt(url, pageText(doc))
	var resp string
	if jg, ok := s.generator.(llm.JSONGenerator); ok {
		resp, err = jg.GenerateJSON(ctx, prompt)
	} else {
		resp, err = s.generator.Generate(ctx, prompt)
	}
	if err != nil {
		return models.SummaryBundle{}, err
	}
	return parseBundle(resp)
}

// pageText strips page chrome from doc, in place, and returns the main text.
func pageText(doc *goquery.Document) string {
	doc.Find("script,style,noscript,nav,header,footer,aside,form,svg").Remove()

	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Find("article").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	text := strings.Join(strings.Fields(root.Text()), " ")
	if len(text) > maxSourceChars {
		text = text[:maxSourceChars]
		// avoid cutting through a multi-byte rune
		text = strings.ToValidUTF8(text, "")
	}
	return text
}

func buildPrompt(url, text string) string {
	var sb strings.Builder
	sb.WriteString("Summarize the documentation page below three times, once per audience.\n")
	sb.WriteString("- beginner_level_summary: 2-3 plain sentences, no jargon.\n")
	sb.WriteString("- intermediate_level_summary: one paragraph naming the key concepts and steps.\n")
	sb.WriteString("- advanced_level_summary: one dense paragraph with precise technical detail.\n\n")
	sb.WriteString("Respond with a single JSON object with exactly those three string keys and nothing else.\n\n")
	fmt.Fprintf(&sb, "URL: %s\n\nPage text:\n%s\n", url, text)
	return sb.String()
}

func parseBundle(resp string) (models.SummaryBundle, error) {
	raw := llm.CleanOutput(resp)
	// tolerate prose around the object
	if start, end := strings.IndexByte(raw, '{'), strings.LastIndexByte(raw, '}'); start >= 0 && end > start {
		raw = raw[start : end+1]
	}

	var bundle models.SummaryBundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		return models.SummaryBundle{}, fmt.Errorf("%w: %v", ErrMalformedSummary, err)
	}
	for _, level := range models.Levels() {
		if strings.TrimSpace(bundle.Text(level)) == "" {
			return models.SummaryBundle{}, fmt.Errorf("%w: missing %s summary", ErrMalformedSummary, level)
		}
	}
	return bundle, nil
}
