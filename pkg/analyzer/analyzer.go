// Package analyzer estimates how difficult each scraped section is to read.
// The pipeline only logs its findings; nothing downstream consumes them.
package analyzer

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/doc-leveler/models"
)

// Assessment holds the readability signals of one section.
type Assessment struct {
	SectionID         string
	Words             int
	Sentences         int
	AvgSentenceLength float64
	ReadingEase       float64 // Flesch reading ease, higher is easier
	CodeRatio         float64 // share of code and table blocks
	JargonDensity     float64 // share of words with three or more syllables
	Score             float64 // 0-10, higher is harder
	Level             models.Level
	Language          string // ISO 639-1, empty if undetected
	Keywords          []string
}

// LanguageDetector guesses the language of a text.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

type Analyzer struct {
	languages LanguageDetector
	logger    *slog.Logger
}

type Option func(*Analyzer)

func WithLanguageDetector(d LanguageDetector) Option {
	return func(a *Analyzer) { a.languages = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze assesses every section and logs the result.
func (a *Analyzer) Analyze(ctx context.Context, sections []models.Section) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	counts := map[models.Level]int{}
	for _, assessment := range a.Assess(sections) {
		counts[assessment.Level]++
		a.logger.Debug("section assessed",
			"section_id", assessment.SectionID,
			"level", assessment.Level,
			"score", assessment.Score,
			"reading_ease", assessment.ReadingEase,
			"language", assessment.Language,
			"keywords", assessment.Keywords,
		)
	}
	a.logger.Info("difficulty distribution",
		"section_count", len(sections),
		"beginner", counts[models.Beginner],
		"intermediate", counts[models.Intermediate],
		"advanced", counts[models.Advanced],
	)
	return nil
}

// Assess computes an Assessment per section, in order.
func (a *Analyzer) Assess(sections []models.Section) []Assessment {
	out := make([]Assessment, 0, len(sections))
	for _, s := range sections {
		out = append(out, a.assess(s))
	}
	return out
}

func (a *Analyzer) assess(s models.Section) Assessment {
	as := Assessment{SectionID: s.ID}

	var prose strings.Builder
	technical := 0
	for _, block := range s.Content {
		switch block.Type {
		case "code", "table":
			technical++
		default:
			prose.WriteString(block.Text)
			prose.WriteString("\n")
		}
	}
	if len(s.Content) > 0 {
		as.CodeRatio = float64(technical) / float64(len(s.Content))
	}

	text := prose.String()
	tokens := words(text)
	as.Words = len(tokens)
	as.Sentences = sentenceCount(text)
	as.Keywords = TopTerms(text, 5)

	if as.Words > 0 {
		totalSyllables, complexWords := 0, 0
		for _, w := range tokens {
			n := syllables(w)
			totalSyllables += n
			if n >= 3 {
				complexWords++
			}
		}
		as.AvgSentenceLength = float64(as.Words) / float64(as.Sentences)
		as.ReadingEase = 206.835 - 1.015*as.AvgSentenceLength - 84.6*float64(totalSyllables)/float64(as.Words)
		as.JargonDensity = float64(complexWords) / float64(as.Words)
	} else {
		as.ReadingEase = 100
	}

	as.Score = score(as)
	as.Level = levelFor(as.Score)

	if a.languages != nil && as.Words > 0 {
		if lang, ok := a.languages.Detect(text); ok {
			as.Language = lang
		}
	}
	return as
}

// score weighs hard prose, code density and jargon into a 0-10 scale.
func score(as Assessment) float64 {
	ease := math.Max(0, math.Min(100, as.ReadingEase))
	s := (100-ease)/10*0.5 + as.CodeRatio*10*0.3 + math.Min(1, as.JargonDensity*3)*10*0.2
	return math.Round(s*100) / 100
}

func levelFor(score float64) models.Level {
	switch {
	case score < 3.5:
		return models.Beginner
	case score < 6.5:
		return models.Intermediate
	default:
		return models.Advanced
	}
}

// LinguaDetector adapts lingua-go to LanguageDetector.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLinguaDetector builds a detector over the languages documentation is most often written in.
func NewLinguaDetector() *LinguaDetector {
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.French, lingua.German, lingua.Spanish,
			lingua.Portuguese, lingua.Italian, lingua.Dutch, lingua.Russian,
			lingua.Japanese, lingua.Chinese, lingua.Korean,
		).
		Build()
	return &LinguaDetector{detector: d}
}

func (l *LinguaDetector) Detect(text string) (string, bool) {
	lang, ok := l.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
