// Package assembler merges the three difficulty variants of a page and its
// summaries into the final persisted document. Everything here is pure.
package assembler

import (
	"time"

	"github.com/dtnitsch/doc-leveler/models"
)

// Assemble zips beginner, intermediate and advanced sections by position.
// Section i takes id and title from the beginner variant and gets the first
// content block of each variant, in level order.
func Assemble(url string, beginner, intermediate, advanced []models.Section, summaries models.SummaryBundle, processedAt time.Time) (*models.FinalDocument, error) {
	if len(beginner) != len(intermediate) || len(beginner) != len(advanced) {
		return nil, &MismatchedSectionCountError{
			Beginner:     len(beginner),
			Intermediate: len(intermediate),
			Advanced:     len(advanced),
		}
	}

	sections := make([]models.MergedSection, 0, len(beginner))
	for i, base := range beginner {
		variants := map[models.Level]models.Section{
			models.Beginner:     base,
			models.Intermediate: intermediate[i],
			models.Advanced:     advanced[i],
		}

		merged := models.MergedSection{
			ID:      base.ID,
			Title:   base.Title,
			Content: make([]models.ContentBlock, 0, len(variants)),
		}
		for _, level := range models.Levels() {
			v := variants[level]
			if v.ID != base.ID {
				return nil, &MisalignedSectionError{Index: i, Level: level, Want: base.ID, Got: v.ID}
			}
			if v.Title != base.Title {
				return nil, &MisalignedSectionError{Index: i, Level: level, Want: base.Title, Got: v.Title}
			}
			if len(v.Content) == 0 {
				return nil, &EmptySectionError{Index: i, Level: level, ID: v.ID}
			}
			merged.Content = append(merged.Content, v.Content[0])
		}
		sections = append(sections, merged)
	}

	return &models.FinalDocument{
		Metadata: models.DocumentMetadata{
			SourceURL:        url,
			ProcessedAt:      processedAt.Format(time.RFC3339),
			SectionsCount:    len(sections),
			DifficultyLevels: models.LevelNames(),
		},
		Summaries: SummaryBlocks(summaries),
		Sections:  sections,
	}, nil
}

// SummaryBlocks lays out the three summaries as paragraph blocks in level order.
func SummaryBlocks(summaries models.SummaryBundle) models.Summaries {
	blocks := make([]models.ContentBlock, 0, 3)
	for _, level := range models.Levels() {
		blocks = append(blocks, models.ContentBlock{
			Type:       models.BlockTypeParagraph,
			Difficulty: level,
			Text:       summaries.Text(level),
		})
	}
	return models.Summaries{Content: blocks}
}

// AdvancedVariant keeps each section's id and title and carries its raw HTML
// verbatim as a single paragraph block.
func AdvancedVariant(sections []models.Section) []models.Section {
	advanced := make([]models.Section, 0, len(sections))
	for _, s := range sections {
		advanced = append(advanced, models.Section{
			ID:      s.ID,
			Title:   s.Title,
			Content: []models.ContentBlock{models.Paragraph(s.HTML)},
		})
	}
	return advanced
}
