package models

import "strings"

// BlockTypeParagraph is the only block type the rewriters and the assembler emit.
const BlockTypeParagraph = "paragraph"

// Section is one logical unit of a documentation page.
// The scraper fills HTML; rewritten variants keep ID and Title and replace Content.
type Section struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	HTML    string         `json:"html,omitempty"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock represents a semantic block of text within a section.
type ContentBlock struct {
	Type       string `json:"type"` // e.g., "paragraph", "h2", "li", "code"
	Difficulty Level  `json:"difficulty,omitempty"`
	Text       string `json:"text"`
}

// PlainText concatenates the text of all content blocks, one block per line.
func (s *Section) PlainText() string {
	var sb strings.Builder
	for _, block := range s.Content {
		if block.Text == "" {
			continue
		}
		sb.WriteString(block.Text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// Paragraph builds a single paragraph block.
func Paragraph(text string) ContentBlock {
	return ContentBlock{Type: BlockTypeParagraph, Text: text}
}
