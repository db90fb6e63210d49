package models

// SummaryBundle holds one whole-page summary per difficulty level.
type SummaryBundle struct {
	Beginner     string `json:"beginner_level_summary"`
	Intermediate string `json:"intermediate_level_summary"`
	Advanced     string `json:"advanced_level_summary"`
}

// Text returns the summary for the given level.
func (b SummaryBundle) Text(level Level) string {
	switch level {
	case Beginner:
		return b.Beginner
	case Intermediate:
		return b.Intermediate
	case Advanced:
		return b.Advanced
	}
	return ""
}

// FinalDocument is the persisted per-URL artifact.
type FinalDocument struct {
	Metadata  DocumentMetadata `json:"metadata"`
	Summaries Summaries        `json:"summaries"`
	Sections  []MergedSection  `json:"sections"`
}

// Summary returns the page summary for level, or "" if the document has none.
func (d *FinalDocument) Summary(level Level) string {
	for i, l := range Levels() {
		if l == level && i < len(d.Summaries.Content) {
			return d.Summaries.Content[i].Text
		}
	}
	return ""
}

type DocumentMetadata struct {
	SourceURL        string   `json:"source_url"`
	ProcessedAt      string   `json:"processed_at"`
	SectionsCount    int      `json:"sections_count"`
	DifficultyLevels []string `json:"difficulty_levels"`
}

type Summaries struct {
	Content []ContentBlock `json:"content"`
}

// MergedSection carries exactly one content block per difficulty level,
// ordered beginner, intermediate, advanced.
type MergedSection struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Content []ContentBlock `json:"content"`
}
