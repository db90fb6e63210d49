package rewriter

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/doc-leveler/models"
)

var audience = map[models.Level]string{
	models.Beginner: "a complete beginner. Avoid jargon, define every technical term you keep, " +
		"use short sentences and a concrete analogy where it helps. Keep code only if it is essential and explain it line by line.",
	models.Intermediate: "a working developer who knows the basics. Keep the technical terms, " +
		"drop marketing and repetition, and explain the why behind each step in plain language.",
	models.Advanced: "an expert. Be dense and precise, keep every technical detail, " +
		"and call out edge cases and tradeoffs.",
}

// BuildPrompt asks for a rewrite of one section for the given level. outline
// lists every section title of the page, in order, for context.
func BuildPrompt(level models.Level, outline []string, sectionTitle, body string) string {
	var sb strings.Builder
	sb.WriteString("You are a technical writer rewriting one section of a documentation page.\n")
	fmt.Fprintf(&sb, "Rewrite it for %s\n\n", audience[level])
	sb.WriteString("Rules:\n")
	sb.WriteString("- Output only the rewritten section as Markdown, without the section heading.\n")
	sb.WriteString("- Do not invent APIs, flags or facts that are not in the source.\n")
	sb.WriteString("- Keep the same language as the source.\n\n")
	if len(outline) > 1 {
		fmt.Fprintf(&sb, "Page outline: %s\n", strings.Join(outline, " | "))
	}
	fmt.Fprintf(&sb, "Section: %s\n\n", sectionTitle)
	sb.WriteString("Source:\n")
	sb.WriteString(body)
	sb.WriteString("\n")
	return sb.String()
}
