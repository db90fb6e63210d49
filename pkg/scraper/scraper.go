// Package scraper fetches a documentation page and splits it into sections at
// its top-level headings.
package scraper

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/dtnitsch/doc-leveler/models"
)

// HTMLSource returns the raw HTML of a page.
type HTMLSource interface {
	GetHtmlBytes(ctx context.Context, url string) ([]byte, error)
}

const (
	sectionHeadings = "h1,h2"
	blockSelector   = "h1,h2,h3,h4,h5,h6,p,li,pre,table,blockquote,dl"
	// Elements whose text already covers their matched descendants.
	containerSelector = "li,pre,table,blockquote,dl"
	noiseSelector     = "script,style,noscript,nav,header,footer,aside,form,iframe,svg,button"
)

var rootCandidates = []string{"main", "article", "[role=main]", ".content", "#content", "body"}

type Scraper struct {
	source HTMLSource
	logger *slog.Logger
}

func New(source HTMLSource, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scraper{source: source, logger: logger}
}

// Scrape fetches rawURL and returns its sections in document order.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) ([]models.Section, error) {
	body, err := s.source.GetHtmlBytes(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return s.Parse(rawURL, body)
}

// Parse splits an HTML page into sections. Content before the first heading
// becomes an "overview" section titled after the page.
func (s *Scraper) Parse(rawURL string, body []byte) ([]models.Section, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	pageTitle := normalizeText(doc.Find("title").First().Text())
	rp := readability.NewParser()
	article, err := rp.Parse(bytes.NewReader(body), parsedURL)
	if err != nil {
		s.logger.Debug("readability failed, using <title>", "url", rawURL, "error", err)
	} else if t := normalizeText(article.Title); t != "" {
		pageTitle = t
		s.logger.Debug("readability metadata", "url", rawURL, "site_name", article.SiteName, "excerpt", article.Excerpt)
	}
	if pageTitle == "" {
		pageTitle = "Overview"
	}

	root := findRoot(doc)
	root.Find(noiseSelector).Remove()

	b := newBuilder()
	current := &pending{id: "overview", title: pageTitle, preamble: true}

	root.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		if sel.ParentsFiltered(containerSelector).Length() > 0 {
			return
		}

		tag := goquery.NodeName(sel)
		if sel.Is(sectionHeadings) {
			b.flush(current)
			title := normalizeText(sel.Text())
			anchor, _ := sel.Attr("id")
			current = &pending{id: anchor, title: title}
			current.appendHTML(sel)
			return
		}

		block, ok := toBlock(tag, sel)
		if !ok {
			return
		}
		current.blocks = append(current.blocks, block)
		current.appendHTML(sel)
	})
	b.flush(current)

	s.logger.Debug("page segmented", "url", rawURL, "section_count", len(b.sections))
	return b.sections, nil
}

type pending struct {
	id       string
	title    string
	preamble bool
	html     strings.Builder
	blocks   []models.ContentBlock
}

func (p *pending) appendHTML(sel *goquery.Selection) {
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return
	}
	p.html.WriteString(html)
	p.html.WriteString("\n")
}

// builder assigns unique ids and drops empty leading sections.
type builder struct {
	sections []models.Section
	seen     map[string]int
}

func newBuilder() *builder {
	return &builder{sections: []models.Section{}, seen: map[string]int{}}
}

func (b *builder) flush(p *pending) {
	// A heading-less preamble with no text is not a section.
	if p.preamble && len(p.blocks) == 0 {
		return
	}
	if p.title == "" && len(p.blocks) == 0 {
		return
	}

	id := slugify(p.id)
	if id == "" {
		id = slugify(p.title)
	}
	if id == "" {
		id = "section-" + strconv.Itoa(len(b.sections)+1)
	}
	b.seen[id]++
	if n := b.seen[id]; n > 1 {
		id = id + "-" + strconv.Itoa(n)
	}

	title := p.title
	if title == "" {
		title = id
	}

	content := p.blocks
	if content == nil {
		content = []models.ContentBlock{}
	}
	b.sections = append(b.sections, models.Section{
		ID:      id,
		Title:   title,
		HTML:    strings.TrimSpace(p.html.String()),
		Content: content,
	})
}

func findRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range rootCandidates {
		if node := doc.Find(sel).First(); node.Length() > 0 && strings.TrimSpace(node.Text()) != "" {
			return node
		}
	}
	return doc.Selection
}

func toBlock(tag string, sel *goquery.Selection) (models.ContentBlock, bool) {
	var block models.ContentBlock
	switch tag {
	case "table":
		block = models.ContentBlock{Type: "table", Text: extractTable(sel)}
	case "pre":
		block = models.ContentBlock{Type: "code", Text: extractCodeBlock(sel)}
	case "p":
		block = models.ContentBlock{Type: models.BlockTypeParagraph, Text: normalizeText(sel.Text())}
	case "li":
		block = models.ContentBlock{Type: "list_item", Text: normalizeText(sel.Text())}
	case "blockquote":
		block = models.ContentBlock{Type: "quote", Text: normalizeText(sel.Text())}
	case "dl":
		block = models.ContentBlock{Type: "definition", Text: normalizeText(sel.Text())}
	default:
		block = models.ContentBlock{Type: "heading", Text: normalizeText(sel.Text())}
	}
	return block, block.Text != ""
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), " ")
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}

// extractTable renders rows as "cell | cell" lines, header first.
func extractTable(s *goquery.Selection) string {
	var lines []string
	s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, normalizeText(cell.Text()))
		})
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
	})
	return strings.Join(lines, "\n")
}

// extractCodeBlock keeps code whitespace intact.
func extractCodeBlock(s *goquery.Selection) string {
	codeSel := s.Find("code")
	if codeSel.Length() == 0 {
		return strings.TrimSpace(s.Text())
	}
	return strings.TrimSpace(codeSel.Text())
}
