// Package agenda extracts structured text from Granicus agenda HTML pages.
//
// Agenda pages lay their content out in tables: the first table holds
// the meeting header in strong tags, and subsequent tables hold numbered
// sections ("1.", "2.") with lettered items ("A.", "B.") in two-cell rows.
package agenda

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor parses agenda viewer pages into structured documents.
type Extractor struct{}

// New creates a new agenda extractor.
func New() *Extractor {
	return &Extractor{}
}

// Type returns the document type this extractor handles.
func (e *Extractor) Type() domain.DocumentType {
	return domain.DocumentTypeAgenda
}

var (
	sectionNumber = regexp.MustCompile(`^\d+\.$`)
	itemLetter    = regexp.MustCompile(`^[A-Z]\.$`)
)

// Extract parses the fetched HTML into a document carrying the agenda's
// section tree. Pages whose structure cannot be recognised still yield
// a document; the section list is simply empty.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil || len(raw.Body) == 0 {
		return nil, domain.ErrInvalidInput
	}

	root, err := html.Parse(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing agenda HTML: %w", err)
	}

	clipID := raw.ClipID
	if clipID == "" {
		clipID = domain.ClipIDFromURL(raw.SourceURL)
	}

	tables := findAll(root, "table")
	header := extractHeader(tables)
	sections := extractSections(tables)
	content := assembleContent(header, sections)

	return &domain.Document{
		ID:             domain.DocumentID(domain.DocumentTypeAgenda, clipID),
		Type:           domain.DocumentTypeAgenda,
		ClipID:         clipID,
		SourceURL:      raw.SourceURL,
		Title:          header,
		Content:        content,
		Sections:       sections,
		ExtractedAt:    time.Now(),
		CharacterCount: len(content),
	}, nil
}

// extractHeader pulls the meeting header out of the first table's
// strong tags, one line per tag.
func extractHeader(tables []*html.Node) string {
	if len(tables) == 0 {
		return ""
	}

	var lines []string
	for _, strong := range findAll(tables[0], "strong") {
		if text := textContent(strong, " "); text != "" {
			lines = append(lines, text)
		}
	}

	return strings.Join(lines, "\n")
}

// extractSections walks every table row with at least two cells,
// opening a new section on a numbered first cell and attaching lettered
// rows as items of the current section.
func extractSections(tables []*html.Node) []domain.Section {
	var sections []domain.Section
	var current *domain.Section

	for _, table := range tables {
		for _, row := range findAll(table, "tr") {
			cells := findAll(row, "td")
			if len(cells) < 2 {
				continue
			}

			first := textContent(cells[0], "")
			second := textContent(cells[1], "")

			switch {
			case sectionNumber.MatchString(first):
				if current != nil {
					sections = append(sections, *current)
				}
				current = &domain.Section{
					Number: strings.TrimSuffix(first, "."),
					Title:  second,
				}
			case itemLetter.MatchString(first) && current != nil:
				current.Items = append(current.Items, domain.Item{
					Letter: strings.TrimSuffix(first, "."),
					Text:   second,
				})
			}
		}
	}

	if current != nil {
		sections = append(sections, *current)
	}

	return sections
}

// assembleContent renders the header and section tree into the flat
// text used for paragraph display and as the chunking fallback.
func assembleContent(header string, sections []domain.Section) string {
	var parts []string

	if header != "" {
		parts = append(parts, header)
		parts = append(parts, "\n"+strings.Repeat("=", 60)+"\n")
	}

	for _, section := range sections {
		parts = append(parts, fmt.Sprintf("\n%s. %s", section.Number, section.Title))
		for _, item := range section.Items {
			parts = append(parts, fmt.Sprintf("   %s. %s", item.Letter, item.Text))
		}
	}

	return strings.Join(parts, "\n")
}

// findAll collects elements with the given tag name in document order.
func findAll(n *html.Node, tag string) []*html.Node {
	var nodes []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			nodes = append(nodes, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return nodes
}

// textContent collects the node's text segments, trimmed, joined with sep.
func textContent(n *html.Node, sep string) string {
	var parts []string

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(parts, sep)
}
