// Package chunker splits extracted board documents into retrieval-sized chunks.
//
// Two strategies are used depending on document shape: section-aware
// chunking for agendas that carry a parsed section/item tree, and
// paragraph-based chunking with overlap for unstructured text such as
// minutes.
package chunker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// DefaultMinSize is the default minimum chunk size in estimated tokens.
// Chunks below this are dropped rather than emitted.
const DefaultMinSize = 100

// DefaultTargetSize is the default target chunk size in estimated tokens.
const DefaultTargetSize = 500

// DefaultMaxSize is the default maximum chunk size in estimated tokens.
const DefaultMaxSize = 800

// paragraphSplit matches blank-line boundaries between paragraphs.
var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// Splitter converts one document into an ordered chunk sequence.
// It implements the driven.Chunker port.
type Splitter struct {
	minSize    int
	targetSize int
	maxSize    int
}

// Ensure Splitter implements the Chunker port.
var _ driven.Chunker = (*Splitter)(nil)

// Option configures the splitter.
type Option func(*Splitter)

// WithMinSize sets the minimum chunk size in estimated tokens.
func WithMinSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.minSize = size
		}
	}
}

// WithTargetSize sets the target chunk size in estimated tokens.
func WithTargetSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.targetSize = size
		}
	}
}

// WithMaxSize sets the maximum chunk size in estimated tokens.
func WithMaxSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		minSize:    DefaultMinSize,
		targetSize: DefaultTargetSize,
		maxSize:    DefaultMaxSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure the floor stays below the ceiling
	if s.minSize >= s.maxSize {
		s.minSize = s.maxSize / 8
	}

	return s
}

// Chunk splits the document using the strategy matching its shape.
// Agendas with a parsed section tree are chunked section by section;
// everything else falls back to paragraph accumulation with overlap.
// Empty content yields no chunks and no error.
func (s *Splitter) Chunk(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, nil
	}

	var chunks []domain.Chunk
	if doc.HasSections() {
		chunks = s.chunkSections(doc)
	} else {
		chunks = s.chunkParagraphs(doc.Content)
	}

	// Identifiers and the sequence length are assigned once the full
	// sequence is known.
	docID := domain.DocumentID(doc.Type, doc.ClipID)
	for i := range chunks {
		chunks[i].ID = domain.ChunkID(doc.Type, doc.ClipID, i)
		chunks[i].DocumentID = docID
		chunks[i].Index = i
		chunks[i].Type = doc.Type
		chunks[i].ClipID = doc.ClipID
		chunks[i].SourceURL = doc.SourceURL
		chunks[i].TotalChunks = len(chunks)
	}

	return chunks, nil
}

// chunkSections chunks a document along its section/item tree.
// Each section becomes one chunk when it fits, or a run of chunks that
// repeat the section heading when it does not.
func (s *Splitter) chunkSections(doc *domain.Document) []domain.Chunk {
	var chunks []domain.Chunk

	// The document header becomes its own chunk when large enough.
	if doc.Title != "" && estimateTokens(doc.Title) >= s.minSize {
		chunks = append(chunks, domain.Chunk{
			Content:       doc.Title,
			TokenEstimate: estimateTokens(doc.Title),
			Section:       "header",
		})
	}

	for _, section := range doc.Sections {
		heading := fmt.Sprintf("%s. %s", section.Number, section.Title)

		parts := make([]string, 0, len(section.Items)+1)
		parts = append(parts, heading)
		for _, item := range section.Items {
			parts = append(parts, fmt.Sprintf("   %s. %s", item.Letter, item.Text))
		}

		text := strings.Join(parts, "\n")
		tokens := estimateTokens(text)

		// Small enough to keep as one chunk; too small to keep at all.
		if tokens <= s.maxSize {
			if tokens >= s.minSize {
				chunks = append(chunks, domain.Chunk{
					Content:       text,
					TokenEstimate: tokens,
					Section:       heading,
				})
			}
			continue
		}

		// Section exceeds the maximum; pack items greedily.
		current := []string{heading}
		currentTokens := estimateTokens(heading)

		for _, item := range section.Items {
			itemText := fmt.Sprintf("   %s. %s", item.Letter, item.Text)
			itemTokens := estimateTokens(itemText)

			if currentTokens+itemTokens > s.maxSize && currentTokens >= s.minSize {
				chunks = append(chunks, domain.Chunk{
					Content:       strings.Join(current, "\n"),
					TokenEstimate: currentTokens,
					Section:       heading,
				})
				// Repeat the heading so the continuation stays
				// interpretable on its own.
				current = []string{heading + " (continued)"}
				currentTokens = estimateTokens(current[0])
			}

			current = append(current, itemText)
			currentTokens += itemTokens
		}

		if currentTokens >= s.minSize {
			chunks = append(chunks, domain.Chunk{
				Content:       strings.Join(current, "\n"),
				TokenEstimate: currentTokens,
				Section:       heading,
			})
		}
	}

	return chunks
}

// chunkParagraphs accumulates paragraphs into chunks with single-paragraph
// overlap between consecutive chunks. Paragraphs that alone exceed the
// maximum are re-split into sentences with two-sentence overlap.
func (s *Splitter) chunkParagraphs(content string) []domain.Chunk {
	var chunks []domain.Chunk

	paragraphs := make([]string, 0)
	for _, p := range paragraphSplit.Split(content, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var current []string
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := estimateTokens(para)

		if paraTokens > s.maxSize {
			// Flush anything pending before breaking the paragraph up.
			if currentTokens >= s.minSize {
				chunks = append(chunks, bodyChunk(strings.Join(current, "\n\n"), currentTokens))
				current = nil
				currentTokens = 0
			}

			for _, sentence := range splitSentences(para) {
				sentenceTokens := estimateTokens(sentence)

				if currentTokens+sentenceTokens > s.maxSize && currentTokens >= s.minSize {
					chunks = append(chunks, bodyChunk(strings.Join(current, " "), currentTokens))
					var overlap []string
					if len(current) > 2 {
						overlap = current[len(current)-2:]
					}
					current = append([]string(nil), overlap...)
					currentTokens = sumTokens(current)
				}

				current = append(current, sentence)
				currentTokens += sentenceTokens
			}
			continue
		}

		if currentTokens+paraTokens > s.maxSize && currentTokens >= s.minSize {
			chunks = append(chunks, bodyChunk(strings.Join(current, "\n\n"), currentTokens))
			// Carry the last paragraph into the next chunk as overlap.
			var overlap []string
			if len(current) > 0 {
				overlap = current[len(current)-1:]
			}
			current = append([]string(nil), overlap...)
			currentTokens = sumTokens(current)
		}

		current = append(current, para)
		currentTokens += paraTokens
	}

	if currentTokens >= s.minSize {
		chunks = append(chunks, bodyChunk(strings.Join(current, "\n\n"), currentTokens))
	}

	return chunks
}

// bodyChunk builds an unstructured-text chunk awaiting identifiers.
func bodyChunk(content string, tokens int) domain.Chunk {
	return domain.Chunk{
		Content:       content,
		TokenEstimate: tokens,
		Section:       "body",
	}
}

// estimateTokens approximates token count as character count divided by
// four. A crude proxy, but thresholds are expressed in the same unit.
func estimateTokens(text string) int {
	return len(text) / 4
}

// sumTokens totals the estimates of the given parts.
func sumTokens(parts []string) int {
	total := 0
	for _, p := range parts {
		total += estimateTokens(p)
	}
	return total
}

// splitSentences breaks text after terminal punctuation followed by
// whitespace, keeping the punctuation attached to the preceding sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}

		j := i + 1
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j == i+1 {
			// Punctuation not followed by whitespace; keep scanning.
			continue
		}

		sentences = append(sentences, text[start:i+1])
		start = j
		i = j - 1
	}

	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	return sentences
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
