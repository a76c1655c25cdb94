package chunk

import (
	"errors"
	"strings"
)

var ErrInvalidConfig = errors.New("chunk overlap must be smaller than chunk size")

// Chunk is one bounded span of document text, the unit handed to the vector store.
type Chunk struct {
	Index      int
	Text       string
	TokenCount int
}

// Chunker splits normalized text into overlapping token windows. Window
// boundaries fall on whitespace-delimited fields, but size and overlap are
// measured in the counter's tokens, so a multibyte-heavy document (Korean
// runs at several tokens per syllable under cl100k_base) still respects the
// configured ceiling.
type Chunker struct {
	size    int
	overlap int
	counter TokenCounter
}

func NewChunker(size, overlap int, counter TokenCounter) (*Chunker, error) {
	if size <= 0 {
		return nil, ErrInvalidConfig
	}
	if overlap < 0 || overlap >= size {
		return nil, ErrInvalidConfig
	}
	if counter == nil {
		counter = FieldCounter{}
	}
	return &Chunker{size: size, overlap: overlap, counter: counter}, nil
}

// Split produces chunks covering the whole input in order with no gaps.
// Each window accumulates fields until the next one would push its token
// count past the configured size; the next window starts at most `overlap`
// tokens before the previous window's end. A single field counting more
// than size becomes a chunk of its own, the one case the ceiling cannot
// hold. Empty input yields no chunks; input shorter than one chunk yields
// exactly one chunk with no overlap applied.
func (c *Chunker) Split(text string) []Chunk {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	counts := make([]int, len(fields))
	for i, f := range fields {
		counts[i] = c.counter.Count(f)
	}

	var chunks []Chunk
	start := 0
	for start < len(fields) {
		end := start
		total := 0
		for end < len(fields) {
			if end > start && total+counts[end] > c.size {
				break
			}
			total += counts[end]
			end++
		}

		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Text:       strings.Join(fields[start:end], " "),
			TokenCount: total,
		})
		if end == len(fields) {
			break
		}

		// Walk back up to overlap tokens, always leaving forward progress.
		next := end
		back := 0
		for next > start+1 && back+counts[next-1] <= c.overlap {
			back += counts[next-1]
			next--
		}
		start = next
	}
	return chunks
}
