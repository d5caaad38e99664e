// Package chunker splits extracted document text into sentence-aligned,
// word-bounded passages.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/futig/docqa-backend/internal/entity"
)

const (
	DefaultMaxWords         = 256
	DefaultMinSentenceChars = 10
)

// SentenceChunker greedily packs whole sentences into chunks of at most
// maxWords words. A sentence that alone exceeds the budget gets a chunk
// of its own and is never truncated.
type SentenceChunker struct {
	maxWords         int
	minSentenceChars int
}

func NewSentenceChunker(maxWords, minSentenceChars int) *SentenceChunker {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if minSentenceChars < 0 {
		minSentenceChars = DefaultMinSentenceChars
	}
	return &SentenceChunker{
		maxWords:         maxWords,
		minSentenceChars: minSentenceChars,
	}
}

// Chunk splits text into chunks. ChunkID is assigned sequentially from 0;
// Source and Extra are copied from meta.
func (c *SentenceChunker) Chunk(text string, meta entity.ChunkMetadata) []entity.Chunk {
	sentences := c.Sentences(text)

	var (
		chunks  []entity.Chunk
		current []string
		words   int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, entity.Chunk{
			Content: strings.Join(current, " "),
			Metadata: entity.ChunkMetadata{
				ChunkID: len(chunks),
				Source:  meta.Source,
				Extra:   copyExtra(meta.Extra),
			},
		})
		current = nil
		words = 0
	}

	for _, sentence := range sentences {
		n := len(strings.Fields(sentence))
		if words+n > c.maxWords {
			flush()
		}
		current = append(current, sentence)
		words += n
	}
	flush()

	return chunks
}

// Sentences returns the trimmed sentences of text that are longer than
// the noise threshold, in order of appearance.
func (c *SentenceChunker) Sentences(text string) []string {
	var sentences []string
	for _, segment := range splitSentences(strings.ReplaceAll(text, "\n", " ")) {
		segment = strings.TrimSpace(segment)
		if utf8.RuneCountInString(segment) > c.minSentenceChars {
			sentences = append(sentences, segment)
		}
	}
	return sentences
}

// splitSentences cuts text after '.', '!' or '?' whenever the punctuation
// is followed by whitespace. The whitespace run itself is dropped.
func splitSentences(text string) []string {
	var (
		segments []string
		start    int
		prev     rune
	)

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) && isTerminal(prev) {
			segments = append(segments, text[start:i])
			j := i
			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += s2
			}
			start = j
			i = j
			prev = 0
			continue
		}
		prev = r
		i += size
	}

	return append(segments, text[start:])
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func copyExtra(extra map[string]string) map[string]string {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]string, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}
