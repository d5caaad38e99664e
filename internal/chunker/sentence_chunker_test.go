package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/futig/docqa-backend/internal/entity"
)

func TestChunk_WarrantyScenario(t *testing.T) {
	c := NewSentenceChunker(DefaultMaxWords, DefaultMinSentenceChars)
	text := "The warranty lasts 2 years. Returns are accepted within 30 days."

	chunks := c.Chunk(text, entity.ChunkMetadata{Source: "https://example.com/policy.pdf"})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Metadata.ChunkID != 0 {
		t.Errorf("expected chunk_id 0, got %d", chunks[0].Metadata.ChunkID)
	}
	if chunks[0].Content != text {
		t.Errorf("unexpected content %q", chunks[0].Content)
	}
	if chunks[0].Metadata.Source != "https://example.com/policy.pdf" {
		t.Errorf("source not propagated: %q", chunks[0].Metadata.Source)
	}
}

func TestSentences(t *testing.T) {
	c := NewSentenceChunker(DefaultMaxWords, DefaultMinSentenceChars)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "mixed terminators",
			text: "Is coverage included here? Yes, coverage is included!  It ends on Monday.",
			want: []string{"Is coverage included here?", "Yes, coverage is included!", "It ends on Monday."},
		},
		{
			name: "newlines become spaces",
			text: "The policy covers\nall listed members. Claims need a form.",
			want: []string{"The policy covers all listed members.", "Claims need a form."},
		},
		{
			name: "short noise dropped",
			text: "Page 1. The premium is payable yearly. Ok.",
			want: []string{"The premium is payable yearly."},
		},
		{
			name: "decimal numbers do not split",
			text: "The rate is 3.5 percent per annum for members.",
			want: []string{"The rate is 3.5 percent per annum for members."},
		},
		{
			name: "exactly ten characters dropped",
			text: "abcdefghi. The remaining sentence survives.",
			want: []string{"The remaining sentence survives."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Sentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d sentences, got %d: %q", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestChunk_LengthBoundAndCoverage(t *testing.T) {
	c := NewSentenceChunker(20, DefaultMinSentenceChars)

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		// 7 words per sentence
		fmt.Fprintf(&sb, "Clause number %d applies to every insured person. ", i)
	}
	text := sb.String()

	chunks := c.Chunk(text, entity.ChunkMetadata{Source: "doc"})
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	for i, ch := range chunks {
		if ch.Metadata.ChunkID != i {
			t.Errorf("chunk %d has id %d", i, ch.Metadata.ChunkID)
		}
		if n := len(strings.Fields(ch.Content)); n > 20 {
			t.Errorf("chunk %d has %d words, budget is 20", i, n)
		}
	}

	var joined []string
	for _, ch := range chunks {
		joined = append(joined, ch.Content)
	}
	if got, want := strings.Join(joined, " "), strings.Join(c.Sentences(text), " "); got != want {
		t.Errorf("chunks do not reproduce sentences in order\n got: %q\nwant: %q", got, want)
	}
}

func TestChunk_OverlongSentenceStandsAlone(t *testing.T) {
	c := NewSentenceChunker(5, DefaultMinSentenceChars)
	long := "This single sentence has far more than five words in it."
	text := "Short intro line here. " + long + " Closing remark is here."

	chunks := c.Chunk(text, entity.ChunkMetadata{})

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[1].Content != long {
		t.Errorf("expected over-long sentence alone, got %q", chunks[1].Content)
	}
	for _, ch := range chunks {
		if ch.Content == "" {
			t.Error("empty chunk emitted")
		}
	}
}

func TestChunk_OverlongFirstSentenceNoEmptyChunk(t *testing.T) {
	c := NewSentenceChunker(3, DefaultMinSentenceChars)

	chunks := c.Chunk("A very long opening sentence with many words.", entity.ChunkMetadata{})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Metadata.ChunkID != 0 {
		t.Errorf("expected chunk_id 0, got %d", chunks[0].Metadata.ChunkID)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c := NewSentenceChunker(8, DefaultMinSentenceChars)
	text := "Members may claim twice a year. Claims are paid in thirty days. Disputes go to arbitration first. Fees are waived for seniors."
	meta := entity.ChunkMetadata{Source: "doc", Extra: map[string]string{"lang": "en"}}

	first := c.Chunk(text, meta)
	second := c.Chunk(text, meta)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Content != second[i].Content || first[i].Metadata.ChunkID != second[i].Metadata.ChunkID {
			t.Errorf("chunk %d differs between runs", i)
		}
		if first[i].Metadata.Extra["lang"] != "en" {
			t.Errorf("chunk %d lost extra metadata", i)
		}
	}
}
