package chunk

import (
	"fmt"
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestNewChunkerConfig(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 500, 50, false},
		{"zero overlap", 10, 0, false},
		{"overlap equals size", 10, 10, true},
		{"overlap exceeds size", 10, 20, true},
		{"negative overlap", 10, -1, true},
		{"zero size", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.overlap, FieldCounter{})
			if tt.wantErr && err != ErrInvalidConfig {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSplitEmptyInput(t *testing.T) {
	c, _ := NewChunker(10, 2, FieldCounter{})
	for _, input := range []string{"", "   ", "\n\t "} {
		if got := c.Split(input); got != nil {
			t.Errorf("Split(%q) = %v, want nil", input, got)
		}
	}
}

func TestSplitShortInput(t *testing.T) {
	c, _ := NewChunker(10, 2, FieldCounter{})
	chunks := c.Split("one two three")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != "one two three" {
		t.Errorf("chunk text = %q", chunks[0].Text)
	}
	if chunks[0].TokenCount != 3 {
		t.Errorf("token count = %d, want 3", chunks[0].TokenCount)
	}
}

func TestSplitWindowBounds(t *testing.T) {
	c, _ := NewChunker(10, 3, FieldCounter{})
	chunks := c.Split(words(25))

	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
		if ch.TokenCount > 10 {
			t.Errorf("chunk %d has %d tokens, max 10", i, ch.TokenCount)
		}
	}
	// Step is size-overlap = 7, so the second window starts at token 7.
	if !strings.HasPrefix(chunks[1].Text, "w7 ") {
		t.Errorf("second chunk starts with %q, want w7", strings.Fields(chunks[1].Text)[0])
	}
}

func TestSplitOverlap(t *testing.T) {
	c, _ := NewChunker(10, 3, FieldCounter{})
	chunks := c.Split(words(25))

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Text)
		cur := strings.Fields(chunks[i].Text)
		tail := prev[len(prev)-3:]
		head := cur[:3]
		for j := range tail {
			if tail[j] != head[j] {
				t.Fatalf("chunks %d/%d do not share 3 tokens: %v vs %v", i-1, i, tail, head)
			}
		}
	}
}

func TestSplitCoversAllTokens(t *testing.T) {
	c, _ := NewChunker(8, 2, FieldCounter{})
	input := words(53)
	chunks := c.Split(input)

	seen := map[string]bool{}
	for _, ch := range chunks {
		for _, tok := range strings.Fields(ch.Text) {
			seen[tok] = true
		}
	}
	for _, tok := range strings.Fields(input) {
		if !seen[tok] {
			t.Fatalf("token %q missing from every chunk", tok)
		}
	}
}

// syllableCounter charges several tokens per field, the way cl100k_base
// prices Hangul syllables.
type syllableCounter struct{ perField int }

func (c syllableCounter) Count(text string) int {
	return c.perField * len(strings.Fields(text))
}

func TestSplitRespectsTokenCeiling(t *testing.T) {
	c, _ := NewChunker(10, 2, syllableCounter{perField: 3})
	chunks := c.Split(words(30))

	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	covered := 0
	for i, ch := range chunks {
		if ch.TokenCount > 10 {
			t.Errorf("chunk %d counts %d tokens, ceiling is 10", i, ch.TokenCount)
		}
		covered += len(strings.Fields(ch.Text))
	}
	// 3 tokens per field caps each window at 3 fields; no room for overlap
	// fields, so chunks tile the input exactly.
	if covered != 30 {
		t.Errorf("chunks cover %d fields, want 30", covered)
	}
	if len(chunks) != 10 {
		t.Errorf("got %d chunks, want 10", len(chunks))
	}
}

func TestSplitOversizedSingleField(t *testing.T) {
	c, _ := NewChunker(10, 2, syllableCounter{perField: 50})
	chunks := c.Split("first second third")

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want one per field", len(chunks))
	}
	for i, want := range []string{"first", "second", "third"} {
		if chunks[i].Text != want {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Text, want)
		}
	}
}

func TestFieldCounter(t *testing.T) {
	counter := FieldCounter{}
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"one", 1},
		{"one  two\nthree", 3},
	}
	for _, tt := range tests {
		if got := counter.Count(tt.input); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
