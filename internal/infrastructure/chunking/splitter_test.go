package chunking

import (
	"fmt"
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i+1)
	}
	return strings.Join(parts, " ")
}

func TestSplitWindowSizesAndCount(t *testing.T) {
	const maxTokens, overlap = 300, 60
	step := maxTokens - overlap

	for _, total := range []int{1, 59, 60, 61, 239, 240, 299, 300, 301, 540, 541, 1000, 2417} {
		chunks := Split(words(total), maxTokens, overlap)

		want := 1
		if total > overlap {
			want = (total - overlap + step - 1) / step
		}
		if len(chunks) != want {
			t.Fatalf("T=%d: expected %d chunks, got %d", total, want, len(chunks))
		}

		for i, chunk := range chunks[:len(chunks)-1] {
			n := len(strings.Fields(chunk))
			if n < maxTokens-overlap || n > maxTokens {
				t.Fatalf("T=%d: chunk %d has %d tokens", total, i, n)
			}
		}
	}
}

func TestSplitCoversEveryToken(t *testing.T) {
	const total = 1000
	seen := make(map[string]bool, total)
	for _, chunk := range Split(words(total), 300, 60) {
		for _, tok := range strings.Fields(chunk) {
			seen[tok] = true
		}
	}
	for i := 1; i <= total; i++ {
		if !seen[fmt.Sprintf("w%d", i)] {
			t.Fatalf("token w%d not covered", i)
		}
	}
}

func TestSplitConsecutiveChunksOverlap(t *testing.T) {
	chunks := Split(words(1000), 300, 60)
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		cur := strings.Fields(chunks[i])
		tail := strings.Join(prev[len(prev)-60:], " ")
		head := strings.Join(cur[:60], " ")
		if tail != head {
			t.Fatalf("chunk %d does not overlap previous by 60 tokens", i)
		}
	}
}

func TestSplitEmptyAndWhitespace(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t \n"} {
		if got := Split(text, 300, 60); len(got) != 0 {
			t.Fatalf("expected no chunks for %q, got %d", text, len(got))
		}
	}
}

func TestSplitDegenerateOverlapTerminates(t *testing.T) {
	chunks := Split(words(4), 2, 5)
	if len(chunks) != 3 {
		t.Fatalf("expected step floored at 1 to yield 3 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "w1 w2" || chunks[2] != "w3 w4" {
		t.Fatalf("unexpected windows: %v", chunks)
	}
}

func TestSplitNegativeOverlapKeepsEveryToken(t *testing.T) {
	got := Split("a b c d e f g h", 2, -2)
	want := []string{"a b", "c d", "e f", "g h"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitterUsesDefaults(t *testing.T) {
	s := NewSplitter(0, -1)
	if s.MaxTokens != DefaultMaxTokens || s.Overlap != 0 {
		t.Fatalf("unexpected splitter settings: %+v", s)
	}
	if got := s.Split("alpha beta"); len(got) != 1 || got[0] != "alpha beta" {
		t.Fatalf("unexpected split: %v", got)
	}
}
