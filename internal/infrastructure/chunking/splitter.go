package chunking

import "strings"

const (
	DefaultMaxTokens = 300
	DefaultOverlap   = 60
)

// Splitter binds the configured window size and overlap.
type Splitter struct {
	MaxTokens int
	Overlap   int
}

func NewSplitter(maxTokens, overlap int) *Splitter {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Splitter{
		MaxTokens: maxTokens,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	return Split(text, s.MaxTokens, s.Overlap)
}

// Split cuts whitespace-separated tokens into windows of maxTokens that
// advance by max(1, maxTokens-overlap). The last window ends at the final
// token and may be shorter.
func Split(text string, maxTokens, overlap int) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return []string{}
	}
	if maxTokens <= 0 {
		maxTokens = 1
	}
	if overlap < 0 {
		overlap = 0
	}

	step := maxTokens - overlap
	if step < 1 {
		step = 1
	}

	out := make([]string, 0, len(tokens)/step+1)
	for start := 0; start < len(tokens); start += step {
		end := start + maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		out = append(out, strings.Join(tokens[start:end], " "))
		if end == len(tokens) {
			break
		}
	}
	return out
}
