package usecase

import (
	"strings"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

const (
	DefaultGenerationTopK = 5
	DefaultSnippetChars   = 280
)

// PackContext splits the fused ranking into the full-content evidence fed to
// the generator and the truncated blocks shown next to the answer.
func PackContext(
	fused domain.FusedRanking,
	generationTopK, presentationTopK, snippetChars int,
) ([]domain.ContextBlock, []domain.PresentationBlock) {
	if snippetChars <= 0 {
		snippetChars = DefaultSnippetChars
	}

	evidence := make([]domain.ContextBlock, 0, max(0, min(generationTopK, len(fused))))
	for _, f := range headFused(fused, generationTopK) {
		evidence = append(evidence, domain.ContextBlock{
			ID:       f.Hit.ID,
			Title:    f.Hit.Title,
			SourceID: f.Hit.SourceID,
			Page:     f.Hit.Page,
			Content:  f.Hit.Content,
			Link:     f.Hit.Link,
		})
	}

	presentation := make([]domain.PresentationBlock, 0, max(0, min(presentationTopK, len(fused))))
	for _, f := range headFused(fused, presentationTopK) {
		presentation = append(presentation, domain.PresentationBlock{
			ID:       f.Hit.ID,
			Score:    f.Score,
			Title:    f.Hit.Title,
			SourceID: f.Hit.SourceID,
			Page:     f.Hit.Page,
			Snippet:  Snippet(f.Hit.Content, snippetChars),
			Link:     f.Hit.Link,
		})
	}
	return evidence, presentation
}

// ExtractCitations keeps the first block for every (title, page) pair.
func ExtractCitations(evidence []domain.ContextBlock) []domain.Citation {
	type key struct {
		title string
		page  int
	}
	seen := make(map[key]struct{}, len(evidence))
	out := make([]domain.Citation, 0, len(evidence))
	for _, block := range evidence {
		k := key{title: block.Title, page: block.Page}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}

		link := block.Link
		if link == "" {
			link = block.SourceID
		}
		out = append(out, domain.Citation{
			Title:    block.Title,
			Page:     block.Page,
			SourceID: block.SourceID,
			Link:     link,
		})
	}
	return out
}

// Snippet collapses whitespace and cuts text to limit runes, appending an
// ellipsis when something was cut.
func Snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}

func headFused(fused domain.FusedRanking, n int) domain.FusedRanking {
	if n <= 0 {
		return nil
	}
	if n > len(fused) {
		n = len(fused)
	}
	return fused[:n]
}
