package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

func fusedOf(hits ...domain.RankedHit) domain.FusedRanking {
	out := make(domain.FusedRanking, 0, len(hits))
	for i, h := range hits {
		out = append(out, domain.FusedHit{Hit: h, Score: 1 / float64(61+i)})
	}
	return out
}

func TestPackContextSplitsEvidenceAndPresentation(t *testing.T) {
	long := strings.Repeat("word ", 100)
	fused := fusedOf(
		domain.RankedHit{ID: "1", Title: "A", Page: 1, Content: long},
		domain.RankedHit{ID: "2", Title: "B", Page: 2, Content: "short\n\ntext"},
		domain.RankedHit{ID: "3", Title: "C", Page: 3, Content: "third"},
	)

	evidence, results := PackContext(fused, 2, 3, DefaultSnippetChars)
	if len(evidence) != 2 || len(results) != 3 {
		t.Fatalf("unexpected sizes: evidence=%d results=%d", len(evidence), len(results))
	}
	if evidence[0].Content != long {
		t.Fatalf("evidence must carry full content")
	}
	if results[1].Snippet != "short text" {
		t.Fatalf("expected collapsed whitespace, got %q", results[1].Snippet)
	}
	snippet := results[0].Snippet
	if !strings.HasSuffix(snippet, "…") {
		t.Fatalf("expected ellipsis on truncated snippet, got %q", snippet)
	}
	if n := utf8.RuneCountInString(snippet); n != DefaultSnippetChars+1 {
		t.Fatalf("expected %d runes, got %d", DefaultSnippetChars+1, n)
	}
	if results[0].Score != fused[0].Score {
		t.Fatalf("presentation should carry fused score")
	}
}

func TestPackContextCapsToAvailableHits(t *testing.T) {
	fused := fusedOf(domain.RankedHit{ID: "1", Title: "A", Page: 1, Content: "x"})
	evidence, results := PackContext(fused, 5, 10, 0)
	if len(evidence) != 1 || len(results) != 1 {
		t.Fatalf("unexpected sizes: evidence=%d results=%d", len(evidence), len(results))
	}

	evidence, results = PackContext(fused, 0, -1, 0)
	if len(evidence) != 0 || len(results) != 0 {
		t.Fatalf("expected empty packs for non-positive caps")
	}
}

func TestSnippetKeepsShortText(t *testing.T) {
	if got := Snippet("  exactly   this ", 280); got != "exactly this" {
		t.Fatalf("unexpected snippet %q", got)
	}
	if got := Snippet("ééééé", 3); got != "ééé…" {
		t.Fatalf("expected rune-based truncation, got %q", got)
	}
}

func TestExtractCitationsDedupKeepsFirstLink(t *testing.T) {
	evidence := []domain.ContextBlock{
		{ID: "1", Title: "Guide", Page: 2, SourceID: "guide.pdf", Link: "https://drive/first"},
		{ID: "2", Title: "Guide", Page: 2, SourceID: "guide.pdf", Link: "https://drive/second"},
		{ID: "3", Title: "Guide", Page: 3, SourceID: "guide.pdf"},
		{ID: "4", Title: "Other", Page: 2, SourceID: "other.pdf", Link: "https://drive/other"},
	}

	citations := ExtractCitations(evidence)
	if len(citations) != 3 {
		t.Fatalf("expected 3 citations, got %d: %+v", len(citations), citations)
	}
	if citations[0].Link != "https://drive/first" {
		t.Fatalf("expected first-seen link, got %q", citations[0].Link)
	}
	if citations[1].Page != 3 || citations[1].Link != "guide.pdf" {
		t.Fatalf("expected source fallback link, got %+v", citations[1])
	}
	if citations[2].Title != "Other" {
		t.Fatalf("unexpected order: %+v", citations)
	}
}

func TestExtractCitationsEmpty(t *testing.T) {
	citations := ExtractCitations(nil)
	if citations == nil || len(citations) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", citations)
	}
}
