package domain

import (
	"fmt"
	"strings"
)

type RetrievalMode string

const (
	ModeBM25   RetrievalMode = "bm25"
	ModeELSER  RetrievalMode = "elser"
	ModeDense  RetrievalMode = "dense"
	ModeHybrid RetrievalMode = "hybrid"
)

// ParseRetrievalMode maps user input to a mode. Empty input selects hybrid.
func ParseRetrievalMode(raw string) (RetrievalMode, error) {
	switch mode := RetrievalMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return ModeHybrid, nil
	case ModeBM25, ModeELSER, ModeDense, ModeHybrid:
		return mode, nil
	default:
		return "", WrapError(ErrInvalidInput, "parse retrieval mode", fmt.Errorf("unknown mode %q", raw))
	}
}

// RankedHit is one search hit as returned by a single retrieval strategy.
// ID is stable within the index, so the same passage found by two
// strategies compares equal.
type RankedHit struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Title    string  `json:"title"`
	SourceID string  `json:"source"`
	Page     int     `json:"page"`
	Content  string  `json:"content"`
	Link     string  `json:"link,omitempty"`
}

// RankList is ordered best first. Scores are only comparable inside one list.
type RankList []RankedHit

type FusedHit struct {
	Hit   RankedHit `json:"hit"`
	Score float64   `json:"score"`
}

type FusedRanking []FusedHit

type ContextBlock struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	SourceID string `json:"source"`
	Page     int    `json:"page"`
	Content  string `json:"content"`
	Link     string `json:"link,omitempty"`
}

type PresentationBlock struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Title    string  `json:"title"`
	SourceID string  `json:"source"`
	Page     int     `json:"page"`
	Snippet  string  `json:"snippet"`
	Link     string  `json:"link,omitempty"`
}

type Citation struct {
	Title    string `json:"title"`
	Page     int    `json:"page"`
	SourceID string `json:"source"`
	Link     string `json:"link"`
}

// HistoryTurn is one previous question/answer pair of a conversation.
type HistoryTurn struct {
	User   string `json:"user"`
	Answer string `json:"answer"`
}

type QueryRequest struct {
	Text    string        `json:"q"`
	Mode    RetrievalMode `json:"mode"`
	Size    int           `json:"size"`
	History []HistoryTurn `json:"history,omitempty"`
}

type AnswerOutcome string

const (
	OutcomeAnswered   AnswerOutcome = "answered"
	OutcomeUngrounded AnswerOutcome = "ungrounded"
	OutcomeRefused    AnswerOutcome = "refused"
)

type AnswerResult struct {
	Query     string              `json:"query"`
	Mode      RetrievalMode       `json:"mode"`
	Answer    string              `json:"answer"`
	Outcome   AnswerOutcome       `json:"outcome"`
	Evidence  []ContextBlock      `json:"evidence"`
	Results   []PresentationBlock `json:"results"`
	Citations []Citation          `json:"citations"`
}
