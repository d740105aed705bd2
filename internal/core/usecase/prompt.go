package usecase

import (
	"fmt"
	"strings"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

const (
	historyTurns     = 4
	historyTurnChars = 400
)

const systemPrompt = `You are a precise assistant for a RAG system.
Use ONLY the provided context to answer. If the answer is not clearly supported, reply exactly: "I don't know."
Keep answers concise and add inline citations like [Title p.Page] after sentences that use that source.
Refuse unsafe or harmful requests.
If the conversation history includes prior turns, you may use them ONLY to resolve coreference (what "it/they/that" refer to). Do not invent facts not present in the current context.`

func buildUserPrompt(question string, evidence []domain.ContextBlock, history []domain.HistoryTurn) string {
	hist := formatHistory(history)
	if hist == "" {
		hist = "(none)"
	}
	return fmt.Sprintf(`Question:
%s

Conversation history (use only for reference resolution):
%s

Context:
%s

Answer (with citations):`, question, hist, formatContext(evidence))
}

func formatContext(evidence []domain.ContextBlock) string {
	if len(evidence) == 0 {
		return "NO CONTEXT"
	}
	blocks := make([]string, 0, len(evidence))
	for _, block := range evidence {
		blocks = append(blocks, fmt.Sprintf("[%s p.%d] %s", block.Title, block.Page, block.Content))
	}
	return strings.Join(blocks, "\n\n")
}

// formatHistory keeps the most recent turns, oldest first.
func formatHistory(history []domain.HistoryTurn) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	turns := make([]string, 0, len(history))
	for _, turn := range history {
		turns = append(turns, fmt.Sprintf(
			"User: %s\nAssistant: %s",
			clipRunes(strings.TrimSpace(turn.User), historyTurnChars),
			clipRunes(strings.TrimSpace(turn.Answer), historyTurnChars),
		))
	}
	return strings.Join(turns, "\n\n")
}

func clipRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
