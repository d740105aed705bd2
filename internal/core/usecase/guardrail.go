package usecase

import "strings"

const (
	RefusalAnswer = "I can’t help with that request."
	UnknownAnswer = "I don't know."
)

var DefaultDenylist = []string{
	"build a bomb", "make a bomb", "malware", "ransomware", "suicide", "self harm",
	"harm someone", "how to hack", "credit card dump", "child sexual", "terrorism",
}

var DefaultRefusalPhrases = []string{
	"I don't know.",
	"I don’t know.",
	"I can't help with that request.",
	"I can’t help with that request.",
}

// Guardrail holds the pre-query denylist and the canonical answers that mean
// the generator did not use the supplied evidence.
type Guardrail struct {
	denylist []string
	refusals map[string]struct{}
}

func NewGuardrail(denylist, refusalPhrases []string) *Guardrail {
	g := &Guardrail{
		denylist: make([]string, 0, len(denylist)),
		refusals: make(map[string]struct{}, len(refusalPhrases)),
	}
	for _, phrase := range denylist {
		if phrase = normalizePhrase(phrase); phrase != "" {
			g.denylist = append(g.denylist, phrase)
		}
	}
	for _, phrase := range refusalPhrases {
		if phrase = normalizePhrase(phrase); phrase != "" {
			g.refusals[phrase] = struct{}{}
		}
	}
	return g
}

// Vetoes reports whether the query contains any denylisted phrase.
func (g *Guardrail) Vetoes(query string) bool {
	q := strings.ToLower(query)
	for _, phrase := range g.denylist {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}

// IsRefusal requires an exact match after trimming and lowercasing.
func (g *Guardrail) IsRefusal(answer string) bool {
	_, ok := g.refusals[normalizePhrase(answer)]
	return ok
}

func normalizePhrase(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
