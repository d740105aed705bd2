package usecase

import "testing"

func TestGuardrailVetoesCaseInsensitiveSubstring(t *testing.T) {
	g := NewGuardrail(DefaultDenylist, DefaultRefusalPhrases)
	if !g.Vetoes("Please explain HOW TO HACK a router") {
		t.Fatalf("expected veto for denylisted phrase")
	}
	if g.Vetoes("What is the submission deadline?") {
		t.Fatalf("unexpected veto for a benign query")
	}
}

func TestGuardrailIgnoresBlankPhrases(t *testing.T) {
	g := NewGuardrail([]string{"", "   "}, nil)
	if g.Vetoes("anything") {
		t.Fatalf("blank denylist entries must not match every query")
	}
}

func TestGuardrailIsRefusalExactMatch(t *testing.T) {
	g := NewGuardrail(DefaultDenylist, DefaultRefusalPhrases)

	for _, answer := range []string{
		"I don't know.",
		"  i DON'T know.  \n",
		"I don’t know.",
		"I can't help with that request.",
		"I CAN’T HELP WITH THAT REQUEST.",
	} {
		if !g.IsRefusal(answer) {
			t.Fatalf("expected %q to be classified as refusal", answer)
		}
	}

	for _, answer := range []string{
		"I don't know the exact date, but the guide says March.",
		"The deadline is March 3 [Guide p.2].",
		"I don't know",
	} {
		if g.IsRefusal(answer) {
			t.Fatalf("expected %q to count as an answer", answer)
		}
	}
}
