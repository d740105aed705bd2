package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GuardrailPhrases overrides the built-in denylist and refusal phrases.
// A nil list keeps the built-in one.
type GuardrailPhrases struct {
	Denylist       []string `yaml:"denylist"`
	RefusalPhrases []string `yaml:"refusal_phrases"`
}

// LoadGuardrailFile reads the YAML phrase file. An empty path yields empty
// overrides.
func LoadGuardrailFile(path string) (GuardrailPhrases, error) {
	var phrases GuardrailPhrases
	if path == "" {
		return phrases, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return phrases, fmt.Errorf("read guardrail file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &phrases); err != nil {
		return phrases, fmt.Errorf("parse guardrail file %s: %w", path, err)
	}
	return phrases, nil
}
