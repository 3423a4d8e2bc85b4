package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of KNOWLEDGE_RULES_FILE.
//
//	answers:
//	  hours: "We're open ..."
//	  location: "..."
type ruleFile struct {
	Answers map[string]string `yaml:"answers"`
}

// LoadRuleAnswers reads canned-answer overrides keyed by topic.
// An empty path yields no overrides.
func LoadRuleAnswers(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var parsed ruleFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return parsed.Answers, nil
}
