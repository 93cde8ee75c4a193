package rules

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embedded []byte

// Pack is a versioned list of rule sets.
type Pack struct {
	Version  int        `yaml:"version"`
	RuleSets []*RuleSet `yaml:"rulesets"`
}

// Builtin returns the compiled embedded pack.
func Builtin() (*Pack, error) {
	return ParsePack(embedded)
}

// LoadPack reads and compiles a YAML rule pack from disk.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule pack: %w", err)
	}
	return ParsePack(data)
}

// ParsePack decodes and compiles a YAML rule pack.
func ParsePack(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("rules: parse pack: %w", err)
	}
	for _, rs := range p.RuleSets {
		for _, r := range rs.Rules {
			if err := r.compile(); err != nil {
				return nil, err
			}
		}
	}
	return &p, nil
}

// Find returns the rule set with the given source document, if present.
func (p *Pack) Find(source string) (*RuleSet, bool) {
	for _, rs := range p.RuleSets {
		if rs.Source == source {
			return rs, true
		}
	}
	return nil, false
}
