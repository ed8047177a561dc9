package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GroupRule maps account codes with a common leading-digit prefix to one
// flow-graph category. BAS charts encode the account's nature in its
// leading digits, so a handful of prefixes collapse hundreds of accounts
// into a readable topology.
type GroupRule struct {
	Prefix string `yaml:"prefix"`
	Label  string `yaml:"label"`
}

// Grouping is an ordered set of grouping rules for income-statement
// accounts. The longest matching prefix wins; codes no rule claims fall
// into the catch-all "Other" category so no flow is dropped.
type Grouping struct {
	Rules []GroupRule `yaml:"groups"`
}

// DefaultGrouping returns the built-in BAS grouping.
func DefaultGrouping() Grouping {
	return Grouping{Rules: []GroupRule{
		{Prefix: "3", Label: "Revenue"},
		{Prefix: "4", Label: "Goods and materials"},
		{Prefix: "5", Label: "External expenses"},
		{Prefix: "6", Label: "External expenses"},
		{Prefix: "7", Label: "Personnel"},
		{Prefix: "77", Label: "Depreciation"},
		{Prefix: "78", Label: "Depreciation"},
		{Prefix: "79", Label: "Depreciation"},
		{Prefix: "8", Label: "Financial items"},
	}}
}

// ParseGrouping reads a grouping from YAML:
//
//	groups:
//	  - prefix: "30"
//	    label: Product sales
//	  - prefix: "39"
//	    label: Other income
func ParseGrouping(data []byte) (Grouping, error) {
	var g Grouping
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Grouping{}, fmt.Errorf("invalid grouping config: %w", err)
	}
	for i, rule := range g.Rules {
		if rule.Prefix == "" || rule.Label == "" {
			return Grouping{}, fmt.Errorf("invalid grouping config: rule %d needs both prefix and label", i+1)
		}
	}
	return g, nil
}

// LoadGrouping reads a grouping config file.
func LoadGrouping(path string) (Grouping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Grouping{}, err
	}
	return ParseGrouping(data)
}

// Label returns the category label for an account code, using the longest
// matching prefix. The second result is false when no rule matches.
func (g Grouping) Label(code string) (string, bool) {
	best := -1
	label := ""
	for _, rule := range g.Rules {
		if len(rule.Prefix) > best && hasPrefix(code, rule.Prefix) {
			best = len(rule.Prefix)
			label = rule.Label
		}
	}
	return label, best >= 0
}

func hasPrefix(code, prefix string) bool {
	return len(code) >= len(prefix) && code[:len(prefix)] == prefix
}
