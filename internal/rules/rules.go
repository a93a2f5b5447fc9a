// Package rules builds the ordered link-handling rule lists attached to
// specialized agent classes. A rule pairs a compiled link extractor with the
// action to take on links it matches; rule order is significant and the
// first matching rule wins.
package rules

import (
	"fmt"
)

// ExtractorSpec describes a link-matching predicate as a raw parameter map.
// Recognized keys: allow, deny (regex pattern lists applied to the absolute
// URL), domains, deny_domains (host lists, subdomains included), attrs
// (element attributes to read links from, default href) and unique
// (deduplicate matched links per run, default true).
type ExtractorSpec map[string]any

// RuleSpec describes the action taken on links matched by the associated
// ExtractorSpec. Recognized keys: callback (handler name on the agent class,
// empty for none), follow (whether matched links are visited) and tag
// (free-form annotation carried into logs).
type RuleSpec map[string]any

// Action is the decoded form of a RuleSpec.
type Action struct {
	Callback string `mapstructure:"callback"`
	Follow   bool   `mapstructure:"follow"`
	Tag      string `mapstructure:"tag"`
}

// Rule pairs one compiled extractor with one action. Rules sharing a spec
// never share compiled state; every Rule owns its extractor.
type Rule struct {
	Extractor *Extractor
	Action    Action
}

// NewRule compiles one extractor spec and one rule spec into a Rule.
func NewRule(extractorSpec ExtractorSpec, ruleSpec RuleSpec) (Rule, error) {
	extractor, err := NewExtractor(extractorSpec)
	if err != nil {
		return Rule{}, err
	}

	var action Action
	if decodeErr := decodeSpec(ruleSpec, &action); decodeErr != nil {
		return Rule{}, fmt.Errorf("%w: %w", ErrInvalidRuleSpec, decodeErr)
	}

	return Rule{Extractor: extractor, Action: action}, nil
}
