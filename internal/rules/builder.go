package rules

import (
	"fmt"
)

// Build constructs the rule list for a specialized agent class.
//
// Each rule spec is paired with the extractor spec at the same index; when
// there are fewer extractor specs than rule specs the last extractor spec is
// reused for the remainder, preserving rule spec order. With overwrite set
// the result is exactly the newly built rules; otherwise the new rules are
// appended to a copy of base. base is never mutated and the result never
// shares its backing array.
func Build(base []Rule, extractorSpecs []ExtractorSpec, ruleSpecs []RuleSpec, overwrite bool) ([]Rule, error) {
	if len(ruleSpecs) > 0 && len(extractorSpecs) == 0 {
		return nil, ErrNoExtractorSpecs
	}

	built := make([]Rule, 0, len(ruleSpecs))
	for i, ruleSpec := range ruleSpecs {
		extractorSpec := extractorSpecs[min(i, len(extractorSpecs)-1)]
		rule, err := NewRule(extractorSpec, ruleSpec)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		built = append(built, rule)
	}

	if overwrite {
		return built, nil
	}

	merged := make([]Rule, 0, len(base)+len(built))
	merged = append(merged, base...)
	merged = append(merged, built...)
	return merged, nil
}
