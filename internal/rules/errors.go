package rules

import "errors"

// Common errors returned by the rules package.
var (
	// ErrNoExtractorSpecs is returned when rule specs are supplied without
	// any extractor specs to pair them with.
	ErrNoExtractorSpecs = errors.New("rule specs provided without extractor specs")
	// ErrInvalidExtractorSpec is returned when an extractor spec fails to
	// decode or compile.
	ErrInvalidExtractorSpec = errors.New("invalid extractor spec")
	// ErrInvalidRuleSpec is returned when a rule spec fails to decode.
	ErrInvalidRuleSpec = errors.New("invalid rule spec")
)
