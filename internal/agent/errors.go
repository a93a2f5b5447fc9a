package agent

import "errors"

// Common errors returned by the agent package.
var (
	// ErrClassNameRequired is returned when a class is constructed without a name.
	ErrClassNameRequired = errors.New("class name is required")
	// ErrNilTemplate is returned when Construct is called without a template class.
	ErrNilTemplate = errors.New("template class is required")
	// ErrRulesNotSupported is returned when rules are supplied for a class
	// that does not declare rule capability.
	ErrRulesNotSupported = errors.New("class does not support rules")
)
