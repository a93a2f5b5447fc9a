package templates

import "errors"

// Common errors returned by the templates package.
var (
	// ErrNoTemplates is returned when an agents file defines no templates.
	ErrNoTemplates = errors.New("no agent templates found in configuration")
	// ErrNameRequired is returned when a template has no name.
	ErrNameRequired = errors.New("template name is required")
	// ErrTemplateNotFound is returned when no template carries the
	// requested name.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrDuplicateTemplate is returned when two templates share a name.
	ErrDuplicateTemplate = errors.New("duplicate template name")
)
