// Package config provides configuration management for the spinneret application.
package config

import "errors"

// Common configuration errors
var (
	// ErrConfigInvalid is returned when the configuration is invalid
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrAgentsFileRequired is returned when no agent template registry path
	// is configured
	ErrAgentsFileRequired = errors.New("agents file must be specified")
)
