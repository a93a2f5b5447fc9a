package crawl

import "errors"

var (
	// ErrNoAgents is returned when a sequence is created without agent names
	ErrNoAgents = errors.New("at least one agent is required")

	// ErrRunsFailed reports that one or more agents in a sequence failed
	ErrRunsFailed = errors.New("crawl runs failed")
)
