package engine

import "errors"

// Common errors returned by the engine package.
var (
	// ErrRunnerRequired is returned when a coordinator is constructed
	// without a runner.
	ErrRunnerRequired = errors.New("runner is required")
	// ErrNilClass is returned when a run is requested without an agent class.
	ErrNilClass = errors.New("agent class is required")
	// ErrNoStartURLs is returned when a run is requested without start URLs.
	ErrNoStartURLs = errors.New("no start URLs provided")
	// ErrInvalidSettings is returned when the class settings do not decode
	// into engine settings.
	ErrInvalidSettings = errors.New("invalid engine settings")
	// ErrUnknownCallback is returned when a rule or the page_callback
	// setting names a handler the class does not declare.
	ErrUnknownCallback = errors.New("unknown callback handler")
	// ErrRunFailed is returned when a run completes without visiting a
	// single page while recording failures.
	ErrRunFailed = errors.New("crawl run failed")
)
