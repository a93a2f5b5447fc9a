package bridge

import "errors"

// Common errors returned by the bridge package.
var (
	// ErrCoordinatorRequired is returned when a bridge is constructed
	// without a run coordinator.
	ErrCoordinatorRequired = errors.New("run coordinator is required")
	// ErrFactoryRequired is returned by RunCrawl when per-call class
	// generation is enabled without a class factory.
	ErrFactoryRequired = errors.New("class factory is required")
	// ErrTemplateRequired is returned by RunCrawl when no template class is
	// configured.
	ErrTemplateRequired = errors.New("template class is required")
	// ErrRunTimeout is returned when the blocking wait on a run expires.
	// The background job is not cancelled and keeps running.
	ErrRunTimeout = errors.New("crawl run timed out")
	// ErrLoopClosed is returned when a task is submitted to a closed loop.
	ErrLoopClosed = errors.New("execution loop is closed")
	// ErrNilTask is returned when a nil task is submitted to the loop.
	ErrNilTask = errors.New("task is required")
)
