// Package metrics provides metrics collection and reporting functionality.
package metrics

import (
	"sync"
	"time"
)

// Metrics holds the crawl run metrics. Timed-out waits are counted
// separately from completions and failures: every started run still
// finishes as exactly one of completed or failed, even after its waiter
// has given up.
type Metrics struct {
	// RunsStarted is the number of runs submitted to the loop.
	RunsStarted int64
	// RunsCompleted is the number of runs that finished without error.
	RunsCompleted int64
	// RunsFailed is the number of runs that finished with an error.
	RunsFailed int64
	// RunsTimedOut is the number of blocking waits that expired.
	RunsTimedOut int64
	// PagesVisited is the total pages fetched across completed runs.
	PagesVisited int64
	// LastCompletedTime is the time of the last successful run.
	LastCompletedTime time.Time
	// StartTime is when the metrics collection began.
	StartTime time.Time
	// mu protects concurrent access to metrics.
	mu sync.Mutex
}

// NewMetrics creates a new Metrics instance with default values.
func NewMetrics() *Metrics {
	return &Metrics{
		RunsStarted:       0,
		RunsCompleted:     0,
		RunsFailed:        0,
		RunsTimedOut:      0,
		PagesVisited:      0,
		LastCompletedTime: time.Time{},
		StartTime:         time.Now(),
	}
}

// GetStartTime returns the time when metrics collection began.
func (m *Metrics) GetStartTime() time.Time {
	return m.StartTime
}

// RunStarted increments the started-runs counter.
func (m *Metrics) RunStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsStarted++
}

// RunCompleted records a successful run and the pages it visited.
func (m *Metrics) RunCompleted(pagesVisited int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsCompleted++
	m.PagesVisited += pagesVisited
	m.LastCompletedTime = time.Now()
}

// RunFailed increments the failed-runs counter.
func (m *Metrics) RunFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsFailed++
}

// RunTimedOut increments the timed-out waits counter.
func (m *Metrics) RunTimedOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsTimedOut++
}

// GetRunsStarted returns the number of runs submitted to the loop.
func (m *Metrics) GetRunsStarted() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RunsStarted
}

// GetRunsCompleted returns the number of runs that finished without error.
func (m *Metrics) GetRunsCompleted() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RunsCompleted
}

// GetRunsFailed returns the number of runs that finished with an error.
func (m *Metrics) GetRunsFailed() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RunsFailed
}

// GetRunsTimedOut returns the number of blocking waits that expired.
func (m *Metrics) GetRunsTimedOut() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RunsTimedOut
}

// GetPagesVisited returns the total pages fetched across completed runs.
func (m *Metrics) GetPagesVisited() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PagesVisited
}

// GetLastCompletedTime returns the time of the last successful run.
func (m *Metrics) GetLastCompletedTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastCompletedTime
}

// ResetMetrics resets all metrics to their initial values.
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RunsStarted = 0
	m.RunsCompleted = 0
	m.RunsFailed = 0
	m.RunsTimedOut = 0
	m.PagesVisited = 0
	m.LastCompletedTime = time.Time{}
}
