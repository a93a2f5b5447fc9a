package bridge

import (
	"context"
	"sync"
)

// DefaultQueueSize is the task queue capacity of a loop created without an
// explicit size, including the process-scoped default loop.
const DefaultQueueSize = 16

// Loop is the persistent background execution context: a single goroutine
// consuming a task queue. Every bridge submits its crawl jobs to one loop so
// repeated blocking calls are issued against the same long-lived context
// instead of a fresh one per call.
type Loop struct {
	mu     sync.RWMutex
	tasks  chan func()
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// NewLoop creates a loop and starts its consumer goroutine. A non-positive
// queue size falls back to DefaultQueueSize.
func NewLoop(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		tasks:  make(chan func(), queueSize),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go l.consume()
	return l
}

var (
	defaultLoop *Loop
	defaultOnce sync.Once
)

// Default returns the process-scoped loop, created on first use. The loop is
// shared by every bridge that does not supply its own and is never stopped;
// it lives for the remainder of the process.
func Default() *Loop {
	defaultOnce.Do(func() {
		defaultLoop = NewLoop(DefaultQueueSize)
	})
	return defaultLoop
}

// consume runs queued tasks in submission order until the queue is closed.
func (l *Loop) consume() {
	defer close(l.done)
	for task := range l.tasks {
		task()
	}
}

// Perform enqueues one task on the loop. It blocks while the queue is full
// and returns ErrLoopClosed once the loop has been closed. Tasks run in
// submission order; a task that blocks stalls the loop, so long-running work
// belongs in its own goroutine launched from the task.
func (l *Loop) Perform(task func()) error {
	if task == nil {
		return ErrNilTask
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrLoopClosed
	}
	l.tasks <- task
	return nil
}

// Context returns the loop's root context. Jobs launched from the loop
// inherit it rather than any caller context, so a caller-side timeout never
// cancels an in-flight run.
func (l *Loop) Context() context.Context {
	return l.ctx
}

// Close drains the queue, stops the consumer and cancels the loop context.
// It exists for tests and embedders that own their loop; the bridge never
// closes a loop, and the process-scoped default loop is never closed.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	close(l.tasks)
	l.mu.Unlock()

	<-l.done
	l.cancel()
}
