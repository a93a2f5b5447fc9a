package engine

import (
	"sync"
	"sync/atomic"
)

// runState tracks the counters and link routing of one run. All methods are
// safe for concurrent use by collector callbacks.
type runState struct {
	pagesVisited  atomic.Int64
	linksMatched  atomic.Int64
	linksFollowed atomic.Int64
	failures      atomic.Int64

	mu       sync.Mutex
	firstErr string
	routes   map[string]int
	matched  []map[string]struct{}
}

func newRunState(ruleCount int) *runState {
	st := &runState{
		routes:  make(map[string]int),
		matched: make([]map[string]struct{}, ruleCount),
	}
	for i := range st.matched {
		st.matched[i] = make(map[string]struct{})
	}
	return st
}

// route records that link was matched by the rule at index. It reports false
// when the rule deduplicates matches and has already matched this link. The
// first rule to route a link keeps it.
func (st *runState) route(link string, index int, unique bool) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if unique {
		if _, ok := st.matched[index][link]; ok {
			return false
		}
	}
	st.matched[index][link] = struct{}{}
	if _, ok := st.routes[link]; !ok {
		st.routes[link] = index
	}
	return true
}

// routedRule returns the index of the rule that routed the link.
func (st *runState) routedRule(link string) (int, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	index, ok := st.routes[link]
	return index, ok
}

// recordFailure counts one failure and keeps the first error message for the
// run result.
func (st *runState) recordFailure(err error) {
	st.failures.Add(1)

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.firstErr == "" && err != nil {
		st.firstErr = err.Error()
	}
}

func (st *runState) firstError() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.firstErr
}
