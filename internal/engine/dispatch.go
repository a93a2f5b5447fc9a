package engine

import (
	"fmt"

	"github.com/jonesrussell/spinneret/internal/agent"
	"github.com/jonesrussell/spinneret/internal/rules"
)

// defaultPageCallback is the handler name tried for unrouted pages when the
// page_callback setting is empty.
const defaultPageCallback = "page"

// dispatcher holds the resolved handler table for one run. Resolution
// happens before any request is made so an unknown callback name fails the
// run synchronously.
type dispatcher struct {
	rules        []rules.Rule
	ruleHandlers []agent.Handler
	ruleNames    []string
	attrRules    map[string][]int
	pageHandler  agent.Handler
}

// newDispatcher resolves the class rule callbacks and the page-level
// callback against the class handler table.
func newDispatcher(class *agent.Class, pageCallback string) (*dispatcher, error) {
	ruleList := class.Rules()
	d := &dispatcher{
		rules:        ruleList,
		ruleHandlers: make([]agent.Handler, len(ruleList)),
		ruleNames:    make([]string, len(ruleList)),
		attrRules:    make(map[string][]int),
	}

	for i := range ruleList {
		rule := &ruleList[i]
		if callback := rule.Action.Callback; callback != "" {
			handler, ok := class.Handler(callback)
			if !ok {
				return nil, fmt.Errorf("%w: rule %d callback %q", ErrUnknownCallback, i, callback)
			}
			d.ruleHandlers[i] = handler
		}
		d.ruleNames[i] = rule.Action.Tag
		if d.ruleNames[i] == "" {
			d.ruleNames[i] = rule.Action.Callback
		}
		for _, attr := range rule.Extractor.Attrs() {
			d.attrRules[attr] = append(d.attrRules[attr], i)
		}
	}

	if pageCallback != "" {
		handler, ok := class.Handler(pageCallback)
		if !ok {
			return nil, fmt.Errorf("%w: page callback %q", ErrUnknownCallback, pageCallback)
		}
		d.pageHandler = handler
	} else if handler, ok := class.Handler(defaultPageCallback); ok {
		d.pageHandler = handler
	}

	return d, nil
}

// handlerFor returns the handler and rule name for a fetched page. Pages
// routed by a rule dispatch to that rule's callback only; unrouted pages
// dispatch to the page-level handler. A nil handler means the page is
// fetched for its links alone.
func (d *dispatcher) handlerFor(pageURL string, st *runState) (agent.Handler, string) {
	if index, ok := st.routedRule(pageURL); ok {
		return d.ruleHandlers[index], d.ruleNames[index]
	}
	return d.pageHandler, ""
}

// followSuppressed reports whether link extraction is disabled on the page.
// Only pages routed by a rule with follow unset suppress extraction.
func (d *dispatcher) followSuppressed(pageURL string, st *runState) bool {
	index, ok := st.routedRule(pageURL)
	return ok && !d.rules[index].Action.Follow
}
