// Package agent defines the crawl agent class model and the factory that
// specializes agent classes at runtime. A class is an immutable descriptor
// of one agent variant: its settings, its ordered link-handling rules (when
// the class is rule-capable) and its named page handlers. New variants are
// produced by merging configuration and building rule lists, never by
// writing a new type per configuration.
package agent

import (
	"context"
	"net/http"

	"github.com/jonesrussell/spinneret/internal/rules"
)

// Page carries one fetched page into a handler.
type Page struct {
	// URL is the absolute address of the fetched page.
	URL string
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Depth is the crawl depth at which the page was reached.
	Depth int
	// Body is the raw response body.
	Body []byte
	// Headers are the response headers.
	Headers http.Header
	// Rule is the tag or callback name of the rule that routed the page
	// here, empty for the page-level handler.
	Rule string
}

// Handler processes one fetched page. Handlers run inside an engine run;
// returned errors are counted as run failures but do not stop the run.
type Handler func(ctx context.Context, page *Page) error

// Class is an agent class descriptor. A Class is immutable after
// construction; accessors return copies of its settings and rules.
type Class struct {
	name        string
	settings    Settings
	ruleCapable bool
	ruleList    []rules.Rule
	handlers    map[string]Handler
}

// ClassParams holds the parameters for constructing a Class.
type ClassParams struct {
	// Name identifies the class in logs and run records.
	Name string
	// Settings is the class configuration.
	Settings Settings
	// RuleCapable declares whether the class carries a rule list.
	RuleCapable bool
	// Rules is the ordered rule list; only allowed when RuleCapable is set.
	Rules []rules.Rule
	// Handlers maps callback names to page handlers.
	Handlers map[string]Handler
}

// NewClass constructs an immutable agent class from params. Supplying rules
// for a class that is not rule-capable is an error; a rule-capable class may
// carry no rules at all.
func NewClass(p ClassParams) (*Class, error) {
	if p.Name == "" {
		return nil, ErrClassNameRequired
	}
	if len(p.Rules) > 0 && !p.RuleCapable {
		return nil, ErrRulesNotSupported
	}

	c := &Class{
		name:        p.Name,
		settings:    p.Settings.Clone(),
		ruleCapable: p.RuleCapable,
		handlers:    make(map[string]Handler, len(p.Handlers)),
	}
	if p.RuleCapable && len(p.Rules) > 0 {
		c.ruleList = append([]rules.Rule(nil), p.Rules...)
	}
	for name, handler := range p.Handlers {
		c.handlers[name] = handler
	}
	return c, nil
}

// Name returns the class name.
func (c *Class) Name() string {
	return c.name
}

// Settings returns a copy of the class settings.
func (c *Class) Settings() Settings {
	return c.settings.Clone()
}

// RuleCapable reports whether the class carries a rule list.
func (c *Class) RuleCapable() bool {
	return c.ruleCapable
}

// Rules returns a copy of the class rule list. It is nil for classes that
// are not rule-capable.
func (c *Class) Rules() []rules.Rule {
	if !c.ruleCapable || len(c.ruleList) == 0 {
		return nil
	}
	return append([]rules.Rule(nil), c.ruleList...)
}

// Handler returns the named page handler.
func (c *Class) Handler(name string) (Handler, bool) {
	h, ok := c.handlers[name]
	return h, ok
}
