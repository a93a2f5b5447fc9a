package agent

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jonesrussell/spinneret/internal/rules"
)

// uuidPrefixLen is the number of uuid characters appended to derived class names.
const uuidPrefixLen = 8

// SettingsBuilder computes the settings of a derived class from the template
// settings and the factory overrides.
type SettingsBuilder func(base, overrides Settings, overwrite bool) Settings

// RulesBuilder computes the rule list of a derived class from the template
// rules and the factory rule specs.
type RulesBuilder func(base []rules.Rule, extractorSpecs []rules.ExtractorSpec, ruleSpecs []rules.RuleSpec, overwrite bool) ([]rules.Rule, error)

// ClassFactory derives specialized agent classes from a template class. The
// factory inputs are fixed at construction; every Construct call produces a
// fresh class. A ClassFactory is safe for concurrent use.
type ClassFactory struct {
	settings       Settings
	overwrite      bool
	extractorSpecs []rules.ExtractorSpec
	ruleSpecs      []rules.RuleSpec
	ruleOverwrite  bool
	buildSettings  SettingsBuilder
	buildRules     RulesBuilder
}

// FactoryOption configures a ClassFactory.
type FactoryOption func(*ClassFactory)

// WithRuleSpecs supplies the extractor and rule specs used to build the
// derived class's rule list. With overwrite set the built rules replace the
// template's rules instead of extending them.
func WithRuleSpecs(extractorSpecs []rules.ExtractorSpec, ruleSpecs []rules.RuleSpec, overwrite bool) FactoryOption {
	return func(f *ClassFactory) {
		f.extractorSpecs = append([]rules.ExtractorSpec(nil), extractorSpecs...)
		f.ruleSpecs = append([]rules.RuleSpec(nil), ruleSpecs...)
		f.ruleOverwrite = overwrite
	}
}

// WithSettingsBuilder replaces the settings-construction step. The rule
// construction step is unaffected.
func WithSettingsBuilder(build SettingsBuilder) FactoryOption {
	return func(f *ClassFactory) {
		if build != nil {
			f.buildSettings = build
		}
	}
}

// WithRulesBuilder replaces the rule-construction step. The settings
// construction step is unaffected.
func WithRulesBuilder(build RulesBuilder) FactoryOption {
	return func(f *ClassFactory) {
		if build != nil {
			f.buildRules = build
		}
	}
}

// NewClassFactory creates a factory that overlays the given settings on any
// template it specializes. With overwrite set the template settings are
// discarded in favor of the factory settings alone.
func NewClassFactory(settings Settings, overwrite bool, opts ...FactoryOption) *ClassFactory {
	f := &ClassFactory{
		settings:      settings.Clone(),
		overwrite:     overwrite,
		buildSettings: MergeSettings,
		buildRules:    rules.Build,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Construct derives a new class from the template: merged settings, a built
// rule list when the template is rule-capable, and a fresh unique name.
// Handlers and the capability flag are inherited unchanged. Configuring rule
// specs against a template without rule capability is an error.
func (f *ClassFactory) Construct(template *Class) (*Class, error) {
	if template == nil {
		return nil, ErrNilTemplate
	}

	params := ClassParams{
		Name:        deriveClassName(template.Name()),
		Settings:    f.buildSettings(template.Settings(), f.settings, f.overwrite),
		RuleCapable: template.RuleCapable(),
		Handlers:    template.handlers,
	}

	if template.RuleCapable() {
		built, err := f.buildRules(template.Rules(), f.extractorSpecs, f.ruleSpecs, f.ruleOverwrite)
		if err != nil {
			return nil, fmt.Errorf("build rules for %s: %w", template.Name(), err)
		}
		params.Rules = built
	} else if f.hasRuleSpecs() {
		return nil, fmt.Errorf("%w: %s", ErrRulesNotSupported, template.Name())
	}

	return NewClass(params)
}

// hasRuleSpecs reports whether the factory was explicitly configured with
// rule construction input.
func (f *ClassFactory) hasRuleSpecs() bool {
	return len(f.extractorSpecs) > 0 || len(f.ruleSpecs) > 0
}

// deriveClassName appends a short unique suffix to the template name so
// derived classes group under their template in logs and run records.
func deriveClassName(templateName string) string {
	return templateName + "-" + uuid.NewString()[:uuidPrefixLen]
}
