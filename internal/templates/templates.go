// Package templates loads agent template definitions from YAML files and
// materializes them into runtime objects: the template class a bridge
// instantiates and the factory that specializes it per run.
package templates

import (
	"fmt"

	"github.com/jonesrussell/spinneret/internal/agent"
	"github.com/jonesrussell/spinneret/internal/rules"
)

// Definition is one decoded agent template.
type Definition struct {
	// Name identifies the template; derived classes carry it as a prefix.
	Name string `mapstructure:"name"`
	// RuleCapable declares whether classes built from this template carry
	// a rule list.
	RuleCapable bool `mapstructure:"rule_capable"`
	// Settings is the template class configuration.
	Settings agent.Settings `mapstructure:"settings"`
	// StartURLs are the default entry points for runs of this template.
	StartURLs []string `mapstructure:"start_urls"`
	// Extractors and Rules are the factory rule specs; each rule spec
	// pairs with the extractor spec at the same index, the last extractor
	// spec repeating when rules outnumber extractors.
	Extractors []rules.ExtractorSpec `mapstructure:"extractors"`
	Rules      []rules.RuleSpec      `mapstructure:"rules"`
	// RuleOverwrite makes the built rules replace the template's rules
	// instead of extending them.
	RuleOverwrite bool `mapstructure:"rule_overwrite"`
	// Overrides are the factory settings overlaid on the template settings
	// per specialization.
	Overrides agent.Settings `mapstructure:"overrides"`
	// Overwrite makes the factory settings replace the template settings
	// instead of overlaying them.
	Overwrite bool `mapstructure:"overwrite"`
}

// Validate checks the definition without materializing it: the name is
// required, rule specs demand rule capability, and every extractor and rule
// spec must compile.
func (d Definition) Validate() error {
	if d.Name == "" {
		return ErrNameRequired
	}
	if !d.RuleCapable && (len(d.Extractors) > 0 || len(d.Rules) > 0) {
		return fmt.Errorf("%w: %s", agent.ErrRulesNotSupported, d.Name)
	}

	for i, spec := range d.Extractors {
		if _, err := rules.NewExtractor(spec); err != nil {
			return fmt.Errorf("template %s: extractor %d: %w", d.Name, i, err)
		}
	}
	if _, err := rules.Build(nil, d.Extractors, d.Rules, true); err != nil {
		return fmt.Errorf("template %s: %w", d.Name, err)
	}

	return nil
}

// Class materializes the template class, attaching the given page handlers.
// The class starts with an empty rule list; rules enter through the factory.
func (d Definition) Class(handlers map[string]agent.Handler) (*agent.Class, error) {
	class, err := agent.NewClass(agent.ClassParams{
		Name:        d.Name,
		Settings:    d.Settings,
		RuleCapable: d.RuleCapable,
		Handlers:    handlers,
	})
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", d.Name, err)
	}
	return class, nil
}

// Factory materializes the class factory that specializes this template:
// the override settings plus the template's rule specs.
func (d Definition) Factory() (*agent.ClassFactory, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var opts []agent.FactoryOption
	if len(d.Extractors) > 0 || len(d.Rules) > 0 {
		opts = append(opts, agent.WithRuleSpecs(d.Extractors, d.Rules, d.RuleOverwrite))
	}
	return agent.NewClassFactory(d.Overrides, d.Overwrite, opts...), nil
}
