package agent_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/spinneret/internal/agent"
	"github.com/jonesrussell/spinneret/internal/rules"
)

func newTemplate(t *testing.T, ruleCapable bool) *agent.Class {
	t.Helper()

	params := agent.ClassParams{
		Name:        "news",
		Settings:    agent.Settings{"max_depth": 2, "user_agent": "spinneret-test"},
		RuleCapable: ruleCapable,
		Handlers: map[string]agent.Handler{
			"page": func(ctx context.Context, page *agent.Page) error { return nil },
		},
	}
	if ruleCapable {
		built, err := rules.Build(nil,
			[]rules.ExtractorSpec{{"allow": []string{"/inherited/"}}},
			[]rules.RuleSpec{{"callback": "page", "follow": true}},
			true,
		)
		require.NoError(t, err)
		params.Rules = built
	}

	template, err := agent.NewClass(params)
	require.NoError(t, err)
	return template
}

func TestClassFactoryConstruct(t *testing.T) {
	t.Parallel()

	t.Run("MergesSettings", func(t *testing.T) {
		t.Parallel()
		template := newTemplate(t, false)
		factory := agent.NewClassFactory(agent.Settings{"max_depth": 5, "rate_limit": "1s"}, false)

		derived, err := factory.Construct(template)
		require.NoError(t, err)

		settings := derived.Settings()
		assert.Equal(t, 5, settings["max_depth"])
		assert.Equal(t, "1s", settings["rate_limit"])
		assert.Equal(t, "spinneret-test", settings["user_agent"])

		// Template settings stay untouched.
		assert.Equal(t, 2, template.Settings()["max_depth"])
	})

	t.Run("OverwriteDiscardsTemplateSettings", func(t *testing.T) {
		t.Parallel()
		template := newTemplate(t, false)
		factory := agent.NewClassFactory(agent.Settings{"max_depth": 5}, true)

		derived, err := factory.Construct(template)
		require.NoError(t, err)

		settings := derived.Settings()
		assert.Equal(t, 5, settings["max_depth"])
		assert.NotContains(t, settings, "user_agent")
	})

	t.Run("FreshNamePerConstruct", func(t *testing.T) {
		t.Parallel()
		template := newTemplate(t, false)
		factory := agent.NewClassFactory(nil, false)

		a, err := factory.Construct(template)
		require.NoError(t, err)
		b, err := factory.Construct(template)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(a.Name(), "news-"))
		assert.True(t, strings.HasPrefix(b.Name(), "news-"))
		assert.NotEqual(t, a.Name(), b.Name())
		assert.NotSame(t, a, b)
	})

	t.Run("NilTemplate", func(t *testing.T) {
		t.Parallel()
		factory := agent.NewClassFactory(nil, false)
		_, err := factory.Construct(nil)
		require.ErrorIs(t, err, agent.ErrNilTemplate)
	})

	t.Run("AppendsRulesToCapableTemplate", func(t *testing.T) {
		t.Parallel()
		template := newTemplate(t, true)
		factory := agent.NewClassFactory(nil, false, agent.WithRuleSpecs(
			[]rules.ExtractorSpec{{"allow": []string{"/new/"}}},
			[]rules.RuleSpec{{"callback": "page"}},
			false,
		))

		derived, err := factory.Construct(template)
		require.NoError(t, err)
		require.True(t, derived.RuleCapable())

		built := derived.Rules()
		require.Len(t, built, 2)
		assert.True(t, built[0].Extractor.Match("https://example.com/inherited/x"))
		assert.True(t, built[1].Extractor.Match("https://example.com/new/x"))

		// Template rules stay untouched.
		assert.Len(t, template.Rules(), 1)
	})

	t.Run("RuleOverwriteReplacesInherited", func(t *testing.T) {
		t.Parallel()
		template := newTemplate(t, true)
		factory := agent.NewClassFactory(nil, false, agent.WithRuleSpecs(
			[]rules.ExtractorSpec{{"allow": []string{"/new/"}}},
			[]rules.RuleSpec{{"callback": "page"}},
			true,
		))

		derived, err := factory.Construct(template)
		require.NoError(t, err)

		built := derived.Rules()
		require.Len(t, built, 1)
		assert.True(t, built[0].Extractor.Match("https://example.com/new/x"))
		assert.False(t, built[0].Extractor.Match("https://example.com/inherited/x"))
	})

	t.Run("NoRuleSpecsKeepsInheritedRules", func(t *testing.T) {
		t.Parallel()
		template := newTemplate(t, true)
		factory := agent.NewClassFactory(agent.Settings{"max_depth": 1}, false)

		derived, err := factory.Construct(template)
		require.NoError(t, err)
		assert.Len(t, derived.Rules(), 1)
	})

	t.Run("RuleSpecsAgainstNonCapableTemplate", func(t *testing.T) {
		t.Parallel()
		template := newTemplate(t, false)
		factory := agent.NewClassFactory(nil, false, agent.WithRuleSpecs(
			[]rules.ExtractorSpec{{"allow": []string{"/x/"}}},
			[]rules.RuleSpec{{"callback": "page"}},
			false,
		))

		_, err := factory.Construct(template)
		require.ErrorIs(t, err, agent.ErrRulesNotSupported)
	})

	t.Run("NonCapableTemplateStaysRuleFree", func(t *testing.T) {
		t.Parallel()
		template := newTemplate(t, false)
		factory := agent.NewClassFactory(agent.Settings{"max_depth": 9}, false)

		derived, err := factory.Construct(template)
		require.NoError(t, err)
		assert.False(t, derived.RuleCapable())
		assert.Nil(t, derived.Rules())
	})

	t.Run("InheritsHandlers", func(t *testing.T) {
		t.Parallel()
		template := newTemplate(t, false)
		factory := agent.NewClassFactory(nil, false)

		derived, err := factory.Construct(template)
		require.NoError(t, err)

		_, ok := derived.Handler("page")
		assert.True(t, ok)
		_, ok = derived.Handler("missing")
		assert.False(t, ok)
	})

	t.Run("CustomBuilders", func(t *testing.T) {
		t.Parallel()
		template := newTemplate(t, true)

		var settingsCalls, rulesCalls int
		factory := agent.NewClassFactory(agent.Settings{"max_depth": 7}, false,
			agent.WithSettingsBuilder(func(base, overrides agent.Settings, overwrite bool) agent.Settings {
				settingsCalls++
				merged := agent.MergeSettings(base, overrides, overwrite)
				merged["stamped"] = true
				return merged
			}),
			agent.WithRulesBuilder(func(base []rules.Rule, es []rules.ExtractorSpec, rs []rules.RuleSpec, overwrite bool) ([]rules.Rule, error) {
				rulesCalls++
				return rules.Build(base, es, rs, overwrite)
			}),
		)

		derived, err := factory.Construct(template)
		require.NoError(t, err)
		assert.Equal(t, 1, settingsCalls)
		assert.Equal(t, 1, rulesCalls)
		assert.Equal(t, true, derived.Settings()["stamped"])
		assert.Equal(t, 7, derived.Settings()["max_depth"])
	})
}

func TestNewClass(t *testing.T) {
	t.Parallel()

	t.Run("NameRequired", func(t *testing.T) {
		t.Parallel()
		_, err := agent.NewClass(agent.ClassParams{})
		require.ErrorIs(t, err, agent.ErrClassNameRequired)
	})

	t.Run("RulesRequireCapability", func(t *testing.T) {
		t.Parallel()
		built, err := rules.Build(nil,
			[]rules.ExtractorSpec{{}},
			[]rules.RuleSpec{{"follow": true}},
			true,
		)
		require.NoError(t, err)

		_, err = agent.NewClass(agent.ClassParams{Name: "x", Rules: built})
		require.ErrorIs(t, err, agent.ErrRulesNotSupported)
	})

	t.Run("SettingsCopiedIn", func(t *testing.T) {
		t.Parallel()
		settings := agent.Settings{"A": 1}
		class, err := agent.NewClass(agent.ClassParams{Name: "x", Settings: settings})
		require.NoError(t, err)

		settings["A"] = 2
		assert.Equal(t, 1, class.Settings()["A"])

		// Accessor returns a copy as well.
		class.Settings()["A"] = 3
		assert.Equal(t, 1, class.Settings()["A"])
	})
}
