package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/spinneret/internal/rules"
)

func TestExtractorMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		spec  rules.ExtractorSpec
		link  string
		match bool
	}{
		{
			name:  "empty spec matches everything",
			spec:  rules.ExtractorSpec{},
			link:  "https://example.com/anything",
			match: true,
		},
		{
			name:  "allow pattern hit",
			spec:  rules.ExtractorSpec{"allow": []string{`/news/\d+`}},
			link:  "https://example.com/news/42",
			match: true,
		},
		{
			name:  "allow pattern miss",
			spec:  rules.ExtractorSpec{"allow": []string{`/news/\d+`}},
			link:  "https://example.com/about",
			match: false,
		},
		{
			name:  "deny wins over allow",
			spec:  rules.ExtractorSpec{"allow": []string{"/news/"}, "deny": []string{"/news/draft"}},
			link:  "https://example.com/news/draft/1",
			match: false,
		},
		{
			name:  "domain allow exact",
			spec:  rules.ExtractorSpec{"domains": []string{"example.com"}},
			link:  "https://example.com/a",
			match: true,
		},
		{
			name:  "domain allow subdomain",
			spec:  rules.ExtractorSpec{"domains": []string{"example.com"}},
			link:  "https://blog.example.com/a",
			match: true,
		},
		{
			name:  "domain allow miss",
			spec:  rules.ExtractorSpec{"domains": []string{"example.com"}},
			link:  "https://other.org/a",
			match: false,
		},
		{
			name:  "deny domain wins",
			spec:  rules.ExtractorSpec{"domains": []string{"example.com"}, "deny_domains": []string{"ads.example.com"}},
			link:  "https://ads.example.com/a",
			match: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, err := rules.NewExtractor(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.match, e.Match(tt.link))
		})
	}
}

func TestExtractorDefaults(t *testing.T) {
	t.Parallel()

	e, err := rules.NewExtractor(rules.ExtractorSpec{})
	require.NoError(t, err)
	assert.Equal(t, []string{"href"}, e.Attrs())
	assert.True(t, e.Unique())

	e, err = rules.NewExtractor(rules.ExtractorSpec{"attrs": []string{"src"}, "unique": false})
	require.NoError(t, err)
	assert.Equal(t, []string{"src"}, e.Attrs())
	assert.False(t, e.Unique())
}

func TestExtractorInvalidSpec(t *testing.T) {
	t.Parallel()

	_, err := rules.NewExtractor(rules.ExtractorSpec{"deny": []string{"("}})
	require.ErrorIs(t, err, rules.ErrInvalidExtractorSpec)

	_, err = rules.NewExtractor(rules.ExtractorSpec{"allow": map[string]any{"not": "a list"}})
	require.ErrorIs(t, err, rules.ErrInvalidExtractorSpec)
}
