package rules

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// extractorSpec is the decoded form of an ExtractorSpec map.
type extractorSpec struct {
	Allow       []string `mapstructure:"allow"`
	Deny        []string `mapstructure:"deny"`
	Domains     []string `mapstructure:"domains"`
	DenyDomains []string `mapstructure:"deny_domains"`
	Attrs       []string `mapstructure:"attrs"`
	Unique      bool     `mapstructure:"unique"`
}

// Extractor is a compiled link-matching predicate. Match applies, in order:
// domain deny list, domain allow list, pattern deny list, pattern allow
// list. An empty allow list matches everything not denied.
type Extractor struct {
	allow       []*regexp.Regexp
	deny        []*regexp.Regexp
	domains     []string
	denyDomains []string
	attrs       []string
	unique      bool
}

// NewExtractor compiles an ExtractorSpec into an Extractor.
func NewExtractor(spec ExtractorSpec) (*Extractor, error) {
	decoded := extractorSpec{Unique: true}
	if err := decodeSpec(spec, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExtractorSpec, err)
	}

	allow, err := compilePatterns(decoded.Allow)
	if err != nil {
		return nil, fmt.Errorf("%w: allow: %w", ErrInvalidExtractorSpec, err)
	}
	deny, err := compilePatterns(decoded.Deny)
	if err != nil {
		return nil, fmt.Errorf("%w: deny: %w", ErrInvalidExtractorSpec, err)
	}

	attrs := decoded.Attrs
	if len(attrs) == 0 {
		attrs = []string{"href"}
	}

	return &Extractor{
		allow:       allow,
		deny:        deny,
		domains:     normalizeHosts(decoded.Domains),
		denyDomains: normalizeHosts(decoded.DenyDomains),
		attrs:       attrs,
		unique:      decoded.Unique,
	}, nil
}

// compilePatterns compiles each pattern, failing on the first invalid one.
func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func normalizeHosts(hosts []string) []string {
	if len(hosts) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			normalized = append(normalized, h)
		}
	}
	return normalized
}

// Match reports whether the extractor matches the given absolute link.
// Unparseable links never match.
func (e *Extractor) Match(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return e.MatchURL(u)
}

// MatchURL reports whether the extractor matches the given URL.
func (e *Extractor) MatchURL(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())

	if hostMatchesAny(host, e.denyDomains) {
		return false
	}
	if len(e.domains) > 0 && !hostMatchesAny(host, e.domains) {
		return false
	}

	link := u.String()
	for _, re := range e.deny {
		if re.MatchString(link) {
			return false
		}
	}
	if len(e.allow) == 0 {
		return true
	}
	for _, re := range e.allow {
		if re.MatchString(link) {
			return true
		}
	}
	return false
}

// hostMatchesAny reports whether host equals one of the domains or is a
// subdomain of one.
func hostMatchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Attrs returns the element attributes the extractor reads links from.
func (e *Extractor) Attrs() []string {
	return e.attrs
}

// Unique reports whether matched links should be deduplicated per run.
func (e *Extractor) Unique() bool {
	return e.unique
}
