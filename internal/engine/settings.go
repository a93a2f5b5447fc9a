package engine

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/jonesrussell/spinneret/internal/agent"
)

// Engine setting defaults, applied when the merged class settings leave a
// field unset.
const (
	DefaultMaxDepth       = 3
	DefaultParallelism    = 2
	DefaultRateLimit      = 1 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultUserAgent      = "spinneret/1.0"
)

// Settings is the typed engine configuration decoded from an agent class's
// settings map. Duration fields accept strings with units ("500ms", "2s").
type Settings struct {
	// MaxDepth limits how many link hops from a start URL are crawled.
	MaxDepth int `mapstructure:"max_depth"`
	// AllowedDomains restricts visits to the listed hosts; empty allows all.
	AllowedDomains []string `mapstructure:"allowed_domains"`
	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent"`
	// RateLimit is the delay between requests to one domain.
	RateLimit time.Duration `mapstructure:"rate_limit"`
	// RandomDelay is an extra random delay added to RateLimit.
	RandomDelay time.Duration `mapstructure:"random_delay"`
	// Parallelism caps concurrent requests per domain.
	Parallelism int `mapstructure:"parallelism"`
	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// RespectRobotsTxt honors robots.txt when set.
	RespectRobotsTxt bool `mapstructure:"respect_robots_txt"`
	// MaxBodySize caps response bodies in bytes; 0 keeps the engine default.
	MaxBodySize int `mapstructure:"max_body_size"`
	// AllowURLRevisit permits visiting one URL more than once per run.
	AllowURLRevisit bool `mapstructure:"allow_url_revisit"`
	// PageCallback names the class handler for pages not routed by a rule.
	// Empty falls back to the "page" handler when the class declares one.
	PageCallback string `mapstructure:"page_callback"`
}

// DecodeSettings decodes a merged settings map into typed engine settings
// and applies defaults for unset fields. Unrecognized keys are ignored so
// classes may carry settings for their handlers alongside engine settings.
func DecodeSettings(raw agent.Settings) (Settings, error) {
	settings := Settings{RespectRobotsTxt: true}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if decodeErr := decoder.Decode(map[string]any(raw)); decodeErr != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, decodeErr)
	}

	settings.applyDefaults()
	return settings, nil
}

// applyDefaults fills unset fields with the package defaults.
func (s *Settings) applyDefaults() {
	if s.MaxDepth <= 0 {
		s.MaxDepth = DefaultMaxDepth
	}
	if s.Parallelism <= 0 {
		s.Parallelism = DefaultParallelism
	}
	if s.RateLimit <= 0 {
		s.RateLimit = DefaultRateLimit
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	if s.UserAgent == "" {
		s.UserAgent = DefaultUserAgent
	}
}
