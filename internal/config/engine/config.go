package engine

import (
	"errors"
	"time"
)

// Default configuration values.
const (
	DefaultMaxDepth       = 3
	DefaultUserAgent      = "spinneret/1.0"
	DefaultRateLimit      = 1 * time.Second
	DefaultRandomDelay    = 0 * time.Second
	DefaultParallelism    = 2
	DefaultRequestTimeout = 30 * time.Second
)

// Config holds crawl-engine configuration settings. These are the
// process-wide defaults; agent classes override them per run through their
// settings maps.
type Config struct {
	// MaxDepth limits how many link hops from a start URL are crawled
	MaxDepth int `yaml:"max_depth"`
	// UserAgent is sent with every request
	UserAgent string `yaml:"user_agent"`
	// RateLimit is the delay between requests to one domain
	RateLimit time.Duration `yaml:"rate_limit"`
	// RandomDelay is an extra random delay added to the rate limit
	RandomDelay time.Duration `yaml:"random_delay"`
	// Parallelism caps concurrent requests per domain
	Parallelism int `yaml:"parallelism"`
	// RequestTimeout bounds each HTTP request
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// RespectRobotsTxt honors robots.txt when set
	RespectRobotsTxt bool `yaml:"respect_robots_txt"`
	// MaxBodySize caps response bodies in bytes; 0 keeps the engine default
	MaxBodySize int `yaml:"max_body_size"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return errors.New("max depth must not be negative")
	}

	if c.UserAgent == "" {
		return errors.New("user agent must be specified")
	}

	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}

	if c.RandomDelay < 0 {
		return errors.New("random delay must not be negative")
	}

	if c.Parallelism <= 0 {
		return errors.New("parallelism must be positive")
	}

	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}

	if c.MaxBodySize < 0 {
		return errors.New("max body size must not be negative")
	}

	return nil
}

// Settings flattens the configuration into the settings-map form consumed by
// the crawl engine. The keys match the engine's settings schema, so the map
// slots in as the weakest layer under template and override settings.
func (c *Config) Settings() map[string]any {
	return map[string]any{
		"max_depth":          c.MaxDepth,
		"user_agent":         c.UserAgent,
		"rate_limit":         c.RateLimit,
		"random_delay":       c.RandomDelay,
		"parallelism":        c.Parallelism,
		"request_timeout":    c.RequestTimeout,
		"respect_robots_txt": c.RespectRobotsTxt,
		"max_body_size":      c.MaxBodySize,
	}
}

// New creates a new engine configuration with the given options.
func New(opts ...Option) *Config {
	cfg := &Config{
		MaxDepth:         DefaultMaxDepth,
		UserAgent:        DefaultUserAgent,
		RateLimit:        DefaultRateLimit,
		RandomDelay:      DefaultRandomDelay,
		Parallelism:      DefaultParallelism,
		RequestTimeout:   DefaultRequestTimeout,
		RespectRobotsTxt: true,
		MaxBodySize:      0,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Option is a function that configures an engine configuration.
type Option func(*Config)

// WithMaxDepth sets the crawl depth limit.
func WithMaxDepth(depth int) Option {
	return func(c *Config) {
		c.MaxDepth = depth
	}
}

// WithUserAgent sets the user agent string.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithRateLimit sets the per-domain request delay.
func WithRateLimit(limit time.Duration) Option {
	return func(c *Config) {
		c.RateLimit = limit
	}
}

// WithRandomDelay sets the extra random delay.
func WithRandomDelay(delay time.Duration) Option {
	return func(c *Config) {
		c.RandomDelay = delay
	}
}

// WithParallelism sets the per-domain concurrency cap.
func WithParallelism(parallelism int) Option {
	return func(c *Config) {
		c.Parallelism = parallelism
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

// WithRespectRobotsTxt sets robots.txt handling.
func WithRespectRobotsTxt(respect bool) Option {
	return func(c *Config) {
		c.RespectRobotsTxt = respect
	}
}

// WithMaxBodySize sets the response body cap in bytes.
func WithMaxBodySize(size int) Option {
	return func(c *Config) {
		c.MaxBodySize = size
	}
}
