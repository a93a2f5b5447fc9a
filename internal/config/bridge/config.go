package bridge

import (
	"errors"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout   = 5 * time.Minute
	DefaultQueueSize = 16
	DefaultGenerate  = true
)

// Config holds execution-bridge configuration settings.
type Config struct {
	// Timeout bounds how long a blocking run waits for its result
	Timeout time.Duration `yaml:"timeout"`
	// QueueSize is the capacity of the execution loop's dispatch queue
	QueueSize int `yaml:"queue_size"`
	// Generate specializes a fresh agent class per run instead of reusing
	// the template directly
	Generate bool `yaml:"generate"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if c.QueueSize <= 0 {
		return errors.New("queue size must be positive")
	}

	return nil
}

// New creates a new bridge configuration with the given options.
func New(opts ...Option) *Config {
	cfg := &Config{
		Timeout:   DefaultTimeout,
		QueueSize: DefaultQueueSize,
		Generate:  DefaultGenerate,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Option is a function that configures a bridge configuration.
type Option func(*Config)

// WithTimeout sets the blocking run timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithQueueSize sets the dispatch queue capacity.
func WithQueueSize(size int) Option {
	return func(c *Config) {
		c.QueueSize = size
	}
}

// WithGenerate sets per-run class specialization.
func WithGenerate(generate bool) Option {
	return func(c *Config) {
		c.Generate = generate
	}
}
