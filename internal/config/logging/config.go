package logging

import (
	"errors"
	"fmt"
)

// Default configuration values.
const (
	DefaultLevel       = "info"
	DefaultEncoding    = "console"
	DefaultOutput      = "stdout"
	DefaultEnableColor = false
)

// Config holds logging-specific configuration settings.
type Config struct {
	// Level is the logging level (debug, info, warn, error, fatal)
	Level string `yaml:"level"`
	// Encoding is the log encoding format (json, console)
	Encoding string `yaml:"encoding"`
	// Output is the log output destination (stdout, stderr)
	Output string `yaml:"output"`
	// EnableColor enables colored output in development mode
	EnableColor bool `yaml:"enable_color"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Level == "" {
		return errors.New("log level must be specified")
	}

	switch c.Level {
	case "debug", "info", "warn", "error", "fatal":
		// Valid level
	default:
		return fmt.Errorf("invalid log level: %s", c.Level)
	}

	if c.Encoding == "" {
		return errors.New("log encoding must be specified")
	}

	switch c.Encoding {
	case "json", "console":
		// Valid encoding
	default:
		return fmt.Errorf("invalid log encoding: %s", c.Encoding)
	}

	if c.Output == "" {
		return errors.New("log output must be specified")
	}

	switch c.Output {
	case "stdout", "stderr":
		// Valid output
	default:
		return fmt.Errorf("invalid log output: %s", c.Output)
	}

	return nil
}

// New creates a new logging configuration with the given options.
func New(opts ...Option) *Config {
	cfg := &Config{
		Level:       DefaultLevel,
		Encoding:    DefaultEncoding,
		Output:      DefaultOutput,
		EnableColor: DefaultEnableColor,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Option is a function that configures a logging configuration.
type Option func(*Config)

// WithLevel sets the logging level.
func WithLevel(level string) Option {
	return func(c *Config) {
		c.Level = level
	}
}

// WithEncoding sets the log encoding format.
func WithEncoding(encoding string) Option {
	return func(c *Config) {
		c.Encoding = encoding
	}
}

// WithOutput sets the log output destination.
func WithOutput(output string) Option {
	return func(c *Config) {
		c.Output = output
	}
}

// WithEnableColor sets colored output.
func WithEnableColor(enable bool) Option {
	return func(c *Config) {
		c.EnableColor = enable
	}
}
