package history

import "errors"

// Default configuration values.
const (
	DefaultEnabled = true
	DefaultPath    = "spinneret_history.db"
)

// Config holds run-history configuration settings.
type Config struct {
	// Enabled records run outcomes to the history store
	Enabled bool `yaml:"enabled"`
	// Path is the SQLite database file, or ":memory:" for an ephemeral store
	Path string `yaml:"path"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Enabled && c.Path == "" {
		return errors.New("history path must be specified when history is enabled")
	}

	return nil
}

// New creates a new history configuration with the given options.
func New(opts ...Option) *Config {
	cfg := &Config{
		Enabled: DefaultEnabled,
		Path:    DefaultPath,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Option is a function that configures a history configuration.
type Option func(*Config)

// WithEnabled sets whether run outcomes are recorded.
func WithEnabled(enabled bool) Option {
	return func(c *Config) {
		c.Enabled = enabled
	}
}

// WithPath sets the database file path.
func WithPath(path string) Option {
	return func(c *Config) {
		c.Path = path
	}
}
