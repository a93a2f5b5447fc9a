// Package config provides configuration management for the spinneret
// application. It handles loading, validation, and access to configuration
// values from YAML files and environment variables via Viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jonesrussell/spinneret/internal/config/app"
	bridgecfg "github.com/jonesrussell/spinneret/internal/config/bridge"
	enginecfg "github.com/jonesrussell/spinneret/internal/config/engine"
	historycfg "github.com/jonesrussell/spinneret/internal/config/history"
	"github.com/jonesrussell/spinneret/internal/config/logging"
)

// Config represents the application configuration.
type Config struct {
	// App holds application-specific configuration
	App *app.Config `yaml:"app"`
	// Logger holds logging configuration
	Logger *logging.Config `yaml:"logger"`
	// Bridge holds execution-bridge configuration
	Bridge *bridgecfg.Config `yaml:"bridge"`
	// Engine holds crawl-engine configuration
	Engine *enginecfg.Config `yaml:"engine"`
	// History holds run-history configuration
	History *historycfg.Config `yaml:"history"`
	// AgentsFile is the path to the agent template registry
	AgentsFile string `yaml:"agents_file"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if err := c.Bridge.Validate(); err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if c.AgentsFile == "" {
		return fmt.Errorf("agents: %w", ErrAgentsFileRequired)
	}
	return nil
}

// Load materializes the typed configuration from Viper. InitializeViper must
// have been called first so defaults, the config file, and environment
// overrides are in place.
func Load() (*Config, error) {
	cfg := &Config{
		App: app.New(
			app.WithName(viper.GetString("app.name")),
			app.WithVersion(viper.GetString("app.version")),
			app.WithEnvironment(viper.GetString("app.environment")),
			app.WithDebug(viper.GetBool("app.debug")),
		),
		Logger: logging.New(
			logging.WithLevel(viper.GetString("logger.level")),
			logging.WithEncoding(viper.GetString("logger.encoding")),
			logging.WithOutput(viper.GetString("logger.output")),
			logging.WithEnableColor(viper.GetBool("logger.enable_color")),
		),
		Bridge: bridgecfg.New(
			bridgecfg.WithTimeout(viper.GetDuration("bridge.timeout")),
			bridgecfg.WithQueueSize(viper.GetInt("bridge.queue_size")),
			bridgecfg.WithGenerate(viper.GetBool("bridge.generate")),
		),
		Engine: enginecfg.New(
			enginecfg.WithMaxDepth(viper.GetInt("engine.max_depth")),
			enginecfg.WithUserAgent(viper.GetString("engine.user_agent")),
			enginecfg.WithRateLimit(viper.GetDuration("engine.rate_limit")),
			enginecfg.WithRandomDelay(viper.GetDuration("engine.random_delay")),
			enginecfg.WithParallelism(viper.GetInt("engine.parallelism")),
			enginecfg.WithRequestTimeout(viper.GetDuration("engine.request_timeout")),
			enginecfg.WithRespectRobotsTxt(viper.GetBool("engine.respect_robots_txt")),
			enginecfg.WithMaxBodySize(viper.GetInt("engine.max_body_size")),
		),
		History: historycfg.New(
			historycfg.WithEnabled(viper.GetBool("history.enabled")),
			historycfg.WithPath(viper.GetString("history.path")),
		),
		AgentsFile: viper.GetString("agents.file"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	return cfg, nil
}
