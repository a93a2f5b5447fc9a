package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	bridgecfg "github.com/jonesrussell/spinneret/internal/config/bridge"
	enginecfg "github.com/jonesrussell/spinneret/internal/config/engine"
	historycfg "github.com/jonesrussell/spinneret/internal/config/history"
)

// InitOptions carries command-line overrides into Viper initialization.
type InitOptions struct {
	// ConfigFile is an explicit config file path; empty searches the
	// default locations
	ConfigFile string
	// Debug forces debug-level logging regardless of environment
	Debug bool
}

// InitializeViper initializes Viper configuration from environment variables
// and config files. This must be called before Load() so defaults and
// overrides are in place.
func InitializeViper(opts InitOptions) error {
	loadEnvFile()
	setupViper(opts.ConfigFile)
	setDefaults()
	readConfigFile()

	if err := bindEnvironmentVariables(); err != nil {
		return fmt.Errorf("failed to bind environment variables: %w", err)
	}

	if opts.Debug {
		viper.Set("app.debug", true)
	}

	setupDevelopmentLogging()
	return nil
}

// loadEnvFile loads .env file (ignores error if file doesn't exist).
func loadEnvFile() {
	_ = godotenv.Load()
}

// setupViper configures Viper for environment variable and config file reading.
func setupViper(cfgFile string) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
}

// readConfigFile reads config file (ignores error if file doesn't exist).
func readConfigFile() {
	_ = viper.ReadInConfig()
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults - production safe
	viper.SetDefault("app", map[string]any{
		"name":        "spinneret",
		"version":     "0.1.0",
		"environment": "production",
		"debug":       false,
	})

	// Logger defaults - production safe
	viper.SetDefault("logger", map[string]any{
		"level":        "info",
		"encoding":     "json",
		"output":       "stdout",
		"enable_color": false,
	})

	// Bridge defaults
	viper.SetDefault("bridge", map[string]any{
		"timeout":    bridgecfg.DefaultTimeout.String(),
		"queue_size": bridgecfg.DefaultQueueSize,
		"generate":   bridgecfg.DefaultGenerate,
	})

	// Engine defaults - production safe
	viper.SetDefault("engine", map[string]any{
		"max_depth":          enginecfg.DefaultMaxDepth,
		"user_agent":         enginecfg.DefaultUserAgent,
		"rate_limit":         enginecfg.DefaultRateLimit.String(),
		"random_delay":       enginecfg.DefaultRandomDelay.String(),
		"parallelism":        enginecfg.DefaultParallelism,
		"request_timeout":    enginecfg.DefaultRequestTimeout.String(),
		"respect_robots_txt": true,
		"max_body_size":      0,
	})

	// History defaults
	viper.SetDefault("history", map[string]any{
		"enabled": historycfg.DefaultEnabled,
		"path":    historycfg.DefaultPath,
	})

	// Agent template registry defaults
	viper.SetDefault("agents", map[string]any{
		"file": "agents.yml",
	})
}

// bindEnvironmentVariables binds all environment variables to config keys.
func bindEnvironmentVariables() error {
	if err := viper.BindEnv("app.environment", "APP_ENV"); err != nil {
		return fmt.Errorf("failed to bind APP_ENV: %w", err)
	}
	if err := viper.BindEnv("app.debug", "APP_DEBUG"); err != nil {
		return fmt.Errorf("failed to bind APP_DEBUG: %w", err)
	}
	if err := viper.BindEnv("logger.level", "LOG_LEVEL"); err != nil {
		return fmt.Errorf("failed to bind LOG_LEVEL: %w", err)
	}
	if err := viper.BindEnv("logger.encoding", "LOG_FORMAT"); err != nil {
		return fmt.Errorf("failed to bind LOG_FORMAT: %w", err)
	}
	if err := viper.BindEnv("agents.file", "SPINNERET_AGENTS_FILE"); err != nil {
		return fmt.Errorf("failed to bind SPINNERET_AGENTS_FILE: %w", err)
	}
	if err := viper.BindEnv("bridge.timeout", "SPINNERET_RUN_TIMEOUT"); err != nil {
		return fmt.Errorf("failed to bind SPINNERET_RUN_TIMEOUT: %w", err)
	}
	if err := viper.BindEnv("history.path", "SPINNERET_HISTORY_PATH"); err != nil {
		return fmt.Errorf("failed to bind SPINNERET_HISTORY_PATH: %w", err)
	}
	return nil
}

// setupDevelopmentLogging configures logging settings based on environment
// variables. Debug level (controlled by APP_DEBUG) is separate from
// development formatting (controlled by APP_ENV): debug logs can be enabled
// in production for troubleshooting without changing the output format.
func setupDevelopmentLogging() {
	debugFlag := viper.GetBool("app.debug")
	isDev := viper.GetString("app.environment") == "development"

	if debugFlag {
		viper.Set("logger.level", "debug")
	}

	if isDev {
		viper.Set("logger.encoding", "console")
		viper.Set("logger.enable_color", true)
	}
}
