package common

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/spinneret/internal/config"
	"github.com/jonesrussell/spinneret/internal/logger"
)

// NewCommandDeps creates CommandDeps by loading config and creating the
// logger. This consolidates the common initialization code shared by all
// command RunE functions.
func NewCommandDeps() (CommandDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return CommandDeps{}, fmt.Errorf("load config: %w", err)
	}

	logCfg := &logger.Config{
		Level:       logger.Level(strings.ToLower(cfg.Logger.Level)),
		Development: cfg.App.Environment == "development",
		Encoding:    cfg.Logger.Encoding,
		OutputPaths: []string{cfg.Logger.Output},
		EnableColor: cfg.Logger.EnableColor,
	}

	log, err := logger.New(logCfg)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("create logger: %w", err)
	}

	deps := CommandDeps{
		Logger: log,
		Config: cfg,
	}

	if validateErr := deps.Validate(); validateErr != nil {
		return CommandDeps{}, fmt.Errorf("validate deps: %w", validateErr)
	}

	return deps, nil
}
