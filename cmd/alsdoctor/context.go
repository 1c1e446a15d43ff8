package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"alsdoctor/internal/config"
	"alsdoctor/internal/history"
	"alsdoctor/internal/logging"
)

type commandContext struct {
	configFlag  *string
	jsonFlag    *bool
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		jsonFlag:    jsonFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// rootLogger builds the process logger once. Setup failures fall back to a
// silent logger so they never block a command.
func (c *commandContext) rootLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		verbose := c.verboseFlag != nil && *c.verboseFlag
		logger, err := logging.NewFromConfig(cfg, verbose)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
		if cfg != nil {
			logging.PruneLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, time.Now())
		}
	})
	return c.logger
}

func (c *commandContext) componentLogger(component string) *slog.Logger {
	return logging.NewComponentLogger(c.rootLogger(), component)
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// withHistoryWriter is withHistory plus the exclusive writer lock.
func (c *commandContext) withHistoryWriter(fn func(*history.Store) error) error {
	return c.withHistory(func(store *history.Store) error {
		unlock, err := store.LockWriter()
		if err != nil {
			return err
		}
		defer func() { _ = unlock() }()
		return fn(store)
	})
}
