package main

import (
	"fmt"
	"log/slog"
	"sync"

	"podscribe/internal/config"
	"podscribe/internal/logging"
	"podscribe/internal/pipeline"
	"podscribe/internal/store"
)

// commandContext lazily loads shared dependencies so subcommands that never
// touch the store or logger do not pay for them.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var explicit string
		if c.configFlag != nil {
			explicit = *c.configFlag
		}
		path, err := config.Resolve(explicit)
		if err != nil {
			c.configErr = err
			return
		}
		cfg, err := config.Load(path)
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

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// withStore opens the state database for the duration of fn.
func (c *commandContext) withStore(fn func(cfg *config.Config, st *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(cfg, st)
}

func modeFromFlags(transcribeOnly, insightsOnly bool) pipeline.Mode {
	switch {
	case transcribeOnly:
		return pipeline.ModeTranscribeOnly
	case insightsOnly:
		return pipeline.ModeInsightsOnly
	default:
		return pipeline.ModeFull
	}
}
