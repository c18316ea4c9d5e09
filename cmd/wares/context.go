package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"wares/internal/catalog"
	"wares/internal/config"
	"wares/internal/draftstore"
	"wares/internal/logging"
	"wares/internal/services/market"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	clientOnce sync.Once
	client     *market.Client
	clientErr  error

	directoryOnce sync.Once
	directory     *catalog.Directory
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
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

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) marketClient() (*market.Client, error) {
	c.clientOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.clientErr = err
			return
		}
		client, err := market.New(cfg.Marketplace.BaseURL, cfg.Marketplace.APIToken,
			market.WithTimeout(time.Duration(cfg.Marketplace.RequestTimeout)*time.Second))
		if err != nil {
			c.clientErr = err
			return
		}
		c.client = client
	})
	return c.client, c.clientErr
}

// ensureDirectory returns the session category directory, fetching it from
// the backend on first use.
func (c *commandContext) ensureDirectory(cmd *cobra.Command) (*catalog.Directory, error) {
	client, err := c.marketClient()
	if err != nil {
		return nil, err
	}
	c.directoryOnce.Do(func() {
		c.directory = catalog.NewDirectory(client, c.ensureLogger())
	})
	if err := c.directory.Ensure(cmd.Context()); err != nil {
		return nil, err
	}
	return c.directory, nil
}

// withStore opens the draft store for the duration of fn.
func (c *commandContext) withStore(fn func(store *draftstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := draftstore.Open(cfg)
	if err != nil {
		return err
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
