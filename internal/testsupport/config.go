// Package testsupport provides shared helpers for package tests: temp-backed
// configs, draft store fixtures, and file generation.
package testsupport

import (
	"path/filepath"
	"testing"

	"wares/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Marketplace.BaseURL = "https://market.test"
	cfg.Marketplace.APIToken = "test-token"
	cfg.Marketplace.OwnerID = "vendor-test"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithOwnerID overrides the vendor owner id on the test config.
func WithOwnerID(ownerID string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Marketplace.OwnerID = ownerID
	}
}

// WithNtfyTopic enables notifications against the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
	}
}
