package testsupport

import (
	"path/filepath"
	"testing"

	"stagehand/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Notifications.NtfyTopic = ""

	for _, opt := range opts {
		opt(&cfgVal)
	}

	return &cfgVal
}

// WithAdminActors sets the admin actor list on the test config.
func WithAdminActors(actors ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Access.AdminActors = actors
	}
}
