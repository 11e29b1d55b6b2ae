package workflow

import (
	"fmt"
	"log/slog"

	"stagehand/internal/catalog"
	"stagehand/internal/config"
	"stagehand/internal/logging"
	"stagehand/internal/notifications"
	"stagehand/internal/services"
	"stagehand/internal/transition"
	"stagehand/internal/views"
)

// Engine coordinates pipeline mutations against the catalog store.
type Engine struct {
	cfg      *config.Config
	store    *catalog.Store
	logger   *slog.Logger
	notifier notifications.Service
	cache    *views.Cache
}

// NewEngine constructs a workflow engine.
func NewEngine(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Engine {
	return NewEngineWithNotifier(cfg, store, logger, notifications.NewService(cfg), nil)
}

// NewEngineWithNotifier constructs a workflow engine with a custom notifier
// and view cache (used in tests and by the daemon).
func NewEngineWithNotifier(cfg *config.Config, store *catalog.Store, logger *slog.Logger, notifier notifications.Service, cache *views.Cache) *Engine {
	if cache == nil {
		cache = views.NewCache(logger)
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Engine{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		notifier: notifier,
		cache:    cache,
	}
}

// Cache exposes the view cache shared with read services.
func (e *Engine) Cache() *views.Cache {
	return e.cache
}

// ValidationError carries the itemized issues a blocked transition produced.
// It unwraps to the validation-blocked sentinel for classification.
type ValidationError struct {
	Issues []transition.Issue
}

func (v *ValidationError) Error() string {
	if len(v.Issues) == 1 {
		return fmt.Sprintf("%s: %s", services.ErrValidationBlocked.Error(), v.Issues[0].Message)
	}
	return fmt.Sprintf("%s: %d issues", services.ErrValidationBlocked.Error(), len(v.Issues))
}

func (v *ValidationError) Unwrap() error {
	return services.ErrValidationBlocked
}
