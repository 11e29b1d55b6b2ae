package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.DataDir == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		problems = append(problems, "paths.log_dir must be set")
	}
	if c.Paths.APIBind == "" {
		problems = append(problems, "paths.api_bind must be set")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if c.Notifications.RequestTimeout <= 0 {
		problems = append(problems, "notifications.request_timeout must be positive")
	}

	if c.Workflow.StaleStageDays <= 0 {
		problems = append(problems, "workflow.stale_stage_days must be positive")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
