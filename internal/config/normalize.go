package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	pathFields := []*string{
		&c.Paths.DataDir,
		&c.Paths.LogDir,
	}
	for _, field := range pathFields {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			*field = trimmed
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)

	for i, actor := range c.Access.AdminActors {
		c.Access.AdminActors[i] = strings.TrimSpace(actor)
	}

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		c.Notifications.NtfyTopic = strings.TrimSpace(os.Getenv("STAGEHAND_NTFY_TOPIC"))
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
