package config

// Default returns baseline configuration values before user overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: "~/.local/share/stagehand/data",
			LogDir:  "~/.local/share/stagehand/logs",
			APIBind: "127.0.0.1:7487",
		},
		Access: Access{
			AdminActors: nil,
		},
		Notifications: Notifications{
			NtfyTopic:      "",
			RequestTimeout: 10,
			Transitions:    true,
			Blocked:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		Workflow: Workflow{
			StaleStageDays: 14,
		},
	}
}
