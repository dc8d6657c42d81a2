package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Telegram: TelegramConfig{
			PollTimeout: 60,
		},
		Downloads: DownloadsConfig{
			PerUserLimit: 3,
			FetchTimeout: 600,
		},
		Search: SearchConfig{
			PageSize: 5,
			Timeout:  15,
		},
		History: HistoryConfig{
			Retention: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
