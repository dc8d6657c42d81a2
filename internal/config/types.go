package config

// Config is the root configuration for melodybot.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Providers ProvidersConfig `yaml:"providers,omitempty"`
	Downloads DownloadsConfig `yaml:"downloads,omitempty"`
	Search    SearchConfig    `yaml:"search,omitempty"`
	History   HistoryConfig   `yaml:"history,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// TelegramConfig holds the bot transport settings.
type TelegramConfig struct {
	Token       string `yaml:"token"`
	PollTimeout int    `yaml:"pollTimeout,omitempty"` // long-poll timeout in seconds
}

// ProvidersConfig configures the enabled search/download providers.
type ProvidersConfig struct {
	YouTube   *YouTubeConfig   `yaml:"youtube,omitempty"`
	Spotify   *SpotifyConfig   `yaml:"spotify,omitempty"`
	Converter *ConverterConfig `yaml:"converter,omitempty"`
}

// YouTubeConfig configures the YouTube Data API provider.
type YouTubeConfig struct {
	APIKey    string `yaml:"apiKey"`
	YtDlpPath string `yaml:"ytDlpPath,omitempty"` // defaults to "yt-dlp" on PATH
}

// SpotifyConfig configures the Spotify Web API provider.
type SpotifyConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
}

// ConverterConfig configures the scrape-based converter provider.
type ConverterConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// DownloadsConfig bounds concurrent media fetches.
type DownloadsConfig struct {
	PerUserLimit   int    `yaml:"perUserLimit,omitempty"`   // simultaneous jobs per user
	FetchTimeout   int    `yaml:"fetchTimeout,omitempty"`   // seconds, per media fetch
	TempDir        string `yaml:"tempDir,omitempty"`        // defaults to os.TempDir()
}

// SearchConfig controls result paging and upstream call bounds.
type SearchConfig struct {
	PageSize int `yaml:"pageSize,omitempty"`
	Timeout  int `yaml:"timeout,omitempty"` // seconds, per search call
}

// HistoryConfig controls the per-user query log.
type HistoryConfig struct {
	Retention int `yaml:"retention,omitempty"` // entries returned per user
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}
