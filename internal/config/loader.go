package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so tokens and API keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Telegram.Token = expandEnvVars(cfg.Telegram.Token)
	if cfg.Providers.YouTube != nil {
		cfg.Providers.YouTube.APIKey = expandEnvVars(cfg.Providers.YouTube.APIKey)
	}
	if cfg.Providers.Spotify != nil {
		cfg.Providers.Spotify.ClientID = expandEnvVars(cfg.Providers.Spotify.ClientID)
		cfg.Providers.Spotify.ClientSecret = expandEnvVars(cfg.Providers.Spotify.ClientSecret)
	}
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Telegram.PollTimeout == 0 {
		cfg.Telegram.PollTimeout = 60
	}
	if cfg.Downloads.PerUserLimit == 0 {
		cfg.Downloads.PerUserLimit = 3
	}
	if cfg.Downloads.FetchTimeout == 0 {
		cfg.Downloads.FetchTimeout = 600
	}
	if cfg.Search.PageSize == 0 {
		cfg.Search.PageSize = 5
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 15
	}
	if cfg.History.Retention == 0 {
		cfg.History.Retention = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides reads MELODYBOT_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MELODYBOT_TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("MELODYBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MELODYBOT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.PageSize = n
		}
	}
	if v := os.Getenv("MELODYBOT_PER_USER_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Downloads.PerUserLimit = n
		}
	}
}
