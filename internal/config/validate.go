package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Telegram.Token == "" {
		issues = append(issues, ValidationIssue{
			Path:    "telegram.token",
			Message: "bot token is required",
		})
	}

	if cfg.Providers.YouTube == nil && cfg.Providers.Spotify == nil && cfg.Providers.Converter == nil {
		issues = append(issues, ValidationIssue{
			Path:    "providers",
			Message: "at least one provider must be configured",
		})
	}

	if cfg.Providers.YouTube != nil && cfg.Providers.YouTube.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "providers.youtube.apiKey",
			Message: "API key is required when the youtube provider is enabled",
		})
	}

	if cfg.Providers.Spotify != nil {
		if cfg.Providers.Spotify.ClientID == "" {
			issues = append(issues, ValidationIssue{
				Path:    "providers.spotify.clientId",
				Message: "client ID is required when the spotify provider is enabled",
			})
		}
		if cfg.Providers.Spotify.ClientSecret == "" {
			issues = append(issues, ValidationIssue{
				Path:    "providers.spotify.clientSecret",
				Message: "client secret is required when the spotify provider is enabled",
			})
		}
	}

	if cfg.Providers.Converter != nil && cfg.Providers.Converter.BaseURL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "providers.converter.baseUrl",
			Message: "base URL is required when the converter provider is enabled",
		})
	}

	if cfg.Downloads.PerUserLimit < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "downloads.perUserLimit",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Downloads.PerUserLimit),
		})
	}

	if cfg.Search.PageSize < 1 || cfg.Search.PageSize > 50 {
		issues = append(issues, ValidationIssue{
			Path:    "search.pageSize",
			Message: fmt.Sprintf("must be 1-50, got %d", cfg.Search.PageSize),
		})
	}

	if cfg.History.Retention < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "history.retention",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.History.Retention),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
