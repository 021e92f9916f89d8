package config

import (
	"fmt"
	"net/url"
	"os"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Ledger.Directory == "" {
		return fmt.Errorf("ledger.directory must be set")
	}
	info, err := os.Stat(cfg.Ledger.Directory)
	if err != nil {
		return fmt.Errorf("the directory %q does not exist", cfg.Ledger.Directory)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", cfg.Ledger.Directory)
	}
	if cfg.Ledger.Filename == "" {
		return fmt.Errorf("ledger.filename must be set")
	}
	if cfg.Ledger.LockRetry <= 0 {
		return fmt.Errorf("ledger.lock_retry must be > 0")
	}

	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}

	if len(cfg.Seeds.URLs) == 0 {
		if cfg.Seeds.Host == "" {
			return fmt.Errorf("seeds.host must be set")
		}
		if cfg.Seeds.Port < 1 || cfg.Seeds.Port > 65535 {
			return fmt.Errorf("seeds.port must be 1-65535, got %d", cfg.Seeds.Port)
		}
		if cfg.Seeds.Database == "" || cfg.Seeds.Collection == "" {
			return fmt.Errorf("seeds.database and seeds.collection must be set")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a seed URL string is usable for crawling.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
