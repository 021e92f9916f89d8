package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for storyspider.
type Config struct {
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Seeds   SeedsConfig   `mapstructure:"seeds"   yaml:"seeds"`
	Ledger  LedgerConfig  `mapstructure:"ledger"  yaml:"ledger"`
	Filters []string      `mapstructure:"filters" yaml:"filters"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// FetcherConfig controls page fetching.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	Stealth         bool          `mapstructure:"stealth"           yaml:"stealth"` // browser fetcher only
}

// SeedsConfig points at the MongoDB collection holding seed URLs.
type SeedsConfig struct {
	Host           string        `mapstructure:"host"            yaml:"host"`
	Port           int           `mapstructure:"port"            yaml:"port"`
	Database       string        `mapstructure:"database"        yaml:"database"`
	Collection     string        `mapstructure:"collection"      yaml:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	URLs           []string      `mapstructure:"urls"            yaml:"urls"`
}

// LedgerConfig controls where records are appended.
type LedgerConfig struct {
	Directory string        `mapstructure:"directory"  yaml:"directory"`
	Filename  string        `mapstructure:"filename"   yaml:"filename"`
	LockRetry time.Duration `mapstructure:"lock_retry" yaml:"lock_retry"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			Type:           "http",
			RequestTimeout: 30 * time.Second,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
		},
		Seeds: SeedsConfig{
			Host:           "localhost",
			Port:           27017,
			Database:       "social",
			Collection:     "urllist",
			ConnectTimeout: 10 * time.Second,
		},
		Ledger: LedgerConfig{
			LockRetry: time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
