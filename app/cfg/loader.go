package cfg

import (
	"errors"
	"fmt"
	"time"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Options are the global flags shared by every command.
type Options struct {
	DBPath      string        `long:"db-path" env:"DB_PATH" default:"./data/rss-ledger.db" description:"SQLite database file"`
	SourcesFile string        `long:"sources" env:"SOURCES_FILE" default:"./sites.json" description:"Source list (.json, .yaml, .yml or .toml)"`
	CacheDir    string        `long:"cache-dir" env:"CACHE_DIR" default:"./rss-feeds" description:"Directory for captured raw feeds"`
	RedisAddr   string        `long:"redis-addr" env:"REDIS_ADDR" description:"Capture raw feeds in Redis instead of the cache directory"`
	RedisTTL    time.Duration `long:"redis-ttl" env:"REDIS_TTL" default:"0" description:"Expiry for raw feeds captured in Redis (0 keeps them)"`

	RetentionWindow time.Duration `long:"retention-window" env:"RETENTION_WINDOW" default:"6h" description:"How long items stay in the current table"`
	WorkerCount     int           `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of sources processed concurrently"`
	FetchTimeout    time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30s" description:"Timeout for a single feed download"`
	MaxFeedBytes    int64         `long:"max-feed-bytes" env:"MAX_FEED_BYTES" default:"10485760" description:"Largest feed body accepted"`
	UserAgent       string        `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36" description:"User agent string for HTTP requests"`

	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	LogFormat string `long:"log-format" env:"LOG_FORMAT" default:"text" choice:"text" choice:"json" description:"Log output format"`
}

// Resolve validates the parsed options.
func (o *Options) Resolve() (*Cfg, error) {
	var errs []error

	if o.DBPath == "" {
		errs = append(errs, errors.New("db-path must not be empty"))
	}
	if o.SourcesFile == "" {
		errs = append(errs, errors.New("sources must not be empty"))
	}
	if o.RedisAddr == "" && o.CacheDir == "" {
		errs = append(errs, errors.New("either cache-dir or redis-addr must be set"))
	}
	if o.RedisTTL < 0 {
		errs = append(errs, fmt.Errorf("redis-ttl must not be negative, got %s", o.RedisTTL))
	}
	if o.RetentionWindow <= 0 {
		errs = append(errs, fmt.Errorf("retention-window must be positive, got %s", o.RetentionWindow))
	}
	if o.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("worker-count must be at least 1, got %d", o.WorkerCount))
	}
	if o.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch-timeout must be positive, got %s", o.FetchTimeout))
	}
	if o.MaxFeedBytes < 1 {
		errs = append(errs, fmt.Errorf("max-feed-bytes must be at least 1, got %d", o.MaxFeedBytes))
	}
	if o.LogFormat != LogFormatText && o.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Errorf("log-format must be %q or %q, got %q", LogFormatText, LogFormatJSON, o.LogFormat))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Cfg{
		DBPath:          o.DBPath,
		SourcesFile:     o.SourcesFile,
		CacheDir:        o.CacheDir,
		RedisAddr:       o.RedisAddr,
		RedisTTL:        o.RedisTTL,
		RetentionWindow: o.RetentionWindow,
		WorkerCount:     o.WorkerCount,
		FetchTimeout:    o.FetchTimeout,
		MaxFeedBytes:    o.MaxFeedBytes,
		UserAgent:       o.UserAgent,
		Debug:           o.Debug,
		LogFormat:       o.LogFormat,
		Version:         GetVersion(),
	}, nil
}
