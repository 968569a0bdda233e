package cfg

import (
	"time"
)

type Cfg struct {
	// Storage
	DBPath      string
	SourcesFile string
	CacheDir    string
	RedisAddr   string
	RedisTTL    time.Duration

	// Ingestion
	RetentionWindow time.Duration
	WorkerCount     int
	FetchTimeout    time.Duration
	MaxFeedBytes    int64
	UserAgent       string

	// Application metadata
	Debug     bool
	LogFormat string
	Version   string
}
