package ingest

import (
	"time"
)

const DefaultRetentionWindow = 6 * time.Hour

type Config struct {
	RetentionWindow time.Duration
}

func (c Config) window() time.Duration {
	if c.RetentionWindow <= 0 {
		return DefaultRetentionWindow
	}
	return c.RetentionWindow
}

type Option func(*clock)

type clock struct {
	now func() time.Time
}

// WithClock replaces the wall clock used for fetch-start times and cutoffs.
func WithClock(now func() time.Time) Option {
	return func(c *clock) {
		c.now = now
	}
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
