package api

import (
	"context"

	"github.com/lysyi3m/rss-ledger/app/blob"
	"github.com/lysyi3m/rss-ledger/app/database"
	"github.com/lysyi3m/rss-ledger/app/feed"
	"github.com/lysyi3m/rss-ledger/app/tasks"
)

const isoTimestampLayout = "2006-01-02T15:04:05"

type HealthReporter interface {
	Health() map[string]any
}

type CacheHealthReporter interface {
	Health(ctx context.Context) map[string]any
}

var (
	_ HealthReporter      = (*tasks.Scheduler)(nil)
	_ CacheHealthReporter = (*blob.RedisStore)(nil)
)

type Handler struct {
	store     database.ReadStore
	scheduler HealthReporter
	cache     CacheHealthReporter
	version   string
}

type NewsItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PubDate     string `json:"pubDate"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

func newNewsItem(r database.Record) NewsItem {
	return NewsItem{
		ID:          r.ID,
		Name:        r.Name,
		PubDate:     isoTimestamp(r.PubDate),
		Title:       r.Title,
		Description: r.Description,
		Link:        r.Link,
	}
}

// isoTimestamp renders a stored timestamp in ISO 8601 form. Empty and
// malformed values pass through untouched.
func isoTimestamp(ts string) string {
	t, err := feed.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.Format(isoTimestampLayout)
}
