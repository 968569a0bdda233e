package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/rss-ledger/app/database"
	"github.com/lysyi3m/rss-ledger/app/feed"
	"github.com/lysyi3m/rss-ledger/app/fetcher"
	"github.com/lysyi3m/rss-ledger/app/source"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu    sync.Mutex
	feeds map[int64][]byte
	errs  map[int64]error
	calls int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		feeds: make(map[int64][]byte),
		errs:  make(map[int64]error),
	}
}

func (f *fakeFetcher) set(id int64, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feeds[id] = []byte(body)
	delete(f.errs, id)
}

func (f *fakeFetcher) fail(id int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[id] = err
}

func (f *fakeFetcher) Fetch(_ context.Context, src source.Source) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[src.ID]; ok {
		return nil, err
	}
	data, ok := f.feeds[src.ID]
	if !ok {
		return nil, &fetcher.NetworkError{URL: src.FeedURL, StatusCode: 404}
	}
	return data, nil
}

type testItem struct {
	title   string
	pubDate time.Time
}

func rssFeed(build time.Time, items ...testItem) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Courier</title>`)
	fmt.Fprintf(&b, "<lastBuildDate>%s</lastBuildDate>", build.Format(feed.SourceTimestampLayout))
	for _, item := range items {
		b.WriteString("<item>")
		fmt.Fprintf(&b, "<title>%s</title>", item.title)
		fmt.Fprintf(&b, "<link>https://example.com/%s</link>", item.title)
		fmt.Fprintf(&b, "<description>About %s</description>", item.title)
		if !item.pubDate.IsZero() {
			fmt.Fprintf(&b, "<pubDate>%s</pubDate>", item.pubDate.Format(feed.SourceTimestampLayout))
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestStore(t *testing.T) *database.Store {
	t.Helper()

	db, _, err := database.OpenAndMigrate(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return database.NewStore(db)
}

func titles(records []database.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Title)
	}
	return out
}
