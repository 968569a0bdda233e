package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lysyi3m/rss-ledger/app/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workspace struct {
	dir     string
	dbPath  string
	sources string
	cache   string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()

	dir := t.TempDir()
	return &workspace{
		dir:     dir,
		dbPath:  filepath.Join(dir, "data", "ledger.db"),
		sources: filepath.Join(dir, "sites.json"),
		cache:   filepath.Join(dir, "rss-feeds"),
	}
}

func (w *workspace) run(t *testing.T, args ...string) (int, string) {
	t.Helper()

	global := []string{"--db-path", w.dbPath, "--sources", w.sources, "--cache-dir", w.cache}
	var stdout, stderr bytes.Buffer
	code := run(append(global, args...), &stdout, &stderr)
	return code, stdout.String()
}

func (w *workspace) writeSources(t *testing.T, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(w.sources, []byte(body), 0o644))
}

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()

	now := time.Now().UTC()
	body := fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>Courier</title>
<lastBuildDate>%s</lastBuildDate>
<item><title>First</title><link>https://courier.example.com/1</link><pubDate>%s</pubDate></item>
<item><title>Second</title><link>https://courier.example.com/2</link><pubDate>%s</pubDate></item>
</channel></rss>`,
		now.Add(-time.Minute).Format(feed.SourceTimestampLayout),
		now.Add(-time.Hour).Format(feed.SourceTimestampLayout),
		now.Add(-2*time.Hour).Format(feed.SourceTimestampLayout))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rss":
			w.Header().Set("Content-Type", "application/rss+xml")
			w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestIngestCommand(t *testing.T) {
	ws := newWorkspace(t)
	server := feedServer(t)
	ws.writeSources(t, fmt.Sprintf(`{"data": [
		{"id": 1, "name": "Courier", "feed": %q},
		{"id": 2, "name": "Gone", "feed": %q},
		{"id": 3, "name": "Print only", "feed": null},
		{"id": 4, "name": "Courier", "feed": "ftp://courier.example.com/rss"}
	]}`, server.URL+"/rss", server.URL+"/missing"))

	code, _ := ws.run(t, "ingest")
	require.Equal(t, 0, code, "per-source failures do not fail the run")

	code, out := ws.run(t, "db", "count", "historical")
	require.Equal(t, 0, code)
	assert.Equal(t, "Total number of rows in the table 'historical': 2\n", out)

	code, out = ws.run(t, "db", "count", "last_processed")
	require.Equal(t, 0, code)
	assert.Contains(t, out, ": 1\n", "only the source that succeeded gets a watermark")

	assert.FileExists(t, filepath.Join(ws.cache, "1.xml"))

	// Replaying the captured feed finds nothing new.
	code, _ = ws.run(t, "ingest", "--replay")
	require.Equal(t, 0, code)

	code, out = ws.run(t, "db", "count", "current")
	require.Equal(t, 0, code)
	assert.Equal(t, "Total number of rows in the table 'current': 2\n", out)
}

func TestIngestCommandFailsOnBadSourceList(t *testing.T) {
	ws := newWorkspace(t)
	ws.writeSources(t, `{"data": [{"id": 1, "name": "Courier", "feed": `)

	code, _ := ws.run(t, "ingest")
	assert.Equal(t, 1, code)
}

func TestIngestCommandFailsOnMissingSourceList(t *testing.T) {
	ws := newWorkspace(t)

	code, _ := ws.run(t, "ingest")
	assert.Equal(t, 1, code)
}

func TestInvalidConfiguration(t *testing.T) {
	ws := newWorkspace(t)
	ws.writeSources(t, `{"data": []}`)

	code, _ := ws.run(t, "--worker-count", "0", "ingest")
	assert.Equal(t, 1, code)

	code, _ = ws.run(t, "--retention-window", "-1h", "ingest")
	assert.Equal(t, 1, code)
}

func TestDBCommands(t *testing.T) {
	ws := newWorkspace(t)
	server := feedServer(t)
	ws.writeSources(t, fmt.Sprintf(`{"data": [{"id": 1, "name": "Courier", "feed": %q}]}`, server.URL+"/rss"))

	code, _ := ws.run(t, "ingest")
	require.Equal(t, 0, code)

	t.Run("rows", func(t *testing.T) {
		code, out := ws.run(t, "db", "rows", "current", "1")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "pubDate")
		assert.Contains(t, out, "First")
		assert.NotContains(t, out, "Second")
	})

	t.Run("all rows", func(t *testing.T) {
		code, out := ws.run(t, "db", "rows", "historical")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "First")
		assert.Contains(t, out, "Second")
	})

	t.Run("schema", func(t *testing.T) {
		code, out := ws.run(t, "db", "schema", "last_processed")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "Column: id, Type: INTEGER, Not Null: false, Default: NULL, Primary Key: true")
		assert.Contains(t, out, "Column: last_processed, Type: TEXT, Not Null: true")
	})

	t.Run("clean", func(t *testing.T) {
		code, out := ws.run(t, "db", "clean", "current")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "All rows in table 'current' have been removed")

		_, out = ws.run(t, "db", "count", "current")
		assert.Contains(t, out, ": 0\n")
		_, out = ws.run(t, "db", "count", "historical")
		assert.Contains(t, out, ": 2\n")
	})

	t.Run("unknown table", func(t *testing.T) {
		code, _ := ws.run(t, "db", "count", "sqlite_master")
		assert.Equal(t, 1, code)
	})

	t.Run("missing table", func(t *testing.T) {
		code, _ := ws.run(t, "db", "count")
		assert.Equal(t, 1, code)
	})
}

func TestVersionCommand(t *testing.T) {
	ws := newWorkspace(t)

	code, out := ws.run(t, "version")
	require.Equal(t, 0, code)
	assert.NotEmpty(t, out)
}

func TestHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"--help"}, &stdout, &stderr))
}
