package database

import (
	"github.com/lysyi3m/rss-ledger/app/feed"
)

const (
	TableHistorical    = "historical"
	TableCurrent       = "current"
	TableLastProcessed = "last_processed"

	// "current" is an SQL keyword and must be quoted in statements.
	tableCurrent = `"current"`
)

var Tables = []string{TableHistorical, TableCurrent, TableLastProcessed}

// Record is a persisted item in either the historical or the current table.
type Record struct {
	ID          int64
	Name        string
	PubDate     string
	Title       string
	Description string
	Link        string
}

// Batch is the unit of work committed for one source in one transaction.
// BootstrapWatermark is set only when the source has no watermark yet.
type Batch struct {
	SourceID           int64
	SourceName         string
	BootstrapWatermark string
	Watermark          string
	Items              []feed.Item
}

type Stats struct {
	Historical int64
	Current    int64
	Sources    int64
}

type Column struct {
	CID        int
	Name       string
	Type       string
	NotNull    bool
	Default    *string
	PrimaryKey bool
}
