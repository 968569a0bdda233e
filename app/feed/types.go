package feed

// Document is a parsed feed: the channel build timestamp plus its items in
// document order.
type Document struct {
	Title          string
	BuildTimestamp string // canonical form, see TimestampLayout
	Items          []Item
}

type Item struct {
	PubDate     string // canonical form or "" when absent/unparseable
	Title       string
	Description string
	Link        string
}
