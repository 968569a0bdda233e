package source

// Source is one configured feed origin. FeedURL may be empty, in which case
// the source is listed but never ingested.
type Source struct {
	ID      int64  `yaml:"id" toml:"id"`
	Name    string `yaml:"name" toml:"name"`
	FeedURL string `yaml:"feed" toml:"feed"`
}

// list mirrors the sites document: {"data": [{"id": 1, "name": "...", "feed": "..."}]}
type list struct {
	Data []Source `yaml:"data" toml:"data"`
}
