package source

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the source list and drops invalid entries with a warning. The
// format is picked from the file extension; .json is decoded with the YAML
// decoder since YAML is a superset of JSON. Only an unreadable or malformed
// file is an error.
func (l *Loader) Load() ([]Source, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source list: %w", err)
	}

	var doc list
	switch ext := strings.ToLower(filepath.Ext(l.path)); ext {
	case ".json", ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse source list %s: %w", l.path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse source list %s: %w", l.path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported source list format %q", ext)
	}

	sources := lo.Map(doc.Data, func(s Source, _ int) Source {
		s.Name = strings.TrimSpace(s.Name)
		s.FeedURL = strings.TrimSpace(s.FeedURL)
		return s
	})

	sources = validate(sources)

	slog.Debug("Source list loaded", "path", l.path, "sources", len(sources), "with_feed", len(WithFeed(sources)))

	return sources, nil
}

// WithFeed returns the sources that have a feed URL, preserving order.
func WithFeed(sources []Source) []Source {
	return lo.Filter(sources, func(s Source, _ int) bool {
		return s.FeedURL != ""
	})
}

// validate drops entries that cannot be ingested and keeps the rest. For
// duplicate ids or names the first entry wins.
func validate(sources []Source) []Source {
	ids := make(map[int64]bool, len(sources))
	names := make(map[string]bool, len(sources))
	valid := make([]Source, 0, len(sources))

	for i, s := range sources {
		if err := checkSource(s, ids, names); err != nil {
			slog.Warn("Skipping invalid source", "index", i, "id", s.ID, "name", s.Name, "error", err)
			continue
		}
		ids[s.ID] = true
		names[s.Name] = true
		valid = append(valid, s)
	}

	return valid
}

func checkSource(s Source, ids map[int64]bool, names map[string]bool) error {
	if s.ID <= 0 {
		return errors.New("id must be positive")
	}
	if s.Name == "" {
		return errors.New("name is required")
	}
	if ids[s.ID] {
		return fmt.Errorf("duplicate id %d", s.ID)
	}
	if names[s.Name] {
		return fmt.Errorf("duplicate name %q", s.Name)
	}

	if s.FeedURL == "" {
		return nil
	}
	u, err := url.Parse(s.FeedURL)
	if err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("feed URL must be an absolute http(s) URL")
	}

	return nil
}
