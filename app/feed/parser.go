package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses raw feed bytes. It returns *ParseError for malformed input and
// ErrMissingBuildTimestamp when the channel has no build timestamp.
func (p *Parser) Run(data []byte) (*Document, error) {
	data = bytes.TrimLeftFunc(data, unicode.IsSpace)
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.TrimLeftFunc(data, unicode.IsSpace)

	if len(data) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("empty document")}
	}

	if err := checkWellFormed(data); err != nil {
		return nil, &ParseError{Err: err}
	}

	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	rawBuild := strings.TrimSpace(parsed.Updated)
	if rawBuild == "" {
		return nil, ErrMissingBuildTimestamp
	}

	buildTimestamp, ok := normalizeTimestamp(rawBuild, parsed.UpdatedParsed)
	if !ok {
		return nil, &ParseError{Err: fmt.Errorf("invalid build timestamp %q", rawBuild)}
	}

	doc := &Document{
		Title:          cleanText(parsed.Title),
		BuildTimestamp: buildTimestamp,
		Items:          make([]Item, 0, len(parsed.Items)),
	}

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		doc.Items = append(doc.Items, p.normalizeItem(item))
	}

	return doc, nil
}

// checkWellFormed walks every token with a strict decoder. gofeed recovers
// from unbalanced tags, so structure is checked here first.
func checkWellFormed(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = true
	decoder.CharsetReader = charset.NewReaderLabel

	for {
		_, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("malformed document: %w", err)
		}
	}
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		Title:       cleanText(item.Title),
		Description: cleanText(item.Description),
		Link:        cleanText(item.Link),
	}

	rawPubDate := strings.TrimSpace(item.Published)
	if pubDate, ok := normalizeTimestamp(rawPubDate, item.PublishedParsed); ok {
		normalized.PubDate = pubDate
	} else if rawPubDate != "" {
		slog.Debug("Unparseable item pubDate, treating as absent", "pub_date", rawPubDate, "link", normalized.Link)
	}

	return normalized
}

func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
