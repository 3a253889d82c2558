package feed

import (
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/modelwatch-hq/release-scout/internal/domain"
)

// Parse decodes a syndication feed body (RSS or Atom) into entries, in
// document order. Items without a title are dropped. Parsing is best-effort:
// malformed input yields an empty slice, never an error.
func Parse(body string) []domain.FeedEntry {
	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil || parsed == nil {
		return nil
	}

	entries := make([]domain.FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		entries = append(entries, domain.FeedEntry{
			Title:       title,
			Link:        strings.TrimSpace(item.Link),
			PublishedAt: item.PublishedParsed,
			Description: strings.TrimSpace(item.Description),
		})
	}
	return entries
}
