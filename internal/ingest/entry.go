package ingest

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const dateLayout = "2006-01-02"

// SelectEnclosure picks the audio attachment URL for a feed entry. Enclosures
// whose declared type contains "audio" or "mpeg", or that declare no type at
// all, are preferred; failing that the first enclosure with a URL is used.
// Returns "" when the entry has no usable enclosure.
func SelectEnclosure(item *gofeed.Item) string {
	var fallback string
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		typ := strings.ToLower(enc.Type)
		if typ == "" || strings.Contains(typ, "audio") || strings.Contains(typ, "mpeg") {
			return enc.URL
		}
		if fallback == "" {
			fallback = enc.URL
		}
	}
	return fallback
}

// EntryTime returns the entry's publish time, falling back to its update
// time. ok is false when the entry carries neither.
func EntryTime(item *gofeed.Item) (t time.Time, ok bool) {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed, true
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed, true
	}
	return time.Time{}, false
}

// EntryPubDate returns the entry's publish date as an ISO date string,
// defaulting to now when the entry carries no parseable date.
func EntryPubDate(item *gofeed.Item, now time.Time) string {
	if t, ok := EntryTime(item); ok {
		return t.UTC().Format(dateLayout)
	}
	return now.UTC().Format(dateLayout)
}

// EntryTitle returns the entry's title with a placeholder for untitled
// entries.
func EntryTitle(item *gofeed.Item) string {
	if item.Title != "" {
		return item.Title
	}
	return "Untitled Episode"
}
