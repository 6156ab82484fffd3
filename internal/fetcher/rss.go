package fetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"picbot/internal/model"
)

func (f *Fetcher) fetchRSS(ctx context.Context, feed model.Feed) ([]model.Entry, error) {
	body, err := f.get(ctx, feed.URL)
	if err != nil {
		return nil, fmt.Errorf("feed %q: %w", feed.Name, err)
	}

	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("feed %q: parse feed: %w", feed.Name, err)
	}

	entries := make([]model.Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, parseRSSItem(item))
	}
	f.logSkips(feed.Name, entries)
	return entries, nil
}

// parseRSSItem converts one feed item into an entry. The media reference is
// the first enclosure, falling back to the item image; items without either
// carry nothing we can forward.
func parseRSSItem(item *gofeed.Item) model.Entry {
	mediaURL, isVideo := itemMedia(item)
	if mediaURL == "" {
		return model.Entry{Err: errNoMedia}
	}

	postID := item.GUID
	if postID == "" {
		postID = item.Link
	}
	if item.Title == "" || postID == "" {
		return model.Entry{Err: errIncomplete}
	}

	return model.Entry{Candidate: model.Candidate{
		Title:    item.Title,
		MediaURL: mediaURL,
		PostID:   postID,
		IsVideo:  isVideo,
	}}
}

func itemMedia(item *gofeed.Item) (url string, isVideo bool) {
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		return enc.URL, strings.HasPrefix(enc.Type, "video/")
	}
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL, false
	}
	return "", false
}
