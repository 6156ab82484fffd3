package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"picbot/internal/model"
)

// Parse errors marking a listing position as unusable.
var (
	errNoMedia    = errors.New("no parsable media")
	errIncomplete = errors.New("missing title or id")
)

// redditListing mirrors the subset of the Reddit listing JSON we consume.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title   string         `json:"title"`
	ID      string         `json:"id"`
	URL     string         `json:"url"`
	Preview *redditPreview `json:"preview"`
}

type redditPreview struct {
	RedditVideoPreview *redditVideoPreview `json:"reddit_video_preview"`
}

type redditVideoPreview struct {
	FallbackURL string `json:"fallback_url"`
}

func redditURL(feed model.Feed) string {
	return fmt.Sprintf("https://www.reddit.com/r/%s/new.json?sort=new", feed.Name)
}

func (f *Fetcher) fetchReddit(ctx context.Context, feed model.Feed) ([]model.Entry, error) {
	body, err := f.get(ctx, redditURL(feed))
	if err != nil {
		return nil, fmt.Errorf("feed %q: %w", feed.Name, err)
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("feed %q: parse listing: %w", feed.Name, err)
	}

	entries := make([]model.Entry, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		entries = append(entries, parseRedditPost(child.Data))
	}
	f.logSkips(feed.Name, entries)
	return entries, nil
}

// parseRedditPost converts one listing child into an entry. Posts without a
// preview block carry no media we can forward; video posts use the video
// preview's fallback URL, everything else the post URL.
func parseRedditPost(p redditPost) model.Entry {
	if p.Preview == nil {
		return model.Entry{Err: errNoMedia}
	}

	isVideo := p.Preview.RedditVideoPreview != nil
	mediaURL := p.URL
	if isVideo {
		mediaURL = p.Preview.RedditVideoPreview.FallbackURL
	}

	if p.Title == "" || p.ID == "" || mediaURL == "" {
		return model.Entry{Err: errIncomplete}
	}

	return model.Entry{Candidate: model.Candidate{
		Title:    p.Title,
		MediaURL: mediaURL,
		PostID:   p.ID,
		IsVideo:  isVideo,
	}}
}
