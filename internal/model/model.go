// Package model defines the domain types used across the application.
package model

// FeedKind defines how a feed's candidates are fetched and parsed.
type FeedKind string

// Supported feed kinds.
const (
	FeedReddit FeedKind = "reddit"
	FeedRSS    FeedKind = "rss"
)

// Feed represents one configured content source.
type Feed struct {
	Name string
	Kind FeedKind
	URL  string // only used by RSS feeds; Reddit URLs are derived from Name
}

// Candidate is one fetched post before selection.
type Candidate struct {
	Title    string
	MediaURL string
	PostID   string
	IsVideo  bool
}

// Entry is the per-position parse result of a raw feed item. A non-nil
// Err marks the position as unusable; it still occupies a slot in the
// fetched ordering and counts toward the selection scan budget.
type Entry struct {
	Candidate Candidate
	Err       error
}

// SelectedPost is a Candidate annotated with its originating feed.
type SelectedPost struct {
	Candidate
	FeedID string
}
