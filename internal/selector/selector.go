// Package selector implements the deduplication-and-selection engine: given
// candidate entries in feed order and the history of already delivered
// posts, it picks the first entry that is usable, passes the feed's title
// filter, and was not delivered before, scanning at most maxScan positions.
package selector

import (
	"regexp"

	"picbot/internal/history"
	"picbot/internal/model"
)

// Select returns the earliest qualifying candidate within the scan budget.
// The boolean result is false when no candidate qualifies, which is a
// normal outcome, not an error.
//
// Entries are scanned in their given order (position 0 is the newest). A
// position is skipped when its entry is unusable (Entry.Err), when rules
// holds a pattern for feedID that does not match the title from its start,
// or when the post was already delivered per snap. Select never mutates
// snap and is safe to call repeatedly with the same arguments.
func Select(entries []model.Entry, feedID string, rules map[string]*regexp.Regexp, snap history.Snapshot, maxScan int) (model.SelectedPost, bool) {
	n := min(len(entries), maxScan)
	rule := rules[feedID]

	for i := 0; i < n; i++ {
		if entries[i].Err != nil {
			continue
		}
		c := entries[i].Candidate
		if rule != nil && !rule.MatchString(c.Title) {
			continue
		}
		if history.Contains(snap, feedID, c.PostID) {
			continue
		}
		return model.SelectedPost{Candidate: c, FeedID: feedID}, true
	}
	return model.SelectedPost{}, false
}
