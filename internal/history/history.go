// Package history implements the bounded per-feed record of already
// delivered post identifiers. All operations are pure: they never mutate
// their snapshot argument, so a selection can be re-run against the same
// snapshot any number of times.
package history

// Snapshot maps a feed name to the identifiers of posts already delivered
// from it, ordered oldest to newest. Each feed's sequence is capped by the
// limit passed to Record.
type Snapshot map[string][]string

// Contains reports whether postID was already delivered for feed.
// A feed absent from the snapshot contains nothing.
func Contains(snap Snapshot, feed, postID string) bool {
	for _, id := range snap[feed] {
		if id == postID {
			return true
		}
	}
	return false
}

// Record returns a copy of snap with postID appended to feed's sequence,
// trimmed to keep only the last limit entries in order. snap itself is
// left untouched.
func Record(snap Snapshot, feed, postID string, limit int) Snapshot {
	out := Clone(snap)
	ids := append(out[feed], postID)
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}
	out[feed] = ids
	return out
}

// Clone returns a deep copy of snap.
func Clone(snap Snapshot) Snapshot {
	out := make(Snapshot, len(snap))
	for feed, ids := range snap {
		cp := make([]string, len(ids))
		copy(cp, ids)
		out[feed] = cp
	}
	return out
}
