// Package dispatch composes the outbound Telegram message for a selection
// outcome. It decides text and media tagging only; the destination chat is
// resolved by the caller.
package dispatch

import "picbot/internal/model"

// FallbackText is sent when a selection cycle found no adequate post.
const FallbackText = "Did not find an adequate post. Tired of searching..."

// Message is one outbound message. An empty MediaURL means plain text.
type Message struct {
	Text     string
	MediaURL string
	IsVideo  bool
}

// Build composes the message for a selection outcome: the post's media with
// a "feed: title" caption when found, the fixed fallback notice otherwise.
func Build(selected model.SelectedPost, found bool) Message {
	if !found {
		return Message{Text: FallbackText}
	}
	return Message{
		Text:     selected.FeedID + ": " + selected.Title,
		MediaURL: selected.MediaURL,
		IsVideo:  selected.IsVideo,
	}
}
