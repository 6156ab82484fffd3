package bot

import (
	"context"
	"fmt"
	"strings"
)

// commandTag identifies one of the statically known commands.
type commandTag int

const (
	cmdMakeMeHappy commandTag = iota
	cmdForget
)

// lookupCommand matches a command name case-insensitively against the
// static command table.
func lookupCommand(name string) (commandTag, bool) {
	switch strings.ToLower(name) {
	case "makemehappy":
		return cmdMakeMeHappy, true
	case "forget":
		return cmdForget, true
	}
	return 0, false
}

func (t commandTag) requiresAdmin() bool {
	return t == cmdForget
}

func (t commandTag) String() string {
	switch t {
	case cmdMakeMeHappy:
		return "makemehappy"
	case cmdForget:
		return "forget"
	}
	return "unknown"
}

// runCommand invokes the handler bound to the command tag with the optional
// parameter and the test-mode flag.
func (b *Bot) runCommand(ctx context.Context, tag commandTag, param string, test bool) {
	switch tag {
	case cmdMakeMeHappy:
		b.SendPost(ctx, param, test)
	case cmdForget:
		b.forgetHistory(ctx, param, test)
	}
}

// forgetHistory clears the delivered-post history of one feed, or of all
// feeds when no feed is named, so posts become eligible for delivery again.
func (b *Bot) forgetHistory(ctx context.Context, feedName string, test bool) {
	chatID := b.cfg.ChatID(test)

	if feedName != "" {
		if _, ok := b.cfg.FeedByName(feedName); !ok {
			b.reply(chatID, fmt.Sprintf("Unknown feed %q.", feedName))
			return
		}
	}

	if err := b.store.ClearHistory(ctx, feedName); err != nil {
		b.log.Error("clear history", "feed", feedName, "error", err)
		b.reply(chatID, "Could not clear history.")
		return
	}

	if feedName == "" {
		b.reply(chatID, "Cleared history for all feeds.")
	} else {
		b.reply(chatID, fmt.Sprintf("Cleared history for %s.", feedName))
	}
}
