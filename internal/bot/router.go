package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Chat member statuses counting as admin.
const (
	statusCreator       = "creator"
	statusAdministrator = "administrator"
)

// ProcessCommands polls Telegram for inbound updates since the stored cursor
// and dispatches prefix-activated commands from the configured chat.
//
// The poll only acts when more than one update is pending: the first update
// is discarded as the echo of the stored cursor, and the newest update's ID
// becomes the new cursor. A single pending update is therefore dropped and
// retried against the next poll.
func (b *Bot) ProcessCommands(ctx context.Context, test bool) {
	cursor, ok, err := b.store.LoadCursor(ctx)
	if err != nil {
		b.log.Error("load cursor", "error", err)
		return
	}

	ucfg := tgbotapi.NewUpdate(0)
	if ok {
		b.log.Debug("polling updates", "cursor", cursor)
		ucfg.Offset = int(cursor)
	} else {
		b.log.Debug("no cursor stored, retrieving all updates")
	}

	updates, err := b.api.GetUpdates(ucfg)
	if err != nil {
		b.log.Error("get updates", "error", err)
		return
	}

	if len(updates) <= 1 {
		b.log.Debug("no new messages in chat")
		return
	}
	updates = updates[1:]

	newCursor := int64(updates[len(updates)-1].UpdateID)
	if err := b.store.SaveCursor(ctx, newCursor); err != nil {
		b.log.Error("save cursor", "cursor", newCursor, "error", err)
	}

	chatID := b.cfg.ChatID(test)
	for _, u := range updates {
		b.handleUpdate(ctx, u, chatID, test)
	}
}

func (b *Bot) handleUpdate(ctx context.Context, u tgbotapi.Update, chatID int64, test bool) {
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		return
	}
	if msg.Chat.ID != chatID {
		return
	}
	if !strings.HasPrefix(msg.Text, b.cfg.ActivationPrefix) {
		return
	}

	name, param, ok := splitCommand(msg.Text)
	if !ok {
		b.log.Debug("malformed command", "text", msg.Text)
		return
	}

	tag, ok := lookupCommand(name)
	if !ok {
		b.log.Info("unrecognized command", "command", name)
		return
	}

	if tag.requiresAdmin() && !b.isAdmin(msg.Chat.ID, msg.From) {
		b.log.Info("command denied, sender is not an admin",
			"command", name, "user_id", userID(msg.From))
		return
	}

	b.log.Info("received valid command", "command", name, "param", param)
	b.runCommand(ctx, tag, param, test)
}

// splitCommand splits "<prefix> <name> [param]" into its name and optional
// parameter. The prefix token itself was already checked by the caller.
func splitCommand(text string) (name, param string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", "", false
	}
	name = fields[1]
	if len(fields) > 2 {
		param = fields[2]
	}
	return name, param, true
}

func (b *Bot) isAdmin(chatID int64, from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: from.ID,
		},
	})
	if err != nil {
		b.log.Error("check admin status", "chat_id", chatID, "user_id", from.ID, "error", err)
		return false
	}
	return member.Status == statusCreator || member.Status == statusAdministrator
}

func userID(from *tgbotapi.User) int64 {
	if from == nil {
		return 0
	}
	return from.ID
}
