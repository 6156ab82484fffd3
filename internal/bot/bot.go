// Package bot wires the Telegram client to the selection pipeline and the
// inbound command router.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"picbot/internal/config"
	"picbot/internal/dispatch"
	"picbot/internal/fetcher"
	"picbot/internal/history"
	"picbot/internal/model"
	"picbot/internal/selector"
	"picbot/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Bot runs the select-and-dispatch pipeline and processes inbound commands.
type Bot struct {
	api     telegramAPI
	store   storage.Storage
	cfg     *config.Config
	fetcher *fetcher.Fetcher
	log     *slog.Logger
}

// New creates a Bot with the given Telegram token, storage, and config.
func New(token string, store storage.Storage, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:     api,
		store:   store,
		cfg:     cfg,
		fetcher: fetcher.New(http.DefaultClient, log),
		log:     log,
	}, nil
}

// SendPost runs one selection cycle for the named feed (a random configured
// feed when empty) and delivers the outcome to the production or test chat.
// The delivered post is recorded in history only after a successful send, so
// a failed delivery is retried with the same candidate next cycle.
func (b *Bot) SendPost(ctx context.Context, feedName string, test bool) {
	feed, ok := b.resolveFeed(feedName)
	if !ok {
		b.log.Error("unknown feed", "feed", feedName)
		return
	}
	chatID := b.cfg.ChatID(test)

	entries, err := b.fetcher.Fetch(ctx, feed)
	if err != nil {
		// Treated as an empty fetch: the cycle degrades to the fallback notice.
		b.log.Warn("fetch feed", "feed", feed.Name, "error", err)
		entries = nil
	}

	snap, err := b.store.LoadHistory(ctx)
	if err != nil {
		b.log.Error("load history", "error", err)
		return
	}

	selected, found := selector.Select(entries, feed.Name, b.cfg.Filters, snap, b.cfg.MaxScan)
	msg := dispatch.Build(selected, found)

	if err := b.send(chatID, msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "feed", feed.Name, "error", err)
		return
	}

	if !found {
		b.log.Info("no adequate post", "feed", feed.Name)
		return
	}

	snap = history.Record(snap, feed.Name, selected.PostID, b.cfg.HistoryLimit)
	if err := b.store.SaveHistory(ctx, snap); err != nil {
		b.log.Error("save history", "feed", feed.Name, "post_id", selected.PostID, "error", err)
		return
	}
	b.log.Info("delivered post", "feed", feed.Name, "post_id", selected.PostID, "chat_id", chatID)
}

func (b *Bot) resolveFeed(name string) (model.Feed, bool) {
	if name == "" {
		return b.cfg.RandomFeed(), true
	}
	return b.cfg.FeedByName(name)
}

func (b *Bot) send(chatID int64, msg dispatch.Message) error {
	var c tgbotapi.Chattable
	switch {
	case msg.MediaURL == "":
		c = tgbotapi.NewMessage(chatID, msg.Text)
	case msg.IsVideo:
		v := tgbotapi.NewVideo(chatID, tgbotapi.FileURL(msg.MediaURL))
		v.Caption = msg.Text
		c = v
	default:
		p := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(msg.MediaURL))
		p.Caption = msg.Text
		c = p
	}
	_, err := b.api.Send(c)
	return err
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("send reply", "chat_id", chatID, "error", err)
	}
}
