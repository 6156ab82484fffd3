package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"picbot/internal/bot"
	"picbot/internal/config"
	"picbot/internal/scheduler"
	"picbot/internal/storage"
)

func main() {
	configPath := flag.String("config", envOrDefault("CONFIG_PATH", "./config.yaml"), "path to config file")
	feed := flag.String("feed", "", "feed to use instead of a random one")
	test := flag.Bool("test", false, "send to the test chat")
	send := flag.Bool("send", false, "run one selection cycle and exit")
	processCommands := flag.Bool("process-commands", false, "poll for commands once and exit")
	loop := flag.Bool("loop", false, "run the scheduler loop")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if *loop && len(cfg.Triggers) == 0 {
		log.Error("no triggers configured")
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	b, err := bot.New(cfg.BotToken, store, cfg, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *send:
		b.SendPost(ctx, *feed, *test)
	case *processCommands:
		b.ProcessCommands(ctx, *test)
	case *loop:
		log.Info("starting scheduler loop", "triggers", len(cfg.Triggers))
		sched := scheduler.New(cfg, b, *feed, *test, log)
		sched.Run(ctx)
		log.Info("scheduler stopped")
	default:
		log.Error("nothing to do: pass -send, -process-commands, or -loop")
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
