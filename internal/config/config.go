// Package config loads and validates the application configuration file.
package config

import (
	"fmt"
	"math/rand"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"picbot/internal/model"
)

// Defaults applied when the config file omits a value.
const (
	DefaultHistoryLimit     = 10
	DefaultMaxScan          = 10
	DefaultActivationPrefix = "/picbot"
	DefaultDatabasePath     = "./data/picbot.db"
)

// Trigger describes one scheduled send: it fires when the current weekday,
// hour, and minute are all contained in the respective sets. Weekdays use
// Go's convention (0 = Sunday). An optional feed name overrides the
// feed choice for that trigger.
type Trigger struct {
	Days    []int  `yaml:"days"`
	Hours   []int  `yaml:"hours"`
	Minutes []int  `yaml:"minutes"`
	Feed    string `yaml:"feed"`
}

type feedSpec struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	URL  string `yaml:"url"`
}

type fileConfig struct {
	BotToken         string            `yaml:"bot_token"`
	GroupID          int64             `yaml:"group_id"`
	TestGroupID      int64             `yaml:"test_group_id"`
	ActivationPrefix string            `yaml:"activation_prefix"`
	HistoryLimit     *int              `yaml:"history_limit"`
	MaxScan          *int              `yaml:"max_scan"`
	LogLevel         string            `yaml:"log_level"`
	DatabasePath     string            `yaml:"database_path"`
	Feeds            []feedSpec        `yaml:"feeds"`
	Filters          map[string]string `yaml:"filters"`
	Triggers         []Trigger         `yaml:"triggers"`
}

// Config holds the validated application configuration. Filter patterns are
// compiled once at load; a pattern that does not compile is a startup error,
// never a per-selection one.
type Config struct {
	BotToken         string
	GroupID          int64
	TestGroupID      int64
	ActivationPrefix string
	HistoryLimit     int
	MaxScan          int
	LogLevel         string
	DatabasePath     string
	Feeds            []model.Feed
	Filters          map[string]*regexp.Regexp
	Triggers         []Trigger
}

// Load reads and validates the YAML config file at path. The
// TELEGRAM_BOT_TOKEN environment variable, when set, overrides the file's
// bot_token.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if tok := os.Getenv("TELEGRAM_BOT_TOKEN"); tok != "" {
		fc.BotToken = tok
	}
	if fc.BotToken == "" {
		return nil, fmt.Errorf("bot_token is required (or set TELEGRAM_BOT_TOKEN)")
	}
	if fc.GroupID == 0 {
		return nil, fmt.Errorf("group_id is required")
	}
	if len(fc.Feeds) == 0 {
		return nil, fmt.Errorf("at least one feed is required")
	}

	cfg := &Config{
		BotToken:         fc.BotToken,
		GroupID:          fc.GroupID,
		TestGroupID:      fc.TestGroupID,
		ActivationPrefix: fc.ActivationPrefix,
		HistoryLimit:     DefaultHistoryLimit,
		MaxScan:          DefaultMaxScan,
		LogLevel:         fc.LogLevel,
		DatabasePath:     fc.DatabasePath,
		Triggers:         fc.Triggers,
	}
	if cfg.ActivationPrefix == "" {
		cfg.ActivationPrefix = DefaultActivationPrefix
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if fc.HistoryLimit != nil {
		if *fc.HistoryLimit < 1 {
			return nil, fmt.Errorf("history_limit must be positive, got %d", *fc.HistoryLimit)
		}
		cfg.HistoryLimit = *fc.HistoryLimit
	}
	if fc.MaxScan != nil {
		if *fc.MaxScan < 0 {
			return nil, fmt.Errorf("max_scan must not be negative, got %d", *fc.MaxScan)
		}
		cfg.MaxScan = *fc.MaxScan
	}

	for _, fs := range fc.Feeds {
		feed, err := validateFeed(fs)
		if err != nil {
			return nil, err
		}
		cfg.Feeds = append(cfg.Feeds, feed)
	}

	cfg.Filters = make(map[string]*regexp.Regexp, len(fc.Filters))
	for name, pattern := range fc.Filters {
		if _, ok := cfg.FeedByName(name); !ok {
			return nil, fmt.Errorf("filter for unknown feed %q", name)
		}
		re, err := compileAnchored(pattern)
		if err != nil {
			return nil, fmt.Errorf("filter for feed %q: %w", name, err)
		}
		cfg.Filters[name] = re
	}

	for i, tr := range fc.Triggers {
		if err := validateTrigger(tr); err != nil {
			return nil, fmt.Errorf("trigger %d: %w", i, err)
		}
		if tr.Feed != "" {
			if _, ok := cfg.FeedByName(tr.Feed); !ok {
				return nil, fmt.Errorf("trigger %d references unknown feed %q", i, tr.Feed)
			}
		}
	}

	return cfg, nil
}

// ChatID returns the destination chat for the given test flag.
func (c *Config) ChatID(test bool) int64 {
	if test {
		return c.TestGroupID
	}
	return c.GroupID
}

// FeedByName looks up a configured feed by its name.
func (c *Config) FeedByName(name string) (model.Feed, bool) {
	for _, f := range c.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return model.Feed{}, false
}

// RandomFeed returns a random configured feed.
func (c *Config) RandomFeed() model.Feed {
	return c.Feeds[rand.Intn(len(c.Feeds))]
}

// compileAnchored compiles a title filter pattern anchored at the start of
// the text, so the pattern must match from position 0 but need not cover
// the whole title.
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`\A(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	return re, nil
}

func validateFeed(fs feedSpec) (model.Feed, error) {
	if fs.Name == "" {
		return model.Feed{}, fmt.Errorf("feed name is required")
	}
	kind := model.FeedKind(fs.Kind)
	if kind == "" {
		kind = model.FeedReddit
	}
	switch kind {
	case model.FeedReddit:
	case model.FeedRSS:
		if fs.URL == "" {
			return model.Feed{}, fmt.Errorf("feed %q: rss feeds require a url", fs.Name)
		}
	default:
		return model.Feed{}, fmt.Errorf("feed %q: unknown kind %q", fs.Name, fs.Kind)
	}
	return model.Feed{Name: fs.Name, Kind: kind, URL: fs.URL}, nil
}

func validateTrigger(tr Trigger) error {
	if len(tr.Days) == 0 || len(tr.Hours) == 0 || len(tr.Minutes) == 0 {
		return fmt.Errorf("days, hours, and minutes are all required")
	}
	for _, d := range tr.Days {
		if d < 0 || d > 6 {
			return fmt.Errorf("day %d out of range 0-6", d)
		}
	}
	for _, h := range tr.Hours {
		if h < 0 || h > 23 {
			return fmt.Errorf("hour %d out of range 0-23", h)
		}
	}
	for _, m := range tr.Minutes {
		if m < 0 || m > 59 {
			return fmt.Errorf("minute %d out of range 0-59", m)
		}
	}
	return nil
}
