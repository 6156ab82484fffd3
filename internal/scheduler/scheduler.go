// Package scheduler drives the periodic loop: polling inbound commands and
// firing configured triggers.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"picbot/internal/config"
)

// Runner is the interface the scheduler drives each cycle.
type Runner interface {
	SendPost(ctx context.Context, feedName string, test bool)
	ProcessCommands(ctx context.Context, test bool)
}

// Scheduler polls for commands and fires send triggers on their schedule.
type Scheduler struct {
	cfg          *config.Config
	runner       Runner
	log          *slog.Logger
	tick         time.Duration
	test         bool
	feedOverride string
	fired        []time.Time // hour each trigger last fired in, zero when never
	now          func() time.Time
}

// New creates a Scheduler. feedOverride, when non-empty, replaces the random
// feed choice for triggers that do not name their own feed.
func New(cfg *config.Config, runner Runner, feedOverride string, test bool, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		runner:       runner,
		log:          log,
		tick:         15 * time.Second,
		test:         test,
		feedOverride: feedOverride,
		fired:        make([]time.Time, len(cfg.Triggers)),
		now:          time.Now,
	}
}

// SetTickInterval overrides the default 15-second poll interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	s.runner.ProcessCommands(ctx, s.test)

	now := s.now()
	for i, tr := range s.cfg.Triggers {
		if ctx.Err() != nil {
			return
		}
		if !due(tr, now, s.fired[i]) {
			continue
		}
		s.fired[i] = now.Truncate(time.Hour)

		feed := s.feedOverride
		if tr.Feed != "" {
			feed = tr.Feed
		}
		s.log.Info("trigger fired", "trigger", i, "feed", feed)
		s.runner.SendPost(ctx, feed, s.test)
	}
}

// due reports whether a trigger should fire at now. The trigger's day, hour,
// and minute sets must all contain now's values, and the trigger must not
// have fired within the current hour already.
func due(tr config.Trigger, now time.Time, lastFired time.Time) bool {
	if lastFired.Equal(now.Truncate(time.Hour)) {
		return false
	}
	return containsInt(tr.Days, int(now.Weekday())) &&
		containsInt(tr.Hours, now.Hour()) &&
		containsInt(tr.Minutes, now.Minute())
}

func containsInt(set []int, v int) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
