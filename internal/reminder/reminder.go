// Package reminder polls the scheduler for due topics on a fixed interval
// and hands the counts to a Notifier. The scheduler itself never starts
// background work; this package is the external caller that does.
package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/rcliao/revisit/internal/config"
	"github.com/rcliao/revisit/internal/logger"
	"github.com/rcliao/revisit/internal/model"
)

// Source is the query side of the scheduler.
type Source interface {
	Due() []model.ReviewItem
	Summary() model.Summary
}

// Opener returns a fresh view of the schedule for one check and a function
// releasing it. Opening per check keeps the backing file unlocked between
// polls so other commands can record reviews.
type Opener func(ctx context.Context) (Source, func(), error)

// Static wraps an already-open Source.
func Static(src Source) Opener {
	return func(context.Context) (Source, func(), error) {
		return src, func() {}, nil
	}
}

// Reminder is one notification payload.
type Reminder struct {
	At      time.Time     `json:"at"`
	Summary model.Summary `json:"summary"`
	Due     []string      `json:"due"`
}

// Notifier delivers reminders. Whether the learner saw it is not tracked.
type Notifier interface {
	Notify(r Reminder) error
}

// JSONNotifier writes each reminder as one JSON line.
type JSONNotifier struct {
	W io.Writer
}

func (n JSONNotifier) Notify(r Reminder) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(n.W, string(b))
	return err
}

// Poller runs Check on a gocron schedule.
type Poller struct {
	scheduler *gocron.Scheduler
	open      Opener
	notifier  Notifier
	cfg       config.RemindConfig
	now       func() time.Time
	log       *logger.Logger
}

// New creates a poller. It does nothing until Start or Run.
func New(open Opener, notifier Notifier, cfg config.RemindConfig, log *logger.Logger) *Poller {
	return &Poller{
		scheduler: gocron.NewScheduler(time.Local),
		open:      open,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
		log:       log,
	}
}

// Start schedules Check every cfg.Every, beginning immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.scheduler.SingletonModeAll()
	if _, err := p.scheduler.Every(p.cfg.Every).Do(p.check, ctx); err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}
	p.scheduler.StartAsync()
	p.log.Info("reminder poller started", "every", p.cfg.Every.String(),
		"window_start", p.cfg.WindowStart, "window_end", p.cfg.WindowEnd)
	return nil
}

// Stop terminates the schedule.
func (p *Poller) Stop() {
	p.scheduler.Stop()
}

// Run starts the poller and blocks until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	p.Stop()
	return nil
}

func (p *Poller) check(ctx context.Context) {
	if _, err := p.Check(ctx); err != nil {
		p.log.Error("send reminder", "error", err)
	}
}

// Check sends one reminder if the current hour is inside the notification
// window and at least one topic is due. It reports whether it notified.
func (p *Poller) Check(ctx context.Context) (bool, error) {
	now := p.now()
	if h := now.Hour(); h < p.cfg.WindowStart || h > p.cfg.WindowEnd {
		p.log.Debug("outside notification hours, skipping", "hour", h)
		return false, nil
	}

	src, release, err := p.open(ctx)
	if err != nil {
		return false, fmt.Errorf("open schedule: %w", err)
	}
	defer release()

	due := src.Due()
	if len(due) == 0 {
		p.log.Debug("nothing due")
		return false, nil
	}

	names := make([]string, len(due))
	for i, it := range due {
		names[i] = it.TopicName
	}
	r := Reminder{At: now, Summary: src.Summary(), Due: names}
	if err := p.notifier.Notify(r); err != nil {
		return false, err
	}
	p.log.Info("reminder sent", "due", len(due))
	return true, nil
}
