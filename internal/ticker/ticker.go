// Package ticker runs a callback on a fixed period for live views such as
// countdowns. A Ticker lives exactly as long as the view that started it.
package ticker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// Ticker invokes fn every period, the first time immediately on Start.
// Runs never overlap: a slow fn delays the next run instead of stacking.
type Ticker struct {
	period time.Duration
	fn     func(now time.Time)

	mu        sync.Mutex
	scheduler gocron.Scheduler
}

func New(period time.Duration, fn func(now time.Time)) *Ticker {
	return &Ticker{period: period, fn: fn}
}

// Start begins ticking. Starting a running Ticker is an error.
func (t *Ticker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.scheduler != nil {
		return errors.New("ticker already running")
	}
	if t.period <= 0 {
		return fmt.Errorf("invalid ticker period %v", t.period)
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(t.period),
		gocron.NewTask(func() { t.fn(time.Now()) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("schedule tick: %w", err)
	}

	s.Start()
	t.scheduler = s
	log.Debug().Dur("period", t.period).Msg("ticker started")
	return nil
}

// Stop halts the ticker and waits for a running callback to return.
// It is safe to call more than once.
func (t *Ticker) Stop() error {
	t.mu.Lock()
	s := t.scheduler
	t.scheduler = nil
	t.mu.Unlock()

	if s == nil {
		return nil
	}
	log.Debug().Msg("ticker stopped")
	return s.Shutdown()
}

// Run starts the ticker and blocks until ctx is done.
func (t *Ticker) Run(ctx context.Context) error {
	if err := t.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return t.Stop()
}
