package momentum

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/noor/internal/cache"
	"github.com/smokyabdulrahman/noor/internal/store"
)

// ErrPersistenceDegraded means the value was computed but only kept in the
// local cache. It is not retried.
var ErrPersistenceDegraded = errors.New("store write failed, value kept locally")

const (
	Collection      = "momentum"
	DailyCollection = "daily_stats"
	currentKey      = "current"
)

// LocalCache holds the device-local copy used when the store is down.
type LocalCache interface {
	Put(key string, tier cache.Tier, v any) error
	Get(key string, v any) bool
}

// Service reads and writes one user's momentum and daily stats. Updates
// are read-modify-write with no concurrency guard; the last writer wins.
type Service struct {
	store store.Store
	local LocalCache
	user  string
	now   func() time.Time
}

func NewService(s store.Store, local LocalCache, user string) *Service {
	return &Service{store: s, local: local, user: user, now: time.Now}
}

func (s *Service) localKey(parts ...string) string {
	key := "local|" + s.user
	for _, p := range parts {
		key += "|" + p
	}
	return key
}

// Current returns the stored momentum, a fresh one if none exists, or the
// local copy when the store cannot be read.
func (s *Service) Current(ctx context.Context) (Momentum, error) {
	var m Momentum
	err := s.store.Get(ctx, s.user, Collection, currentKey, &m)
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, store.ErrNotFound):
		return New(), nil
	}

	if s.local != nil && s.local.Get(s.localKey(Collection), &m) {
		log.Warn().Err(err).Msg("store unreadable, using local momentum")
		return m, nil
	}
	return Momentum{}, fmt.Errorf("load momentum: %w", err)
}

// Award applies points now and persists the result.
func (s *Service) Award(ctx context.Context, points float64) (Momentum, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return Momentum{}, err
	}

	next := Apply(cur, points, s.now())
	log.Debug().Float64("points", points).Float64("level", next.Level).Int("streak", next.Streak).Msg("momentum applied")

	if err := s.store.Set(ctx, s.user, Collection, currentKey, next); err != nil {
		return next, s.degrade(s.localKey(Collection), next, err)
	}
	s.keepLocal(s.localKey(Collection), next)
	return next, nil
}

// Today returns today's stat, empty if nothing was recorded yet.
func (s *Service) Today(ctx context.Context) (DailyStat, error) {
	return s.Daily(ctx, s.now())
}

func (s *Service) Daily(ctx context.Context, day time.Time) (DailyStat, error) {
	date := day.Format("2006-01-02")
	stat := DailyStat{Date: date}
	err := s.store.Get(ctx, s.user, DailyCollection, date, &stat)
	switch {
	case err == nil:
		return stat, nil
	case errors.Is(err, store.ErrNotFound):
		return DailyStat{Date: date}, nil
	}

	if s.local != nil && s.local.Get(s.localKey(DailyCollection, date), &stat) {
		log.Warn().Err(err).Str("date", date).Msg("store unreadable, using local daily stat")
		return stat, nil
	}
	return DailyStat{}, fmt.Errorf("load daily stat %s: %w", date, err)
}

// UpdateDaily sets one field of today's stat, creating the record on first
// use, and awards the points the change earns.
func (s *Service) UpdateDaily(ctx context.Context, field, value string) (DailyStat, Momentum, error) {
	stat, err := s.Today(ctx)
	if err != nil {
		return DailyStat{}, Momentum{}, err
	}

	name, v, points, err := stat.Set(field, value)
	if err != nil {
		return DailyStat{}, Momentum{}, err
	}

	var degraded error
	patch := map[string]any{"date": stat.Date, name: v}
	if err := s.store.Merge(ctx, s.user, DailyCollection, stat.Date, patch); err != nil {
		degraded = s.degrade(s.localKey(DailyCollection, stat.Date), stat, err)
	} else {
		s.keepLocal(s.localKey(DailyCollection, stat.Date), stat)
	}

	if points == 0 {
		m, err := s.Current(ctx)
		if err != nil {
			return stat, Momentum{}, errors.Join(degraded, err)
		}
		return stat, m, degraded
	}

	m, err := s.Award(ctx, points)
	if err != nil && !errors.Is(err, ErrPersistenceDegraded) {
		return stat, m, errors.Join(degraded, err)
	}
	if err != nil {
		degraded = err
	}
	return stat, m, degraded
}

func (s *Service) degrade(key string, v any, cause error) error {
	log.Warn().Err(cause).Str("user", s.user).Msg("store write failed, keeping value locally")
	if s.local != nil {
		if err := s.local.Put(key, cache.Long, v); err != nil {
			log.Error().Err(err).Msg("local copy also failed")
		}
	}
	return fmt.Errorf("%w: %v", ErrPersistenceDegraded, cause)
}

func (s *Service) keepLocal(key string, v any) {
	if s.local == nil {
		return
	}
	if err := s.local.Put(key, cache.Long, v); err != nil {
		log.Debug().Err(err).Msg("local copy not updated")
	}
}
