package hifdh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/noor/internal/store"
)

// Collection is the store collection holding one document per ayah.
const Collection = "ayah_progress"

// Repository persists AyahProgress for a single user. The local device is
// the only writer.
type Repository struct {
	store store.Store
	user  string
}

func NewRepository(s store.Store, user string) *Repository {
	return &Repository{store: s, user: user}
}

// Get returns nil when the ayah has never been reviewed.
func (r *Repository) Get(ctx context.Context, key Key) (*AyahProgress, error) {
	var p AyahProgress
	err := r.store.Get(ctx, r.user, Collection, key.String(), &p)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress %s: %w", key, err)
	}
	return &p, nil
}

// Record applies a review and saves the result.
func (r *Repository) Record(ctx context.Context, key Key, status Status, accuracy *float64, now time.Time) (AyahProgress, error) {
	prev, err := r.Get(ctx, key)
	if err != nil {
		return AyahProgress{}, err
	}

	next, err := Review(prev, key, status, accuracy, now)
	if err != nil {
		return AyahProgress{}, err
	}

	if err := r.store.Set(ctx, r.user, Collection, key.String(), next); err != nil {
		return AyahProgress{}, fmt.Errorf("save progress %s: %w", key, err)
	}
	log.Debug().Str("ayah", key.String()).Str("status", string(status)).Int("interval", next.Interval).Msg("review recorded")
	return next, nil
}

// All returns every stored record ordered by surah and ayah. Documents
// that fail to decode are skipped with a warning.
func (r *Repository) All(ctx context.Context) ([]AyahProgress, error) {
	docs, err := r.store.List(ctx, r.user, Collection)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	records := make([]AyahProgress, 0, len(docs))
	for key, raw := range docs {
		var p AyahProgress
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping unreadable ayah progress")
			continue
		}
		records = append(records, p)
	}
	SortByKey(records)
	return records, nil
}

func (r *Repository) Due(ctx context.Context, now time.Time) ([]AyahProgress, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return Due(all, now), nil
}
