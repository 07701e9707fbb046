package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps each user's collection in one hash, so documents can be shared
// between devices pointing at the same server.
type Redis struct {
	rdb *redis.Client
}

var _ Store = (*Redis)(nil)

// OpenRedis connects to addr and checks the connection.
func OpenRedis(ctx context.Context, addr string, db int) (*Redis, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{rdb: rdb}, nil
}

func hashKey(user, collection string) string {
	return "noor:" + user + ":" + collection
}

func (r *Redis) Get(ctx context.Context, user, collection, key string, v any) error {
	raw, err := r.rdb.HGet(ctx, hashKey(user, collection), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (r *Redis) Set(ctx context.Context, user, collection, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return r.rdb.HSet(ctx, hashKey(user, collection), key, raw).Err()
}

// Merge is a plain read-modify-write; concurrent merges may lose fields.
func (r *Redis) Merge(ctx context.Context, user, collection, key string, patch map[string]any) error {
	h := hashKey(user, collection)
	existing, err := r.rdb.HGet(ctx, h, key).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	raw, err := mergeJSON(existing, patch)
	if err != nil {
		return err
	}
	return r.rdb.HSet(ctx, h, key, raw).Err()
}

func (r *Redis) List(ctx context.Context, user, collection string) (map[string]json.RawMessage, error) {
	all, err := r.rdb.HGetAll(ctx, hashKey(user, collection)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(all))
	for k, v := range all {
		out[k] = json.RawMessage(v)
	}
	return out, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
