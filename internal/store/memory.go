package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory keeps documents in process. It is used for tests and for
// the "memory" backend when nothing should touch disk.
type Memory struct {
	mu   sync.Mutex
	docs map[docID][]byte
}

type docID struct {
	user, collection, key string
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{docs: make(map[docID][]byte)}
}

func (m *Memory) Get(_ context.Context, user, collection, key string, v any) error {
	m.mu.Lock()
	raw, ok := m.docs[docID{user, collection, key}]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, v)
}

func (m *Memory) Set(_ context.Context, user, collection, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	m.mu.Lock()
	m.docs[docID{user, collection, key}] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Merge(_ context.Context, user, collection, key string, patch map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := docID{user, collection, key}
	raw, err := mergeJSON(m.docs[id], patch)
	if err != nil {
		return err
	}
	m.docs[id] = raw
	return nil
}

func (m *Memory) List(_ context.Context, user, collection string) (map[string]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]json.RawMessage)
	for id, raw := range m.docs {
		if id.user == user && id.collection == collection {
			out[id.key] = append(json.RawMessage(nil), raw...)
		}
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
