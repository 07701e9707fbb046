package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

type doc struct {
	Level  float64 `json:"level"`
	Streak int     `json:"streak"`
	Note   string  `json:"note,omitempty"`
}

// backends opens every Store implementation for the shared contract tests.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sq, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "noor.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	mr := miniredis.RunT(t)
	rd, err := OpenRedis(ctx, mr.Addr(), 0)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { rd.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sq,
		"redis":  rd,
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var d doc
			err := s.Get(context.Background(), "u1", "momentum", "current", &d)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get missing = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_SetGetLastWriteWins(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set(ctx, "u1", "momentum", "current", doc{Level: 10, Streak: 1}); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set(ctx, "u1", "momentum", "current", doc{Level: 42}); err != nil {
				t.Fatalf("second Set: %v", err)
			}

			var got doc
			if err := s.Get(ctx, "u1", "momentum", "current", &got); err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Level != 42 || got.Streak != 0 {
				t.Errorf("Get = %+v, want the second write only", got)
			}
		})
	}
}

func TestStore_IsolatesUsersAndCollections(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.Set(ctx, "u1", "daily_stats", "2026-03-01", doc{Note: "u1"})
			_ = s.Set(ctx, "u2", "daily_stats", "2026-03-01", doc{Note: "u2"})
			_ = s.Set(ctx, "u1", "ayah_progress", "2026-03-01", doc{Note: "other"})

			var got doc
			if err := s.Get(ctx, "u2", "daily_stats", "2026-03-01", &got); err != nil || got.Note != "u2" {
				t.Errorf("Get u2 = %+v, %v", got, err)
			}

			list, err := s.List(ctx, "u1", "daily_stats")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != 1 {
				t.Fatalf("List returned %d docs, want 1", len(list))
			}
			var listed doc
			if err := json.Unmarshal(list["2026-03-01"], &listed); err != nil || listed.Note != "u1" {
				t.Errorf("listed doc = %+v, %v", listed, err)
			}
		})
	}
}

func TestStore_Merge(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Merge(ctx, "u1", "daily_stats", "d", map[string]any{"streak": 3}); err != nil {
				t.Fatalf("Merge create: %v", err)
			}
			if err := s.Merge(ctx, "u1", "daily_stats", "d", map[string]any{"note": "fasted"}); err != nil {
				t.Fatalf("Merge update: %v", err)
			}

			var got doc
			if err := s.Get(ctx, "u1", "daily_stats", "d", &got); err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Streak != 3 || got.Note != "fasted" {
				t.Errorf("merged doc = %+v", got)
			}
		})
	}
}

func TestStore_ListEmpty(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			list, err := s.List(context.Background(), "nobody", "ayah_progress")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != 0 {
				t.Errorf("List = %v, want empty", list)
			}
		})
	}
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("Open memory returned %T", s)
	}

	s, err = Open(ctx, Options{Path: filepath.Join(t.TempDir(), "sub", "x.db")})
	if err != nil {
		t.Fatalf("Open default: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLite); !ok {
		t.Errorf("Open default returned %T", s)
	}

	if _, err := Open(ctx, Options{Backend: "firestore"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestOpenRedis_Unreachable(t *testing.T) {
	if _, err := OpenRedis(context.Background(), "127.0.0.1:1", 0); err == nil {
		t.Fatal("expected error connecting to a closed port")
	}
}

func TestMergeJSON_RejectsNonObject(t *testing.T) {
	if _, err := mergeJSON([]byte(`[1,2]`), map[string]any{"a": 1}); err == nil {
		t.Fatal("expected error merging into an array")
	}
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg-data", "noor", "noor.db"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
