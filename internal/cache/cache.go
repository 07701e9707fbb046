// Package cache is a file-backed JSON cache with three expiry tiers.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/noor/internal/api"
	"github.com/smokyabdulrahman/noor/internal/geo"
)

// Tier selects how long an entry stays fresh.
type Tier int

const (
	Short  Tier = iota // 6 hours
	Medium             // 1 day
	Long               // 30 days
)

func (t Tier) TTL() time.Duration {
	switch t {
	case Short:
		return 6 * time.Hour
	case Medium:
		return 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

func (t Tier) String() string {
	switch t {
	case Short:
		return "short"
	case Medium:
		return "medium"
	default:
		return "long"
	}
}

const geoKey = "geolocation"

// Cache stores one file per key under dir.
type Cache struct {
	dir string
	now func() time.Time
}

type entry struct {
	Tier     Tier            `json:"tier"`
	StoredAt time.Time       `json:"stored_at"`
	Value    json.RawMessage `json:"value"`
}

// New creates a Cache rooted at dir, or ~/.cache/noor when dir is empty.
func New(dir string) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir, now: time.Now}, nil
}

func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "noor"), nil
}

func (c *Cache) Dir() string { return c.dir }

// path hashes the key so arbitrary strings map to safe file names.
func (c *Cache) path(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, fmt.Sprintf("%x.json", h[:8]))
}

// Put stores v under key in the given tier.
func (c *Cache) Put(key string, tier Tier, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	data, err := json.Marshal(entry{Tier: tier, StoredAt: c.now(), Value: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// Get decodes the entry for key into v. Missing, corrupt and expired
// entries are all reported as a miss.
func (c *Cache) Get(key string, v any) bool {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if c.now().Sub(e.StoredAt) > e.Tier.TTL() {
		return false
	}
	return json.Unmarshal(e.Value, v) == nil
}

// Prune removes expired and unreadable entries and returns how many went.
func (c *Cache) Prune() (int, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		p := filepath.Join(c.dir, f.Name())
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var e entry
		if json.Unmarshal(data, &e) == nil && c.now().Sub(e.StoredAt) <= e.Tier.TTL() {
			continue
		}
		if err := os.Remove(p); err == nil {
			removed++
		}
	}
	return removed, nil
}

// TimingsEntry is a cached provider day, tagged with the date it describes.
type TimingsEntry struct {
	Date string   `json:"date"` // YYYY-MM-DD
	Data api.Data `json:"data"`
}

func timingsKey(date string, q api.Query) string {
	return "timings|" + date + "|" + q.CacheKey()
}

// LoadTimings returns the cached day for date and q, or nil.
func (c *Cache) LoadTimings(date time.Time, q api.Query) *api.Data {
	dateStr := date.Format("2006-01-02")
	var e TimingsEntry
	if !c.Get(timingsKey(dateStr, q), &e) {
		return nil
	}
	// Never serve another day.
	if e.Date != dateStr {
		return nil
	}
	return &e.Data
}

func (c *Cache) SaveTimings(date time.Time, q api.Query, d api.Data) error {
	dateStr := date.Format("2006-01-02")
	return c.Put(timingsKey(dateStr, q), Medium, TimingsEntry{Date: dateStr, Data: d})
}

func calendarKey(year, month int, q api.Query) string {
	return fmt.Sprintf("calendar|%04d-%02d|%s", year, month, q.CacheKey())
}

// LoadCalendar returns a cached month, or nil.
func (c *Cache) LoadCalendar(year, month int, q api.Query) []api.Data {
	var days []api.Data
	if !c.Get(calendarKey(year, month, q), &days) || len(days) == 0 {
		return nil
	}
	return days
}

func (c *Cache) SaveCalendar(year, month int, q api.Query, days []api.Data) error {
	return c.Put(calendarKey(year, month, q), Long, days)
}

// LoadGeo returns the last detected location if it is under six hours old.
func (c *Cache) LoadGeo() *geo.Location {
	var loc geo.Location
	if !c.Get(geoKey, &loc) {
		return nil
	}
	return &loc
}

func (c *Cache) SaveGeo(loc *geo.Location) error {
	return c.Put(geoKey, Short, loc)
}
