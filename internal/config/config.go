// Package config holds persistent settings for noor.
//
// Settings live as JSON at ~/.config/noor/config.json (XDG-compliant).
// Priority is: CLI flags > NOOR_* environment > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/smokyabdulrahman/noor/internal/hijri"
	"github.com/smokyabdulrahman/noor/internal/store"
)

const (
	configDirName  = "noor"
	configFileName = "config.json"
)

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
type Config struct {
	City       string  `json:"city,omitempty"`
	Country    string  `json:"country,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
	Method     *int    `json:"method,omitempty"` // nil is unset, 0 is a valid method
	School     *int    `json:"school,omitempty"`
	TimeFormat string  `json:"time_format,omitempty"` // "12h" or "24h"
	Prayers    string  `json:"prayers,omitempty"`     // comma-separated
	CacheDir   string  `json:"cache_dir,omitempty"`

	Store     string `json:"store,omitempty"` // sqlite, redis or memory
	StorePath string `json:"store_path,omitempty"`
	RedisAddr string `json:"redis_addr,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	LogLevel  string `json:"log_level,omitempty"`

	ForceRamadan   *bool `json:"force_ramadan,omitempty"`
	PinnedHijriDay *int  `json:"pinned_hijri_day,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	method := -1
	school := -1
	pinned := hijri.DefaultPinnedDay
	force := false
	return Config{
		Method:         &method,
		School:         &school,
		TimeFormat:     "24h",
		Store:          store.BackendSQLite,
		LogLevel:       "warn",
		ForceRamadan:   &force,
		PinnedHijriDay: &pinned,
	}
}

// Dir respects $XDG_CONFIG_HOME, otherwise ~/.config/noor.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file. A missing file is an empty Config.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config, creating the directory if needed.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return ResetAt(path)
}

// ResetAt deletes the config file at path. A missing file is not an error.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// EnsureUserID assigns a random user id if none is set and reports
// whether it did, so the caller can persist it.
func (c *Config) EnsureUserID() bool {
	if c.UserID != "" {
		return false
	}
	c.UserID = uuid.NewString()
	return true
}

// MethodOrDefault returns the method value, falling back to def.
func (c *Config) MethodOrDefault(def int) int {
	if c.Method != nil {
		return *c.Method
	}
	return def
}

func (c *Config) SchoolOrDefault(def int) int {
	if c.School != nil {
		return *c.School
	}
	return def
}

// Overrides returns the Ramadan testing switch for the hijri classifier.
func (c *Config) Overrides() hijri.TestingOverrides {
	o := hijri.TestingOverrides{PinnedDay: hijri.DefaultPinnedDay}
	if c.ForceRamadan != nil {
		o.ForceRamadan = *c.ForceRamadan
	}
	if c.PinnedHijriDay != nil {
		o.PinnedDay = *c.PinnedHijriDay
	}
	return o
}

// StoreOptions maps the store keys onto backend options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:   c.Store,
		Path:      c.StorePath,
		RedisAddr: c.RedisAddr,
	}
}
