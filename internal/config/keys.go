package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/noor/internal/prayer"
	"github.com/smokyabdulrahman/noor/internal/store"
)

// ValidKeys lists every key accepted by `config set`, in display order.
var ValidKeys = []string{
	"city", "country",
	"latitude", "longitude",
	"method", "school",
	"time_format",
	"prayers",
	"cache_dir",
	"store", "store_path", "redis_addr",
	"user_id",
	"log_level",
	"force_ramadan", "pinned_hijri_day",
}

type key struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

func str(field func(c *Config) *string) key {
	return key{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func coord(name string, limit float64, field func(c *Config) *float64) key {
	return key{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatFloat(*field(c), 'f', -1, 64)
		},
		set: func(c *Config, value string) error {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: must be a number", name, value)
			}
			if v < -limit || v > limit {
				return fmt.Errorf("invalid %s %q: must be between %g and %g", name, value, -limit, limit)
			}
			*field(c) = v
			return nil
		},
	}
}

func optInt(field func(c *Config) **int, parse func(string) (int, error)) key {
	return key{
		get: func(c *Config) string {
			if *field(c) == nil {
				return ""
			}
			return strconv.Itoa(**field(c))
		},
		set: func(c *Config, value string) error {
			v, err := parse(value)
			if err != nil {
				return err
			}
			*field(c) = &v
			return nil
		},
	}
}

func intIn(name string, lo, hi int, hint string) func(string) (int, error) {
	return func(value string) (int, error) {
		v, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: must be an integer", name, value)
		}
		if v < lo || v > hi {
			return 0, fmt.Errorf("invalid %s %q: %s", name, value, hint)
		}
		return v, nil
	}
}

var keys = map[string]key{
	"city":      str(func(c *Config) *string { return &c.City }),
	"country":   str(func(c *Config) *string { return &c.Country }),
	"latitude":  coord("latitude", 90, func(c *Config) *float64 { return &c.Latitude }),
	"longitude": coord("longitude", 180, func(c *Config) *float64 { return &c.Longitude }),
	"method": optInt(func(c *Config) **int { return &c.Method },
		intIn("method", 0, 23, "must be between 0 and 23")),
	"school": optInt(func(c *Config) **int { return &c.School },
		intIn("school", 0, 1, "must be 0 (Shafi) or 1 (Hanafi)")),
	"pinned_hijri_day": optInt(func(c *Config) **int { return &c.PinnedHijriDay },
		intIn("pinned_hijri_day", 1, 30, "must be between 1 and 30")),
	"time_format": {
		get: func(c *Config) string { return c.TimeFormat },
		set: func(c *Config, value string) error {
			if value != "12h" && value != "24h" {
				return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
			}
			c.TimeFormat = value
			return nil
		},
	},
	"prayers": {
		get: func(c *Config) string { return c.Prayers },
		set: func(c *Config, value string) error {
			for _, n := range strings.Split(value, ",") {
				n = strings.TrimSpace(n)
				if !isValidPrayerName(n) {
					return fmt.Errorf("invalid prayer name %q in prayers list", n)
				}
			}
			c.Prayers = value
			return nil
		},
	},
	"cache_dir":  str(func(c *Config) *string { return &c.CacheDir }),
	"store_path": str(func(c *Config) *string { return &c.StorePath }),
	"redis_addr": str(func(c *Config) *string { return &c.RedisAddr }),
	"user_id":    str(func(c *Config) *string { return &c.UserID }),
	"store": {
		get: func(c *Config) string { return c.Store },
		set: func(c *Config, value string) error {
			switch value {
			case store.BackendSQLite, store.BackendRedis, store.BackendMemory:
				c.Store = value
				return nil
			}
			return fmt.Errorf("invalid store %q: must be sqlite, redis or memory", value)
		},
	},
	"log_level": {
		get: func(c *Config) string { return c.LogLevel },
		set: func(c *Config, value string) error {
			if _, err := zerolog.ParseLevel(value); err != nil || value == "" {
				return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", value)
			}
			c.LogLevel = value
			return nil
		},
	},
	"force_ramadan": {
		get: func(c *Config) string {
			if c.ForceRamadan == nil {
				return ""
			}
			return strconv.FormatBool(*c.ForceRamadan)
		},
		set: func(c *Config, value string) error {
			v, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid force_ramadan %q: must be true or false", value)
			}
			c.ForceRamadan = &v
			return nil
		},
	},
}

// Set validates value and assigns it to key.
func (c *Config) Set(key, value string) error {
	k, ok := keys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}
	return k.set(c, value)
}

// Get returns the string form of key, empty when unset.
func (c *Config) Get(key string) (string, error) {
	k, ok := keys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return k.get(c), nil
}

func isValidPrayerName(name string) bool {
	return slices.Contains(prayer.AllPrayerNames, name)
}
