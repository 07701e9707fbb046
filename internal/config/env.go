package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to the upper-cased key name, e.g. NOOR_CITY.
const EnvPrefix = "NOOR_"

// EnvName returns the environment variable for a config key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// LoadEnv reads a .env file into the process environment without
// overriding variables that are already set. A missing file is ignored.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays NOOR_* variables onto c. Values go through the same
// validation as `config set`.
func (c *Config) ApplyEnv() error {
	for _, key := range ValidKeys {
		v, ok := os.LookupEnv(EnvName(key))
		if !ok || v == "" {
			continue
		}
		if err := c.Set(key, v); err != nil {
			return fmt.Errorf("%s: %w", EnvName(key), err)
		}
	}
	return nil
}
