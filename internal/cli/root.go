// Package cli wires the noor commands together.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/noor/internal/api"
	"github.com/smokyabdulrahman/noor/internal/cache"
	"github.com/smokyabdulrahman/noor/internal/config"
	"github.com/smokyabdulrahman/noor/internal/display"
	"github.com/smokyabdulrahman/noor/internal/logging"
	"github.com/smokyabdulrahman/noor/internal/store"
)

// Overridden in tests.
var (
	clock     = time.Now
	newClient = api.NewClient
)

// flags shared by every subcommand.
type flags struct {
	city       string
	country    string
	latitude   float64
	longitude  float64
	method     int
	school     int
	json       bool
	cacheDir   string
	timeFormat string
	logLevel   string
	store      string
	envFile    string
	noColor    bool
}

// app is the state shared by one invocation of the root command.
type app struct {
	flags flags

	file *config.Config // as stored on disk
	cfg  *config.Config // file + env + flags + defaults

	cacheOnce bool
	cache     *cache.Cache
}

// NewRootCmd creates the root command. version is set via ldflags.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "noor",
		Short: "Prayer times and Ramadan companion",
		Long: "noor shows the day's prayer times and countdowns, tracks the Ramadan\n" +
			"phases and qiyam hours, and keeps hifdh review and momentum records.\n" +
			"Prayer times come from the Al Adhan API.",
		Version:           version,
		PersistentPreRunE: a.setup,
		RunE:              a.runToday,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.city, "city", "", "Override city (takes precedence over config)")
	pf.StringVar(&a.flags.country, "country", "", "Override country")
	pf.Float64Var(&a.flags.latitude, "latitude", 0, "Override latitude")
	pf.Float64Var(&a.flags.longitude, "longitude", 0, "Override longitude")
	pf.IntVar(&a.flags.method, "method", -1, "Override calculation method (0-23)")
	pf.IntVar(&a.flags.school, "school", -1, "Override school (0=Shafi, 1=Hanafi)")
	pf.BoolVar(&a.flags.json, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&a.flags.cacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/noor/)")
	pf.StringVar(&a.flags.timeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.flags.store, "store", "", "Document store: sqlite, redis or memory")
	pf.StringVar(&a.flags.envFile, "env-file", ".env", "Read NOOR_* variables from this file if it exists")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		a.newTodayCmd(),
		a.newNextCmd(),
		a.newWatchCmd(),
		a.newListCmd(),
		a.newWeekCmd(),
		a.newMonthCmd(),
		a.newQueryCmd(),
		a.newRamadanCmd(),
		a.newQiyamCmd(),
		a.newHifdhCmd(),
		a.newMomentumCmd(),
		a.newDailyCmd(),
		a.newConfigCmd(),
		a.newMethodsCmd(),
		a.newCacheCmd(),
	)
	rootCmd.SetVersionTemplate("noor version {{.Version}}\n")

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnv(a.flags.envFile); err != nil {
		return err
	}
	file, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.file = file

	cfg, err := a.effectiveConfig(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logging.Setup(cfg.LogLevel, cmd.ErrOrStderr()); err != nil {
		return err
	}
	if a.flags.json || a.flags.noColor {
		display.SetEnabled(false)
	}
	return nil
}

// effectiveConfig merges CLI flags > NOOR_* env > config file > defaults.
// Only flags the user actually passed take part.
func (a *app) effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	merged := *a.file
	if err := merged.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg := &merged
	defaults := config.Defaults()

	set := func(name string) bool { return flagWasSet(cmd.Flags(), cmd.Root().PersistentFlags(), name) }

	if set("city") {
		cfg.City = a.flags.city
	}
	if set("country") {
		cfg.Country = a.flags.country
	}
	if set("latitude") {
		cfg.Latitude = a.flags.latitude
	}
	if set("longitude") {
		cfg.Longitude = a.flags.longitude
	}
	if set("method") {
		m := a.flags.method
		cfg.Method = &m
	} else if cfg.Method == nil {
		cfg.Method = defaults.Method
	}
	if set("school") {
		s := a.flags.school
		cfg.School = &s
	} else if cfg.School == nil {
		cfg.School = defaults.School
	}
	if set("cache-dir") {
		cfg.CacheDir = a.flags.cacheDir
	}

	validated := []struct{ flag, key, value string }{
		{"time-format", "time_format", a.flags.timeFormat},
		{"log-level", "log_level", a.flags.logLevel},
		{"store", "store", a.flags.store},
	}
	for _, v := range validated {
		if !set(v.flag) {
			continue
		}
		if err := cfg.Set(v.key, v.value); err != nil {
			return nil, fmt.Errorf("--%s: %w", v.flag, err)
		}
	}

	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.Store == "" {
		cfg.Store = defaults.Store
	}
	if cfg.PinnedHijriDay == nil {
		cfg.PinnedHijriDay = defaults.PinnedHijriDay
	}
	return cfg, nil
}

// flagWasSet checks the local and persistent flag sets.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

// goTimeFormat maps the time_format setting to a Go layout.
func (a *app) goTimeFormat() string {
	if a.cfg.TimeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}

// localCache opens the cache once. Failure disables caching with a warning.
func (a *app) localCache() *cache.Cache {
	if a.cacheOnce {
		return a.cache
	}
	a.cacheOnce = true
	c, err := cache.New(a.cfg.CacheDir)
	if err != nil {
		log.Warn().Err(err).Msg("cache disabled")
		return nil
	}
	a.cache = c
	return c
}

// openStore connects the configured document store and returns the user
// id documents are filed under. A new id is generated and saved on first use.
func (a *app) openStore(ctx context.Context) (store.Store, string, error) {
	user := a.cfg.UserID
	if user == "" {
		if a.file.EnsureUserID() {
			if err := a.file.Save(); err != nil {
				log.Warn().Err(err).Msg("could not persist user id")
			}
		}
		user = a.file.UserID
		a.cfg.UserID = user
	}

	s, err := store.Open(ctx, a.cfg.StoreOptions())
	if err != nil {
		return nil, "", fmt.Errorf("open %s store: %w", a.cfg.Store, err)
	}
	log.Debug().Str("backend", a.cfg.Store).Str("user", user).Msg("store opened")
	return s, user, nil
}

// closeStore is deferred by commands that open a store.
func closeStore(s store.Store) {
	if err := s.Close(); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("closing store")
	}
}
