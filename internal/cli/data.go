package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/noor/internal/api"
	"github.com/smokyabdulrahman/noor/internal/geo"
	"github.com/smokyabdulrahman/noor/internal/hijri"
	"github.com/smokyabdulrahman/noor/internal/prayer"
)

// location is where prayer times are computed for.
type location struct {
	Query    api.Query
	Timezone string // hint from geolocation, may be empty
	City     string
	Country  string
	Label    string
	Source   string // "config", "cache", "ip" or "default"
}

// resolveLocation applies: flags/config coordinates > flags/config city >
// cached geolocation > IP detection > Mecca.
func (a *app) resolveLocation(ctx context.Context) (location, error) {
	cfg := a.cfg
	q := api.Query{Method: cfg.MethodOrDefault(-1), School: cfg.SchoolOrDefault(-1)}

	switch {
	case cfg.Latitude != 0 || cfg.Longitude != 0:
		q.Latitude, q.Longitude = cfg.Latitude, cfg.Longitude
		label := fmt.Sprintf("%.4f, %.4f", q.Latitude, q.Longitude)
		if cfg.City != "" && cfg.Country != "" {
			label = cfg.City + ", " + cfg.Country
		}
		return location{Query: q, City: cfg.City, Country: cfg.Country, Label: label, Source: "config"}, nil
	case cfg.City != "":
		if cfg.Country == "" {
			return location{}, fmt.Errorf("--country is required when using --city")
		}
		q.City, q.Country = cfg.City, cfg.Country
		return location{Query: q, City: cfg.City, Country: cfg.Country, Label: cfg.City + ", " + cfg.Country, Source: "config"}, nil
	}

	c := a.localCache()
	if c != nil {
		if cached := c.LoadGeo(); cached != nil {
			return fromGeo(*cached, q, "cache"), nil
		}
	}

	detected, err := geo.DetectLocation(ctx)
	if err != nil {
		log.Warn().Err(err).Str("city", geo.DefaultLocation.City).Msg("location detection failed, using default location")
		return fromGeo(geo.DefaultLocation, q, "default"), nil
	}
	if c != nil {
		if err := c.SaveGeo(detected); err != nil {
			log.Debug().Err(err).Msg("geolocation not cached")
		}
	}
	return fromGeo(*detected, q, "ip"), nil
}

func fromGeo(g geo.Location, q api.Query, source string) location {
	q.Latitude, q.Longitude = g.Latitude, g.Longitude
	label := fmt.Sprintf("%.4f, %.4f", g.Latitude, g.Longitude)
	if g.City != "" && g.Country != "" {
		label = g.City + ", " + g.Country
	}
	return location{Query: q, Timezone: g.Timezone, City: g.City, Country: g.Country, Label: label, Source: source}
}

// fetchDay returns the provider day for date, from the cache when possible.
func (a *app) fetchDay(ctx context.Context, date time.Time, loc location) (api.Data, error) {
	c := a.localCache()
	if c != nil {
		if d := c.LoadTimings(date, loc.Query); d != nil {
			log.Debug().Str("date", date.Format(time.DateOnly)).Msg("timings cache hit")
			return *d, nil
		}
	}

	resp, err := newClient().Day(ctx, date, loc.Query)
	if err != nil {
		return api.Data{}, err
	}

	if c != nil {
		if err := c.SaveTimings(date, loc.Query, resp.Data); err != nil {
			log.Debug().Err(err).Msg("timings not cached")
		}
	}
	return resp.Data, nil
}

// dayView is today's data, anchored in the location's timezone.
type dayView struct {
	Loc     location
	TZ      *time.Location
	Now     time.Time
	Data    api.Data
	Timings prayer.PrayerTimings
}

// loadToday resolves the location and fetches today's timings. When the
// provider is unreachable and nothing is cached the view comes back with
// empty timings instead of an error.
func (a *app) loadToday(ctx context.Context) (*dayView, error) {
	loc, err := a.resolveLocation(ctx)
	if err != nil {
		return nil, err
	}

	now := clock()
	if tz, err := time.LoadLocation(loc.Timezone); loc.Timezone != "" && err == nil {
		now = now.In(tz)
	}

	data, err := a.fetchDay(ctx, now, loc)
	if err != nil {
		if !errors.Is(err, api.ErrProviderUnavailable) {
			return nil, err
		}
		log.Warn().Err(err).Msg("no prayer times available")
	}

	tz := zoneFor(loc.Timezone, data.Meta.Timezone)
	// The provider day must be the location's calendar day, not the device's.
	if local := now.In(tz); err == nil && !sameDay(local, now) {
		log.Debug().Str("date", local.Format(time.DateOnly)).Str("timezone", tz.String()).Msg("refetching for the location's date")
		data, err = a.fetchDay(ctx, local, loc)
		if err != nil {
			if !errors.Is(err, api.ErrProviderUnavailable) {
				return nil, err
			}
			log.Warn().Err(err).Msg("no prayer times available")
		}
	}
	return &dayView{
		Loc:     loc,
		TZ:      tz,
		Now:     now.In(tz),
		Data:    data,
		Timings: prayer.FromAPI(data),
	}, nil
}

// zoneFor picks the first loadable timezone name, else the local zone.
func zoneFor(names ...string) *time.Location {
	for _, n := range names {
		if n == "" {
			continue
		}
		tz, err := time.LoadLocation(n)
		if err == nil {
			return tz
		}
		log.Warn().Err(err).Str("timezone", n).Msg("invalid timezone")
	}
	return time.Local
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// requireTimings guards calculators that cannot run without provider data.
func requireTimings(t prayer.PrayerTimings) error {
	if t.IsZero() {
		return prayer.ErrMissingTimings
	}
	return nil
}

// hijriStatus classifies the day's hijri date with the configured overrides.
// A missing or malformed date is reported as not Ramadan unless forced.
func (a *app) hijriStatus(h api.HijriDate) hijri.Status {
	d, err := hijri.FromAPI(h)
	if err != nil {
		log.Debug().Err(err).Msg("no usable hijri date")
	}
	return hijri.Classify(d, a.cfg.Overrides())
}

// calendarDay is one day of a multi-day listing.
type calendarDay struct {
	Date time.Time
	Data api.Data
}

// fetchCalendarDays fetches `days` consecutive days from start using the
// month endpoint, one request per month, cached in the long tier.
func (a *app) fetchCalendarDays(ctx context.Context, start time.Time, days int, loc location) ([]calendarDay, error) {
	type yearMonth struct{ year, month int }

	c := a.localCache()
	months := make(map[yearMonth][]api.Data)

	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		ym := yearMonth{d.Year(), int(d.Month())}
		if _, ok := months[ym]; ok {
			continue
		}

		if c != nil {
			if cached := c.LoadCalendar(ym.year, ym.month, loc.Query); cached != nil {
				months[ym] = cached
				continue
			}
		}

		resp, err := newClient().Month(ctx, ym.year, ym.month, loc.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch calendar for %d-%02d: %w", ym.year, ym.month, err)
		}
		months[ym] = resp.Data
		if c != nil {
			if err := c.SaveCalendar(ym.year, ym.month, loc.Query, resp.Data); err != nil {
				log.Debug().Err(err).Msg("calendar not cached")
			}
		}
	}

	out := make([]calendarDay, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		month := months[yearMonth{d.Year(), int(d.Month())}]
		idx := d.Day() - 1
		if idx >= len(month) {
			return nil, fmt.Errorf("day %d out of range for %d-%02d (got %d days)", d.Day(), d.Year(), d.Month(), len(month))
		}
		out = append(out, calendarDay{Date: d, Data: month[idx]})
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
