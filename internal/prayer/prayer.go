package prayer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smokyabdulrahman/noor/internal/api"
)

// The six daily events the window calculator tracks, in chronological order.
const (
	Fajr    = "Fajr"
	Sunrise = "Sunrise"
	Dhuhr   = "Dhuhr"
	Asr     = "Asr"
	Maghrib = "Maghrib"
	Isha    = "Isha"
)

// ErrMissingTimings is returned by guards that run before a calculator when
// no provider data is available yet.
var ErrMissingTimings = errors.New("prayer timings not available")

// Prayer represents a single prayer with its name and time.
type Prayer struct {
	Name string
	Time time.Time
}

// AllPrayerNames lists every event the provider can return.
var AllPrayerNames = []string{
	"Fajr", "Sunrise", "Dhuhr", "Asr", "Sunset", "Maghrib", "Isha",
	"Imsak", "Midnight", "Firstthird", "Lastthird",
}

// DefaultPrayerNames is the fixed sequence used by Window.
var DefaultPrayerNames = []string{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// ShortNames maps full prayer names to short abbreviations.
var ShortNames = map[string]string{
	"Fajr":       "F",
	"Sunrise":    "S",
	"Dhuhr":      "D",
	"Asr":        "A",
	"Sunset":     "St",
	"Maghrib":    "M",
	"Isha":       "I",
	"Imsak":      "Im",
	"Midnight":   "Mi",
	"Firstthird": "F3",
	"Lastthird":  "L3",
}

// PrayerTimings is one calendar day of provider data. It is immutable for
// the day it describes.
type PrayerTimings struct {
	Fajr     string `json:"fajr"`
	Sunrise  string `json:"sunrise"`
	Dhuhr    string `json:"dhuhr"`
	Asr      string `json:"asr"`
	Maghrib  string `json:"maghrib"`
	Isha     string `json:"isha"`
	Timezone string `json:"timezone"`
	Date     string `json:"date"`
}

// FromAPI extracts the six tracked timings from a provider day.
func FromAPI(d api.Data) PrayerTimings {
	return PrayerTimings{
		Fajr:     d.Timings.Fajr,
		Sunrise:  d.Timings.Sunrise,
		Dhuhr:    d.Timings.Dhuhr,
		Asr:      d.Timings.Asr,
		Maghrib:  d.Timings.Maghrib,
		Isha:     d.Timings.Isha,
		Timezone: d.Meta.Timezone,
		Date:     d.Date.Readable,
	}
}

// IsZero reports whether no timings were supplied.
func (t PrayerTimings) IsZero() bool {
	return t.Fajr == "" && t.Sunrise == "" && t.Dhuhr == "" && t.Asr == "" && t.Maghrib == "" && t.Isha == ""
}

func (t PrayerTimings) clock(name string) string {
	switch name {
	case Fajr:
		return t.Fajr
	case Sunrise:
		return t.Sunrise
	case Dhuhr:
		return t.Dhuhr
	case Asr:
		return t.Asr
	case Maghrib:
		return t.Maghrib
	case Isha:
		return t.Isha
	}
	return ""
}

// Parse anchors the six timings on date in loc, in chronological order.
func (t PrayerTimings) Parse(date time.Time, loc *time.Location) ([]Prayer, error) {
	prayers := make([]Prayer, 0, len(DefaultPrayerNames))
	for _, name := range DefaultPrayerNames {
		raw := t.clock(name)
		pt, err := ParseClock(raw, date, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time for %s (%q): %w", name, raw, err)
		}
		prayers = append(prayers, Prayer{Name: name, Time: pt})
	}
	return prayers, nil
}

// ParseTimings converts provider timings into Prayers for the selected names.
func ParseTimings(timings api.Timings, date time.Time, loc *time.Location, selected []string) ([]Prayer, error) {
	var prayers []Prayer
	for _, name := range selected {
		raw, ok := timings.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown prayer name: %s", name)
		}

		t, err := ParseClock(raw, date, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time for %s (%q): %w", name, raw, err)
		}

		prayers = append(prayers, Prayer{Name: name, Time: t})
	}

	return prayers, nil
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatCountdown formats a duration as "%dh %dm %ds".
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%dh %dm %ds", total/3600, (total%3600)/60, total%60)
}

// ParseClock parses "15:02" or "15:02 (BST)" into a time on date in loc.
func ParseClock(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid minute in %q", raw)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc), nil
}
