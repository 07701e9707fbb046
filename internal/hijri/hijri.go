// Package hijri classifies islamic calendar dates into Ramadan phases.
//
// The calendar itself comes from the prayer-time provider; this package only
// interprets a day/month pair.
package hijri

import (
	"fmt"

	"github.com/smokyabdulrahman/noor/internal/api"
)

// Ramadan is the hijri month number of Ramadan.
const Ramadan = 9

// DefaultPinnedDay is the day used when Ramadan is forced without a day.
const DefaultPinnedDay = 27

// Phase is one of the three ten-day divisions of the month.
type Phase string

const (
	Mercy       Phase = "mercy"
	Forgiveness Phase = "forgiveness"
	Refuge      Phase = "refuge"
)

// Date is a hijri day-of-month (1-30) and month (1-12).
type Date struct {
	Day   int `json:"day"`
	Month int `json:"month"`
}

// FromAPI converts the provider's hijri representation.
func FromAPI(h api.HijriDate) (Date, error) {
	day, err := h.DayNumber()
	if err != nil {
		return Date{}, err
	}
	d := Date{Day: day, Month: h.Month.Number}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

func (d Date) Validate() error {
	if d.Day < 1 || d.Day > 30 {
		return fmt.Errorf("hijri day %d out of range 1-30", d.Day)
	}
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("hijri month %d out of range 1-12", d.Month)
	}
	return nil
}

// TestingOverrides forces Ramadan mode for demos and testing. It is passed
// in explicitly; nothing in this package reads persisted settings.
type TestingOverrides struct {
	ForceRamadan bool `json:"force_ramadan"`
	PinnedDay    int  `json:"pinned_day"`
}

// Apply returns the date the classifier should see.
func (o TestingOverrides) Apply(d Date) Date {
	if !o.ForceRamadan {
		return d
	}
	day := o.PinnedDay
	if day < 1 || day > 30 {
		day = DefaultPinnedDay
	}
	return Date{Day: day, Month: Ramadan}
}

// Status is the classification of a single hijri day.
type Status struct {
	Date            Date  `json:"date"`
	IsRamadan       bool  `json:"is_ramadan"`
	Phase           Phase `json:"phase"`
	IsLastTenNights bool  `json:"is_last_ten_nights"`
	IsOddNight      bool  `json:"is_odd_night"`
	Forced          bool  `json:"forced,omitempty"`
}

// Classify interprets d, after applying o.
func Classify(d Date, o TestingOverrides) Status {
	eff := o.Apply(d)
	ramadan := eff.Month == Ramadan
	lastTen := ramadan && eff.Day >= 21 && eff.Day <= 30

	return Status{
		Date:            eff,
		IsRamadan:       ramadan,
		Phase:           phaseOf(eff.Day),
		IsLastTenNights: lastTen,
		IsOddNight:      lastTen && eff.Day%2 == 1,
		Forced:          o.ForceRamadan,
	}
}

func phaseOf(day int) Phase {
	switch {
	case day <= 10:
		return Mercy
	case day <= 20:
		return Forgiveness
	default:
		return Refuge
	}
}

// NightsUntilLastTen is the number of days before night 21 begins, or 0
// outside Ramadan and once the last ten have started.
func (s Status) NightsUntilLastTen() int {
	if !s.IsRamadan || s.IsLastTenNights {
		return 0
	}
	return 21 - s.Date.Day
}

// RemainingOddNights lists the odd nights of the last ten from today on.
func (s Status) RemainingOddNights() []int {
	if !s.IsRamadan {
		return nil
	}
	var nights []int
	for n := 21; n <= 29; n += 2 {
		if n >= s.Date.Day {
			nights = append(nights, n)
		}
	}
	return nights
}
