// Package qiyam buckets the night before Fajr into worship phases.
package qiyam

import (
	"time"

	"github.com/smokyabdulrahman/noor/internal/prayer"
)

// Phase of the night relative to the coming Fajr.
type Phase string

const (
	Night     Phase = "Night"
	LastThird Phase = "Last Third"
	Suhoor    Phase = "Suhoor"
	Daytime   Phase = "Daytime"
)

const (
	suhoorMinutes    = 90
	lastThirdMinutes = 240
)

// Act is a recommended deed for a phase.
type Act struct {
	TimeLabel string `json:"time_label"`
	Act       string `json:"act"`
	Benefit   string `json:"benefit"`
}

var acts = map[Phase][]Act{
	Suhoor: {
		{TimeLabel: "Now", Act: "Eat suhoor, even a date and water", Benefit: "There is blessing in suhoor"},
		{TimeLabel: "Before Fajr", Act: "Seek forgiveness (istighfar)", Benefit: "Praised are those who seek forgiveness before dawn"},
		{TimeLabel: "At the adhan", Act: "Make dua and stop eating", Benefit: "Begin the fast with intention"},
	},
	LastThird: {
		{TimeLabel: "Now", Act: "Pray tahajjud", Benefit: "The most virtuous prayer after the obligatory ones"},
		{TimeLabel: "After prayer", Act: "Make dua with your needs", Benefit: "The Lord descends and answers those who call"},
		{TimeLabel: "Before suhoor", Act: "Recite Quran slowly", Benefit: "The recitation at dawn is witnessed"},
	},
	Night: {
		{TimeLabel: "Before sleep", Act: "Pray witr or plan to wake for it", Benefit: "Make witr the last of your night prayer"},
		{TimeLabel: "Now", Act: "Sleep early with an intention to rise", Benefit: "Rest that serves worship is rewarded"},
	},
	Daytime: {
		{TimeLabel: "Today", Act: "Rest and prepare for tonight's prayer", Benefit: "Qiyam begins after Isha"},
	},
}

// Plan is the scheduler output.
type Plan struct {
	Phase          Phase         `json:"phase"`
	UntilFajr      time.Duration `json:"until_fajr"`
	Fajr           time.Time     `json:"fajr"`
	Maghrib        time.Time     `json:"maghrib"`
	LastThirdStart time.Time     `json:"last_third_start"`
	Acts           []Act         `json:"acts"`
}

// Schedule places now within the night before the next Fajr.
//
// Fajr rolls to the next day only when now's hour is past Fajr's hour, so
// the minutes after Fajr within the same hour come out negative and are
// reported as Daytime. The clock strings are anchored in now's location.
func Schedule(fajrClock, maghribClock string, now time.Time) (Plan, error) {
	loc := now.Location()
	fajr, err := prayer.ParseClock(fajrClock, now, loc)
	if err != nil {
		return Plan{}, err
	}
	maghrib, err := prayer.ParseClock(maghribClock, now, loc)
	if err != nil {
		return Plan{}, err
	}

	if now.Hour() > fajr.Hour() {
		fajr = fajr.AddDate(0, 0, 1)
	}
	// The night that ends at fajr began at the maghrib before it.
	for !maghrib.Before(fajr) {
		maghrib = maghrib.AddDate(0, 0, -1)
	}
	if fajr.Sub(maghrib) > 24*time.Hour {
		maghrib = maghrib.AddDate(0, 0, 1)
	}

	until := fajr.Sub(now)
	minutes := int(until / time.Minute)

	plan := Plan{
		UntilFajr:      until,
		Fajr:           fajr,
		Maghrib:        maghrib,
		LastThirdStart: fajr.Add(-fajr.Sub(maghrib) / 3),
	}

	switch {
	case until < 0:
		plan.Phase = Daytime
	case minutes <= suhoorMinutes:
		plan.Phase = Suhoor
	case minutes <= lastThirdMinutes:
		plan.Phase = LastThird
	default:
		plan.Phase = Night
	}
	plan.Acts = acts[plan.Phase]

	return plan, nil
}

// Remaining renders UntilFajr for display, "0h 0m 0s" in daytime.
func (p Plan) Remaining() string {
	return prayer.FormatCountdown(p.UntilFajr)
}
