package prayer

import "time"

// WindowResult describes where now falls within the day's prayer sequence.
type WindowResult struct {
	Active     string        `json:"active"`
	ActiveTime time.Time     `json:"active_time"`
	Next       string        `json:"next"`
	NextTime   time.Time     `json:"next_time"`
	Progress   float64       `json:"progress"` // 0-100
	Remaining  time.Duration `json:"remaining"`
}

// Countdown renders Remaining as "%dh %dm %ds".
func (w WindowResult) Countdown() string {
	return FormatCountdown(w.Remaining)
}

// NextPrayer returns the upcoming prayer as a Prayer value.
func (w WindowResult) NextPrayer() Prayer {
	return Prayer{Name: w.Next, Time: w.NextTime}
}

// Window computes the active and next prayer for now.
//
// The timings are anchored on now's calendar date in now's location: the
// provider's wall-clock strings and now are assumed to share a timezone.
// After Isha the next prayer is tomorrow's Fajr at today's Fajr clock time;
// before Fajr the active prayer is yesterday's Isha.
func Window(t PrayerTimings, now time.Time) (WindowResult, error) {
	today, err := t.Parse(now, now.Location())
	if err != nil {
		return WindowResult{}, err
	}

	last := len(today) - 1
	idx := -1
	for i := range today {
		if today[i].Time.After(now) {
			idx = i
			break
		}
	}

	var prev, next Prayer
	switch idx {
	case -1:
		prev = today[last]
		next = Prayer{Name: today[0].Name, Time: today[0].Time.AddDate(0, 0, 1)}
	case 0:
		prev = Prayer{Name: today[last].Name, Time: today[last].Time.AddDate(0, 0, -1)}
		next = today[0]
	default:
		prev = today[idx-1]
		next = today[idx]
	}

	return WindowResult{
		Active:     prev.Name,
		ActiveTime: prev.Time,
		Next:       next.Name,
		NextTime:   next.Time,
		Progress:   progress(prev.Time, next.Time, now),
		Remaining:  next.Time.Sub(now),
	}, nil
}

func progress(prev, next, now time.Time) float64 {
	span := next.Sub(prev)
	if span <= 0 {
		return 100
	}
	p := float64(now.Sub(prev)) / float64(span) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
