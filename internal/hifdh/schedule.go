// Package hifdh schedules Quran memorization reviews on a fixed interval ladder.
package hifdh

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Status of an ayah in the memorization cycle.
type Status string

const (
	Learning      Status = "Learning"
	Memorized     Status = "Memorized"
	NeedsRevision Status = "Needs Revision"
	Mastered      Status = "Mastered"
)

// ParseStatus accepts the display names and their lower-case, hyphenated forms.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))) {
	case "learning":
		return Learning, nil
	case "memorized":
		return Memorized, nil
	case "needs revision", "revision":
		return NeedsRevision, nil
	case "mastered":
		return Mastered, nil
	}
	return "", fmt.Errorf("unknown status %q: want memorized, mastered or needs-revision", s)
}

// Intervals is the review ladder in days.
var Intervals = []int{1, 3, 7, 14, 30, 90}

// Key addresses an ayah by surah and verse number.
type Key struct {
	Surah int `json:"surah"`
	Ayah  int `json:"ayah"`
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d", k.Surah, k.Ayah)
}

// ParseKey parses "surah:ayah", e.g. "2:255".
func ParseKey(s string) (Key, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Key{}, fmt.Errorf("invalid ayah %q: want surah:ayah", s)
	}
	surah, err := strconv.Atoi(a)
	if err != nil || surah < 1 || surah > 114 {
		return Key{}, fmt.Errorf("invalid surah in %q: want 1-114", s)
	}
	ayah, err := strconv.Atoi(b)
	if err != nil || ayah < 1 || ayah > 286 {
		return Key{}, fmt.Errorf("invalid ayah number in %q", s)
	}
	return Key{Surah: surah, Ayah: ayah}, nil
}

// AyahProgress is the review state of one ayah.
type AyahProgress struct {
	Key
	Status       Status    `json:"status"`
	Interval     int       `json:"interval"`
	LastReviewed time.Time `json:"last_reviewed"`
	NextReview   time.Time `json:"next_review"`
	Repetitions  int       `json:"repetitions"`
	Accuracy     *float64  `json:"accuracy,omitempty"`
}

// Review applies one review outcome and returns the new state.
//
// Mastered climbs one rung of the ladder, Needs Revision drops back to the
// first rung and Memorized keeps the current rung. A record with no rung
// yet (interval 0) is placed on the first rung.
func Review(prev *AyahProgress, key Key, status Status, accuracy *float64, now time.Time) (AyahProgress, error) {
	next := AyahProgress{Key: key}
	if prev != nil {
		next = *prev
		next.Key = key
	}

	switch status {
	case Mastered:
		next.Interval = climb(next.Interval)
	case NeedsRevision:
		next.Interval = Intervals[0]
	case Memorized:
		next.Interval = max(next.Interval, Intervals[0])
	default:
		return AyahProgress{}, fmt.Errorf("cannot review with status %q", status)
	}

	if accuracy != nil {
		if math.IsNaN(*accuracy) || *accuracy < 0 || *accuracy > 100 {
			return AyahProgress{}, fmt.Errorf("accuracy %.1f out of range 0-100", *accuracy)
		}
		a := *accuracy
		next.Accuracy = &a
	}

	next.Status = status
	next.LastReviewed = now
	next.NextReview = now.AddDate(0, 0, next.Interval)
	next.Repetitions++
	return next, nil
}

// climb returns the first rung above cur, capped at the top of the ladder.
func climb(cur int) int {
	for _, iv := range Intervals {
		if iv > cur {
			return iv
		}
	}
	return Intervals[len(Intervals)-1]
}

// Due returns the records whose review date has arrived and that are not
// yet mastered, ordered by surah and ayah.
func Due(records []AyahProgress, now time.Time) []AyahProgress {
	var due []AyahProgress
	for _, r := range records {
		if r.Status != Mastered && !r.NextReview.After(now) {
			due = append(due, r)
		}
	}
	SortByKey(due)
	return due
}

// SortByKey orders records by surah, then ayah.
func SortByKey(records []AyahProgress) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Surah != records[j].Surah {
			return records[i].Surah < records[j].Surah
		}
		return records[i].Ayah < records[j].Ayah
	})
}

// Summary counts records per status.
type Summary struct {
	Total  int            `json:"total"`
	ByKind map[Status]int `json:"by_status"`
	Due    int            `json:"due"`
}

// Summarize counts records by status and how many are due at now.
func Summarize(records []AyahProgress, now time.Time) Summary {
	s := Summary{Total: len(records), ByKind: make(map[Status]int)}
	for _, r := range records {
		s.ByKind[r.Status]++
	}
	s.Due = len(Due(records, now))
	return s
}
