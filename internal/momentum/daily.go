package momentum

import (
	"fmt"
	"strconv"
	"strings"
)

// DailyStat is one user's record for one calendar day, keyed by Date.
type DailyStat struct {
	Date               string `json:"date"`
	Fasting            bool   `json:"fasting"`
	Taraweeh           bool   `json:"taraweeh"`
	QuranPages         int    `json:"quran_pages"`
	ChallengeCompleted bool   `json:"challenge_completed"`
}

// Points granted when a daily field is first marked done.
const (
	FastingPoints   = 20
	TaraweehPoints  = 15
	ChallengePoints = 10
	PagePoints      = 1
)

// DailyFields lists the names accepted by Set.
var DailyFields = []string{"fasting", "taraweeh", "quran_pages", "challenge"}

// Set updates one field from its command-line spelling. It returns the
// document field and value that changed, and the points the change earns.
func (d *DailyStat) Set(field, value string) (string, any, float64, error) {
	switch strings.ToLower(strings.ReplaceAll(field, "-", "_")) {
	case "fasting":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", nil, 0, fmt.Errorf("fasting: %w", err)
		}
		pts := gained(d.Fasting, b, FastingPoints)
		d.Fasting = b
		return "fasting", b, pts, nil
	case "taraweeh":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", nil, 0, fmt.Errorf("taraweeh: %w", err)
		}
		pts := gained(d.Taraweeh, b, TaraweehPoints)
		d.Taraweeh = b
		return "taraweeh", b, pts, nil
	case "challenge", "challenge_completed":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", nil, 0, fmt.Errorf("challenge: %w", err)
		}
		pts := gained(d.ChallengeCompleted, b, ChallengePoints)
		d.ChallengeCompleted = b
		return "challenge_completed", b, pts, nil
	case "quran_pages", "pages":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return "", nil, 0, fmt.Errorf("quran_pages must be a non-negative integer, got %q", value)
		}
		pts := 0.0
		if n > d.QuranPages {
			pts = float64(n-d.QuranPages) * PagePoints
		}
		d.QuranPages = n
		return "quran_pages", n, pts, nil
	}
	return "", nil, 0, fmt.Errorf("unknown field %q (valid: %s)", field, strings.Join(DailyFields, ", "))
}

func gained(was, now bool, pts float64) float64 {
	if !was && now {
		return pts
	}
	return 0
}
