// Package momentum keeps the Ramadan engagement score: a level in [0,100]
// that grows with daily actions and decays when the user is away.
package momentum

import (
	"math"
	"time"
)

const (
	MaxLevel      = 100.0
	MaxMultiplier = 2.0
	decayPoints   = 5.0
)

// Momentum is the per-user accumulator document.
type Momentum struct {
	Level         float64   `json:"current_level"`
	LastUpdate    time.Time `json:"last_update"`
	Streak        int       `json:"streak"`
	Multiplier    float64   `json:"multiplier"`
	VaultUnlocked bool      `json:"is_vault_unlocked"`
}

// New returns an empty meter with a x1 multiplier.
func New() Momentum {
	return Momentum{Multiplier: 1}
}

// Apply awards points at now and returns the updated momentum.
//
// A return between 24 and 48 hours after the last update extends the
// streak and raises the multiplier by 0.1 per streak day up to 2. Anything
// from 48 hours on resets both. After more than 12 hours away a flat 5
// points decay before the level is clamped. A NaN result keeps the previous
// level. The vault never relocks.
func Apply(m Momentum, points float64, now time.Time) Momentum {
	hours := 0.0
	if !m.LastUpdate.IsZero() {
		hours = now.Sub(m.LastUpdate).Hours()
	}
	if m.Multiplier == 0 {
		m.Multiplier = 1
	}

	switch {
	case hours > 24 && hours < 48:
		m.Streak++
		m.Multiplier = math.Min(MaxMultiplier, 1+float64(m.Streak)*0.1)
	case hours >= 48:
		m.Streak = 0
		m.Multiplier = 1
	}

	level := m.Level + points*m.Multiplier
	if hours > 12 {
		level -= decayPoints
	}
	if math.IsNaN(level) {
		level = m.Level
	}
	if math.IsNaN(level) {
		level = 0
	}
	m.Level = math.Max(0, math.Min(MaxLevel, level))

	if m.Level >= MaxLevel {
		m.VaultUnlocked = true
	}
	m.LastUpdate = now
	return m
}
