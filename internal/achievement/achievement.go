// Package achievement tracks tiered milestones unlocked by run history.
package achievement

import (
	"fmt"
	"time"
)

// Kind is the statistic an achievement is measured against.
type Kind string

const (
	KindDistance Kind = "distance"
	KindRunCount Kind = "runs"
	KindStreak   Kind = "streak"
	KindPace     Kind = "pace"
	KindDuration Kind = "duration"
)

// Tier orders achievements of the same kind.
type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// Achievement is a single catalog entry together with its unlock state.
type Achievement struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	Tier        Tier       `json:"tier"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetValue float64    `json:"target_value"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// Reached reports whether value satisfies the target. Pace is lower-is-better
// and a zero pace means "no pace yet".
func (a Achievement) Reached(value float64) bool {
	if a.Kind == KindPace {
		return value > 0 && value <= a.TargetValue
	}
	return value >= a.TargetValue
}

// Progress returns a percentage in [0, 100] towards the target.
func (a Achievement) Progress(current float64) int {
	if a.TargetValue <= 0 || current <= 0 {
		return 0
	}
	ratio := current / a.TargetValue
	if a.Kind == KindPace {
		ratio = a.TargetValue / current
	}
	p := int(ratio * 100)
	if p > 100 {
		return 100
	}
	return p
}

type entry struct {
	kind    Kind
	tier    Tier
	target  float64
	title   string
	caption string
}

// catalog order is the order events are emitted in.
var catalog = []entry{
	{KindDistance, TierBronze, 10, "First Ten", "Run a total of 10 km"},
	{KindDistance, TierSilver, 50, "Half Century", "Run a total of 50 km"},
	{KindDistance, TierGold, 100, "Century Club", "Run a total of 100 km"},
	{KindRunCount, TierBronze, 5, "Getting Started", "Complete 5 runs"},
	{KindRunCount, TierSilver, 20, "Regular", "Complete 20 runs"},
	{KindRunCount, TierGold, 50, "Dedicated", "Complete 50 runs"},
	{KindStreak, TierBronze, 3, "On a Roll", "Run 3 days in a row"},
	{KindStreak, TierSilver, 7, "Full Week", "Run 7 days in a row"},
	{KindStreak, TierGold, 14, "Unstoppable", "Run 14 days in a row"},
	{KindPace, TierBronze, 7, "Picking Up", "Hold a 7:00 min/km pace over a run"},
	{KindPace, TierSilver, 6, "Swift", "Hold a 6:00 min/km pace over a run"},
	{KindPace, TierGold, 5, "Speedster", "Hold a 5:00 min/km pace over a run"},
	{KindDuration, TierBronze, 1800, "Half Hour", "Run for 30 minutes"},
	{KindDuration, TierSilver, 3600, "Hour of Power", "Run for 60 minutes"},
	{KindDuration, TierGold, 7200, "Endurance", "Run for 2 hours"},
}

// Catalog returns the fixed list of achievements, all locked.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	for i, e := range catalog {
		out[i] = Achievement{
			ID:          fmt.Sprintf("%s_%s", e.kind, e.tier),
			Kind:        e.kind,
			Tier:        e.tier,
			Title:       e.title,
			Description: e.caption,
			TargetValue: e.target,
		}
	}
	return out
}
