package achievement

import (
	"time"

	"github.com/fakeyudi/stride/internal/session"
	"github.com/fakeyudi/stride/internal/stats"
)

// UnlockedEvent is emitted once per achievement, the first time its target
// is reached.
type UnlockedEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// Sink receives unlock events after every evaluation.
type Sink interface {
	AchievementUnlocked(UnlockedEvent)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(UnlockedEvent)

func (f SinkFunc) AchievementUnlocked(e UnlockedEvent) { f(e) }

// Engine holds the unlock state of the catalog. It is not safe for
// concurrent use.
type Engine struct {
	items []Achievement
	sinks []Sink
}

// NewEngine returns an engine with every achievement locked.
func NewEngine(sinks ...Sink) *Engine {
	return &Engine{items: Catalog(), sinks: sinks}
}

// Subscribe registers a sink. Sinks are called in registration order.
func (e *Engine) Subscribe(s Sink) {
	e.sinks = append(e.sinks, s)
}

// Evaluate unlocks every achievement whose target is met by st. Already
// unlocked achievements are never reported again.
func (e *Engine) Evaluate(st stats.RunStatistics, now time.Time) []UnlockedEvent {
	return e.unlock(now, func(a Achievement) (float64, bool) {
		return Current(a, st), true
	})
}

// EvaluateRun checks the single-run achievements (pace and duration) against
// one run. Pace only counts for runs of at least 1 km.
func (e *Engine) EvaluateRun(r session.Run, now time.Time) []UnlockedEvent {
	return e.unlock(now, func(a Achievement) (float64, bool) {
		switch a.Kind {
		case KindPace:
			return r.PaceMinPerKm, r.TotalDistanceKm >= stats.MinPaceDistanceKm
		case KindDuration:
			return float64(r.ActiveDurationSeconds), true
		}
		return 0, false
	})
}

func (e *Engine) unlock(now time.Time, value func(Achievement) (float64, bool)) []UnlockedEvent {
	var events []UnlockedEvent
	for i := range e.items {
		a := &e.items[i]
		if a.Unlocked {
			continue
		}
		v, ok := value(*a)
		if !ok || !a.Reached(v) {
			continue
		}
		at := now
		a.Unlocked = true
		a.UnlockedAt = &at
		events = append(events, UnlockedEvent{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			UnlockedAt:  at,
		})
	}
	for _, ev := range events {
		for _, s := range e.sinks {
			s.AchievementUnlocked(ev)
		}
	}
	return events
}

// Reset locks every achievement again.
func (e *Engine) Reset() {
	for i := range e.items {
		e.items[i].Unlocked = false
		e.items[i].UnlockedAt = nil
	}
}

// Snapshot returns a copy of the catalog with current unlock state.
func (e *Engine) Snapshot() []Achievement {
	out := make([]Achievement, len(e.items))
	for i, a := range e.items {
		if a.UnlockedAt != nil {
			at := *a.UnlockedAt
			a.UnlockedAt = &at
		}
		out[i] = a
	}
	return out
}

// Restore applies persisted unlock state by id. Unknown ids are ignored and
// catalog metadata always comes from the current catalog.
func (e *Engine) Restore(states []Achievement) {
	byID := make(map[string]Achievement, len(states))
	for _, s := range states {
		byID[s.ID] = s
	}
	for i := range e.items {
		s, ok := byID[e.items[i].ID]
		if !ok || !s.Unlocked {
			continue
		}
		e.items[i].Unlocked = true
		if s.UnlockedAt != nil {
			at := *s.UnlockedAt
			e.items[i].UnlockedAt = &at
		}
	}
}

// UnlockedCount returns how many achievements are unlocked.
func (e *Engine) UnlockedCount() int {
	n := 0
	for _, a := range e.items {
		if a.Unlocked {
			n++
		}
	}
	return n
}

// Current returns the statistic an achievement is measured against, for
// progress display.
func Current(a Achievement, st stats.RunStatistics) float64 {
	switch a.Kind {
	case KindDistance:
		return st.TotalDistanceKm
	case KindRunCount:
		return float64(st.TotalRuns)
	case KindStreak:
		return float64(st.LongestStreakDays)
	case KindPace:
		return st.BestPaceMinPerKm
	case KindDuration:
		return float64(st.LongestDurationSeconds)
	}
	return 0
}
