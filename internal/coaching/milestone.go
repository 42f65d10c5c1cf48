package coaching

import (
	"fmt"
	"math"
	"time"

	"github.com/fakeyudi/stride/internal/format"
)

// DefaultStatusInterval is how often Periodic emits a status cue.
const DefaultStatusInterval = 5 * time.Minute

// MilestoneTracker announces whole-unit distance milestones and periodic
// status summaries for runs without a workout plan.
type MilestoneTracker struct {
	miles    bool
	cheer    bool
	msg      Messenger
	interval time.Duration
	last     int
	lastCue  time.Time
}

// MilestoneOption configures a MilestoneTracker.
type MilestoneOption func(*MilestoneTracker)

// WithMiles counts milestones in miles instead of kilometres.
func WithMiles() MilestoneOption {
	return func(t *MilestoneTracker) { t.miles = true }
}

// WithEncouragement appends a motivational phrase to milestone cues.
func WithEncouragement() MilestoneOption {
	return func(t *MilestoneTracker) { t.cheer = true }
}

// WithStatusInterval overrides DefaultStatusInterval.
func WithStatusInterval(d time.Duration) MilestoneOption {
	return func(t *MilestoneTracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

func NewMilestoneTracker(opts ...MilestoneOption) *MilestoneTracker {
	t := &MilestoneTracker{interval: DefaultStatusInterval}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Check returns a Milestone event the first time distanceKm crosses a new
// whole unit. Crossing several units at once yields one event for the
// highest.
func (t *MilestoneTracker) Check(distanceKm float64) (Event, bool) {
	d, unit := distanceKm, "kilometers"
	if t.miles {
		d, unit = distanceKm*format.MilesPerKm, "miles"
	}
	n := int(math.Floor(d))
	if n < 1 || n <= t.last {
		return Event{}, false
	}
	t.last = n
	word := unit
	if n == 1 {
		word = unit[:len(unit)-1]
	}
	msg := fmt.Sprintf("You've reached %d %s.", n, word)
	if t.cheer {
		msg += " " + t.msg.Encouragement(n-1)
	}
	return Event{Kind: Milestone, Priority: PriorityNormal, Message: msg}, true
}

// Periodic returns a Status event when at least the configured interval has
// passed since the previous one. The first call only arms the clock.
func (t *MilestoneTracker) Periodic(m Metrics, now time.Time) (Event, bool) {
	if t.lastCue.IsZero() {
		t.lastCue = now
		return Event{}, false
	}
	if now.Sub(t.lastCue) < t.interval {
		return Event{}, false
	}
	t.lastCue = now

	unit := format.Km
	if t.miles {
		unit = format.Mi
	}
	return Event{
		Kind:     Status,
		Priority: PriorityLow,
		Message: fmt.Sprintf("Current status: %s, time %s, pace %s.",
			format.Distance(m.DistanceKm, unit),
			format.Duration(m.ActiveSeconds),
			format.PaceIn(m.PaceMinPerKm, unit)),
	}, true
}

// Reset forgets crossed milestones and the status clock.
func (t *MilestoneTracker) Reset() {
	t.last = 0
	t.lastCue = time.Time{}
}
