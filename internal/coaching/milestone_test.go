package coaching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMilestoneEncouragement(t *testing.T) {
	m := NewMilestoneTracker(WithEncouragement())
	ev, ok := m.Check(1.2)
	assert.True(t, ok)
	assert.Equal(t, "You've reached 1 kilometer. You're doing great! Keep it up!", ev.Message)

	ev, _ = m.Check(2.05)
	assert.Equal(t, "You've reached 2 kilometers. Looking strong! Keep pushing!", ev.Message)
}

func TestMilestoneKilometres(t *testing.T) {
	m := NewMilestoneTracker()
	_, ok := m.Check(0.99)
	assert.False(t, ok)

	ev, ok := m.Check(1.01)
	assert.True(t, ok)
	assert.Equal(t, Milestone, ev.Kind)
	assert.Equal(t, "You've reached 1 kilometer.", ev.Message)

	_, ok = m.Check(1.5)
	assert.False(t, ok, "same milestone is announced once")

	ev, ok = m.Check(3.2)
	assert.True(t, ok)
	assert.Equal(t, "You've reached 3 kilometers.", ev.Message)

	m.Reset()
	_, ok = m.Check(3.2)
	assert.True(t, ok)
}

func TestMilestoneMiles(t *testing.T) {
	m := NewMilestoneTracker(WithMiles())
	_, ok := m.Check(1.5)
	assert.False(t, ok, "1.5 km is under a mile")
	ev, ok := m.Check(1.7)
	assert.True(t, ok)
	assert.Equal(t, "You've reached 1 mile.", ev.Message)
}

func TestPeriodicStatus(t *testing.T) {
	m := NewMilestoneTracker(WithStatusInterval(time.Minute))
	now := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	metrics := Metrics{DistanceKm: 2.5, ActiveSeconds: 750, PaceMinPerKm: 5}

	_, ok := m.Periodic(metrics, now)
	assert.False(t, ok, "first call arms the clock")
	_, ok = m.Periodic(metrics, now.Add(59*time.Second))
	assert.False(t, ok)

	ev, ok := m.Periodic(metrics, now.Add(time.Minute))
	assert.True(t, ok)
	assert.Equal(t, Status, ev.Kind)
	assert.Equal(t, "Current status: 2.50 km, time 12:30, pace 5:00 /km.", ev.Message)
}
