package session

import (
	"fmt"
	"time"

	"github.com/fakeyudi/stride/internal/geo"
	"github.com/google/uuid"
)

// DefaultCaloriesPerKm is the flat energy estimate applied per kilometre.
const DefaultCaloriesPerKm = 62.0

// Status is the lifecycle state of a RunSession.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// PauseInterval is a span of time during which the run was paused.
// EndedAt is nil while the pause is still in progress.
type PauseInterval struct {
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Open reports whether the pause has not been closed yet.
func (p PauseInterval) Open() bool { return p.EndedAt == nil }

// Duration returns the length of a closed pause, or the time elapsed up to
// now for an open one.
func (p PauseInterval) Duration(now time.Time) time.Duration {
	end := now
	if p.EndedAt != nil {
		end = *p.EndedAt
	}
	if end.Before(p.StartedAt) {
		return 0
	}
	return end.Sub(p.StartedAt)
}

// RunSession is the mutable state of one in-progress run. It is not safe for
// concurrent use; callers serialise access.
type RunSession struct {
	ID        string           `json:"id"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   *time.Time       `json:"ended_at,omitempty"`
	Samples   []geo.Coordinate `json:"samples"`
	Pauses    []PauseInterval  `json:"pauses"`
	Status    Status           `json:"status"`

	TotalDistanceKm       float64 `json:"total_distance_km"`
	ActiveDurationSeconds int64   `json:"active_duration_seconds"`
	PaceMinPerKm          float64 `json:"pace_min_per_km"`
	CaloriesKcal          int     `json:"calories_kcal"`

	CaloriesPerKm float64   `json:"calories_per_km"`
	UpdatedAt     time.Time `json:"updated_at"` // clock used for the last recompute
}

// Option configures a RunSession at Start.
type Option func(*RunSession)

// WithCaloriesPerKm overrides DefaultCaloriesPerKm.
func WithCaloriesPerKm(kcal float64) Option {
	return func(s *RunSession) { s.CaloriesPerKm = kcal }
}

// WithID sets a caller-chosen session id instead of a generated UUID.
func WithID(id string) Option {
	return func(s *RunSession) { s.ID = id }
}

// Start creates a new active session beginning at now.
func Start(now time.Time, opts ...Option) *RunSession {
	s := &RunSession{
		ID:            uuid.NewString(),
		StartedAt:     now,
		Samples:       []geo.Coordinate{},
		Pauses:        []PauseInterval{},
		Status:        StatusActive,
		CaloriesPerKm: DefaultCaloriesPerKm,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddSample appends a location sample to an active session and recomputes
// every derived metric. The sample timestamp is the session clock; a sample
// older than the previous update is kept but never winds the clock back.
func (s *RunSession) AddSample(c geo.Coordinate) error {
	if s.Status != StatusActive {
		return s.stateError("add sample")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("add sample: %w: %v", ErrInvalidInput, err)
	}

	if n := len(s.Samples); n > 0 {
		s.TotalDistanceKm += geo.DistanceKm(s.Samples[n-1], c)
	}
	s.Samples = append(s.Samples, c)

	s.recompute(s.clock(time.UnixMilli(c.Timestamp)))
	return nil
}

// Pause opens a new pause interval. Valid only while active.
func (s *RunSession) Pause(now time.Time) error {
	if s.Status != StatusActive {
		return s.stateError("pause")
	}
	now = s.clock(now)
	s.Pauses = append(s.Pauses, PauseInterval{StartedAt: now})
	s.Status = StatusPaused
	s.recompute(now)
	return nil
}

// Resume closes the open pause interval. Valid only while paused.
func (s *RunSession) Resume(now time.Time) error {
	if s.Status != StatusPaused {
		return s.stateError("resume")
	}
	now = s.clock(now)
	s.closePause(now)
	s.Status = StatusActive
	s.recompute(now)
	return nil
}

// Complete ends the session and returns its immutable Run snapshot. A second
// call fails with ErrInvalidState so double completion is observable.
func (s *RunSession) Complete(now time.Time) (Run, error) {
	if s.Status == StatusCompleted {
		return Run{}, s.stateError("complete")
	}
	now = s.clock(now)
	s.closePause(now)
	end := now
	s.EndedAt = &end
	s.Status = StatusCompleted
	s.recompute(now)
	return s.snapshot(), nil
}

// Refresh recomputes live duration and pace at now without mutating samples
// or pauses. It does nothing once the session is completed.
func (s *RunSession) Refresh(now time.Time) {
	if s.Status == StatusCompleted || now.Before(s.UpdatedAt) {
		return
	}
	s.recompute(now)
}

// Snapshot returns the current metrics as a Run without completing the
// session. Used for per-run achievement checks on a live session.
func (s *RunSession) Snapshot() Run {
	return s.snapshot()
}

// clock returns now, or the last update time if now is older. Samples may
// carry device timestamps ahead of the caller's wall clock.
func (s *RunSession) clock(now time.Time) time.Time {
	if now.Before(s.UpdatedAt) {
		return s.UpdatedAt
	}
	return now
}

func (s *RunSession) closePause(now time.Time) {
	if n := len(s.Pauses); n > 0 && s.Pauses[n-1].Open() {
		end := now
		s.Pauses[n-1].EndedAt = &end
	}
}

// recompute derives duration, pace and calories. Distance is accumulated
// incrementally by AddSample and never recomputed here.
func (s *RunSession) recompute(now time.Time) {
	s.UpdatedAt = now

	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}

	var paused time.Duration
	for _, p := range s.Pauses {
		paused += p.Duration(end)
	}

	active := end.Sub(s.StartedAt) - paused
	if active < 0 {
		active = 0
	}
	s.ActiveDurationSeconds = int64(active / time.Second)
	s.PaceMinPerKm = Pace(s.ActiveDurationSeconds, s.TotalDistanceKm)
	s.CaloriesKcal = Calories(s.TotalDistanceKm, s.CaloriesPerKm)
}

func (s *RunSession) snapshot() Run {
	samples := make([]geo.Coordinate, len(s.Samples))
	copy(samples, s.Samples)
	pauses := make([]PauseInterval, len(s.Pauses))
	copy(pauses, s.Pauses)

	var ended time.Time
	if s.EndedAt != nil {
		ended = *s.EndedAt
	}
	return Run{
		ID:                    s.ID,
		StartedAt:             s.StartedAt,
		EndedAt:               ended,
		TotalDistanceKm:       s.TotalDistanceKm,
		ActiveDurationSeconds: s.ActiveDurationSeconds,
		PaceMinPerKm:          s.PaceMinPerKm,
		CaloriesKcal:          s.CaloriesKcal,
		Samples:               samples,
		Pauses:                pauses,
	}
}

func (s *RunSession) stateError(op string) error {
	return fmt.Errorf("%s: session is %s: %w", op, s.Status, ErrInvalidState)
}

// Pace returns minutes per kilometre, or 0 when there is no distance or time.
func Pace(activeSeconds int64, distanceKm float64) float64 {
	if distanceKm <= 0 || activeSeconds <= 0 {
		return 0
	}
	return (float64(activeSeconds) / 60.0) / distanceKm
}

// Calories returns the flat per-kilometre estimate truncated to whole kcal.
func Calories(distanceKm, perKm float64) int {
	return int(distanceKm * perKm)
}
