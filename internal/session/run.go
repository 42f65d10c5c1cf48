package session

import (
	"fmt"
	"math"
	"time"

	"github.com/fakeyudi/stride/internal/geo"
)

// Run is the immutable record of a completed session. Only
// RunSession.Complete creates one.
type Run struct {
	ID                    string           `json:"id"`
	StartedAt             time.Time        `json:"started_at"`
	EndedAt               time.Time        `json:"ended_at"`
	TotalDistanceKm       float64          `json:"total_distance_km"`
	ActiveDurationSeconds int64            `json:"active_duration_seconds"`
	PaceMinPerKm          float64          `json:"pace_min_per_km"`
	CaloriesKcal          int              `json:"calories_kcal"`
	Samples               []geo.Coordinate `json:"samples"`
	Pauses                []PauseInterval  `json:"pauses,omitempty"`
}

// Validate rejects records a loader should drop before they reach the
// statistics reducer.
func (r Run) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("run: %w: empty id", ErrInvalidInput)
	case r.StartedAt.IsZero():
		return fmt.Errorf("run %s: %w: missing start time", r.ID, ErrInvalidInput)
	case !r.EndedAt.IsZero() && r.EndedAt.Before(r.StartedAt):
		return fmt.Errorf("run %s: %w: ends before it starts", r.ID, ErrInvalidInput)
	case r.ActiveDurationSeconds < 0:
		return fmt.Errorf("run %s: %w: negative duration", r.ID, ErrInvalidInput)
	case r.TotalDistanceKm < 0 || math.IsNaN(r.TotalDistanceKm) || math.IsInf(r.TotalDistanceKm, 0):
		return fmt.Errorf("run %s: %w: bad distance %v", r.ID, ErrInvalidInput, r.TotalDistanceKm)
	case r.PaceMinPerKm < 0 || math.IsNaN(r.PaceMinPerKm) || math.IsInf(r.PaceMinPerKm, 0):
		return fmt.Errorf("run %s: %w: bad pace %v", r.ID, ErrInvalidInput, r.PaceMinPerKm)
	}
	return nil
}
