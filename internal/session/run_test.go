package session

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestRunValidate(t *testing.T) {
	good := Run{ID: "r1", StartedAt: t0, EndedAt: t0.Add(time.Hour), TotalDistanceKm: 5, ActiveDurationSeconds: 1800, PaceMinPerKm: 6}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid run rejected: %v", err)
	}

	bad := map[string]func(r *Run){
		"empty id":      func(r *Run) { r.ID = "" },
		"no start":      func(r *Run) { r.StartedAt = time.Time{} },
		"ends early":    func(r *Run) { r.EndedAt = t0.Add(-time.Minute) },
		"neg duration":  func(r *Run) { r.ActiveDurationSeconds = -1 },
		"nan distance":  func(r *Run) { r.TotalDistanceKm = math.NaN() },
		"negative pace": func(r *Run) { r.PaceMinPerKm = -2 },
	}
	for name, mutate := range bad {
		t.Run(name, func(t *testing.T) {
			r := good
			mutate(&r)
			if err := r.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestPaceHelper(t *testing.T) {
	if Pace(0, 5) != 0 || Pace(600, 0) != 0 {
		t.Fatal("expected zero pace for missing distance or time")
	}
	if got := Pace(1800, 5); got != 6 {
		t.Fatalf("pace = %v, want 6", got)
	}
}
