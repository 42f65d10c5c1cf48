// Package report renders completed runs as shareable JSON or Markdown
// documents and parses them back.
package report

import (
	"time"

	"github.com/fakeyudi/stride/internal/format"
	"github.com/fakeyudi/stride/internal/geo"
	"github.com/fakeyudi/stride/internal/session"
)

// Report is the complete, renderable representation of one run.
type Report struct {
	Run     RunMeta                 `json:"run"`
	Splits  []Split                 `json:"splits"`
	Pauses  []session.PauseInterval `json:"pauses"`
	Samples []geo.Coordinate        `json:"samples"`
}

// RunMeta holds summary metadata for the report header.
type RunMeta struct {
	ID                    string    `json:"id"`
	StartedAt             time.Time `json:"started_at"`
	EndedAt               time.Time `json:"ended_at"`
	DistanceKm            float64   `json:"distance_km"`
	ActiveDurationSeconds int64     `json:"active_duration_seconds"`
	PaceMinPerKm          float64   `json:"pace_min_per_km"`
	CaloriesKcal          int       `json:"calories_kcal"`
	Units                 string    `json:"units"`
	Runner                string    `json:"runner,omitempty"`
}

// Split is the time taken for one whole kilometre.
type Split struct {
	Km              int     `json:"km"`
	DurationSeconds int64   `json:"duration_seconds"`
	PaceMinPerKm    float64 `json:"pace_min_per_km"`
}

// New builds a report for r.
func New(r session.Run, runner, units string) *Report {
	if units == "" {
		units = format.Km
	}
	return &Report{
		Run: RunMeta{
			ID:                    r.ID,
			StartedAt:             r.StartedAt,
			EndedAt:               r.EndedAt,
			DistanceKm:            r.TotalDistanceKm,
			ActiveDurationSeconds: r.ActiveDurationSeconds,
			PaceMinPerKm:          r.PaceMinPerKm,
			CaloriesKcal:          r.CaloriesKcal,
			Units:                 units,
			Runner:                runner,
		},
		Splits:  Splits(r),
		Pauses:  nonNil(r.Pauses),
		Samples: nonNil(r.Samples),
	}
}

// Splits walks the samples and records how long each whole kilometre took,
// measured between the samples on either side of the boundary. Time spent
// paused inside a split is not counted.
func Splits(r session.Run) []Split {
	splits := []Split{}
	if len(r.Samples) < 2 {
		return splits
	}
	var km float64
	mark := r.Samples[0].Timestamp
	for i := 1; i < len(r.Samples); i++ {
		km += geo.DistanceKm(r.Samples[i-1], r.Samples[i])
		for int(km) > len(splits) {
			ts := r.Samples[i].Timestamp
			secs := (ts - mark - pausedMillis(r.Pauses, mark, ts)) / 1000
			if secs < 0 {
				secs = 0
			}
			splits = append(splits, Split{
				Km:              len(splits) + 1,
				DurationSeconds: secs,
				PaceMinPerKm:    float64(secs) / 60,
			})
			mark = ts
		}
	}
	return splits
}

// pausedMillis is the overlap of the pauses with [from, to] in ms.
func pausedMillis(pauses []session.PauseInterval, from, to int64) int64 {
	var total int64
	for _, p := range pauses {
		start := p.StartedAt.UnixMilli()
		end := to
		if p.EndedAt != nil {
			end = p.EndedAt.UnixMilli()
		}
		if start < from {
			start = from
		}
		if end > to {
			end = to
		}
		if end > start {
			total += end - start
		}
	}
	return total
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ToRun rebuilds the run a report was made from.
func (r *Report) ToRun() session.Run {
	return session.Run{
		ID:                    r.Run.ID,
		StartedAt:             r.Run.StartedAt,
		EndedAt:               r.Run.EndedAt,
		TotalDistanceKm:       r.Run.DistanceKm,
		ActiveDurationSeconds: r.Run.ActiveDurationSeconds,
		PaceMinPerKm:          r.Run.PaceMinPerKm,
		CaloriesKcal:          r.Run.CaloriesKcal,
		Samples:               r.Samples,
		Pauses:                r.Pauses,
	}
}
