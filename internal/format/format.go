// Package format renders run metrics as human-readable text.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fakeyudi/stride/internal/session"
)

// MilesPerKm converts kilometres to statute miles.
const MilesPerKm = 0.621371

// Unit labels accepted by the unit-aware helpers.
const (
	Km = "km"
	Mi = "mi"
)

// Distance renders km with two decimals in the requested unit.
func Distance(km float64, unit string) string {
	if unit == Mi {
		return fmt.Sprintf("%.2f mi", km*MilesPerKm)
	}
	return fmt.Sprintf("%.2f km", km)
}

// Pace renders a min/km pace as m:ss, or --:-- when there is none.
func Pace(minPerKm float64) string {
	if minPerKm <= 0 || math.IsInf(minPerKm, 0) || math.IsNaN(minPerKm) {
		return "--:--"
	}
	minutes := math.Floor(minPerKm)
	seconds := math.Floor((minPerKm - minutes) * 60)
	return fmt.Sprintf("%d:%02d", int(minutes), int(seconds))
}

// PaceIn renders a min/km pace in the requested unit with its suffix.
func PaceIn(minPerKm float64, unit string) string {
	if unit == Mi {
		if minPerKm <= 0 {
			return Pace(0) + " /mi"
		}
		return Pace(minPerKm/MilesPerKm) + " /mi"
	}
	return Pace(minPerKm) + " /km"
}

func PaceRange(lo, hi float64) string {
	return Pace(lo) + " - " + Pace(hi)
}

// Duration renders seconds as h:mm:ss, or mm:ss under an hour.
func Duration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// DurationWords renders seconds for speech, e.g. "5 minutes 30 seconds".
func DurationWords(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	var parts []string
	if h > 0 {
		parts = append(parts, plural(h, "hour"))
	}
	if m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	if s > 0 || (h == 0 && m == 0) {
		parts = append(parts, plural(s, "second"))
	}
	return strings.Join(parts, " ")
}

func plural(n int64, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func Calories(kcal int) string {
	return fmt.Sprintf("%d kcal", kcal)
}

// Relative renders how long ago t was, relative to now.
func Relative(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d >= 24*time.Hour:
		return plural(int64(d/(24*time.Hour)), "day") + " ago"
	case d >= time.Hour:
		return plural(int64(d/time.Hour), "hour") + " ago"
	case d >= time.Minute:
		return plural(int64(d/time.Minute), "minute") + " ago"
	}
	return "Just now"
}

// ShareSummary is the plain-text blurb for sharing a finished run.
func ShareSummary(r session.Run, unit string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder
	fmt.Fprintf(&b, "My run on %s\n\n", r.StartedAt.In(loc).Format("Mon, 02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "Distance: %s\n", Distance(r.TotalDistanceKm, unit))
	fmt.Fprintf(&b, "Duration: %s\n", Duration(r.ActiveDurationSeconds))
	fmt.Fprintf(&b, "Pace: %s\n", PaceIn(r.PaceMinPerKm, unit))
	fmt.Fprintf(&b, "Calories: %s\n\n", Calories(r.CaloriesKcal))
	b.WriteString("Tracked with stride")
	return b.String()
}
