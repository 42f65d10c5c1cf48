// Package stats folds a history of completed runs into aggregate statistics.
// Compute is pure and safe to call concurrently on read-only run slices.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/fakeyudi/stride/internal/session"
)

// WeekKey identifies an ISO-8601 week.
type WeekKey struct {
	Year int
	Week int
}

func (k WeekKey) String() string { return fmt.Sprintf("%04d-W%02d", k.Year, k.Week) }

// MarshalText lets WeekKey be used as a JSON object key.
func (k WeekKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *WeekKey) UnmarshalText(b []byte) error {
	_, err := fmt.Sscanf(string(b), "%04d-W%02d", &k.Year, &k.Week)
	return err
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (k MonthKey) String() string { return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month)) }

func (k MonthKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *MonthKey) UnmarshalText(b []byte) error {
	var m int
	if _, err := fmt.Sscanf(string(b), "%04d-%02d", &k.Year, &m); err != nil {
		return err
	}
	k.Month = time.Month(m)
	return nil
}

// Bucket accumulates distance and run count for one calendar period.
type Bucket struct {
	DistanceKm float64 `json:"distance_km"`
	Runs       int     `json:"runs"`
}

// MinPaceDistanceKm is the shortest run whose pace counts as a best pace.
const MinPaceDistanceKm = 1.0

// RunStatistics is derived wholesale from a run collection and never
// persisted as a source of truth.
type RunStatistics struct {
	TotalDistanceKm      float64 `json:"total_distance_km"`
	TotalDurationSeconds int64   `json:"total_duration_seconds"`
	TotalCaloriesKcal    int     `json:"total_calories_kcal"`
	TotalRuns            int     `json:"total_runs"`
	AveragePaceMinPerKm  float64 `json:"average_pace_min_per_km"`

	BestPaceMinPerKm       float64 `json:"best_pace_min_per_km"`
	BestPaceRunID          string  `json:"best_pace_run_id,omitempty"`
	LongestDistanceKm      float64 `json:"longest_distance_km"`
	LongestDistanceRunID   string  `json:"longest_distance_run_id,omitempty"`
	LongestDurationSeconds int64   `json:"longest_duration_seconds"`
	LongestDurationRunID   string  `json:"longest_duration_run_id,omitempty"`

	Weekly           map[WeekKey]Bucket   `json:"weekly"`
	Monthly          map[MonthKey]Bucket  `json:"monthly"`
	HourlyDistanceKm map[int]float64      `json:"hourly_distance_km"`
	WeekdayRuns      map[time.Weekday]int `json:"weekday_runs"`

	CurrentStreakDays  int        `json:"current_streak_days"`
	LongestStreakDays  int        `json:"longest_streak_days"`
	AverageRunsPerWeek float64    `json:"average_runs_per_week"`
	LastRunDate        *time.Time `json:"last_run_date,omitempty"`
}

type options struct {
	now time.Time
	loc *time.Location
}

// Option configures Compute.
type Option func(*options)

// WithNow fixes "today" for the current-streak walk.
func WithNow(now time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the timezone used for calendar dates, weeks and hours.
// It must match the zone in which run start times were captured.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// Compute reduces runs into RunStatistics. The input slice is not modified.
func Compute(runs []session.Run, opts ...Option) RunStatistics {
	o := options{now: time.Now(), loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}

	st := empty()
	if len(runs) == 0 {
		return st
	}

	ordered := make([]session.Run, len(runs))
	copy(ordered, runs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartedAt.Before(ordered[j].StartedAt)
	})

	days := make(map[time.Time]struct{})
	for _, r := range ordered {
		st.TotalRuns++
		st.TotalDistanceKm += r.TotalDistanceKm
		st.TotalDurationSeconds += r.ActiveDurationSeconds
		st.TotalCaloriesKcal += r.CaloriesKcal

		if r.PaceMinPerKm > 0 && r.TotalDistanceKm >= MinPaceDistanceKm &&
			(st.BestPaceRunID == "" || r.PaceMinPerKm < st.BestPaceMinPerKm) {
			st.BestPaceMinPerKm = r.PaceMinPerKm
			st.BestPaceRunID = r.ID
		}
		if r.TotalDistanceKm > st.LongestDistanceKm {
			st.LongestDistanceKm = r.TotalDistanceKm
			st.LongestDistanceRunID = r.ID
		}
		if r.ActiveDurationSeconds > st.LongestDurationSeconds {
			st.LongestDurationSeconds = r.ActiveDurationSeconds
			st.LongestDurationRunID = r.ID
		}

		local := r.StartedAt.In(o.loc)
		days[civilDay(local)] = struct{}{}

		isoYear, isoWeek := local.ISOWeek()
		wk := WeekKey{Year: isoYear, Week: isoWeek}
		b := st.Weekly[wk]
		b.DistanceKm += r.TotalDistanceKm
		b.Runs++
		st.Weekly[wk] = b

		mk := MonthKey{Year: local.Year(), Month: local.Month()}
		b = st.Monthly[mk]
		b.DistanceKm += r.TotalDistanceKm
		b.Runs++
		st.Monthly[mk] = b

		st.HourlyDistanceKm[local.Hour()] += r.TotalDistanceKm
		st.WeekdayRuns[local.Weekday()]++

		if st.LastRunDate == nil || r.StartedAt.After(*st.LastRunDate) {
			last := r.StartedAt
			st.LastRunDate = &last
		}
	}

	if st.TotalDistanceKm > 0 {
		st.AveragePaceMinPerKm = float64(st.TotalDurationSeconds) / (st.TotalDistanceKm * 60)
	}
	if len(st.Weekly) > 0 {
		st.AverageRunsPerWeek = float64(st.TotalRuns) / float64(len(st.Weekly))
	}

	st.CurrentStreakDays = currentStreak(days, civilDay(o.now.In(o.loc)))
	st.LongestStreakDays = longestStreak(days)
	return st
}

func empty() RunStatistics {
	return RunStatistics{
		Weekly:           map[WeekKey]Bucket{},
		Monthly:          map[MonthKey]Bucket{},
		HourlyDistanceKm: map[int]float64{},
		WeekdayRuns:      map[time.Weekday]int{},
	}
}

// MostActiveWeekday returns the weekday with the most runs. Ties go to the
// earlier weekday (Sunday first).
func (s RunStatistics) MostActiveWeekday() (time.Weekday, bool) {
	best, top := time.Sunday, 0
	for d := time.Sunday; d <= time.Saturday; d++ {
		if n := s.WeekdayRuns[d]; n > top {
			best, top = d, n
		}
	}
	return best, top > 0
}

// MostActiveHour returns the hour of day with the most distance covered.
func (s RunStatistics) MostActiveHour() (int, bool) {
	best, top := 0, 0.0
	for h := 0; h < 24; h++ {
		if km := s.HourlyDistanceKm[h]; km > top {
			best, top = h, km
		}
	}
	return best, top > 0
}

// Weeks returns the weekly bucket keys in chronological order.
func (s RunStatistics) Weeks() []WeekKey {
	keys := make([]WeekKey, 0, len(s.Weekly))
	for k := range s.Weekly {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Week < keys[j].Week
	})
	return keys
}

// Months returns the monthly bucket keys in chronological order.
func (s RunStatistics) Months() []MonthKey {
	keys := make([]MonthKey, 0, len(s.Monthly))
	for k := range s.Monthly {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Month < keys[j].Month
	})
	return keys
}
