package stats

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fakeyudi/stride/internal/session"
)

func runAt(id string, start time.Time, km float64, secs int64) session.Run {
	return session.Run{
		ID:                    id,
		StartedAt:             start,
		EndedAt:               start.Add(time.Duration(secs) * time.Second),
		TotalDistanceKm:       km,
		ActiveDurationSeconds: secs,
		PaceMinPerKm:          session.Pace(secs, km),
		CaloriesKcal:          session.Calories(km, session.DefaultCaloriesPerKm),
	}
}

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestComputeEmpty(t *testing.T) {
	st := Compute(nil, WithLocation(time.UTC))
	assert.Zero(t, st.TotalRuns)
	assert.Zero(t, st.TotalDistanceKm)
	assert.Zero(t, st.CurrentStreakDays)
	assert.Zero(t, st.LongestStreakDays)
	assert.Nil(t, st.LastRunDate)
	require.NotNil(t, st.Weekly)
	require.NotNil(t, st.Monthly)
	require.NotNil(t, st.HourlyDistanceKm)
	require.NotNil(t, st.WeekdayRuns)
	assert.Empty(t, st.Weekly)
}

func TestStreakScenario(t *testing.T) {
	runs := []session.Run{
		runAt("d5", date(2024, 1, 5, 7), 5, 1800),
		runAt("d1", date(2024, 1, 1, 7), 5, 1800),
		runAt("d3", date(2024, 1, 3, 7), 5, 1800),
		runAt("d2", date(2024, 1, 2, 7), 5, 1800),
	}
	st := Compute(runs, WithNow(date(2024, 1, 5, 20)), WithLocation(time.UTC))
	assert.Equal(t, 3, st.LongestStreakDays)
	assert.Equal(t, 1, st.CurrentStreakDays)

	st = Compute(runs, WithNow(date(2024, 1, 4, 20)), WithLocation(time.UTC))
	assert.Equal(t, 0, st.CurrentStreakDays, "today without a run breaks the current streak")

	st = Compute(runs, WithNow(date(2024, 1, 3, 9)), WithLocation(time.UTC))
	assert.Equal(t, 3, st.CurrentStreakDays)
}

func TestStreakCountsDistinctDays(t *testing.T) {
	runs := []session.Run{
		runAt("a", date(2024, 2, 28, 6), 3, 900),
		runAt("b", date(2024, 2, 28, 18), 3, 900),
		runAt("c", date(2024, 2, 29, 6), 3, 900),
		runAt("d", date(2024, 3, 1, 6), 3, 900),
	}
	st := Compute(runs, WithNow(date(2024, 3, 1, 12)), WithLocation(time.UTC))
	assert.Equal(t, 3, st.LongestStreakDays, "leap day continues the streak")
	assert.Equal(t, 3, st.CurrentStreakDays)
}

func TestStreakUsesLocalCalendar(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2024-01-01 20:00 UTC is already 2024-01-02 in Tokyo.
	runs := []session.Run{
		runAt("a", date(2024, 1, 1, 0), 3, 900),
		runAt("b", date(2024, 1, 1, 20), 3, 900),
	}
	assert.Equal(t, 1, Compute(runs, WithLocation(time.UTC), WithNow(date(2024, 1, 1, 23))).LongestStreakDays)
	assert.Equal(t, 2, Compute(runs, WithLocation(tokyo), WithNow(date(2024, 1, 1, 23))).LongestStreakDays)
}

func TestBestPaceIgnoresShortRuns(t *testing.T) {
	runs := []session.Run{
		runAt("sprint", date(2024, 1, 1, 7), 0.2, 36),
		runAt("steady", date(2024, 1, 2, 7), 5, 1800),
	}
	st := Compute(runs, WithLocation(time.UTC), WithNow(date(2024, 1, 3, 0)))
	assert.Equal(t, "steady", st.BestPaceRunID)
	assert.InDelta(t, 6.0, st.BestPaceMinPerKm, 1e-9)

	st = Compute(runs[:1], WithLocation(time.UTC))
	assert.Zero(t, st.BestPaceMinPerKm)
	assert.Empty(t, st.BestPaceRunID)
}

func TestTotalsAndRecords(t *testing.T) {
	runs := []session.Run{
		runAt("slow-long", date(2024, 1, 1, 7), 10, 4200),
		runAt("fast", date(2024, 1, 2, 7), 5, 1500),
		runAt("fast-tie", date(2024, 1, 3, 7), 5, 1500),
		runAt("zero", date(2024, 1, 4, 7), 0, 600),
	}
	st := Compute(runs, WithLocation(time.UTC), WithNow(date(2024, 1, 10, 0)))

	assert.Equal(t, 4, st.TotalRuns)
	assert.InDelta(t, 20, st.TotalDistanceKm, 1e-9)
	assert.Equal(t, int64(7800), st.TotalDurationSeconds)
	assert.Equal(t, 1240, st.TotalCaloriesKcal)
	assert.InDelta(t, 7800.0/(20*60), st.AveragePaceMinPerKm, 1e-9)

	assert.Equal(t, "fast", st.BestPaceRunID, "first run wins a pace tie")
	assert.InDelta(t, 5.0, st.BestPaceMinPerKm, 1e-9)
	assert.Equal(t, "slow-long", st.LongestDistanceRunID)
	assert.Equal(t, "slow-long", st.LongestDurationRunID)
	assert.Equal(t, int64(4200), st.LongestDurationSeconds)
	require.NotNil(t, st.LastRunDate)
	assert.True(t, st.LastRunDate.Equal(date(2024, 1, 4, 7)))
}

func TestBuckets(t *testing.T) {
	runs := []session.Run{
		// 2023-12-31 is a Sunday in ISO week 2023-W52; 2024-01-01 starts 2024-W01.
		runAt("a", date(2023, 12, 31, 6), 4, 1200),
		runAt("b", date(2024, 1, 1, 6), 6, 1800),
		runAt("c", date(2024, 1, 2, 18), 8, 2400),
	}
	st := Compute(runs, WithLocation(time.UTC))

	assert.Equal(t, Bucket{DistanceKm: 4, Runs: 1}, st.Weekly[WeekKey{2023, 52}])
	assert.Equal(t, Bucket{DistanceKm: 14, Runs: 2}, st.Weekly[WeekKey{2024, 1}])
	assert.Equal(t, Bucket{DistanceKm: 4, Runs: 1}, st.Monthly[MonthKey{2023, time.December}])
	assert.Equal(t, Bucket{DistanceKm: 14, Runs: 2}, st.Monthly[MonthKey{2024, time.January}])
	assert.InDelta(t, 10, st.HourlyDistanceKm[6], 1e-9)
	assert.InDelta(t, 8, st.HourlyDistanceKm[18], 1e-9)
	assert.Equal(t, 1, st.WeekdayRuns[time.Sunday])
	assert.Equal(t, 1, st.WeekdayRuns[time.Monday])
	assert.InDelta(t, 1.5, st.AverageRunsPerWeek, 1e-9)

	assert.Equal(t, []WeekKey{{2023, 52}, {2024, 1}}, st.Weeks())
	assert.Equal(t, []MonthKey{{2023, time.December}, {2024, time.January}}, st.Months())

	hour, ok := st.MostActiveHour()
	assert.True(t, ok)
	assert.Equal(t, 6, hour)
	wd, ok := st.MostActiveWeekday()
	assert.True(t, ok)
	assert.Equal(t, time.Sunday, wd)
}

func TestStatisticsMarshalJSON(t *testing.T) {
	st := Compute([]session.Run{runAt("a", date(2024, 3, 4, 6), 5, 1500)}, WithLocation(time.UTC))
	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"2024-W10"`)
	assert.Contains(t, string(data), `"2024-03"`)

	var back RunStatistics
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, st.Weekly, back.Weekly)
	assert.Equal(t, st.Monthly, back.Monthly)
}

func TestComputeDoesNotReorderInput(t *testing.T) {
	runs := []session.Run{
		runAt("b", date(2024, 1, 2, 7), 5, 1800),
		runAt("a", date(2024, 1, 1, 7), 5, 1800),
	}
	Compute(runs, WithLocation(time.UTC))
	assert.Equal(t, "b", runs[0].ID)
}

func genHistory(t *rapid.T) []session.Run {
	n := rapid.IntRange(0, 25).Draw(t, "n")
	base := date(2024, 1, 1, 0)
	used := map[int]bool{}
	runs := make([]session.Run, 0, n)
	for i := 0; i < n; i++ {
		// Distinct start minutes keep chronological order unambiguous.
		minute := rapid.IntRange(0, 60*24*60).Draw(t, "minute")
		if used[minute] {
			continue
		}
		used[minute] = true
		km := rapid.Float64Range(0, 30).Draw(t, "km")
		secs := rapid.Int64Range(0, 4*3600).Draw(t, "secs")
		runs = append(runs, runAt(fmt.Sprintf("run-%d", i), base.Add(time.Duration(minute)*time.Minute), km, secs))
	}
	return runs
}

// Feature: stride, Property 5: statistics do not depend on input order
func TestComputeOrderIndependent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		runs := genHistory(rt)
		shuffled := rapid.Permutation(runs).Draw(rt, "shuffled")
		now := date(2024, 3, 1, 0)

		a := Compute(runs, WithNow(now), WithLocation(time.UTC))
		b := Compute(shuffled, WithNow(now), WithLocation(time.UTC))
		if !assert.ObjectsAreEqual(a, b) {
			rt.Fatalf("statistics differ by input order:\n%+v\n%+v", a, b)
		}
	})
}

// Feature: stride, Property 6: appending a run only changes what it affects
func TestAppendRunChangesOnlyAffectedFields(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		runs := genHistory(rt)
		now := date(2024, 6, 1, 0)
		before := Compute(runs, WithNow(now), WithLocation(time.UTC))

		// The new run starts after every existing run so totals are summed in
		// the same order with one extra term.
		start := date(2024, 3, 1, rapid.IntRange(0, 23).Draw(rt, "hour"))
		extra := runAt("extra", start, rapid.Float64Range(0.1, 30).Draw(rt, "km"), rapid.Int64Range(1, 3600).Draw(rt, "secs"))
		after := Compute(append(append([]session.Run{}, runs...), extra), WithNow(now), WithLocation(time.UTC))

		if after.TotalRuns != before.TotalRuns+1 {
			rt.Fatalf("run count %d -> %d", before.TotalRuns, after.TotalRuns)
		}
		if after.TotalDistanceKm <= before.TotalDistanceKm {
			rt.Fatalf("distance did not increase")
		}
		if after.TotalDurationSeconds <= before.TotalDurationSeconds {
			rt.Fatalf("duration did not increase")
		}
		for h := 0; h < 24; h++ {
			if h == start.Hour() {
				continue
			}
			if after.HourlyDistanceKm[h] != before.HourlyDistanceKm[h] {
				rt.Fatalf("hour %d bucket changed: %v -> %v", h, before.HourlyDistanceKm[h], after.HourlyDistanceKm[h])
			}
		}
		for d := time.Sunday; d <= time.Saturday; d++ {
			if d != start.Weekday() && after.WeekdayRuns[d] != before.WeekdayRuns[d] {
				rt.Fatalf("weekday %v bucket changed", d)
			}
		}
		wk := WeekKey{}
		wk.Year, wk.Week = start.ISOWeek()
		for k, v := range before.Weekly {
			if k != wk && after.Weekly[k] != v {
				rt.Fatalf("week %v changed", k)
			}
		}
	})
}
