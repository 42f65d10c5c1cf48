package stats

import (
	"sort"
	"time"
)

const day = 24 * time.Hour

// civilDay maps a local timestamp to UTC midnight of its calendar date, so
// that day arithmetic is free of DST transitions.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// currentStreak counts consecutive days with runs walking back from today.
// It is 0 when today has no run.
func currentStreak(days map[time.Time]struct{}, today time.Time) int {
	n := 0
	for d := today; ; d = d.AddDate(0, 0, -1) {
		if _, ok := days[d]; !ok {
			return n
		}
		n++
	}
}

// longestStreak scans the sorted distinct dates; a gap of exactly one day
// extends the running count, anything else resets it to 1.
func longestStreak(days map[time.Time]struct{}) int {
	if len(days) == 0 {
		return 0
	}
	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == day {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}
