package coaching

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/fakeyudi/stride/internal/format"
)

var (
	encouragement = []string{
		"You're doing great! Keep it up!",
		"Looking strong! Keep pushing!",
		"Excellent work! You've got this!",
		"Great job! Stay focused!",
		"You're making good progress!",
	}
	slowDown = []string{
		"You're going a bit too fast. Try to slow down.",
		"Ease off a little. Save energy for later.",
		"Slow down to maintain your target pace.",
		"Try to relax and reduce your pace slightly.",
	}
	speedUp = []string{
		"Try to pick up the pace a bit.",
		"You can go a little faster. Push yourself!",
		"Increase your pace to reach your target.",
		"Try to speed up slightly to meet your goal.",
	}
	onPace = []string{
		"Great pace! Keep it steady.",
		"Perfect pace! You're right on target.",
		"You're maintaining an excellent pace!",
		"Perfectly on pace! Keep it up!",
	}
	intervalStart = []string{
		"Starting new interval. Push yourself!",
		"New interval beginning. Let's go!",
		"Next interval starting now. Give it your all!",
	}
	intervalEnd = []string{
		"Interval complete. Good job!",
		"Interval finished. Take a breather.",
		"End of interval. Well done!",
	}
	workoutDone = []string{
		"Workout complete! Excellent job today!",
		"You've finished your workout! Great effort!",
		"Workout complete! You crushed it!",
	}
)

// Messenger turns events into spoken text. Without a random source the
// phrase is picked by the caller's sequence number, which keeps output
// reproducible.
type Messenger struct {
	rng *rand.Rand
}

func (m *Messenger) pick(pool []string, seq int) string {
	if m.rng != nil {
		return pool[m.rng.Intn(len(pool))]
	}
	if seq < 0 {
		seq = -seq
	}
	return pool[seq%len(pool)]
}

func (m *Messenger) segmentStart(s Segment, seq int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s segment. Duration: %s.", s.Kind.Title(), format.DurationWords(int64(s.DurationSeconds)))
	if s.Kind.PaceCoached() {
		fmt.Fprintf(&b, " Target pace: %s.", format.PaceRange(s.TargetPaceMin, s.TargetPaceMax))
	}
	if s.Instructions != "" {
		b.WriteString(" " + s.Instructions)
	}
	if s.Kind == Active {
		b.WriteString(" " + m.pick(intervalStart, seq))
	}
	return b.String()
}

func (m *Messenger) segmentComplete(s Segment, seq int) string {
	switch s.Kind {
	case Warmup:
		return "Warm up complete."
	case Cooldown:
		return "Cool down complete."
	case Active:
		return m.pick(intervalEnd, seq)
	case Rest:
		return "Rest period complete."
	case Recovery:
		return "Recovery period complete."
	}
	return "Segment complete."
}

func timeRemaining(secs int) string {
	switch {
	case secs == 60:
		return "One minute remaining."
	case secs < 60:
		return fmt.Sprintf("%d seconds remaining.", secs)
	}
	return fmt.Sprintf("%d minutes remaining.", secs/60)
}

func (m *Messenger) pace(f Feedback, seq int) string {
	switch f {
	case TooFast:
		return m.pick(slowDown, seq)
	case TooSlow:
		return m.pick(speedUp, seq)
	}
	return m.pick(onPace, seq)
}

func (m *Messenger) workoutComplete(seq int) string {
	return m.pick(workoutDone, seq)
}

// Encouragement returns a general motivational phrase.
func (m *Messenger) Encouragement(seq int) string {
	return m.pick(encouragement, seq)
}
