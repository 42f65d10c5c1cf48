// Package coaching sequences timed workout segments and produces spoken
// coaching cues from live run metrics.
package coaching

import "fmt"

// Kind classifies a workout segment.
type Kind string

const (
	Warmup   Kind = "warmup"
	Active   Kind = "active"
	Recovery Kind = "recovery"
	Rest     Kind = "rest"
	Cooldown Kind = "cooldown"
)

// Title is the spoken name of the kind.
func (k Kind) Title() string {
	switch k {
	case Warmup:
		return "Warm up"
	case Active:
		return "Active"
	case Recovery:
		return "Recovery"
	case Rest:
		return "Rest"
	case Cooldown:
		return "Cool down"
	}
	return "Workout"
}

// PaceCoached reports whether pace targets apply to segments of this kind.
func (k Kind) PaceCoached() bool {
	return k != Rest && k != Recovery
}

// Segment is one timed phase of a workout. Paces are min/km.
type Segment struct {
	Kind            Kind    `json:"kind"`
	DurationSeconds int     `json:"duration_seconds"`
	TargetPaceMin   float64 `json:"target_pace_min"`
	TargetPaceMax   float64 `json:"target_pace_max"`
	RepeatCount     int     `json:"repeat_count"`
	Instructions    string  `json:"instructions,omitempty"`
}

// Plan is an ordered list of segments.
type Plan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Segments    []Segment `json:"segments"`
}

// Expand unrolls repeat blocks. A maximal run of consecutive segments that
// share the same RepeatCount > 1 is emitted RepeatCount times in order, so
// "run 1 min x8, walk 90 s x8" becomes eight run/walk pairs. Every expanded
// segment has RepeatCount 1.
func (p Plan) Expand() Plan {
	out := p
	out.Segments = nil
	for i := 0; i < len(p.Segments); {
		n := p.Segments[i].RepeatCount
		if n <= 1 {
			s := p.Segments[i]
			s.RepeatCount = 1
			out.Segments = append(out.Segments, s)
			i++
			continue
		}
		j := i + 1
		for j < len(p.Segments) && p.Segments[j].RepeatCount == n {
			j++
		}
		for r := 0; r < n; r++ {
			for _, s := range p.Segments[i:j] {
				s.RepeatCount = 1
				out.Segments = append(out.Segments, s)
			}
		}
		i = j
	}
	return out
}

// TotalSeconds is the summed duration of the expanded plan.
func (p Plan) TotalSeconds() int {
	total := 0
	for _, s := range p.Expand().Segments {
		total += s.DurationSeconds
	}
	return total
}

// Validate rejects plans the engine cannot run.
func (p Plan) Validate() error {
	for i, s := range p.Segments {
		if s.DurationSeconds <= 0 {
			return fmt.Errorf("segment %d: duration must be positive", i+1)
		}
		if s.TargetPaceMin < 0 || s.TargetPaceMax < s.TargetPaceMin {
			return fmt.Errorf("segment %d: invalid pace range %v-%v", i+1, s.TargetPaceMin, s.TargetPaceMax)
		}
	}
	return nil
}

// DefaultPlans returns the built-in sample workouts.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:          "5k-easy",
			Name:        "5K Beginner: Easy Run",
			Description: "A gentle introduction to running with walk breaks",
			Segments: []Segment{
				{Kind: Warmup, DurationSeconds: 300, TargetPaceMin: 10, TargetPaceMax: 12, RepeatCount: 1,
					Instructions: "Start with a gentle 5-minute warm-up walk to prepare your muscles"},
				{Kind: Active, DurationSeconds: 60, TargetPaceMin: 7, TargetPaceMax: 9, RepeatCount: 8,
					Instructions: "Run for 1 minute at a comfortable pace"},
				{Kind: Recovery, DurationSeconds: 90, TargetPaceMin: 12, TargetPaceMax: 15, RepeatCount: 8,
					Instructions: "Walk for 1.5 minutes to recover"},
				{Kind: Cooldown, DurationSeconds: 300, TargetPaceMin: 12, TargetPaceMax: 15, RepeatCount: 1,
					Instructions: "Cool down with a 5-minute walk"},
			},
		},
		{
			ID:          "10k-tempo",
			Name:        "10K Intermediate: Tempo Run",
			Description: "Medium-intensity run to build speed and endurance",
			Segments: []Segment{
				{Kind: Warmup, DurationSeconds: 600, TargetPaceMin: 7, TargetPaceMax: 8, RepeatCount: 1,
					Instructions: "Warm up with a 10-minute easy jog"},
				{Kind: Active, DurationSeconds: 1200, TargetPaceMin: 5.5, TargetPaceMax: 6, RepeatCount: 1,
					Instructions: "Run at a comfortably hard pace for 20 minutes"},
				{Kind: Cooldown, DurationSeconds: 600, TargetPaceMin: 7, TargetPaceMax: 8, RepeatCount: 1,
					Instructions: "Cool down with a 10-minute easy jog"},
			},
		},
		{
			ID:          "half-intervals",
			Name:        "Half Marathon Advanced: Intervals",
			Description: "High-intensity intervals to improve speed and VO2 max",
			Segments: []Segment{
				{Kind: Warmup, DurationSeconds: 900, TargetPaceMin: 6, TargetPaceMax: 7, RepeatCount: 1,
					Instructions: "Warm up with a 15-minute easy jog"},
				{Kind: Active, DurationSeconds: 400, TargetPaceMin: 4, TargetPaceMax: 4.5, RepeatCount: 6,
					Instructions: "Run hard for about 400 meters"},
				{Kind: Recovery, DurationSeconds: 200, TargetPaceMin: 6, TargetPaceMax: 7, RepeatCount: 6,
					Instructions: "Recover with easy jogging for about 200 meters"},
				{Kind: Cooldown, DurationSeconds: 900, TargetPaceMin: 6, TargetPaceMax: 7, RepeatCount: 1,
					Instructions: "Cool down with a 15-minute easy jog"},
			},
		},
	}
}

// PlanByID looks up a built-in plan.
func PlanByID(id string) (Plan, bool) {
	for _, p := range DefaultPlans() {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
