package coaching

import (
	"math"
	"math/rand"
	"time"
)

const (
	DefaultTolerance               = 0.5
	DefaultPaceFeedbackIntervalSec = 30
)

// EventKind identifies a coaching cue.
type EventKind string

const (
	SegmentStart    EventKind = "segment_start"
	SegmentComplete EventKind = "segment_complete"
	TimeRemaining   EventKind = "time_remaining"
	PaceFeedback    EventKind = "pace_feedback"
	WorkoutComplete EventKind = "workout_complete"
	Milestone       EventKind = "milestone"
	Status          EventKind = "status"
)

// Feedback is the verdict of a pace check.
type Feedback string

const (
	OnTarget Feedback = "on_target"
	TooFast  Feedback = "too_fast"
	TooSlow  Feedback = "too_slow"
)

// Priority hints how urgently a cue should be spoken.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	}
	return "normal"
}

// Event is a single coaching cue.
type Event struct {
	Kind             EventKind `json:"kind"`
	Segment          Segment   `json:"segment"`
	SegmentIndex     int       `json:"segment_index"`
	RemainingSeconds int       `json:"remaining_seconds"`
	Feedback         Feedback  `json:"feedback,omitempty"`
	Message          string    `json:"message"`
	Priority         Priority  `json:"priority"`
}

// Metrics is the live run state the engine needs on each tick.
type Metrics struct {
	PaceMinPerKm  float64
	DistanceKm    float64
	ActiveSeconds int64
}

// Sink receives coaching events.
type Sink interface {
	Coach(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Coach(e Event) { f(e) }

// Emit forwards events to s in order.
func Emit(s Sink, events []Event) {
	for _, e := range events {
		s.Coach(e)
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithTolerance widens each segment's pace band by tol min/km on both sides.
func WithTolerance(tol float64) Option {
	return func(e *Engine) { e.tolerance = tol }
}

// WithPaceFeedbackInterval sets the minimum logical seconds between pace
// checks.
func WithPaceFeedbackInterval(secs int) Option {
	return func(e *Engine) {
		if secs > 0 {
			e.feedbackEvery = secs
		}
	}
}

// WithRandom picks phrases at random instead of by tick number.
func WithRandom(r *rand.Rand) Option {
	return func(e *Engine) { e.msg.rng = r }
}

// Engine walks a plan one logical second at a time. It never mutates the
// plan and is not safe for concurrent use.
type Engine struct {
	plan          Plan
	tolerance     float64
	feedbackEvery int
	msg           Messenger

	armed     bool
	startedAt time.Time
	announced bool
	done      bool

	ticks        int
	index        int
	remaining    int
	lastFeedback int
}

// NewEngine returns an engine for plan. The plan is used as given; call
// Plan.Expand first to unroll repeats.
func NewEngine(plan Plan, opts ...Option) *Engine {
	segs := make([]Segment, len(plan.Segments))
	copy(segs, plan.Segments)
	plan.Segments = segs

	e := &Engine{
		plan:          plan,
		tolerance:     DefaultTolerance,
		feedbackEvery: DefaultPaceFeedbackIntervalSec,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start arms the engine. The first Tick announces the first segment.
func (e *Engine) Start(now time.Time) {
	e.armed = true
	e.startedAt = now
}

// Done reports whether the workout has finished.
func (e *Engine) Done() bool { return e.done }

// Ticks is the number of logical seconds delivered so far.
func (e *Engine) Ticks() int { return e.ticks }

// Plan returns the plan being coached.
func (e *Engine) Plan() Plan { return e.plan }

// Current returns the active segment, its index and the seconds left in it.
// ok is false before the first tick and after the workout finishes.
func (e *Engine) Current() (seg Segment, index, remaining int, ok bool) {
	if !e.announced || e.done || e.index >= len(e.plan.Segments) {
		return Segment{}, 0, 0, false
	}
	return e.plan.Segments[e.index], e.index, e.remaining, true
}

// Advance reconciles with wall-clock time, delivering one Tick per whole
// second elapsed since Start that has not been delivered yet.
func (e *Engine) Advance(now time.Time, m Metrics) []Event {
	if !e.armed {
		return nil
	}
	target := int(now.Sub(e.startedAt) / time.Second)
	var events []Event
	for e.ticks < target && !e.done {
		events = append(events, e.Tick(m)...)
	}
	return events
}

// Tick advances logical time by one second.
func (e *Engine) Tick(m Metrics) []Event {
	if !e.armed || e.done {
		return nil
	}
	e.ticks++
	segs := e.plan.Segments

	if len(segs) == 0 {
		e.done = true
		return []Event{e.event(WorkoutComplete, PriorityHigh, e.msg.workoutComplete(e.ticks))}
	}

	var events []Event
	if !e.announced {
		e.announced = true
		e.remaining = segs[0].DurationSeconds
		events = append(events, e.event(SegmentStart, PriorityHigh, e.msg.segmentStart(segs[0], e.ticks)))
	}

	e.remaining--
	seg := segs[e.index]

	switch {
	case e.remaining <= 0:
		events = append(events, e.event(SegmentComplete, PriorityNormal, e.msg.segmentComplete(seg, e.ticks)))
		e.index++
		if e.index >= len(segs) {
			e.done = true
			e.remaining = 0
			return append(events, e.event(WorkoutComplete, PriorityHigh, e.msg.workoutComplete(e.ticks)))
		}
		e.remaining = segs[e.index].DurationSeconds
		events = append(events, e.event(SegmentStart, PriorityHigh, e.msg.segmentStart(segs[e.index], e.ticks)))

	case (e.remaining%60 == 0 || e.remaining <= 10) && seg.DurationSeconds > 30:
		events = append(events, e.event(TimeRemaining, PriorityLow, timeRemaining(e.remaining)))
	}

	if e.ticks-e.lastFeedback >= e.feedbackEvery {
		cur := segs[e.index]
		if cur.Kind.PaceCoached() && m.PaceMinPerKm > 0 && !math.IsInf(m.PaceMinPerKm, 0) {
			f := Evaluate(cur, m.PaceMinPerKm, e.tolerance)
			ev := e.event(PaceFeedback, PriorityNormal, e.msg.pace(f, e.ticks))
			ev.Feedback = f
			events = append(events, ev)
			e.lastFeedback = e.ticks
		}
	}
	return events
}

func (e *Engine) event(kind EventKind, p Priority, msg string) Event {
	ev := Event{Kind: kind, Priority: p, Message: msg, SegmentIndex: e.index}
	if e.index < len(e.plan.Segments) {
		ev.Segment = e.plan.Segments[e.index]
		ev.RemainingSeconds = e.remaining
	}
	return ev
}

// Evaluate places pace against the segment's target band widened by tol.
// Lower pace is faster.
func Evaluate(s Segment, pace, tol float64) Feedback {
	lo := math.Max(0, s.TargetPaceMin-tol)
	hi := s.TargetPaceMax + tol
	switch {
	case pace < lo:
		return TooFast
	case pace > hi:
		return TooSlow
	}
	return OnTarget
}
