// Package tracker runs the run-tracking control flow on top of a RunStore:
// samples update the in-progress session, completion saves the run, and the
// refreshed history drives statistics and achievements. The CLI and the HTTP
// API both go through a Service.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"goa.design/clue/log"

	"github.com/fakeyudi/stride/internal/achievement"
	"github.com/fakeyudi/stride/internal/geo"
	"github.com/fakeyudi/stride/internal/session"
	"github.com/fakeyudi/stride/internal/stats"
	"github.com/fakeyudi/stride/internal/store"
)

// StopResult is what completing a run produces.
type StopResult struct {
	Run      session.Run                 `json:"run"`
	Unlocked []achievement.UnlockedEvent `json:"unlocked"`
}

// Progress is one catalog entry with the runner's current standing.
type Progress struct {
	achievement.Achievement
	Current float64 `json:"current"`
	Percent int     `json:"percent"`
}

// Service serialises every mutation of the in-progress session. It is safe
// for concurrent use.
type Service struct {
	mu sync.Mutex

	store         store.RunStore
	engine        *achievement.Engine
	state         *achievement.FileState
	now           func() time.Time
	loc           *time.Location
	caloriesPerKm float64
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the calendar zone used for statistics.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithCaloriesPerKm sets the calorie constant for new sessions.
func WithCaloriesPerKm(kcal float64) Option {
	return func(s *Service) { s.caloriesPerKm = kcal }
}

// WithAchievementState persists unlock state through fs. Without it unlocks
// live only as long as the Service.
func WithAchievementState(fs *achievement.FileState) Option {
	return func(s *Service) { s.state = fs }
}

// WithSink subscribes sink to achievement unlocks.
func WithSink(sink achievement.Sink) Option {
	return func(s *Service) { s.engine.Subscribe(sink) }
}

// New returns a Service over st and restores persisted achievement state.
func New(st store.RunStore, opts ...Option) (*Service, error) {
	s := &Service{
		store:         st,
		engine:        achievement.NewEngine(),
		now:           time.Now,
		loc:           time.Local,
		caloriesPerKm: session.DefaultCaloriesPerKm,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.state != nil {
		if err := s.state.Load(s.engine); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Start begins a new session. It fails with session.ErrInvalidState when a
// run is already in progress.
func (s *Service) Start(ctx context.Context) (*session.RunSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.store.LoadInProgress(ctx)
	if err != nil {
		return nil, err
	}
	if cur != nil {
		return nil, fmt.Errorf("start: run already in progress (started at %s): %w",
			cur.StartedAt.Format(time.RFC3339), session.ErrInvalidState)
	}

	rs := session.Start(s.now(), session.WithCaloriesPerKm(s.caloriesPerKm))
	if err := s.store.SaveInProgress(ctx, rs); err != nil {
		return nil, err
	}
	log.Info(ctx, log.KV{K: "msg", V: "run started"}, log.KV{K: "run", V: rs.ID})
	return rs, nil
}

// AddSample feeds one location sample to the in-progress session. A zero
// timestamp means now.
func (s *Service) AddSample(ctx context.Context, c geo.Coordinate) (*session.RunSession, error) {
	if c.Timestamp == 0 {
		c.Timestamp = s.now().UnixMilli()
	}
	return s.mutate(ctx, "add sample", func(rs *session.RunSession) error {
		return rs.AddSample(c)
	})
}

// Pause pauses the in-progress session.
func (s *Service) Pause(ctx context.Context) (*session.RunSession, error) {
	return s.mutate(ctx, "pause", func(rs *session.RunSession) error {
		return rs.Pause(s.now())
	})
}

// Resume resumes a paused session.
func (s *Service) Resume(ctx context.Context) (*session.RunSession, error) {
	return s.mutate(ctx, "resume", func(rs *session.RunSession) error {
		return rs.Resume(s.now())
	})
}

// Status returns the in-progress session with duration and pace refreshed
// to now. Nothing is written.
func (s *Service) Status(ctx context.Context) (*session.RunSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs, err := s.inProgress(ctx, "status")
	if err != nil {
		return nil, err
	}
	rs.Refresh(s.now())
	return rs, nil
}

// Stop completes the in-progress run, appends it to the history, recomputes
// statistics and evaluates achievements against both the history and the
// run itself.
func (s *Service) Stop(ctx context.Context) (StopResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs, err := s.inProgress(ctx, "stop")
	if err != nil {
		return StopResult{}, err
	}
	now := s.now()
	run, err := rs.Complete(now)
	if err != nil {
		return StopResult{}, err
	}
	if err := s.store.Save(ctx, run); err != nil {
		return StopResult{}, fmt.Errorf("stop: saving run: %w", err)
	}
	if err := s.store.SaveInProgress(ctx, nil); err != nil {
		return StopResult{}, fmt.Errorf("stop: clearing session: %w", err)
	}
	log.Info(ctx, log.KV{K: "msg", V: "run completed"},
		log.KV{K: "run", V: run.ID},
		log.KV{K: "distance_km", V: run.TotalDistanceKm},
		log.KV{K: "active_seconds", V: run.ActiveDurationSeconds})

	st, err := s.computeStats(ctx, now)
	if err != nil {
		return StopResult{}, err
	}
	unlocked := s.engine.Evaluate(st, now)
	unlocked = append(unlocked, s.engine.EvaluateRun(run, now)...)
	// The run is already saved; a failed achievement write only loses
	// unlock state, which the next Stop re-derives from the history.
	if err := s.persistAchievements(ctx, unlocked); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "persisting achievements"}, log.KV{K: "run", V: run.ID})
	}
	if unlocked == nil {
		unlocked = []achievement.UnlockedEvent{}
	}
	return StopResult{Run: run, Unlocked: unlocked}, nil
}

// History returns every saved run, newest first.
func (s *Service) History(ctx context.Context) ([]session.Run, error) {
	runs, err := s.store.LoadAllRuns(ctx)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []session.Run{}
	}
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs, nil
}

// Run returns one saved run.
func (s *Service) Run(ctx context.Context, id string) (session.Run, error) {
	return s.store.LoadRun(ctx, id)
}

// DeleteRun removes a saved run. Unlocked achievements stay unlocked.
func (s *Service) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	log.Info(ctx, log.KV{K: "msg", V: "run deleted"}, log.KV{K: "run", V: id})
	return nil
}

// Stats computes statistics over the whole history.
func (s *Service) Stats(ctx context.Context) (stats.RunStatistics, error) {
	return s.computeStats(ctx, s.now())
}

// Achievements returns the catalog with unlock state and progress against
// the current statistics.
func (s *Service) Achievements(ctx context.Context) ([]Progress, error) {
	st, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	items := s.engine.Snapshot()
	s.mu.Unlock()

	out := make([]Progress, len(items))
	for i, a := range items {
		cur := achievement.Current(a, st)
		out[i] = Progress{Achievement: a, Current: cur, Percent: a.Progress(cur)}
		if a.Unlocked {
			out[i].Percent = 100
		}
	}
	return out, nil
}

// ResetAchievements locks the whole catalog again.
func (s *Service) ResetAchievements(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.Reset()
	return s.persistAchievements(ctx, nil)
}

// mutate loads the in-progress session, applies fn and writes it back.
// Nothing is written when fn fails.
func (s *Service) mutate(ctx context.Context, op string, fn func(*session.RunSession) error) (*session.RunSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs, err := s.inProgress(ctx, op)
	if err != nil {
		return nil, err
	}
	if err := fn(rs); err != nil {
		return nil, err
	}
	if err := s.store.SaveInProgress(ctx, rs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Debug(ctx, log.KV{K: "msg", V: op}, log.KV{K: "run", V: rs.ID}, log.KV{K: "status", V: string(rs.Status)})
	return rs, nil
}

func (s *Service) inProgress(ctx context.Context, op string) (*session.RunSession, error) {
	rs, err := s.store.LoadInProgress(ctx)
	if err != nil {
		return nil, err
	}
	if rs == nil {
		return nil, fmt.Errorf("%s: %w", op, store.ErrNoSession)
	}
	return rs, nil
}

func (s *Service) computeStats(ctx context.Context, now time.Time) (stats.RunStatistics, error) {
	runs, err := s.store.LoadAllRuns(ctx)
	if err != nil {
		return stats.RunStatistics{}, err
	}
	return stats.Compute(runs, stats.WithNow(now), stats.WithLocation(s.loc)), nil
}

func (s *Service) persistAchievements(ctx context.Context, unlocked []achievement.UnlockedEvent) error {
	for _, ev := range unlocked {
		log.Info(ctx, log.KV{K: "msg", V: "achievement unlocked"}, log.KV{K: "id", V: ev.ID})
	}
	if s.state == nil {
		return nil
	}
	return s.state.Save(s.engine)
}
