package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/fakeyudi/stride/internal/coaching"
	"github.com/fakeyudi/stride/internal/config"
	"github.com/fakeyudi/stride/internal/format"
	"github.com/fakeyudi/stride/internal/session"
	"github.com/fakeyudi/stride/internal/store"
	"github.com/fakeyudi/stride/internal/tracker"
)

var coachDryRun bool

var coachCmd = &cobra.Command{
	Use:   "coach <plan-id>",
	Short: "Coach the current run through a workout plan",
	Long: `Follows the current run once a second and announces segment changes,
time remaining, pace feedback, distance milestones and periodic status.
The segment clock only moves while the run is active. With --dry-run the plan
is played through instantly without a run, to preview its cues.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, ok := coaching.PlanByID(args[0])
		if !ok {
			var ids []string
			for _, p := range coaching.DefaultPlans() {
				ids = append(ids, p.ID)
			}
			sort.Strings(ids)
			return fmt.Errorf("unknown plan %q (available: %s)", args[0], strings.Join(ids, ", "))
		}
		plan = plan.Expand()
		if err := plan.Validate(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		engine := coaching.NewEngine(plan, coaching.WithTolerance(cfg.PaceTolerance))
		fmt.Fprintf(out, "%s (%s)\n", plan.Name, format.DurationWords(int64(plan.TotalSeconds())))

		if coachDryRun {
			engine.Start(time.Now())
			sink := eventPrinter(out, engine.Ticks)
			for !engine.Done() {
				coaching.Emit(sink, engine.Tick(coaching.Metrics{}))
			}
			return nil
		}

		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, stop := signal.NotifyContext(logCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := newCoach(ctx, svc, engine, out)
		if err != nil {
			return err
		}
		return c.run(ctx)
	},
}

// eventPrinter prints each cue prefixed with the workout clock.
func eventPrinter(w io.Writer, clock func() int) coaching.Sink {
	return coaching.SinkFunc(func(e coaching.Event) {
		fmt.Fprintf(w, "[%s] %s\n", format.Duration(int64(clock())), e.Message)
	})
}

// coach drives a coaching engine from the live run. The engine's clock is
// the run's active time, so pausing the run pauses the workout.
type coach struct {
	mu         sync.Mutex
	svc        *tracker.Service
	engine     *coaching.Engine
	milestones *coaching.MilestoneTracker
	sink       coaching.Sink
	out        io.Writer
	segments   int

	origin     time.Time // engine start on the active-time axis
	baseActive int64     // run active seconds when coaching began
	done       bool
}

func newCoach(ctx context.Context, svc *tracker.Service, engine *coaching.Engine, out io.Writer) (*coach, error) {
	rs, err := svc.Status(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoSession) {
			return nil, errors.New("no run in progress, run 'stride start' first")
		}
		return nil, err
	}

	opts := []coaching.MilestoneOption{coaching.WithEncouragement()}
	if cfg.Units == config.UnitsMi {
		opts = append(opts, coaching.WithMiles())
	}
	c := &coach{
		svc:        svc,
		engine:     engine,
		milestones: coaching.NewMilestoneTracker(opts...),
		out:        out,
		segments:   len(engine.Plan().Segments),
		origin:     time.Unix(0, 0),
		baseActive: rs.ActiveDurationSeconds,
	}
	c.sink = eventPrinter(out, engine.Ticks)
	// Distance already covered does not count as a new milestone.
	c.milestones.Check(rs.TotalDistanceKm)
	engine.Start(c.origin)
	return c, nil
}

// step reconciles the engine with the run at now. It reports whether
// coaching is over.
func (c *coach) step(ctx context.Context, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return true
	}

	rs, err := c.svc.Status(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoSession) {
			c.done = true
			return true
		}
		log.Warn(ctx, log.KV{K: "msg", V: "coaching status"}, log.KV{K: "err", V: err.Error()})
		return false
	}

	m := coaching.Metrics{
		PaceMinPerKm:  rs.PaceMinPerKm,
		DistanceKm:    rs.TotalDistanceKm,
		ActiveSeconds: rs.ActiveDurationSeconds,
	}
	elapsed := time.Duration(rs.ActiveDurationSeconds-c.baseActive) * time.Second
	coaching.Emit(c.sink, c.engine.Advance(c.origin.Add(elapsed), m))

	if ev, ok := c.milestones.Check(m.DistanceKm); ok {
		c.sink.Coach(ev)
	}
	if rs.Status == session.StatusActive {
		if ev, ok := c.milestones.Periodic(m, now); ok {
			c.sink.Coach(ev)
		}
	}
	c.done = c.engine.Done()
	return c.done
}

// run schedules step every second until the workout or the run ends.
func (c *coach) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := sched.AddFunc("* * * * * *", func() {
		if c.step(ctx, time.Now()) {
			cancel()
		}
	}); err != nil {
		return fmt.Errorf("scheduling coach: %w", err)
	}
	sched.Start()
	<-ctx.Done()
	<-sched.Stop().Done()
	c.summarize()
	return nil
}

// summarize reports where the workout stood if coaching ended early.
func (c *coach) summarize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	seg, i, left, ok := c.engine.Current()
	if !ok {
		return
	}
	fmt.Fprintf(c.out, "Stopped during %s (segment %d of %d), %s left.\n",
		seg.Kind.Title(), i+1, c.segments, format.Duration(int64(left)))
}

func init() {
	coachCmd.Flags().BoolVar(&coachDryRun, "dry-run", false, "play the plan instantly without a run")
	rootCmd.AddCommand(coachCmd)
}
