// Command shieldsim runs a headless simulation on a manual clock and
// optionally records it to SQLite, plots the trajectory and charts the
// speed ramp.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"sort"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/shieldball/internal/arena"
	"github.com/banshee-data/shieldball/internal/config"
	"github.com/banshee-data/shieldball/internal/monitor"
	"github.com/banshee-data/shieldball/internal/monitoring"
	"github.com/banshee-data/shieldball/internal/storage/sqlite"
	"github.com/banshee-data/shieldball/internal/version"
)

var (
	configPath  = flag.String("config", "", "Tuning config file (.json, .yaml); built-in defaults when empty")
	duration    = flag.Duration("duration", time.Minute, "Simulated run length")
	fps         = flag.Int("fps", 60, "Simulated frames per second")
	seed        = flag.Uint64("seed", 0, "Random seed (0 picks one)")
	dbPath      = flag.String("db", "", "SQLite database to record the run into")
	plotPath    = flag.String("plot", "", "Write a PNG trajectory plot to this path")
	chartPath   = flag.String("chart", "", "Write an HTML speed chart to this path")
	shootEvery  = flag.Duration("shoot-every", 0, "Fire a shot near the ball at this simulated interval (0 disables)")
	batchSize   = flag.Int("batch", 500, "Ticks per database transaction")
	quiet       = flag.Bool("quiet", false, "Suppress simulation log output")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// options is the parsed command line.
type options struct {
	ConfigPath string
	Duration   time.Duration
	FPS        int
	Seed       uint64
	DBPath     string
	PlotPath   string
	ChartPath  string
	ShootEvery time.Duration
	BatchSize  int
}

func (o options) validate() error {
	if o.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %s", o.Duration)
	}
	if o.FPS <= 0 || o.FPS > 1000 {
		return fmt.Errorf("fps must be in 1..1000, got %d", o.FPS)
	}
	if o.ShootEvery < 0 {
		return fmt.Errorf("shoot-every must not be negative, got %s", o.ShootEvery)
	}
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch must be positive, got %d", o.BatchSize)
	}
	return nil
}

// result is what a run produced.
type result struct {
	SessionID string
	Seed      uint64
	Elapsed   time.Duration // simulated time at the last tick
	Stats     arena.Stats
	Summary   *sqlite.Summary
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("shieldsim"))
		return
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}

	opts := options{
		ConfigPath: *configPath,
		Duration:   *duration,
		FPS:        *fps,
		Seed:       *seed,
		DBPath:     *dbPath,
		PlotPath:   *plotPath,
		ChartPath:  *chartPath,
		ShootEvery: *shootEvery,
		BatchSize:  *batchSize,
	}
	res, err := run(opts)
	if err != nil {
		log.Fatalf("shieldsim: %v", err)
	}
	printResult(os.Stdout, res)
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.DefaultTuningConfig(), nil
	}
	tc, err := config.LoadTuningConfig(path)
	if err != nil {
		return nil, err
	}
	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning config %s: %w", path, err)
	}
	return tc, nil
}

func run(opts options) (*result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	tc, err := loadTuning(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	frame := time.Second / time.Duration(opts.FPS)
	if clamp := tc.GetMaxFrameDelta(); frame > clamp {
		return nil, fmt.Errorf("fps %d gives %s frames, above the %s frame clamp", opts.FPS, frame, clamp)
	}

	s := opts.Seed
	if s == 0 {
		s = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))

	clock := &arena.ManualClock{}
	sess, err := arena.NewSessionFromTuning(tc, clock, rng)
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}

	var rec *sqlite.Recorder
	var dbSession *sqlite.Session
	if opts.DBPath != "" {
		db, err := sqlite.Open(opts.DBPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		rec = sqlite.NewRecorder(db)

		cfgJSON, err := json.Marshal(tc)
		if err != nil {
			return nil, fmt.Errorf("marshal tuning config: %w", err)
		}
		dbSession = &sqlite.Session{
			Seed:       s,
			Rows:       tc.GetRows(),
			Cols:       tc.GetCols(),
			ConfigJSON: string(cfgJSON),
		}
		if err := rec.StartSession(dbSession); err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
	}

	plotter := monitor.NewTrajectoryPlotter()
	plotter.SetScene(sess.Snapshot())

	frames := int(opts.Duration / frame)
	batch := make([]arena.TickReport, 0, opts.BatchSize)
	flush := func() error {
		if rec == nil || len(batch) == 0 {
			return nil
		}
		if err := rec.RecordTicks(dbSession.SessionID, batch); err != nil {
			return fmt.Errorf("record ticks: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	// Tick 0 sits at time zero and tick i at i frames. The clock is set to
	// absolute times so sub-millisecond frame remainders do not accumulate.
	nextShot := opts.ShootEvery
	var elapsed time.Duration
	for i := 0; i <= frames; i++ {
		clock.Set(time.Duration(i) * time.Second / time.Duration(opts.FPS))
		rep := sess.Tick()
		elapsed = rep.Elapsed
		plotter.Record(rep)

		if opts.ShootEvery > 0 && rep.Elapsed >= nextShot {
			fireNear(sess, rng)
			nextShot += opts.ShootEvery
		}

		if rec != nil {
			batch = append(batch, rep)
			if len(batch) >= opts.BatchSize {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	plotter.SetScene(sess.Snapshot())
	plotter.Stop()

	res := &result{Seed: s, Elapsed: elapsed, Stats: sess.Stats()}
	if rec != nil {
		if err := rec.FinishSession(dbSession.SessionID, res.Stats); err != nil {
			return nil, fmt.Errorf("finish session: %w", err)
		}
		sum, err := rec.Summary(dbSession.SessionID)
		if err != nil {
			return nil, err
		}
		res.SessionID = dbSession.SessionID
		res.Summary = sum
	}

	if opts.PlotPath != "" {
		if err := plotter.SaveTrajectory(opts.PlotPath); err != nil {
			return nil, fmt.Errorf("trajectory plot: %w", err)
		}
	}
	if opts.ChartPath != "" {
		if err := monitor.SaveSpeedChart(opts.ChartPath, plotter.Samples()); err != nil {
			return nil, fmt.Errorf("speed chart: %w", err)
		}
	}
	return res, nil
}

// fireNear fires a half-radius shot normally scattered around the ball.
func fireNear(sess *arena.Session, rng *rand.Rand) arena.ShotResult {
	r := sess.BallRadius()
	p := sess.Position()
	aim := r2.Vec{X: p.X + rng.NormFloat64()*r*2, Y: p.Y + rng.NormFloat64()*r*2}
	return sess.Shoot(aim, r/2)
}

func printResult(w io.Writer, res *result) {
	st := res.Stats
	fmt.Fprintf(w, "seed=%d ticks=%d elapsed=%s selections=%d phase_changes=%d\n",
		res.Seed, st.Ticks, res.Elapsed, st.Selections, st.PhaseChanges)
	fmt.Fprintf(w, "shielded=%d exposed=%d undetermined=%d at_target=%d agreement=%.3f\n",
		st.Shielded, st.Exposed, st.Undetermined, st.AtTarget, st.Agreement())
	if st.Shots > 0 {
		fmt.Fprintf(w, "shots=%d hits=%d blocked=%d\n", st.Shots, st.Hits, st.Blocked)
	}
	if res.Summary == nil {
		return
	}
	sum := res.Summary
	fmt.Fprintf(w, "session=%s recorded=%d duration=%s max_distance_factor=%.2f\n",
		res.SessionID, sum.Ticks, sum.Duration, sum.MaxDistanceFactor)
	states := make([]string, 0, len(sum.ByState))
	for k := range sum.ByState {
		states = append(states, k)
	}
	sort.Strings(states)
	for _, k := range states {
		fmt.Fprintf(w, "  %-12s %d\n", k, sum.ByState[k])
	}
}
