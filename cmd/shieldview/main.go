// Command shieldview runs the simulation in real time in a terminal.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/banshee-data/shieldball/internal/arena"
	"github.com/banshee-data/shieldball/internal/config"
	"github.com/banshee-data/shieldball/internal/monitoring"
	"github.com/banshee-data/shieldball/internal/version"
)

var (
	configPath  = flag.String("config", "", "Tuning config file (.json, .yaml); built-in defaults when empty")
	fps         = flag.Int("fps", 30, "Frames per second")
	seed        = flag.Uint64("seed", 0, "Random seed (0 picks one)")
	logPath     = flag.String("log", "", "Append simulation logs to this file (discarded when empty)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("shieldview"))
		return
	}

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer f.Close()
		monitoring.SetLogger(log.New(f, "shieldview ", log.LstdFlags).Printf)
	} else {
		// Log lines would corrupt the screen.
		monitoring.SetLogger(nil)
	}

	if err := run(); err != nil {
		log.Fatalf("shieldview: %v", err)
	}
}

func run() error {
	if *fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", *fps)
	}
	tc := config.DefaultTuningConfig()
	if *configPath != "" {
		var err error
		if tc, err = config.LoadTuningConfig(*configPath); err != nil {
			return err
		}
		if err := tc.Validate(); err != nil {
			return err
		}
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	}
	sess, err := arena.NewSessionFromTuning(tc, arena.NewSystemClock(), rng)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	return loop(newViewer(screen, sess), time.Second/time.Duration(*fps))
}

// loop drives the viewer until a quit key. Input is polled on its own
// goroutine and handed over a channel; the session is only touched here.
func loop(v *viewer, frame time.Duration) error {
	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go pumpEvents(v.screen, events, done)

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	v.step()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if v.handleKey(ev.Key(), ev.Rune()) {
					return nil
				}
			case *tcell.EventMouse:
				if ev.Buttons()&tcell.Button1 != 0 {
					x, y := ev.Position()
					v.handleClick(x, y)
				}
			case *tcell.EventResize:
				v.screen.Sync()
				v.draw()
			}
		case <-ticker.C:
			v.step()
		}
	}
}

// pumpEvents forwards screen events until the screen is finalised or done
// is closed. events is closed on exit.
func pumpEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	defer close(events)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}
