package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cbegin/mfrack-go"
	"github.com/cbegin/mfrack-go/internal/analysis"
	"github.com/cbegin/mfrack-go/internal/cvseq"
	"github.com/cbegin/mfrack-go/internal/kanon"
	"github.com/cbegin/mfrack-go/internal/panel"
	"github.com/cbegin/mfrack-go/internal/rack"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run parses args and executes one session. Kanon state is saved to
// -save-state on every return path once the player exists.
func run(args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("mfrack", flag.ContinueOnError)
	var (
		sampleRate  = fs.Int("sample-rate", 48000, "output sample rate")
		backendName = fs.String("backend", "ebiten", "audio backend: ebiten|oto")
		script      = fs.String("script", "", "Lua sequence script (default: C major arpeggio)")
		watch       = fs.Bool("watch", false, "reload -script when it changes")
		seconds     = fs.Float64("seconds", 0, "play or render for N seconds (0 = until quit)")
		outPath     = fs.String("out", "", "render to a float WAV file instead of playing")
		analyze     = fs.Bool("analyze", false, "render offline and print each voice's pitch")
		statePath   = fs.String("state", "", "load Kanon state from this JSON file")
		savePath    = fs.String("save-state", "", "write Kanon state to this JSON file on exit")
		press       = fs.String("press", "", "comma-separated buttons to press at start, e.g. saw,fwd-bwd")
		coarse      = fs.Float64("coarse", 0, "Kanon coarse pitch in volts (-5..5)")
		fine        = fs.Float64("fine", 0, "Kanon fine pitch in semitones (-1..1)")
		feedback    = fs.Float64("feedback", 0.5, "departure level returned to each arrival")
		interactive = fs.Bool("interactive", false, "drive the panel buttons from the keyboard")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	seq := cvseq.Default()
	if *script != "" {
		if seq, err = cvseq.Load(*script); err != nil {
			return err
		}
	}

	rigOpts := []rack.RigOption{rack.WithPitch(clamp(*coarse, kanon.CoarseMin, kanon.CoarseMax), clamp(*fine, kanon.FineMin, kanon.FineMax))}
	for i := 0; i < 3; i++ {
		rigOpts = append(rigOpts, rack.WithChannel(i, rack.ChannelConfig{
			Gain:     0.5,
			Delay:    0.25 * float32(i+1),
			Feedback: float32(*feedback),
		}))
	}
	pl, err := mfrack.NewPlayer(*sampleRate,
		mfrack.WithBackend(mfrack.Backend(strings.ToLower(*backendName))),
		mfrack.WithSequence(seq),
		mfrack.WithRigOptions(rigOpts...),
	)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, saveState(pl, *savePath))
	}()

	if *statePath != "" {
		if err := pl.LoadState(*statePath); err != nil {
			if !errors.Is(err, kanon.ErrInvalidState) {
				return err
			}
			log.Printf("state loaded with defaults: %v", err)
		}
	}
	if err := pressAll(pl, *press); err != nil {
		return err
	}

	switch {
	case *analyze:
		return runAnalyze(stdout, pl.Rig(), orDefault(*seconds, 1))
	case *outPath != "":
		samples := mfrack.RenderSamples(pl.Rig(), orDefault(*seconds, 10))
		if err := os.WriteFile(*outPath, mfrack.EncodeWAVFloat32LE(samples, *sampleRate, 2), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", *outPath)
		return nil
	default:
		return play(pl, *script, *watch, *interactive, *seconds)
	}
}

func play(pl *mfrack.Player, script string, watch, interactive bool, seconds float64) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if seconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(seconds*float64(time.Second)))
		defer cancel()
	}

	if err := pl.Play(); err != nil {
		return err
	}
	defer pl.Stop()

	g, ctx := errgroup.WithContext(ctx)
	if watch && script != "" {
		g.Go(func() error {
			return pl.WatchSequence(ctx, script, func(err error) { log.Printf("reload: %v", err) })
		})
	}
	if interactive && panel.IsTerminal() {
		fmt.Print(panel.Help)
		g.Go(func() error {
			err := panel.Run(ctx, pl, func(byte) {
				mode, wave, master := pl.Rig().KanonState()
				fmt.Printf("mode=%v wave=%v master=%d\r\n", mode, wave, master+1)
			})
			if errors.Is(err, panel.ErrQuit) {
				return context.Canceled
			}
			return err
		})
	} else {
		g.Go(func() error {
			<-ctx.Done()
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runAnalyze(w io.Writer, rig *rack.Rig, seconds float64) error {
	voices := mfrack.RenderVoices(rig, seconds)
	for i, v := range voices {
		n := len(v)
		if n > 16384 {
			v = v[n-16384:]
		}
		hz, err := analysis.PeakFrequency(v, rig.SampleRate())
		if err != nil {
			return fmt.Errorf("voice %d: %w", i+1, err)
		}
		fmt.Fprintf(w, "voice %d: %8.2f Hz\n", i+1, hz)
	}
	return nil
}

func pressAll(pl *mfrack.Player, list string) error {
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		c, err := rack.ParseControl(name)
		if err != nil {
			return err
		}
		pl.Press(c)
		// Each press needs its own frame to register as a separate edge.
		pl.Rig().Step()
	}
	return nil
}

func saveState(pl *mfrack.Player, path string) error {
	if path == "" {
		return nil
	}
	if err := pl.SaveState(path); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

func clamp(v, lo, hi float64) float32 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return float32(v)
}
