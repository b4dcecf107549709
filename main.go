package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/olivier-w/sugarviz/internal/analysis"
	"github.com/olivier-w/sugarviz/internal/capture"
	"github.com/olivier-w/sugarviz/internal/config"
	"github.com/olivier-w/sugarviz/internal/console"
	"github.com/olivier-w/sugarviz/internal/store"
	"github.com/olivier-w/sugarviz/internal/ui"
	"github.com/olivier-w/sugarviz/internal/visualizer"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Parse(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	logs, err := cfg.SetupLogging(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logs.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opened openedSource
	if cfg.Print {
		opened = openSource(cfg)
	} else {
		opened, err = runStartup(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if opened.cancelled {
			return 0
		}
	}
	if opened.err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", opened.err)
		return 1
	}

	if err := visualize(ctx, cfg, opened); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// visualize runs the analyzer and a consumer until the source ends, the user
// quits or ctx is cancelled, then shuts the pipeline down in order.
func visualize(ctx context.Context, cfg config.Config, opened openedSource) error {
	src := opened.src
	pipeline := analysis.NewPipeline(src.SampleRate(), src.ChannelCount())

	var recorder *store.Recorder
	if cfg.Record != "" {
		r, err := store.Open(cfg.Record, store.Session{
			Source:     src.Describe(),
			Title:      opened.title,
			SampleRate: src.SampleRate(),
			Started:    time.Now(),
		})
		if err != nil {
			src.Close()
			return fmt.Errorf("recording kicks: %w", err)
		}
		recorder = r
		pipeline.OnKick(recorder.Record)
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- pipeline.Run(ctx)
	}()

	// Stop the source first so nothing pushes into a closed downmixer, then
	// close the downmixer so the analyzer drains and exits.
	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			if err := src.Close(); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "visualize",
					"error":    err.Error(),
				}).Warn("Closing audio source failed")
			}
			pipeline.Downmixer().Close()
		})
	}

	if err := src.Start(pipeline.Downmixer().Push); err != nil {
		shutdown()
		<-runErr
		if recorder != nil {
			recorder.Close(0)
		}
		return fmt.Errorf("starting %s: %w", src.Describe(), err)
	}

	var consumerErr error
	if cfg.Print {
		consumerErr = printSnapshots(ctx, cfg, pipeline, opened.done, shutdown)
	} else {
		consumerErr = runTUI(ctx, cfg, pipeline, opened)
		pipeline.Publisher().Detach()
	}

	shutdown()
	err := <-runErr
	logrus.WithFields(logrus.Fields{
		"function":   "visualize",
		"windows":    pipeline.Windows(),
		"published":  pipeline.Publisher().Published(),
		"superseded": pipeline.Publisher().Superseded(),
		"dropped":    pipeline.Downmixer().Dropped(),
	}).Info("Pipeline stopped")

	if recorder != nil {
		if err := recorder.Close(pipeline.Windows()); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "visualize",
				"error":    err.Error(),
			}).Warn("Closing kick recording failed")
		}
		logrus.WithFields(logrus.Fields{
			"function": "visualize",
			"session":  recorder.Session(),
			"written":  recorder.Written(),
			"dropped":  recorder.Dropped(),
		}).Info("Kick recording closed")
	}

	if consumerErr != nil {
		return consumerErr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printSnapshots(ctx context.Context, cfg config.Config, pipeline *analysis.Pipeline, done <-chan struct{}, shutdown func()) error {
	if done != nil {
		// A finished file closes the snapshot stream through the normal
		// shutdown path.
		go func() {
			select {
			case <-done:
				shutdown()
			case <-pipeline.Done():
			}
		}()
	}

	printer := console.NewPrinter(os.Stdout, !cfg.NoColor && !color.NoColor)
	_, err := printer.Run(ctx, pipeline.Snapshots())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runTUI(ctx context.Context, cfg config.Config, pipeline *analysis.Pipeline, opened openedSource) error {
	mode, _ := visualizer.ModeIndex(cfg.Viz)
	model := ui.New(pipeline, ui.Options{
		Title:      opened.title,
		Source:     opened.src.Describe(),
		FPS:        cfg.FPS,
		Mode:       mode,
		SourceDone: opened.done,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// openedSource is the result of opening the configured capture source.
type openedSource struct {
	src       capture.Source
	title     string
	done      <-chan struct{}
	err       error
	cancelled bool
}

func openSource(cfg config.Config) openedSource {
	if cfg.File == "" {
		d, err := capture.OpenDevice(cfg.Device)
		if err != nil {
			return openedSource{err: err}
		}
		return openedSource{src: d, title: "Live input"}
	}

	f, err := capture.OpenFile(cfg.File, cfg.Mute)
	if err != nil {
		return openedSource{err: err}
	}
	return openedSource{src: f, title: f.Metadata().String(), done: f.Done()}
}
