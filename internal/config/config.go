// Package config parses command-line options and sets up logging.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/olivier-w/sugarviz/internal/capture"
	"github.com/olivier-w/sugarviz/internal/visualizer"
)

const (
	DefaultFPS = 30
	maxFPS     = 120
)

// Config holds all runtime options. DSP constants are compiled in.
type Config struct {
	// File selects a file source; empty means the live input device.
	File string
	// Device is a case-insensitive substring of the input device name.
	Device string
	Mute   bool
	// Print writes one text line per snapshot instead of running the TUI.
	Print    bool
	NoColor  bool
	FPS      int
	Viz      string
	LogFile  string
	LogLevel string
	// Record is a SQLite database that kicks are logged to; empty disables
	// recording.
	Record string
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		FPS:      DefaultFPS,
		Viz:      "scope",
		LogLevel: "info",
	}
}

// Parse reads flags and the optional file argument from args, which excludes
// the program name. Usage and flag errors are written to output.
func Parse(args []string, output io.Writer) (Config, error) {
	c := Default()
	fs := flag.NewFlagSet("sugarviz", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "usage: sugarviz [flags] [file]\n\n")
		fmt.Fprintf(output, "Visualizes a file (%s) or the live input device.\n\n", capture.SupportedExtsList())
		fs.PrintDefaults()
	}

	fs.StringVar(&c.Device, "device", c.Device, "input device name substring (default: system default input)")
	fs.BoolVar(&c.Mute, "mute", c.Mute, "analyze a file without playing it")
	fs.BoolVar(&c.Print, "print", c.Print, "print the spectrum as text lines instead of the TUI")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "disable colored text output")
	fs.IntVar(&c.FPS, "fps", c.FPS, "TUI frame rate")
	fs.StringVar(&c.Viz, "viz", c.Viz, "initial visualizer: scope|notes|spectrum|trails")
	fs.StringVar(&c.LogFile, "log", c.LogFile, "append logs to this file")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&c.Record, "record", c.Record, "record detected kicks to this SQLite database")

	if err := fs.Parse(args); err != nil {
		return c, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		c.File = fs.Arg(0)
	default:
		return c, fmt.Errorf("expected at most one file, got %d arguments", fs.NArg())
	}
	return c, c.Validate()
}

// Validate checks option ranges and that a file source exists and can be
// decoded.
func (c Config) Validate() error {
	if c.FPS < 1 || c.FPS > maxFPS {
		return fmt.Errorf("fps must be between 1 and %d, got %d", maxFPS, c.FPS)
	}
	if _, ok := visualizer.ModeIndex(c.Viz); !ok {
		return fmt.Errorf("unknown visualizer %q", c.Viz)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.File == "" {
		if c.Mute {
			return errors.New("-mute only applies to file sources")
		}
		return nil
	}
	if c.Device != "" {
		return errors.New("-device and a file argument are mutually exclusive")
	}

	info, err := os.Stat(c.File)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", c.File)
	}
	if ext := filepath.Ext(c.File); !capture.IsSupportedExt(ext) {
		return fmt.Errorf("%w %q (supported: %s)", capture.ErrUnsupportedFormat, ext, capture.SupportedExtsList())
	}
	return nil
}

// SetupLogging configures the standard logrus logger. Logs go to LogFile when
// set, to stderr in print mode, and are discarded otherwise so they never
// corrupt the TUI. The returned closer releases the log file.
func (c Config) SetupLogging(stderr io.Writer) (io.Closer, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})

	switch {
	case c.LogFile != "":
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		logrus.SetOutput(f)
		return f, nil
	case c.Print:
		logrus.SetOutput(stderr)
	default:
		logrus.SetOutput(io.Discard)
	}
	return nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
