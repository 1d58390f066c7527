// Package logging builds the structured logger shared by the loop, pipeline
// and worker components.
//
// Records are tagged with the application target ("app/<name>", taken from
// the --app command line flag) and filtered by a numeric verbosity in the
// 0..4 range used by the cocaine runtime.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Verbosity is the cocaine log threshold. Higher values let more through.
type Verbosity int

const (
	Ignore Verbosity = iota
	Error
	Warn
	Info
	Debug
)

// levelSilent sits above every level a component logs at.
const levelSilent = slog.LevelError + 4

var verbosityNames = map[Verbosity]string{
	Ignore: "ignore",
	Error:  "error",
	Warn:   "warn",
	Info:   "info",
	Debug:  "debug",
}

func (v Verbosity) String() string {
	if name, ok := verbosityNames[v]; ok {
		return name
	}
	return "verbosity(" + strconv.Itoa(int(v)) + ")"
}

// Level returns the minimum slog level that passes at this verbosity.
func (v Verbosity) Level() slog.Level {
	switch {
	case v <= Ignore:
		return levelSilent
	case v == Error:
		return slog.LevelError
	case v == Warn:
		return slog.LevelWarn
	case v == Info:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// ParseVerbosity accepts either the numeric form ("0".."4") or a level name.
func ParseVerbosity(s string) (Verbosity, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < int(Ignore) || n > int(Debug) {
			return Ignore, fmt.Errorf("verbosity %d out of range [0, 4]", n)
		}
		return Verbosity(n), nil
	}
	for v, name := range verbosityNames {
		if name == s {
			return v, nil
		}
	}
	return Ignore, fmt.Errorf("unknown verbosity %q", s)
}

// DefaultTarget is used when no --app flag is present.
const DefaultTarget = "app/standalone"

// TargetFromArgs derives the log target from a command line.
func TargetFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--app" && i+1 < len(args) {
			return "app/" + args[i+1]
		}
		if name, ok := strings.CutPrefix(arg, "--app="); ok && name != "" {
			return "app/" + name
		}
	}
	return DefaultTarget
}

// Config configures New.
type Config struct {
	// Verbosity filters records below the matching level.
	Verbosity Verbosity

	// Target is attached to every record. Empty means TargetFromArgs(os.Args).
	Target string

	// Output defaults to os.Stderr.
	Output io.Writer

	// JSON switches from the text handler to the JSON handler.
	JSON bool
}

// DefaultConfig logs at Info to stderr.
func DefaultConfig() Config {
	return Config{
		Verbosity: Info,
		Output:    os.Stderr,
	}
}

// New builds a logger from config.
func New(config Config) *slog.Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	target := config.Target
	if target == "" {
		target = TargetFromArgs(os.Args)
	}

	opts := &slog.HandlerOptions{Level: config.Verbosity.Level()}
	var h slog.Handler
	if config.JSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h).With("target", target)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: levelSilent}))
}

// OrDefault returns l, or slog.Default() when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
