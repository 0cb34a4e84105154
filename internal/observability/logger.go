package observability

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// NewLogger returns a console zerolog logger writing to out.
// Debug events are enabled when verbose is set.
func NewLogger(out io.Writer, verbose bool) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: !isTerminal(out)}
	return zerolog.New(console).With().Timestamp().Logger().Level(level)
}

// NewJSONLogger returns a zerolog logger emitting one JSON object per line, for servers.
func NewJSONLogger(out io.Writer, verbose bool) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).With().Timestamp().Logger().Level(level)
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
