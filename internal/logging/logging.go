// Package logging builds the zerolog logger used for debug output.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"taskboard/internal/config"
)

// New returns the logger for a CLI invocation.
// Logging is disabled unless cfg.Debug is set; debug logs go to w in the
// format selected by TASKBOARD_LOG_FORMAT.
func New(w io.Writer, cfg *config.Config) zerolog.Logger {
	if cfg == nil || !cfg.Debug {
		return zerolog.Nop()
	}
	zerolog.TimestampFieldName = "timestamp"

	out := w
	if cfg.Env.LogFormat != "json" {
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = w
		consoleWriter.NoColor = !isTerminal(w)
		out = consoleWriter
	}

	return zerolog.New(out).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
