// Package tracelog provides the two logging surfaces cascadesim uses: a
// structured zerolog-backed diagnostic logger for CLI/boot messages, and
// a bracket-tagged line sink for the spec-mandated simulation trace.
package tracelog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors the teacher's reporting.LogLevel enum.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format mirrors the teacher's reporting.LogFormat enum.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config configures the structured logger.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger is a thin wrapper over zerolog for CLI-facing diagnostics —
// config loaded, simulation starting, I/O errors. It is not the
// spec-mandated trace; see Sink for that.
type Logger struct {
	z zerolog.Logger
}

// New creates a structured logger.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var out io.Writer = cfg.Output
	if cfg.Format == FormatText {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339, NoColor: false}
	}

	z := zerolog.New(out).With().Timestamp().Logger()
	switch cfg.Level {
	case LevelDebug:
		z = z.Level(zerolog.DebugLevel)
	case LevelWarn:
		z = z.Level(zerolog.WarnLevel)
	case LevelError:
		z = z.Level(zerolog.ErrorLevel)
	default:
		z = z.Level(zerolog.InfoLevel)
	}

	return &Logger{z: z}
}

func (l *Logger) Debug(msg string, fields ...interface{}) { l.event(l.z.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...interface{})  { l.event(l.z.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...interface{})  { l.event(l.z.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...interface{}) { l.event(l.z.Error(), msg, fields) }

func (l *Logger) event(ev *zerolog.Event, msg string, fields []interface{}) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, fields[i+1])
	}
	ev.Msg(msg)
}
