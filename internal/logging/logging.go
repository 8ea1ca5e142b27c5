// Package logging wraps a single process-wide zerolog.Logger behind a
// narrow Sink interface, so the rest of the core logs structured
// events without taking a hard dependency on zerolog everywhere and
// without ever blocking a caller on the sink (spec §5: "the core
// treats logging as best-effort and never blocks on it").
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Sink is the logging surface the rest of the core depends on.
type Sink interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, err error, fields map[string]any)
}

type zerologSink struct {
	logger zerolog.Logger
}

func (z *zerologSink) event(lvl zerolog.Level, msg string, fields map[string]any) {
	ev := z.logger.WithLevel(lvl)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (z *zerologSink) Debug(msg string, fields map[string]any) { z.event(zerolog.DebugLevel, msg, fields) }
func (z *zerologSink) Info(msg string, fields map[string]any)  { z.event(zerolog.InfoLevel, msg, fields) }
func (z *zerologSink) Warn(msg string, fields map[string]any)  { z.event(zerolog.WarnLevel, msg, fields) }
func (z *zerologSink) Error(msg string, err error, fields map[string]any) {
	ev := z.logger.Error()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Err(err).Msg(msg)
}

var (
	once    sync.Once
	process *zerologSink
)

// Default returns the process-wide Sink, constructing it on first
// use. Debug-level verbosity is gated the same way the teacher gated
// its stderr debug output: via an environment variable.
func Default() Sink {
	once.Do(func() {
		level := zerolog.InfoLevel
		if os.Getenv("MARCO_DEBUG") != "" {
			level = zerolog.DebugLevel
		}
		l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			Level(level).
			With().Timestamp().Logger()
		process = &zerologSink{logger: l}
	})
	return process
}

// Noop returns a Sink that discards everything, useful in tests and
// library embeddings that want silence by default.
func Noop() Sink { return noopSink{} }

type noopSink struct{}

func (noopSink) Debug(string, map[string]any)        {}
func (noopSink) Info(string, map[string]any)         {}
func (noopSink) Warn(string, map[string]any)         {}
func (noopSink) Error(string, error, map[string]any) {}
