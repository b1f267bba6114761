// Package log provides context-aware logging for wt, backed by zerolog.
package log

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// Logger provides output and verbose command logging.
// Plain Printf/Println calls go to the underlying writer unstructured
// (these are the tool's normal stdout/stderr narration); Debug and Command
// emit structured zerolog events so -vv traces and background hook logs
// are greppable/parseable instead of ad hoc strings.
type Logger struct {
	out     io.Writer
	zl      zerolog.Logger
	verbose bool
	quiet   bool
}

// New creates a new logger. Structured events go through a zerolog console
// writer over out; plain Printf/Println bypass zerolog's field formatting
// entirely, matching wt's existing narration style.
func New(out io.Writer, verbose, quiet bool) *Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.Disabled
	}
	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05", NoColor: false}
	zl := zerolog.New(cw).Level(level).With().Timestamp().Logger()
	return &Logger{out: out, zl: zl, verbose: verbose, quiet: quiet}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{out: io.Discard, zl: zerolog.New(io.Discard), quiet: true}
}

// Printf writes formatted output, unstructured.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Println writes a line of output, unstructured.
func (l *Logger) Println(args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, args...)
}

// Command returns a function that logs an external command execution as a
// structured zerolog event. Call the returned function after the command
// completes. Only emits when verbose mode is enabled and quiet is disabled.
func (l *Logger) Command(dir, name string, args ...string) func(time.Duration) {
	if !l.verbose || l.quiet {
		return func(time.Duration) {}
	}
	return func(d time.Duration) {
		l.zl.Debug().
			Str("dir", dir).
			Str("cmd", name).
			Strs("args", args).
			Dur("took", d).
			Msg("exec")
	}
}

// Debug logs a structured debug event with key-value pairs.
// Only emits when verbose mode is enabled and quiet is disabled.
func (l *Logger) Debug(msg string, keyvals ...any) {
	if !l.verbose || l.quiet {
		return
	}
	ev := l.zl.Debug()
	for i := 0; i+1 < len(keyvals); i += 2 {
		if key, ok := keyvals[i].(string); ok {
			ev = ev.Interface(key, keyvals[i+1])
		}
	}
	ev.Msg(msg)
}

// Warn logs a structured warning event, always emitted unless quiet.
func (l *Logger) Warn(msg string, keyvals ...any) {
	if l.quiet {
		return
	}
	ev := l.zl.Warn()
	for i := 0; i+1 < len(keyvals); i += 2 {
		if key, ok := keyvals[i].(string); ok {
			ev = ev.Interface(key, keyvals[i+1])
		}
	}
	ev.Msg(msg)
}

// IsVerbose returns true if the logger is in verbose mode (and not quiet).
func (l *Logger) IsVerbose() bool {
	return l.verbose && !l.quiet
}

// Writer returns the underlying writer.
func (l *Logger) Writer() io.Writer {
	return l.out
}

// Zerolog exposes the underlying structured logger for components (hook
// background runner, llmbridge) that want to attach their own fields.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
