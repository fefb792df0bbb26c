// SPDX-License-Identifier: EPL-2.0

// Package logging builds the slog loggers used by the commands. Errors
// created with go-xerrors are logged with their stack trace.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mdobak/go-xerrors"
)

// New returns a logger writing to w in format ("text" or "json") at level.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel accepts debug, info, warn and error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

type stackFrame struct {
	Func   string `json:"func"`
	Source string `json:"source"`
	Line   int    `json:"line"`
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}
	if err, ok := a.Value.Any().(error); ok {
		a.Value = errorValue(err)
	}
	return a
}

func errorValue(err error) slog.Value {
	attrs := []slog.Attr{slog.String("msg", err.Error())}
	if frames := marshalStack(err); frames != nil {
		attrs = append(attrs, slog.Any("trace", frames))
	}
	return slog.GroupValue(attrs...)
}

func marshalStack(err error) []stackFrame {
	trace := xerrors.StackTrace(err)
	if len(trace) == 0 {
		return nil
	}

	frames := trace.Frames()
	out := make([]stackFrame, len(frames))
	for i, f := range frames {
		out[i] = stackFrame{
			Func:   filepath.Base(f.Function),
			Source: filepath.Join(filepath.Base(filepath.Dir(f.File)), filepath.Base(f.File)),
			Line:   f.Line,
		}
	}
	return out
}
