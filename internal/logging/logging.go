// Package logging builds the slog loggers used by the CLI and sessions.
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LevelSilent is above every level slog defines.
const LevelSilent = slog.Level(100)

// NewLogger returns a logger writing compact lines to w:
//
//	15:04:05 WARN message key=value key2=value2
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewHandler(w, level))
}

// NewDiscardLogger drops every record.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LevelFromString accepts debug, info, warn(ing) and error, case-insensitive.
// Anything else maps to warn.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	case "silent", "quiet", "off":
		return LevelSilent
	default:
		return slog.LevelWarn
	}
}

// LevelFromVerbosity maps -v counts: 0 keeps base, 1 is info, 2+ is debug.
func LevelFromVerbosity(base slog.Level, verbosity int, quiet bool) slog.Level {
	switch {
	case quiet:
		return LevelSilent
	case verbosity >= 2:
		return slog.LevelDebug
	case verbosity == 1:
		return min(base, slog.LevelInfo)
	default:
		return base
	}
}

// Handler formats records on a single line.
type Handler struct {
	w      io.Writer
	level  slog.Level
	prefix string
	mu     *sync.Mutex
}

func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{w: w, level: level, mu: &sync.Mutex{}}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	if !r.Time.IsZero() {
		buf.WriteString(r.Time.Format(time.TimeOnly))
		buf.WriteByte(' ')
	}
	buf.WriteString(r.Level.String())
	buf.WriteByte(' ')
	buf.WriteString(r.Message)
	buf.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, "", a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf bytes.Buffer
	buf.WriteString(h.prefix)
	for _, a := range attrs {
		writeAttr(&buf, "", a)
	}
	clone := *h
	clone.prefix = buf.String()
	return &clone
}

// WithGroup is flattened: group names are not tracked.
func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

func writeAttr(buf *bytes.Buffer, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, inner := range a.Value.Group() {
			writeAttr(buf, key, inner)
		}
		return
	}
	value := a.Value.String()
	if strings.ContainsAny(value, " \t\n\"=") {
		value = fmt.Sprintf("%q", value)
	}
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')
	buf.WriteString(value)
}
