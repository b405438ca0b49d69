package main

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// handler is a slog.Handler that timestamps each record and writes it to
// one or more destinations (typically stderr, plus an optional log
// file), guarded by a mutex so concurrent machines can share one logger.
type handler struct {
	mu      *sync.Mutex
	writers []io.Writer
	opts    *slog.HandlerOptions
	attrs   []slog.Attr
}

func newHandler(opts *slog.HandlerOptions, writers ...io.Writer) *handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &handler{mu: &sync.Mutex{}, writers: writers, opts: opts}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	line := r.Time.Format("2006-01-02T15:04:05.000Z07:00") + " " + r.Level.String() + " " + r.Message
	r.Attrs(func(a slog.Attr) bool {
		line += " " + a.Key + "=" + a.Value.String()
		return true
	})
	for _, a := range h.attrs {
		line += " " + a.Key + "=" + a.Value.String()
	}
	line += "\n"

	for _, w := range h.writers {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{mu: h.mu, writers: h.writers, opts: h.opts, attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...)}
}

func (h *handler) WithGroup(name string) slog.Handler {
	return h
}

// slogLogger adapts a *slog.Logger to atvm.Logger, the one-method sink
// the core's ECHO function code writes to.
type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Log(msg string) {
	l.logger.Info(msg)
}
