package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"
)

// prettyHandler однострочный цветной вывод для локальной разработки.
type prettyHandler struct {
	opts  slog.HandlerOptions
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

func newPretty(out io.Writer, level slog.Level) *slog.Logger {
	return slog.New(&prettyHandler{
		opts: slog.HandlerOptions{Level: level},
		out:  out,
		mu:   &sync.Mutex{},
	})
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.BlueString(level)
	default:
		level = color.MagentaString(level)
	}

	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[h.key(a.Key)] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.key(a.Key)] = attrValue(a.Value)
		return true
	})

	var extra string
	if len(fields) > 0 {
		b, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
		extra = color.WhiteString(string(b))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := fmt.Fprintln(h.out,
		r.Time.Format("[15:04:05.000]"),
		level,
		color.CyanString(r.Message),
		extra,
	)
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.group = h.key(name)
	return &next
}

func (h *prettyHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	if err, ok := v.Any().(error); ok {
		return err.Error()
	}
	if v.Kind() == slog.KindDuration {
		return v.Duration().String()
	}
	return v.Any()
}
