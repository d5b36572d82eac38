package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// colorHandler is a colored text handler for development.
type colorHandler struct {
	slog.Handler
	w     io.Writer
	level slog.Level
}

func newColorHandler(w io.Writer, opts *slog.HandlerOptions) *colorHandler {
	level := slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level.Level()
	}
	return &colorHandler{
		Handler: slog.NewTextHandler(w, opts),
		w:       w,
		level:   level,
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func (h *colorHandler) Handle(ctx context.Context, r slog.Record) error {
	var levelColor string
	switch r.Level {
	case slog.LevelDebug:
		levelColor = colorGray
	case slog.LevelInfo:
		levelColor = colorBlue
	case slog.LevelWarn:
		levelColor = colorYellow
	case slog.LevelError:
		levelColor = colorRed
	}

	// Format: time LEVEL message key=value...
	var buf strings.Builder
	buf.WriteString(colorGray)
	buf.WriteString(r.Time.Format("15:04:05"))
	buf.WriteString(colorReset)
	buf.WriteString(" ")
	buf.WriteString(levelColor)
	buf.WriteString(r.Level.String())
	buf.WriteString(colorReset)
	buf.WriteString(" ")
	buf.WriteString(r.Message)

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(" ")
		buf.WriteString(colorGray)
		buf.WriteString(a.Key)
		buf.WriteString("=")
		buf.WriteString(colorReset)
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	_, err := h.w.Write([]byte(buf.String()))
	return err
}

func (h *colorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &colorHandler{
		Handler: h.Handler.WithAttrs(attrs),
		w:       h.w,
		level:   h.level,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	return &colorHandler{
		Handler: h.Handler.WithGroup(name),
		w:       h.w,
		level:   h.level,
	}
}
