package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
)

const defaultBufferLines = 500

// RingBuffer keeps the most recent log lines in memory.
type RingBuffer struct {
	mu    sync.RWMutex
	lines []string
	next  int
	count int
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = defaultBufferLines
	}
	return &RingBuffer{lines: make([]string, capacity)}
}

// Add appends a line, overwriting the oldest once the buffer is full.
func (rb *RingBuffer) Add(line string) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.lines[rb.next] = line
	rb.next = (rb.next + 1) % len(rb.lines)
	if rb.count < len(rb.lines) {
		rb.count++
	}
}

// Lines returns the last n lines, oldest first.
func (rb *RingBuffer) Lines(n int) []string {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if n > rb.count {
		n = rb.count
	}
	if n <= 0 {
		return []string{}
	}

	out := make([]string, n)
	start := rb.next - n
	if start < 0 {
		start += len(rb.lines)
	}
	for i := range out {
		out[i] = rb.lines[(start+i)%len(rb.lines)]
	}
	return out
}

func (rb *RingBuffer) Total() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

func (rb *RingBuffer) Capacity() int {
	return len(rb.lines)
}

// BufferHandler copies every record at or above level into a RingBuffer as
// a text line, then hands it to the wrapped handler.
type BufferHandler struct {
	wrapped slog.Handler
	buffer  *RingBuffer
	level   slog.Level
	// scope replays WithAttrs/WithGroup calls onto the line formatter.
	scope []func(slog.Handler) slog.Handler
}

func NewBufferHandler(wrapped slog.Handler, buffer *RingBuffer, level slog.Level) *BufferHandler {
	return &BufferHandler{wrapped: wrapped, buffer: buffer, level: level}
}

func (h *BufferHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= h.level {
		return true
	}
	return h.wrapped != nil && h.wrapped.Enabled(ctx, level)
}

func (h *BufferHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level {
		var buf bytes.Buffer
		var th slog.Handler = slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
		for _, apply := range h.scope {
			th = apply(th)
		}
		if err := th.Handle(ctx, r); err == nil {
			h.buffer.Add(strings.TrimSuffix(buf.String(), "\n"))
		}
	}

	if h.wrapped != nil && h.wrapped.Enabled(ctx, r.Level) {
		return h.wrapped.Handle(ctx, r)
	}
	return nil
}

func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone(func(th slog.Handler) slog.Handler { return th.WithAttrs(attrs) })
	if h.wrapped != nil {
		clone.wrapped = h.wrapped.WithAttrs(attrs)
	}
	return clone
}

func (h *BufferHandler) WithGroup(name string) slog.Handler {
	clone := h.clone(func(th slog.Handler) slog.Handler { return th.WithGroup(name) })
	if h.wrapped != nil {
		clone.wrapped = h.wrapped.WithGroup(name)
	}
	return clone
}

func (h *BufferHandler) clone(apply func(slog.Handler) slog.Handler) *BufferHandler {
	scope := make([]func(slog.Handler) slog.Handler, 0, len(h.scope)+1)
	scope = append(scope, h.scope...)
	return &BufferHandler{
		wrapped: h.wrapped,
		buffer:  h.buffer,
		level:   h.level,
		scope:   append(scope, apply),
	}
}
