package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRingBufferWraps(t *testing.T) {
	buf := NewRingBuffer(3)
	for _, l := range []string{"line1", "line2", "line3", "line4"} {
		buf.Add(l)
	}

	lines := buf.Lines(10)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "line2" || lines[2] != "line4" {
		t.Errorf("unexpected order %v", lines)
	}
	if buf.Total() != 3 {
		t.Errorf("expected total 3, got %d", buf.Total())
	}
}

func TestRingBufferLastN(t *testing.T) {
	buf := NewRingBuffer(5)
	for _, l := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		buf.Add(l)
	}
	got := buf.Lines(2)
	if len(got) != 2 || got[0] != "f" || got[1] != "g" {
		t.Errorf("expected [f g], got %v", got)
	}
}

func TestRingBufferEmpty(t *testing.T) {
	buf := NewRingBuffer(10)
	if lines := buf.Lines(10); len(lines) != 0 {
		t.Fatalf("expected no lines, got %v", lines)
	}
	if lines := buf.Lines(-1); len(lines) != 0 {
		t.Fatalf("expected no lines for negative n, got %v", lines)
	}
}

func TestRingBufferDefaultCapacity(t *testing.T) {
	if c := NewRingBuffer(0).Capacity(); c != defaultBufferLines {
		t.Errorf("expected default capacity %d, got %d", defaultBufferLines, c)
	}
	if c := NewRingBuffer(-1).Capacity(); c != defaultBufferLines {
		t.Errorf("expected default capacity %d, got %d", defaultBufferLines, c)
	}
}

func TestBufferHandlerForwardsAndStores(t *testing.T) {
	buf := NewRingBuffer(10)
	var out bytes.Buffer
	h := NewBufferHandler(slog.NewTextHandler(&out, nil), buf, slog.LevelInfo)

	slog.New(h).Info("forwarded")

	if lines := buf.Lines(10); len(lines) != 1 || strings.HasSuffix(lines[0], "\n") {
		t.Fatalf("expected one trimmed line, got %q", lines)
	}
	if out.Len() == 0 {
		t.Error("expected wrapped handler to receive the record")
	}
}

func TestBufferHandlerKeepsScope(t *testing.T) {
	buf := NewRingBuffer(10)
	logger := slog.New(NewBufferHandler(nil, buf, slog.LevelInfo))

	logger.With("conn", "c1").WithGroup("ws").With("role", "driver").Info("registered", "user", "u1")

	line := buf.Lines(1)[0]
	for _, want := range []string{"conn=c1", "ws.role=driver", "ws.user=u1"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestBufferHandlerLevel(t *testing.T) {
	buf := NewRingBuffer(10)
	logger := slog.New(NewBufferHandler(nil, buf, slog.LevelWarn))
	logger.Info("skipped")
	logger.Warn("kept")
	if lines := buf.Lines(10); len(lines) != 1 || !strings.Contains(lines[0], "kept") {
		t.Errorf("expected only the warn line, got %v", lines)
	}
}
