package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(WARN, 10)
	l.SetOutput(&buf)

	l.Error("boom")
	l.Warn("careful")
	l.Info("ignored")
	l.Debug("also ignored")

	out := buf.String()
	if !strings.Contains(out, "[ERROR] boom") {
		t.Errorf("missing error line: %q", out)
	}
	if !strings.Contains(out, "[WARN] careful") {
		t.Errorf("missing warn line: %q", out)
	}
	if strings.Contains(out, "ignored") {
		t.Errorf("filtered levels leaked: %q", out)
	}
	if entries := l.GetBuffer(); len(entries) != 2 {
		t.Errorf("buffer has %d entries, want 2", len(entries))
	}
}

func TestContextPairs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(INFO, 10)
	l.SetOutput(&buf)

	l.Info("snapshot stored", "count", 9, "source", "bridge-server")

	out := buf.String()
	if !strings.Contains(out, "count=9") || !strings.Contains(out, "source=bridge-server") {
		t.Errorf("context missing from output: %q", out)
	}

	entries := l.GetBuffer()
	if len(entries) != 1 {
		t.Fatalf("buffer has %d entries", len(entries))
	}
	if entries[0].Context["count"] != 9 {
		t.Errorf("context = %+v", entries[0].Context)
	}
}

func TestContextDanglingKeyDropped(t *testing.T) {
	t.Parallel()

	l := New(INFO, 10)
	l.SetOutput(&bytes.Buffer{})

	l.Info("odd pairs", "key")

	entries := l.GetBuffer()
	if len(entries[0].Context) != 0 {
		t.Errorf("dangling key recorded: %+v", entries[0].Context)
	}
}

func TestBufferBound(t *testing.T) {
	t.Parallel()

	l := New(DEBUG, 3)
	l.SetOutput(&bytes.Buffer{})

	for i := 0; i < 5; i++ {
		l.Info("message", "seq", i)
	}

	entries := l.GetBuffer()
	if len(entries) != 3 {
		t.Fatalf("buffer has %d entries, want 3", len(entries))
	}
	if entries[0].Context["seq"] != 2 || entries[2].Context["seq"] != 4 {
		t.Errorf("buffer kept wrong entries: %+v", entries)
	}
}

func TestSetLevel(t *testing.T) {
	t.Parallel()

	l := New(ERROR, 10)
	l.SetOutput(&bytes.Buffer{})

	l.Debug("before")
	l.SetLevel(DEBUG)
	l.Debug("after")

	entries := l.GetBuffer()
	if len(entries) != 1 || entries[0].Message != "after" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"error", ERROR},
		{"ERROR", ERROR},
		{"warn", WARN},
		{"debug", DEBUG},
		{"info", INFO},
		{"", INFO},
		{"nonsense", INFO},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
