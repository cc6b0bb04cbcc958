package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestInit(t *testing.T) {
	defer SetLevel(LevelWarn)

	Init(true)
	if GetLevel() != LevelDebug {
		t.Errorf("verbose init should set Debug level, got %v", GetLevel())
	}

	Init(false)
	if GetLevel() != LevelWarn {
		t.Errorf("non-verbose init should set Warn level, got %v", GetLevel())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarn)
	defer SetOutput(os.Stderr)
	defer SetLevel(LevelWarn)

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug message should be filtered at Warn level")
	}
	if strings.Contains(out, "info message") {
		t.Error("info message should be filtered at Warn level")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("warn message should be logged")
	}
	if !strings.Contains(out, "error message") {
		t.Error("error message should be logged")
	}
}

func TestLogFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelDebug)
	defer SetOutput(os.Stderr)
	defer SetLevel(LevelWarn)

	Info("reloading %s", "nginx")

	out := buf.String()
	if !strings.HasPrefix(out, "[INFO] ") {
		t.Errorf("expected [INFO] prefix, got %q", out)
	}
	if !strings.Contains(out, "reloading nginx") {
		t.Errorf("expected formatted message, got %q", out)
	}
}

func TestLogKV(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelDebug)
	defer SetOutput(os.Stderr)
	defer SetLevel(LevelWarn)

	t.Run("pairs appended", func(t *testing.T) {
		buf.Reset()
		InfoKV("record set", "name", "_acme-challenge.example.com", "type", "TXT")
		out := buf.String()
		if !strings.Contains(out, "name=_acme-challenge.example.com") {
			t.Errorf("expected name pair, got %q", out)
		}
		if !strings.Contains(out, "type=TXT") {
			t.Errorf("expected type pair, got %q", out)
		}
	})

	t.Run("odd pair count", func(t *testing.T) {
		buf.Reset()
		DebugKV("partial", "orphan")
		if !strings.Contains(buf.String(), "orphan=?") {
			t.Errorf("dangling key should render as orphan=?, got %q", buf.String())
		}
	})

	t.Run("no pairs", func(t *testing.T) {
		buf.Reset()
		WarnKV("bare message")
		out := strings.TrimRight(buf.String(), "\n")
		if !strings.HasSuffix(out, "bare message") {
			t.Errorf("expected message without trailing fields, got %q", out)
		}
	})
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelDebug)
	defer SetOutput(os.Stderr)
	defer SetLevel(LevelWarn)

	LogError(nil, "should not log")
	if buf.Len() != 0 {
		t.Error("nil error should not produce output")
	}
}
