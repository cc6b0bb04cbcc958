package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	defer SetWriter(os.Stdout)

	data := map[string]interface{}{
		"success": true,
		"domain":  "example.com",
	}
	if err := JSON(data); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["domain"] != "example.com" {
		t.Errorf("expected domain example.com, got %v", decoded["domain"])
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	defer SetWriter(os.Stdout)

	t.Run("aligned columns", func(t *testing.T) {
		buf.Reset()
		Table(
			[]string{"DOMAIN", "TYPE"},
			[][]string{
				{"example.com", "static"},
				{"a.io", "proxy"},
			},
		)

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected 4 lines (header, sep, 2 rows), got %d", len(lines))
		}
		if !strings.HasPrefix(lines[0], "DOMAIN") {
			t.Errorf("expected header line, got %q", lines[0])
		}
		if !strings.Contains(lines[1], "---") {
			t.Errorf("expected separator line, got %q", lines[1])
		}
		// example.com is the widest cell; a.io row must be padded to match
		if len(lines[2]) < len("example.com") {
			t.Errorf("rows should be padded to column width")
		}
	})

	t.Run("empty headers", func(t *testing.T) {
		buf.Reset()
		Table(nil, [][]string{{"x"}})
		if buf.Len() != 0 {
			t.Error("no output expected for empty headers")
		}
	})

	t.Run("short row", func(t *testing.T) {
		buf.Reset()
		Table([]string{"A", "B"}, [][]string{{"only"}})
		if !strings.Contains(buf.String(), "only") {
			t.Error("short rows should still render")
		}
	})
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	defer SetWriter(os.Stdout)

	Success("created %s", "example.com")
	Error("failed")
	Warn("careful")
	Info("working")
	Print("plain %d", 42)

	out := buf.String()
	for _, want := range []string{"created example.com", "failed", "careful", "working", "plain 42"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}
