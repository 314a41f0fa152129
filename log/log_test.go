package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestMakeDefaults(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf)

	if l.Level() != DefaultLevel {
		t.Errorf("expected default level %v, got %v", DefaultLevel, l.Level())
	}

	l.Debug("hidden")

	if buf.Len() != 0 {
		t.Errorf("debug message logged below default level: %q", buf.String())
	}

	l.Info("visible", slog.String("key", "value"))

	out := buf.String()
	if !strings.Contains(out, "visible") || !strings.Contains(out, "value") {
		t.Errorf("expected message and attr in output, got %q", out)
	}
}

func TestZeroLoggerDiscards(t *testing.T) {
	var l Logger

	// Must not panic.
	l.Info("into the void")
	l.Error("still nothing")
}

func TestWrapOverridesLevel(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(false)).Wrap(WithLevel(LevelTrace))

	l.Trace("fine-grained")

	if !strings.Contains(buf.String(), "fine-grained") {
		t.Errorf("expected trace output after Wrap, got %q", buf.String())
	}

	if !strings.Contains(buf.String(), "TRACE") {
		t.Errorf("expected TRACE level name, got %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithPretty(false))

	l.Info("structured", slog.Int("n", 42))

	var record map[string]any

	err := json.Unmarshal(buf.Bytes(), &record)
	if err != nil {
		t.Fatalf("output is not valid JSON: %v: %q", err, buf.String())
	}

	if record["msg"] != "structured" {
		t.Errorf("expected msg=structured, got %v", record["msg"])
	}

	if record["n"] != float64(42) {
		t.Errorf("expected n=42, got %v", record["n"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != FormatJSON {
		t.Error("ParseFormat(json) != FormatJSON")
	}

	if ParseFormat("text") != FormatText {
		t.Error("ParseFormat(text) != FormatText")
	}

	if ParseFormat("yaml") != DefaultFormat {
		t.Error("ParseFormat(yaml) != DefaultFormat")
	}
}

func TestLevelString(t *testing.T) {
	for name := range Levels() {
		if ParseLevel(name).String() != name {
			t.Errorf("level %q does not round-trip", name)
		}
	}
}

func TestPrettyHandlerColors(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(true), WithFormat(FormatText))

	l.Info("colored", slog.Bool("ok", true))

	out := buf.String()
	if !strings.Contains(out, colorGreen) {
		t.Errorf("expected green bool value in pretty output, got %q", out)
	}

	if !strings.Contains(out, colorGray) {
		t.Errorf("expected gray keys in pretty output, got %q", out)
	}
}
