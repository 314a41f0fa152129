package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

const formatSource = `
pi = 3.14
add(x, y) = x + y
sign(x) | x < 0 = -1 | true = 1
greeting = "hi"
`

func parseSource(t *testing.T, source string) *Program {
	t.Helper()

	prog, err := Parse(context.Background(), source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return prog
}

func TestFormat_RoundTrip(t *testing.T) {
	prog := parseSource(t, formatSource)

	var buf bytes.Buffer
	if err := prog.Format(context.Background(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	again := parseSource(t, buf.String())

	if again.Len() != prog.Len() {
		t.Fatalf("round trip changed definition count: %d != %d",
			again.Len(), prog.Len())
	}

	for name, value := range prog.Definitions() {
		reparsed, ok := again.Definition(name)
		if !ok {
			t.Errorf("round trip lost definition %s", name)

			continue
		}

		if !Equal(reparsed, value) {
			t.Errorf("round trip changed %s: %s != %s",
				name, reparsed, value)
		}
	}
}

func TestFormat_FlatGuards(t *testing.T) {
	prog := parseSource(t, "sign(x) | x < 0 = -1 | true = 1\n")

	var buf bytes.Buffer
	if err := prog.Format(context.Background(), &buf, 0); err != nil {
		t.Fatalf("format error: %v", err)
	}

	got := buf.String()
	if strings.Count(got, "\n") != 1 {
		t.Errorf("flat format spans multiple lines: %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	prog := parseSource(t, formatSource)

	var buf bytes.Buffer
	if err := prog.FormatJSON(context.Background(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(decoded) != prog.Len() {
		t.Errorf("expected %d keys, got %d", prog.Len(), len(decoded))
	}

	if decoded["greeting"] != "hi" {
		t.Errorf("unexpected greeting: %v", decoded["greeting"])
	}
}

func TestFormatYAML(t *testing.T) {
	prog := parseSource(t, formatSource)

	var buf bytes.Buffer
	if err := prog.FormatYAML(context.Background(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	got := buf.String()

	for _, want := range []string{"pi:", "add:", "(parameters)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPrint(t *testing.T) {
	prog := parseSource(t, "main() = f([1, 2], \"s\")\n")

	var buf bytes.Buffer

	prog.Print(&buf)

	got := buf.String()

	for _, want := range []string{"main:", "Func", "App", "List", "Num 1", `Str "s"`} {
		if !strings.Contains(got, want) {
			t.Errorf("dump missing %q:\n%s", want, got)
		}
	}
}

func TestToNative(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want any
	}{
		{name: "integral number", node: Num(42), want: int64(42)},
		{name: "fractional number", node: Num(1.5), want: 1.5},
		{name: "string", node: Str("s"), want: "s"},
		{name: "identifier", node: Ident("v"), want: "v"},
		{
			name: "application renders as source",
			node: App{Callee: Ident("f"), Args: Args{Num(1)}},
			want: "f(1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToNative(tt.node); got != tt.want {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
		})
	}

	list := ToNative(List{Num(1), Str("a")})

	values, ok := list.([]any)
	if !ok || len(values) != 2 {
		t.Fatalf("unexpected list conversion: %#v", list)
	}

	if values[0] != int64(1) || values[1] != "a" {
		t.Errorf("unexpected list elements: %#v", values)
	}

	fn := ToNative(Func{Params: Params{"x"}, Body: Ident("x")})

	m, ok := fn.(map[string]any)
	if !ok {
		t.Fatalf("unexpected function conversion: %#v", fn)
	}

	if _, ok := m["(parameters)"]; !ok {
		t.Error("function conversion missing parameters")
	}

	if m["(body)"] != "x" {
		t.Errorf("unexpected body: %#v", m["(body)"])
	}
}
