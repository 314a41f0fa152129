package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/ardnew/efpl/lang"
)

// writeSource writes source text to a temp file and returns its path.
func writeSource(t *testing.T, source string) string {
	t.Helper()

	tmpfile, err := os.CreateTemp(t.TempDir(), "efpl-test-*.efpl")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tmpfile.WriteString(source); err != nil {
		t.Fatal(err)
	}

	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	return tmpfile.Name()
}

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything written.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatal(err)
	}

	return buf.String(), runErr
}

func TestRunCommand(t *testing.T) {
	t.Cleanup(lang.ClearCache)

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "arithmetic",
			source: "main() = 1 + 2 * 3\n",
			want:   "7",
		},
		{
			name: "guarded function",
			source: "sign(x) | (x < 0) = -1 | (x == 0) = 0 | true = 1\n" +
				"main() = sign(-5)\n",
			want: "-1",
		},
		{
			name: "recursion",
			source: "fact(n) | (n <= 1) = 1 | true = n * fact(n - 1)\n" +
				"main() = fact(6)\n",
			want: "720",
		},
		{
			name:   "string result",
			source: "main() = \"hello\"\n",
			want:   `"hello"`,
		},
		{
			name: "list result",
			source: "double(x) = x * 2\n" +
				"main() = [double(1), double(2), double(3)]\n",
			want: "[2, 4, 6]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &Run{Source: writeSource(t, tt.source)}

			output, err := captureStdout(t, func() error {
				return run.Run(context.Background())
			})
			if err != nil {
				t.Fatalf("Run.Run() unexpected error = %v", err)
			}

			line, _, _ := strings.Cut(output, "\n")
			if line != tt.want {
				t.Errorf("Run.Run() output = %q, want %q", line, tt.want)
			}
		})
	}
}

func TestRunCommandEntry(t *testing.T) {
	t.Cleanup(lang.ClearCache)

	source := "main() = 1\nstart() = 42\n"
	run := &Run{
		Source: writeSource(t, source),
		Entry:  "start",
	}

	output, err := captureStdout(t, func() error {
		return run.Run(context.Background())
	})
	if err != nil {
		t.Fatalf("Run.Run() unexpected error = %v", err)
	}

	line, _, _ := strings.Cut(output, "\n")
	if line != "42" {
		t.Errorf("Run.Run() output = %q, want %q", line, "42")
	}
}

func TestRunCommandTimes(t *testing.T) {
	t.Cleanup(lang.ClearCache)

	run := &Run{
		Source: writeSource(t, "main() = 0\n"),
		Time:   true,
	}

	output, err := captureStdout(t, func() error {
		return run.Run(context.Background())
	})
	if err != nil {
		t.Fatalf("Run.Run() unexpected error = %v", err)
	}

	for _, want := range []string{"parse:", "eval:"} {
		if !strings.Contains(output, want) {
			t.Errorf("Run.Run() output = %q, want to contain %q", output, want)
		}
	}
}

func TestRunCommandErrors(t *testing.T) {
	t.Cleanup(lang.ClearCache)

	tests := []struct {
		name   string
		source string
		entry  string
		want   error
	}{
		{
			name:   "parse error",
			source: "main() = 1 +\n",
			want:   lang.ErrParse,
		},
		{
			name:   "missing entry",
			source: "helper() = 1\n",
			want:   lang.ErrNoDefinition,
		},
		{
			name:   "divide by zero",
			source: "main() = 1 / 0\n",
			want:   lang.ErrDivideByZero,
		},
		{
			name:   "guards exhausted",
			source: "f(x) | (x > 0) = x\nmain() = f(-1)\n",
			want:   lang.ErrNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &Run{
				Source: writeSource(t, tt.source),
				Entry:  tt.entry,
			}

			_, err := captureStdout(t, func() error {
				return run.Run(context.Background())
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("Run.Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunCommandMissingFile(t *testing.T) {
	run := &Run{Source: "/nonexistent/path/to/source.efpl"}

	err := run.Run(context.Background())
	if !errors.Is(err, ErrOpenSource) {
		t.Errorf("Run.Run() error = %v, want %v", err, ErrOpenSource)
	}
}

func TestRunCommandStdin(t *testing.T) {
	t.Cleanup(lang.ClearCache)

	oldStdin := os.Stdin

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	os.Stdin = r

	defer func() { os.Stdin = oldStdin }()

	go func() {
		defer w.Close()

		_, _ = io.WriteString(w, "main() = 2 + 2\n")
	}()

	run := &Run{Source: "-"}

	output, runErr := captureStdout(t, func() error {
		return run.Run(context.Background())
	})
	if runErr != nil {
		t.Fatalf("Run.Run() unexpected error = %v", runErr)
	}

	line, _, _ := strings.Cut(output, "\n")
	if line != "4" {
		t.Errorf("Run.Run() output = %q, want %q", line, "4")
	}
}
