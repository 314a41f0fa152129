package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/efpl/lang"
)

// kongTestContext builds a parsed kong context over cli with the config
// path variable bound.
func kongTestContext(t *testing.T, cli any, confPath string, args ...string) context.Context {
	t.Helper()

	parser, err := kong.New(cli, kong.Vars{
		ConfigIdentifier: confPath,
	})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

func TestInitRun(t *testing.T) {
	tests := []struct {
		name     string
		force    bool
		preexist bool
		wantErr  bool
	}{
		{name: "create new config"},
		{name: "overwrite existing with force", force: true, preexist: true},
		{name: "fail without force", preexist: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.efpl")

			if tt.preexist {
				if err := os.WriteFile(
					confPath, []byte("existing = 1\n"), 0o644,
				); err != nil {
					t.Fatal(err)
				}
			}

			var cli struct{}

			ctx := kongTestContext(t, &cli, confPath)

			err := (&Init{Force: tt.force}).Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init.Run() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				return
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			// The generated file must be valid source.
			if _, err := lang.Parse(ctx, string(content)); err != nil {
				t.Errorf("generated config does not parse: %v", err)
			}
		})
	}
}

func TestInitGeneratedDefinitions(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config.efpl")

	var cli struct {
		Verbose  bool   `name:"verbose"`
		Output   string `name:"output" default:"out.txt"`
		MaxDepth int    `name:"max-depth" default:"100"`
		Hidden   string `name:"secret" hidden:"" default:"nope"`
	}

	ctx := kongTestContext(t, &cli, confPath, "--verbose")

	if err := (&Init{}).Run(ctx); err != nil {
		t.Fatalf("Init.Run() unexpected error = %v", err)
	}

	content, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	prog, err := lang.Parse(ctx, string(content))
	if err != nil {
		t.Fatalf("generated config does not parse: %v", err)
	}

	tests := []struct {
		name string
		want lang.Node
	}{
		{"verbose", lang.Truth},
		{"output", lang.Str("out.txt")},
		{"max_depth", lang.Num(100)},
	}

	for _, tt := range tests {
		value, ok := prog.Definition(lang.Ident(tt.name))
		if !ok {
			t.Errorf("definition %q missing from generated config", tt.name)

			continue
		}

		if !lang.Equal(value, tt.want) {
			t.Errorf("definition %q = %v, want %v", tt.name, value, tt.want)
		}
	}

	if _, ok := prog.Definition(lang.Ident("secret")); ok {
		t.Error("hidden flag leaked into generated config")
	}

	if strings.Contains(string(content), "help") {
		t.Error("help flag leaked into generated config")
	}
}

func TestFlagNode(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want lang.Node
	}{
		{"true", true, lang.Truth},
		{"false", false, lang.Falsehood},
		{"string", "abc", lang.Str("abc")},
		{"empty string", "", nil},
		{"int", 42, lang.Num(42)},
		{"int64", int64(-7), lang.Num(-7)},
		{"uint64", uint64(9), lang.Num(9)},
		{"float64", 2.5, lang.Num(2.5)},
		{"nil", nil, nil},
		{
			"string slice",
			[]string{"a", "b"},
			lang.List{lang.Str("a"), lang.Str("b")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flagNode(tt.val)

			switch {
			case tt.want == nil:
				if got != nil {
					t.Errorf("flagNode(%v) = %v, want nil", tt.val, got)
				}

			case got == nil || !lang.Equal(got, tt.want):
				t.Errorf("flagNode(%v) = %v, want %v", tt.val, got, tt.want)
			}
		})
	}
}
