package cmd

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/efpl/lang"
)

// Fmt parses a source file and re-renders its definition table in the
// chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native efpl syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as abstract syntax tree."`
}

// parseSource parses the definitions of a source argument.
func parseSource(ctx context.Context, source, format string) (*lang.Program, error) {
	src, err := openSource(source)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	prog, err := lang.ParseReader(ctx, bufio.NewReader(src))
	if err != nil {
		return nil, lang.WrapError(err).
			With(slog.String("format", format))
	}

	return prog, nil
}

// Native formats input as native efpl syntax.
type Native struct {
	Indent int `default:"2" help:"Indent width for guarded definitions" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt native command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, f.Source, "native")
	if err != nil {
		return err
	}

	return prog.Format(ctx, os.Stdout, f.Indent)
}

// JSON formats input as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, j.Source, "json")
	if err != nil {
		return err
	}

	return prog.FormatJSON(ctx, os.Stdout, j.Indent)
}

// YAML formats input as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, y.Source, "yaml")
	if err != nil {
		return err
	}

	return prog.FormatYAML(ctx, os.Stdout, y.Indent)
}

// AST formats input as an abstract syntax tree dump.
type AST struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, a.Source, "ast")
	if err != nil {
		return err
	}

	prog.Print(os.Stdout)

	return nil
}
