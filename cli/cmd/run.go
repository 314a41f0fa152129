package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ardnew/efpl/lang"
	"github.com/ardnew/efpl/log"
)

// Run parses a source file and evaluates its entry point, printing the
// resulting value followed by the elapsed parse and evaluation durations.
type Run struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`

	Entry    string `default:"main"  help:"Entry-point definition to evaluate."  short:"e"`
	MaxDepth int    `default:"10000" help:"Maximum evaluation nesting depth."    name:"max-depth"`
	Time     bool   `default:"true"  help:"Report parse and evaluation times."   negatable:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := openSource(r.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	begin := time.Now()

	prog, err := lang.ParseReader(ctx, bufio.NewReader(src),
		lang.WithEntry(r.Entry),
		lang.WithMaxDepth(r.MaxDepth),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("source", r.Source))
	}

	parse := time.Since(begin)

	log.DebugContext(ctx, "parsed source",
		slog.String("source", r.Source),
		slog.Int("definitions", prog.Len()),
		slog.Duration("elapsed", parse),
	)

	begin = time.Now()

	result, err := prog.Run(ctx)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("entry", r.Entry))
	}

	eval := time.Since(begin)

	fmt.Fprintln(os.Stdout, result)

	if r.Time {
		fmt.Fprintf(os.Stdout, "parse: %s\neval:  %s\n", parse, eval)
	}

	return nil
}
