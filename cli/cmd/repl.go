package cmd

import (
	"bufio"
	"context"
	"log/slog"

	"github.com/ardnew/efpl/cli/cmd/repl"
	"github.com/ardnew/efpl/lang"
	"github.com/ardnew/efpl/log"
)

// Repl starts an interactive session. When a source file is given, its
// definitions seed the session table.
type Repl struct {
	Source   string `arg:"" optional:"" help:"Source file with seed definitions, or '-' for stdin" type:"path"`
	MaxDepth int    `default:"10000" help:"Maximum recursion depth for evaluation" name:"max-depth"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	cacheDir, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok {
		panic("internal error: cache directory undefined")
	}

	opts := []lang.Option{
		lang.WithMaxDepth(r.MaxDepth),
		lang.WithLogger(log.Default()),
	}

	prog := lang.NewProgram(opts...)

	if r.Source != "" {
		src, err := openSource(r.Source)
		if err != nil {
			return err
		}
		defer func() { _ = src.Close() }()

		seed, err := lang.ParseReader(ctx, bufio.NewReader(src), opts...)
		if err != nil {
			return lang.WrapError(err).
				With(slog.String("source", r.Source))
		}

		// The session mutates its table, so the cached program is copied
		// rather than shared.
		for name, value := range seed.Definitions() {
			prog.Define(name, value)
		}

		log.DebugContext(ctx, "seeded session",
			slog.String("source", r.Source),
			slog.Int("definitions", prog.Len()),
		)
	}

	return repl.Run(ctx, prog, cacheDir, log.Default())
}
