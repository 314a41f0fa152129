package lang

import (
	"context"
	"iter"
	"log/slog"
)

// Program is the top-level definition table: a mapping from identifier to
// bound value (constant expression or [Func]), built once at load. The
// table doubles as the root evaluation environment.
//
// Constants bind the PARSED expression unevaluated; a single environment
// lookup substitutes that expression verbatim wherever the name is used.
type Program struct {
	defs  *Env
	order []Ident
	opts  options
}

// NewProgram creates an empty program. It is primarily useful to hosts that
// assemble definitions programmatically (such as the REPL); source text is
// normally loaded with [Parse] or [ParseReader].
func NewProgram(opts ...Option) *Program {
	return &Program{
		defs: NewEnv(),
		opts: makeOptions(opts...),
	}
}

// Define binds a top-level name. A later definition with the same name
// silently replaces the earlier one, preserving its position in declaration
// order; the replacement is reported by the return value and logged at warn
// level.
func (p *Program) Define(name Ident, value Node) bool {
	replaced := p.defs.Bind(name, value)
	if replaced {
		p.opts.logger.Warn("definition replaced",
			slog.String("name", string(name)),
		)
	} else {
		p.order = append(p.order, name)
	}

	return replaced
}

// Definition returns the value bound to a top-level name.
func (p *Program) Definition(name Ident) (Node, bool) {
	return p.defs.Lookup(name)
}

// Definitions iterates over the definition table in declaration order.
func (p *Program) Definitions() iter.Seq2[Ident, Node] {
	return func(yield func(Ident, Node) bool) {
		for _, name := range p.order {
			value, ok := p.defs.Lookup(name)
			if !ok {
				continue
			}

			if !yield(name, value) {
				return
			}
		}
	}
}

// Names returns the top-level definition names in declaration order.
func (p *Program) Names() []string {
	names := make([]string, len(p.order))
	for i, name := range p.order {
		names[i] = string(name)
	}

	return names
}

// Len returns the number of top-level definitions.
func (p *Program) Len() int { return len(p.order) }

// Entry returns the entry-point identifier applied by [Program.Run].
func (p *Program) Entry() Ident { return p.opts.entry }

// Run evaluates the entry point: the zero-argument application of the entry
// identifier (default main) against the definition table.
func (p *Program) Run(ctx context.Context) (Node, error) {
	if _, ok := p.Definition(p.opts.entry); !ok {
		return nil, ErrNoDefinition.
			With(slog.String("name", string(p.opts.entry)))
	}

	return p.Evaluate(ctx, App{Callee: p.opts.entry, Args: Args{}})
}

// Evaluate reduces an arbitrary node to a value under the definition table.
func (p *Program) Evaluate(ctx context.Context, n Node) (Node, error) {
	ev := &evaluator{
		maxDepth: p.opts.maxDepth,
		logger:   p.opts.logger,
	}

	result, err := ev.eval(ctx, n, p.defs)
	if err != nil {
		return nil, err
	}

	p.opts.logger.TraceContext(ctx, "evaluation complete",
		slog.String("input", n.String()),
		slog.String("result", result.String()),
	)

	return result, nil
}

// withOptions returns a shallow copy of the program with additional options
// applied. The definition table is shared: it is immutable after load.
func (p *Program) withOptions(opts ...Option) *Program {
	cp := *p

	for _, opt := range opts {
		opt(&cp.opts)
	}

	return &cp
}
