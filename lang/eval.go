package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/efpl/log"
)

// Eval reduces a node to a value under an arbitrary environment. Most
// callers evaluate against a [Program] definition table instead; this
// entry point serves hosts that assemble environments directly.
func Eval(ctx context.Context, n Node, env *Env, opts ...Option) (Node, error) {
	o := makeOptions(opts...)

	ev := &evaluator{
		maxDepth: o.maxDepth,
		logger:   o.logger,
	}

	return ev.eval(ctx, n, env)
}

// evaluator reduces AST nodes to values under an environment. A fresh
// evaluator is created per top-level evaluation, so depth tracking never
// leaks between runs.
type evaluator struct {
	maxDepth int
	depth    int
	logger   log.Logger
}

// eval reduces a node to a value under env.
//
// The self-evaluation rule applies to EVERY node kind: a node structurally
// equal to an environment key yields the bound value; otherwise evaluation
// proceeds by kind, defaulting to the node itself.
func (ev *evaluator) eval(ctx context.Context, n Node, env *Env) (Node, error) {
	ev.depth++
	defer func() { ev.depth-- }()

	if ev.depth > ev.maxDepth {
		return nil, ErrMaxDepthExceeded.
			With(
				slog.Int("max_depth", ev.maxDepth),
				slog.String("node", n.String()),
			)
	}

	if bound, ok := env.Lookup(n); ok {
		return bound, nil
	}

	switch n := n.(type) {
	case List:
		mapped, err := ev.evalSeq(ctx, n, env)
		if err != nil {
			return nil, err
		}

		return List(mapped), nil

	case Args:
		mapped, err := ev.evalSeq(ctx, n, env)
		if err != nil {
			return nil, err
		}

		return Args(mapped), nil

	case Cases:
		return ev.selectCase(ctx, n, env)

	case App:
		return ev.evalApp(ctx, n, env)

	default:
		// Ident, Num, Str, Func, Params, Case: self-evaluating.
		return n, nil
	}
}

// evalSeq evaluates a sequence of nodes under the same environment,
// preserving order and length, with no short-circuiting.
func (ev *evaluator) evalSeq(
	ctx context.Context,
	nodes []Node,
	env *Env,
) ([]Node, error) {
	mapped := make([]Node, len(nodes))

	for i, n := range nodes {
		v, err := ev.eval(ctx, n, env)
		if err != nil {
			return nil, err
		}

		mapped[i] = v
	}

	return mapped, nil
}

// evalApp evaluates an application: arguments first, left to right, then
// operator dispatch on the UNEVALUATED callee, then general function
// application.
//
// The operator check precedes callee evaluation so the fixed operator
// identifiers can never be shadowed by environment bindings.
func (ev *evaluator) evalApp(ctx context.Context, n App, env *Env) (Node, error) {
	args, err := ev.evalSeq(ctx, n.Args, env)
	if err != nil {
		return nil, err
	}

	if id, ok := n.Callee.(Ident); ok {
		if op, found := operators[id]; found {
			if len(args) != opArity {
				return nil, ErrArity.
					With(
						slog.String("operator", string(id)),
						slog.Int("expected", opArity),
						slog.Int("got", len(args)),
					)
			}

			return op(id, args[0], args[1])
		}
	}

	callee, err := ev.eval(ctx, n.Callee, env)
	if err != nil {
		return nil, err
	}

	fn, ok := callee.(Func)
	if !ok {
		return nil, ErrNotCallable.
			With(
				slog.String("value", callee.String()),
				slog.String("kind", callee.Kind().String()),
				slog.String("args", Args(args).String()),
			)
	}

	return ev.apply(ctx, fn, args, env)
}

// apply binds argument values to parameters in a new frame extending the
// CALLER's environment and evaluates the function body there. The extension
// never mutates the caller's environment, and the bindings shadow any
// same-named bindings for the duration of this call only.
func (ev *evaluator) apply(
	ctx context.Context,
	fn Func,
	args []Node,
	env *Env,
) (Node, error) {
	if len(fn.Params) != len(args) {
		return nil, ErrArity.
			With(
				slog.Int("expected", len(fn.Params)),
				slog.Int("got", len(args)),
				slog.String("params", fn.Params.String()),
				slog.String("args", Args(args).String()),
			)
	}

	ev.logger.TraceContext(ctx, "apply",
		slog.String("params", fn.Params.String()),
		slog.String("args", Args(args).String()),
	)

	return ev.eval(ctx, fn.Body, env.Extend(fn.Params, args))
}

// selectCase evaluates a guard list: the first case whose condition
// evaluates to the identifier true supplies the result. Exhausting the list
// without a match is an error carrying the full guard list.
func (ev *evaluator) selectCase(
	ctx context.Context,
	guards Cases,
	env *Env,
) (Node, error) {
	for i, c := range guards {
		cond, err := ev.eval(ctx, c.Cond, env)
		if err != nil {
			return nil, err
		}

		if Equal(cond, Truth) {
			ev.logger.TraceContext(ctx, "guard matched",
				slog.Int("case", i),
				slog.String("cond", c.Cond.String()),
			)

			return ev.eval(ctx, c.Body, env)
		}
	}

	return nil, ErrNoMatch.
		With(
			slog.String("guards", guards.String()),
			slog.Int("bindings", env.Len()),
		)
}

// opArity is the argument count every operator requires.
const opArity = 2

// opFunc computes an operator result from exactly two evaluated arguments.
type opFunc func(op Ident, a, b Node) (Node, error)

// operators is the closed dispatch table for the ten fixed operator
// identifiers. Membership is checked against the unevaluated callee, so
// these names cannot be rebound.
var operators = map[Ident]opFunc{
	"==": equalOp,
	"<>": notEqualOp,
	"<=": orderOp(func(c int) bool { return c <= 0 }),
	">=": orderOp(func(c int) bool { return c >= 0 }),
	"<":  orderOp(func(c int) bool { return c < 0 }),
	">":  orderOp(func(c int) bool { return c > 0 }),
	"+":  arithOp(func(a, b float64) float64 { return a + b }),
	"-":  arithOp(func(a, b float64) float64 { return a - b }),
	"*":  arithOp(func(a, b float64) float64 { return a * b }),
	"/":  divideOp,
}

// IsOperator reports whether name is one of the fixed operator identifiers.
func IsOperator(name string) bool {
	_, ok := operators[Ident(name)]

	return ok
}

func boolIdent(b bool) Node {
	if b {
		return Truth
	}

	return Falsehood
}

func equalOp(_ Ident, a, b Node) (Node, error) {
	return boolIdent(Equal(a, b)), nil
}

func notEqualOp(_ Ident, a, b Node) (Node, error) {
	return boolIdent(!Equal(a, b)), nil
}

// orderOp builds a comparison operator from a predicate over the
// three-way comparison result.
func orderOp(accept func(int) bool) opFunc {
	return func(op Ident, a, b Node) (Node, error) {
		c, err := Compare(a, b)
		if err != nil {
			return nil, WrapError(err).
				With(slog.String("operator", string(op)))
		}

		return boolIdent(accept(c)), nil
	}
}

// arithOp builds an arithmetic operator over two numeric operands.
func arithOp(f func(a, b float64) float64) opFunc {
	return func(op Ident, a, b Node) (Node, error) {
		x, y, err := numericOperands(op, a, b)
		if err != nil {
			return nil, err
		}

		return Num(f(x, y)), nil
	}
}

func divideOp(op Ident, a, b Node) (Node, error) {
	x, y, err := numericOperands(op, a, b)
	if err != nil {
		return nil, err
	}

	if y == 0 {
		return nil, ErrDivideByZero.
			With(slog.String("dividend", a.String()))
	}

	return Num(x / y), nil
}

func numericOperands(op Ident, a, b Node) (x, y float64, err error) {
	na, ok := a.(Num)
	if !ok {
		return 0, 0, ErrNotNumeric.
			With(
				slog.String("operator", string(op)),
				slog.String("operand", a.String()),
				slog.String("kind", a.Kind().String()),
			)
	}

	nb, ok := b.(Num)
	if !ok {
		return 0, 0, ErrNotNumeric.
			With(
				slog.String("operator", string(op)),
				slog.String("operand", b.String()),
				slog.String("kind", b.Kind().String()),
			)
	}

	return float64(na), float64(nb), nil
}

// Compare orders two nodes of the same kind structurally: numbers by value,
// strings and identifiers lexicographically, lists elementwise with length
// as the tiebreak. Mixed kinds and non-orderable kinds (functions, guard
// lists, applications) fail with [ErrNotComparable].
func Compare(a, b Node) (int, error) {
	if a.Kind() != b.Kind() {
		return 0, ErrNotComparable.
			With(
				slog.String("left", a.Kind().String()),
				slog.String("right", b.Kind().String()),
			)
	}

	switch x := a.(type) {
	case Num:
		y := b.(Num)

		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}

	case Str:
		return compareStrings(string(x), string(b.(Str))), nil

	case Ident:
		return compareStrings(string(x), string(b.(Ident))), nil

	case List:
		return compareLists(x, b.(List))

	default:
		return 0, ErrNotComparable.
			With(slog.String("kind", a.Kind().String()))
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareLists(a, b List) (int, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		c, err := Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}

		if c != 0 {
			return c, nil
		}
	}

	return compareInts(len(a), len(b)), nil
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
