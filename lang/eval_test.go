package lang

import (
	"context"
	"errors"
	"testing"
)

// run parses source and evaluates its entry point.
func run(t *testing.T, source string, opts ...Option) (Node, error) {
	t.Helper()

	prog, err := Parse(context.Background(), source, opts...)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return prog.Run(context.Background())
}

func mustRun(t *testing.T, source string, opts ...Option) Node {
	t.Helper()

	result, err := run(t, source, opts...)
	if err != nil {
		t.Fatalf("evaluation error: %v", err)
	}

	return result
}

func TestRun_Arithmetic(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Node
	}{
		{
			name:   "multiplication binds tighter",
			source: "main() = 1 + 2 * 3",
			want:   Num(7),
		},
		{
			name:   "parentheses group",
			source: "main() = (1 + 2) * 3",
			want:   Num(9),
		},
		{
			name:   "division",
			source: "main() = 7 / 2",
			want:   Num(3.5),
		},
		{
			name:   "subtraction is left associative",
			source: "main() = 10 - 4 - 3",
			want:   Num(3),
		},
		{
			name:   "negative literal",
			source: "main() = -2 * 3",
			want:   Num(-6),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustRun(t, tt.source)
			if !Equal(got, tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRun_Comparisons(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Node
	}{
		{name: "equal numbers", source: "main() = 1 == 1", want: Truth},
		{name: "unequal numbers", source: "main() = 1 == 2", want: Falsehood},
		{name: "not equal", source: "main() = 1 <> 2", want: Truth},
		{name: "less than", source: "main() = 1 < 2", want: Truth},
		{name: "greater or equal", source: "main() = 2 >= 2", want: Truth},
		{name: "string ordering", source: `main() = "abc" < "abd"`, want: Truth},
		{
			name:   "list ordering is elementwise",
			source: "main() = [1, 2] < [1, 3]",
			want:   Truth,
		},
		{
			name:   "shorter list orders first on shared prefix",
			source: "main() = [1] < [1, 0]",
			want:   Truth,
		},
		{
			name:   "string and identifier of same text are unequal",
			source: `main() = "x" == x`,
			want:   Falsehood,
		},
		{
			name:   "structural list equality",
			source: `main() = [1, "a"] == [1, "a"]`,
			want:   Truth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustRun(t, tt.source)
			if !Equal(got, tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRun_GuardOrdering(t *testing.T) {
	const source = `
f(x) | x == 1 = "a" | true = "b"
main() = [f(1), f(2)]
`

	got := mustRun(t, source)

	want := List{Str("a"), Str("b")}
	if !Equal(got, want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRun_GuardedNegative(t *testing.T) {
	const source = `
f(x) | x <= 0 = "neg" | true = "pos"
main() = f(-1)
`

	got := mustRun(t, source)
	if !Equal(got, Str("neg")) {
		t.Errorf(`expected "neg", got %s`, got)
	}
}

func TestRun_NoGuardMatches(t *testing.T) {
	const source = `
f(x) | x == 1 = "one"
main() = f(2)
`

	_, err := run(t, source)
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestRun_ArityMismatch(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			name:   "too few arguments",
			source: "add(x, y) = x + y\nmain() = add(1)",
		},
		{
			name:   "too many arguments",
			source: "add(x, y) = x + y\nmain() = add(1, 2, 3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.source)
			if !errors.Is(err, ErrArity) {
				t.Errorf("expected ErrArity, got %v", err)
			}
		})
	}
}

func TestRun_ParameterShadowing(t *testing.T) {
	const source = `
x = 10
f(x) = x + 1
main() = f(1) + x
`

	got := mustRun(t, source)
	if !Equal(got, Num(12)) {
		t.Errorf("expected 12, got %s", got)
	}
}

func TestRun_DynamicScope(t *testing.T) {
	// f's body references y, which is bound nowhere near f's
	// definition; it resolves against the frame built by g's call.
	const source = `
f() = y
g(y) = f()
main() = g(42)
`

	got := mustRun(t, source)
	if !Equal(got, Num(42)) {
		t.Errorf("expected 42, got %s", got)
	}
}

func TestRun_UnboundIdentIsSymbolic(t *testing.T) {
	const source = `
f() = z
main() = f()
`

	got := mustRun(t, source)
	if !Equal(got, Ident("z")) {
		t.Errorf("expected z, got %s", got)
	}
}

func TestRun_ConstantSubstitution(t *testing.T) {
	const source = `
x = 5
main() = x * x
`

	got := mustRun(t, source)
	if !Equal(got, Num(25)) {
		t.Errorf("expected 25, got %s", got)
	}
}

func TestRun_ConstantBindsExpressionUnevaluated(t *testing.T) {
	// A lookup substitutes the bound value verbatim: a constant holding
	// an expression yields that expression, not its reduction.
	const source = `
x = 2 + 3
main() = x
`

	got := mustRun(t, source)

	want := App{
		Callee: Ident("+"),
		Args:   Args{Num(2), Num(3)},
		Infix:  true,
	}
	if !Equal(got, want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRun_Recursion(t *testing.T) {
	const source = `
fact(n) | n <= 1 = 1 | true = n * fact(n - 1)
main() = fact(10)
`

	got := mustRun(t, source)
	if !Equal(got, Num(3628800)) {
		t.Errorf("expected 3628800, got %s", got)
	}
}

func TestRun_LambdaArgument(t *testing.T) {
	const source = `
apply(f, v) = f(v)
main() = apply(@(x){x * 2}, 21)
`

	got := mustRun(t, source)
	if !Equal(got, Num(42)) {
		t.Errorf("expected 42, got %s", got)
	}
}

func TestRun_GuardedLambda(t *testing.T) {
	const source = `
apply(f, v) = f(v)
main() = apply(@(x){ | x < 0 = "neg" | true = "pos" }, -3)
`

	got := mustRun(t, source)
	if !Equal(got, Str("neg")) {
		t.Errorf(`expected "neg", got %s`, got)
	}
}

func TestRun_ListEvaluation(t *testing.T) {
	const source = `
x = 3
main() = [1 + 1, x, "s"]
`

	got := mustRun(t, source)

	want := List{Num(2), Num(3), Str("s")}
	if !Equal(got, want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRun_DivideByZero(t *testing.T) {
	_, err := run(t, "main() = 1 / 0")
	if !errors.Is(err, ErrDivideByZero) {
		t.Errorf("expected ErrDivideByZero, got %v", err)
	}
}

func TestRun_NotNumeric(t *testing.T) {
	_, err := run(t, `main() = "a" + 1`)
	if !errors.Is(err, ErrNotNumeric) {
		t.Errorf("expected ErrNotNumeric, got %v", err)
	}
}

func TestRun_NotComparable(t *testing.T) {
	_, err := run(t, `main() = 1 < "a"`)
	if !errors.Is(err, ErrNotComparable) {
		t.Errorf("expected ErrNotComparable, got %v", err)
	}
}

func TestRun_NotCallable(t *testing.T) {
	const source = `
x = 5
main() = x(1)
`

	_, err := run(t, source)
	if !errors.Is(err, ErrNotCallable) {
		t.Errorf("expected ErrNotCallable, got %v", err)
	}
}

func TestRun_MaxDepthExceeded(t *testing.T) {
	const source = `
loop() = loop()
main() = loop()
`

	_, err := run(t, source, WithMaxDepth(64))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("expected ErrMaxDepthExceeded, got %v", err)
	}
}

func TestRun_MissingEntry(t *testing.T) {
	_, err := run(t, "x = 1")
	if !errors.Is(err, ErrNoDefinition) {
		t.Errorf("expected ErrNoDefinition, got %v", err)
	}
}

func TestRun_CustomEntry(t *testing.T) {
	got := mustRun(t, "start() = 99", WithEntry("start"))
	if !Equal(got, Num(99)) {
		t.Errorf("expected 99, got %s", got)
	}
}

func TestRun_LastDefinitionWins(t *testing.T) {
	const source = `
x = 1
x = 2
main() = x
`

	got := mustRun(t, source)
	if !Equal(got, Num(2)) {
		t.Errorf("expected 2, got %s", got)
	}
}

func TestEval_SelfEvaluation(t *testing.T) {
	env := NewEnv()
	env.Bind(Num(1), Str("one"))
	env.Bind(List{Num(1), Num(2)}, Str("pair"))

	tests := []struct {
		name string
		node Node
		want Node
	}{
		{name: "bound number", node: Num(1), want: Str("one")},
		{name: "unbound number", node: Num(2), want: Num(2)},
		{
			name: "bound list",
			node: List{Num(1), Num(2)},
			want: Str("pair"),
		},
		{name: "unbound string", node: Str("s"), want: Str("s")},
		{name: "unbound identifier", node: Ident("v"), want: Ident("v")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(context.Background(), tt.node, env)
			if err != nil {
				t.Fatalf("evaluation error: %v", err)
			}

			if !Equal(got, tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEval_ListMapsBindings(t *testing.T) {
	env := NewEnv()
	env.Bind(Ident("x"), Num(1))

	got, err := Eval(context.Background(),
		List{Ident("x"), Num(2), Ident("y")}, env)
	if err != nil {
		t.Fatalf("evaluation error: %v", err)
	}

	want := List{Num(1), Num(2), Ident("y")}
	if !Equal(got, want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestEval_OperatorsNotShadowable(t *testing.T) {
	env := NewEnv()
	env.Bind(Ident("+"), Func{
		Params: Params{"a", "b"},
		Body:   Num(0),
	})

	got, err := Eval(context.Background(), App{
		Callee: Ident("+"),
		Args:   Args{Num(1), Num(2)},
		Infix:  true,
	}, env)
	if err != nil {
		t.Fatalf("evaluation error: %v", err)
	}

	if !Equal(got, Num(3)) {
		t.Errorf("expected 3, got %s", got)
	}
}

func TestEval_OperatorArity(t *testing.T) {
	_, err := Eval(context.Background(), App{
		Callee: Ident("+"),
		Args:   Args{Num(1)},
	}, NewEnv())

	if !errors.Is(err, ErrArity) {
		t.Errorf("expected ErrArity, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Node
		want int
	}{
		{name: "numbers", a: Num(1), b: Num(2), want: -1},
		{name: "equal numbers", a: Num(2), b: Num(2), want: 0},
		{name: "strings", a: Str("b"), b: Str("a"), want: 1},
		{name: "identifiers", a: Ident("a"), b: Ident("b"), want: -1},
		{
			name: "lists elementwise",
			a:    List{Num(1), Num(2)},
			b:    List{Num(1), Num(3)},
			want: -1,
		},
		{
			name: "list length tiebreak",
			a:    List{Num(1), Num(2)},
			b:    List{Num(1)},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			if err != nil {
				t.Fatalf("compare error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}

	if _, err := Compare(Num(1), Str("1")); !errors.Is(err, ErrNotComparable) {
		t.Errorf("expected ErrNotComparable, got %v", err)
	}

	fn := Func{Params: Params{"x"}, Body: Ident("x")}
	if _, err := Compare(fn, fn); !errors.Is(err, ErrNotComparable) {
		t.Errorf("expected ErrNotComparable for functions, got %v", err)
	}
}

func TestIsOperator(t *testing.T) {
	for _, op := range []string{"==", "<>", "<=", ">=", "<", ">", "+", "-", "*", "/"} {
		if !IsOperator(op) {
			t.Errorf("expected %q to be an operator", op)
		}
	}

	if IsOperator("=") {
		t.Error("= must not be an operator")
	}
}
