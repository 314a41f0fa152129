package lang

import (
	"strconv"
	"strings"
)

// Kind identifies the variant of a [Node].
type Kind int

const (
	// KindIdent is an identifier reference or symbolic literal.
	KindIdent Kind = iota

	// KindNum is a double-precision numeric literal.
	KindNum

	// KindStr is a string literal with escape sequences resolved.
	KindStr

	// KindList is an ordered sequence of nodes.
	KindList

	// KindParams is an ordered sequence of distinct parameter names.
	KindParams

	// KindArgs is an ordered sequence of call-site argument expressions.
	KindArgs

	// KindFunc is a function value: parameter list plus body expression.
	KindFunc

	// KindCase is a single guarded alternative: condition plus body.
	KindCase

	// KindCases is an ordered guard list; first match wins.
	KindCases

	// KindApp is an application of a callee expression to an argument list.
	KindApp
)

// String returns a string representation of the node kind.
func (k Kind) String() string {
	switch k {
	case KindIdent:
		return "Ident"
	case KindNum:
		return "Num"
	case KindStr:
		return "Str"
	case KindList:
		return "List"
	case KindParams:
		return "Params"
	case KindArgs:
		return "Args"
	case KindFunc:
		return "Func"
	case KindCase:
		return "Case"
	case KindCases:
		return "Cases"
	case KindApp:
		return "App"
	default:
		return "Unknown"
	}
}

// Node is the sum type for all AST values. Nodes are immutable once built;
// equality and hashing are structural. Every node renders a kind-tagged
// canonical key, so environments can bind ANY node kind, not only
// identifiers.
type Node interface {
	// Kind identifies the variant.
	Kind() Kind

	// String renders the display form of the node in source syntax.
	String() string

	// appendKey writes the canonical key encoding used for structural
	// equality and environment lookup.
	appendKey(b *strings.Builder)
}

// Key renders the canonical key of a node. Two nodes are structurally equal
// iff their keys are equal.
func Key(n Node) string {
	var b strings.Builder

	n.appendKey(&b)

	return b.String()
}

// Equal reports whether two nodes are structurally equal: same kind, same
// value/shape.
func Equal(a, b Node) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	return Key(a) == Key(b)
}

// Ident is an identifier. A bound identifier evaluates to its binding; an
// unbound identifier evaluates to itself, acting as a symbolic literal
// (e.g. true, false).
type Ident string

func (n Ident) Kind() Kind     { return KindIdent }
func (n Ident) String() string { return string(n) }

func (n Ident) appendKey(b *strings.Builder) {
	b.WriteByte('i')
	b.WriteString(strconv.Quote(string(n)))
}

// Truth is the identifier a guard condition must evaluate to in order to
// match, and the value comparison operators yield on success.
const Truth = Ident("true")

// Falsehood is the value comparison operators yield on failure.
const Falsehood = Ident("false")

// Num is a double-precision numeric literal. Arithmetic and ordering
// operators operate on this kind only.
type Num float64

func (n Num) Kind() Kind { return KindNum }

// String renders the shortest decimal representation that parses back to
// the same value.
func (n Num) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

func (n Num) appendKey(b *strings.Builder) {
	b.WriteByte('n')
	b.WriteString(n.String())
	b.WriteByte(';')
}

// Str is a string literal. Escape sequences are resolved at parse time; the
// display form is quoted.
type Str string

func (n Str) Kind() Kind     { return KindStr }
func (n Str) String() string { return strconv.Quote(string(n)) }

func (n Str) appendKey(b *strings.Builder) {
	b.WriteByte('s')
	b.WriteString(strconv.Quote(string(n)))
}

// List is an ordered sequence of nodes. It evaluates eagerly by mapping
// evaluation over its elements, preserving order and length.
type List []Node

func (n List) Kind() Kind { return KindList }

func (n List) String() string {
	return "[" + joinNodes(n, ", ") + "]"
}

func (n List) appendKey(b *strings.Builder) {
	b.WriteByte('l')
	appendSeqKey(b, n)
}

// Params is an ordered sequence of distinct parameter names; its length is
// the function's arity.
type Params []Ident

func (n Params) Kind() Kind { return KindParams }

func (n Params) String() string {
	names := make([]string, len(n))
	for i, name := range n {
		names[i] = string(name)
	}

	return "(" + strings.Join(names, ", ") + ")"
}

func (n Params) appendKey(b *strings.Builder) {
	b.WriteByte('p')

	nodes := make([]Node, len(n))
	for i, name := range n {
		nodes[i] = name
	}

	appendSeqKey(b, nodes)
}

// Args is an ordered sequence of argument expressions at a call site,
// evaluated positionally left to right before binding.
type Args []Node

func (n Args) Kind() Kind { return KindArgs }

func (n Args) String() string {
	return "(" + joinNodes(n, ", ") + ")"
}

func (n Args) appendKey(b *strings.Builder) {
	b.WriteByte('a')
	appendSeqKey(b, n)
}

// Func is a function value: a parameter list and a body expression. A Func
// carries NO definition-time environment; free identifiers in Body resolve
// against the environment in effect at the call site (dynamic scoping).
type Func struct {
	Params Params
	Body   Node
}

func (n Func) Kind() Kind { return KindFunc }

func (n Func) String() string {
	return "@" + n.Params.String() + "{" + n.Body.String() + "}"
}

func (n Func) appendKey(b *strings.Builder) {
	b.WriteByte('f')
	n.Params.appendKey(b)
	n.Body.appendKey(b)
}

// Case is a single guarded alternative. It matches when Cond evaluates to
// the identifier true under the environment of the enclosing call.
type Case struct {
	Cond Node
	Body Node
}

func (n Case) Kind() Kind { return KindCase }

func (n Case) String() string {
	return "| " + n.Cond.String() + " = " + n.Body.String()
}

func (n Case) appendKey(b *strings.Builder) {
	b.WriteByte('c')
	n.Cond.appendKey(b)
	n.Body.appendKey(b)
}

// Cases is an ordered guard list. Evaluation selects the first matching
// case in declaration order; exhausting the list is an error.
type Cases []Case

func (n Cases) Kind() Kind { return KindCases }

func (n Cases) String() string {
	parts := make([]string, len(n))
	for i, c := range n {
		parts[i] = c.String()
	}

	return strings.Join(parts, " ")
}

func (n Cases) appendKey(b *strings.Builder) {
	b.WriteByte('g')
	b.WriteByte('(')

	for _, c := range n {
		c.appendKey(b)
	}

	b.WriteByte(')')
}

// App is an application of a callee expression to an argument list. Infix
// records whether the source used infix operator syntax; it affects display
// only, never evaluation.
type App struct {
	Callee Node
	Args   Args
	Infix  bool
}

func (n App) Kind() Kind { return KindApp }

func (n App) String() string {
	if n.Infix && len(n.Args) == 2 {
		return "(" + n.Args[0].String() +
			" " + n.Callee.String() +
			" " + n.Args[1].String() + ")"
	}

	return n.Callee.String() + n.Args.String()
}

func (n App) appendKey(b *strings.Builder) {
	b.WriteByte('@')
	n.Callee.appendKey(b)
	n.Args.appendKey(b)
}

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}

	return strings.Join(parts, sep)
}

func appendSeqKey(b *strings.Builder, nodes []Node) {
	b.WriteByte('(')

	for _, n := range nodes {
		n.appendKey(b)
	}

	b.WriteByte(')')
}
