package lang

import "iter"

// Env is a binding table from AST nodes to values, keyed by structural
// equality. Environments form a chain: extending an environment creates a
// new frame that shadows, and never mutates, the one it extends. A frame is
// populated while it is being built (via [Env.Bind]) and treated as
// immutable thereafter.
type Env struct {
	parent *Env
	table  map[string]binding
}

// binding pairs the original key node with its bound value. The key node is
// retained so bindings can be enumerated and displayed.
type binding struct {
	key   Node
	value Node
}

// NewEnv creates an empty root environment.
func NewEnv() *Env {
	return &Env{table: make(map[string]binding)}
}

// Bind associates key with value in this frame, replacing any binding for a
// structurally equal key in THIS frame only. It returns true when an
// existing binding was replaced.
func (e *Env) Bind(key, value Node) bool {
	k := Key(key)

	_, replaced := e.table[k]
	e.table[k] = binding{key: key, value: value}

	return replaced
}

// Extend returns a new frame chained to e containing the positional
// parameter bindings. The receiving environment is never modified; the new
// bindings shadow same-keyed bindings in e for lookups through the returned
// frame only.
//
// The two slices must have equal length; callers enforce arity before
// extending.
func (e *Env) Extend(params Params, args []Node) *Env {
	table := make(map[string]binding, len(params))

	for i, p := range params {
		table[Key(p)] = binding{key: p, value: args[i]}
	}

	return &Env{parent: e, table: table}
}

// Lookup finds the value bound to a node structurally equal to n, searching
// this frame first and then each enclosing frame in order.
func (e *Env) Lookup(n Node) (Node, bool) {
	k := Key(n)

	for env := e; env != nil; env = env.parent {
		if b, ok := env.table[k]; ok {
			return b.value, true
		}
	}

	return nil, false
}

// Len returns the number of bindings in this frame only.
func (e *Env) Len() int { return len(e.table) }

// Bindings iterates over the key/value pairs of this frame only, in
// unspecified order.
func (e *Env) Bindings() iter.Seq2[Node, Node] {
	return func(yield func(Node, Node) bool) {
		for _, b := range e.table {
			if !yield(b.key, b.value) {
				return
			}
		}
	}
}
