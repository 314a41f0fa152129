// Package lang implements the efpl language: a minimal expression-oriented
// functional language in which source text defines named constants and
// functions (optionally with guarded case alternatives), and a program runs
// by evaluating a designated entry point (by default, the zero-argument
// application of main).
//
// The package provides the AST node model ([Node] and its variants), the
// parser ([Parse], [ParseReader], [ParseExpr]), the binding environment
// ([Env]), and the evaluator exposed through [Program].
//
// # Evaluation model
//
// Every node self-evaluates: if a node is structurally equal to a key bound
// in the environment, evaluation yields the bound value; otherwise the node
// evaluates to itself. Lists evaluate elementwise. Applications evaluate
// their arguments left to right, dispatch the ten fixed operator
// identifiers (== <> <= >= < > + - * /) through a closed table that cannot
// be shadowed, and otherwise apply the evaluated callee as a function.
//
// Function application extends the CALLER's environment with the parameter
// bindings. There is no lexical closure capture: free identifiers in a
// function body resolve against whatever bindings are visible at the call
// site, and self-evaluate to themselves when unbound. This dynamic scoping
// is a deliberate property of the language, not an accident of the
// implementation.
package lang
