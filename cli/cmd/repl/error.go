package repl

import "github.com/ardnew/efpl/lang"

// ErrOutOfBounds indicates a history index outside the stored range.
var ErrOutOfBounds = lang.NewError("index out of bounds")
