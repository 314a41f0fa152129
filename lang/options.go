package lang

import "github.com/ardnew/efpl/log"

// DefaultMaxDepth is the default maximum evaluation nesting depth. User
// recursion past this bound fails with [ErrMaxDepthExceeded] instead of
// exhausting the host call stack.
const DefaultMaxDepth = 10000

// DefaultEntry is the identifier applied with zero arguments when a program
// is run.
const DefaultEntry = Ident("main")

// options configures parsing and evaluation of a [Program].
type options struct {
	entry    Ident
	maxDepth int
	logger   log.Logger
}

// Option applies a configuration option to a [Program].
type Option func(*options)

func makeOptions(opts ...Option) options {
	o := options{
		entry:    DefaultEntry,
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithEntry returns an option that overrides the entry-point identifier
// applied by [Program.Run].
func WithEntry(name string) Option {
	return func(o *options) {
		if name != "" {
			o.entry = Ident(name)
		}
	}
}

// WithMaxDepth returns an option that sets the maximum evaluation nesting
// depth. Non-positive values restore [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth <= 0 {
			depth = DefaultMaxDepth
		}

		o.maxDepth = depth
	}
}

// WithLogger returns an option that sets the structured logger used for
// parse and evaluation diagnostics. The zero logger discards everything.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
