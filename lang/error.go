package lang

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrParse            = NewError("malformed source")
	ErrReadInput        = NewError("failed to read input")
	ErrDuplicateParam   = NewError("duplicate parameter name")
	ErrArity            = NewError("argument count mismatch")
	ErrNoMatch          = NewError("no guard matched")
	ErrNotCallable      = NewError("value is not callable")
	ErrNotNumeric       = NewError("operand is not a number")
	ErrNotComparable    = NewError("values are not comparable")
	ErrDivideByZero     = NewError("division by zero")
	ErrMaxDepthExceeded = NewError("maximum recursion depth exceeded")
	ErrNoDefinition     = NewError("definition not found")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the same sentinel this error was derived
// from. Derived errors (via [Error.With] or [Error.Wrap]) share the
// sentinel's message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.msg == t.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Position locates a byte offset within source text as a 1-based line and
// column.
type Position struct {
	Offset int
	Line   int
	Column int
}

// ParseError reports malformed source. It is fatal: parsing performs no
// recovery, and evaluation never begins.
type ParseError struct {
	Pos      Position
	Message  string
	Expected []string // Expected tokens, if known
	Source   string   // The original source input
}

// Unwrap allows errors.Is(err, ErrParse).
func (e *ParseError) Unwrap() error { return ErrParse }

// Error implements the error interface, rendering the error location, a
// caret-marked snippet of the offending line, and any expected tokens.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Column))

	if e.Message != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Message)
	}

	if snippet := e.snippet(); snippet != "" {
		buf.WriteByte('\n')
		buf.WriteString(snippet)
	}

	if len(e.Expected) > 0 {
		exp := make([]string, len(e.Expected))
		for i, s := range e.Expected {
			exp[i] = strconv.Quote(s)
		}

		slices.Sort(exp)

		buf.WriteString("\texpected: ")
		buf.WriteString(strings.Join(exp, ", "))
	}

	return buf.String()
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Message),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
	)
}

// snippet renders the offending source line with a caret marking the error
// column.
func (e *ParseError) snippet() string {
	if e.Source == "" {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	line := lines[e.Pos.Line-1]

	var buf strings.Builder

	buf.WriteString("  ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(" | ")
	buf.WriteString(line)
	buf.WriteByte('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := len(strconv.Itoa(e.Pos.Line)) + 5
	if e.Pos.Column > 0 {
		padding += e.Pos.Column - 1
	}

	buf.WriteString(strings.Repeat(" ", padding))
	buf.WriteString("^\n")

	return buf.String()
}
