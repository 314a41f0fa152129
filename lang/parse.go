package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse parses source text into a [Program]: a sequence of newline-terminated
// definitions, optionally separated by blank lines and # comments.
func Parse(ctx context.Context, source string, opts ...Option) (*Program, error) {
	prog := NewProgram(opts...)

	p := &parser{
		input:  []byte(source),
		source: source,
		line:   1,
		col:    1,
	}

	for {
		p.skipBlank()

		if p.eof() {
			break
		}

		name, value, err := p.parseDefinition()
		if err != nil {
			return nil, err
		}

		prog.Define(name, value)
	}

	prog.opts.logger.TraceContext(ctx, "parse complete",
		slog.Int("definitions", prog.Len()),
	)

	return prog, nil
}

// ParseExpr parses a single expression, requiring nothing but blank lines
// and comments to follow it.
func ParseExpr(_ context.Context, source string) (Node, error) {
	p := &parser{
		input:  []byte(source),
		source: source,
		line:   1,
		col:    1,
	}

	p.skipBlank()

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipBlank()

	if !p.eof() {
		return nil, p.failf(p.position(), "unexpected trailing input")
	}

	return expr, nil
}

// parser holds the scanning state over a single source text. Expressions
// are newline-sensitive: only inline whitespace and comments are skipped
// between their tokens.
type parser struct {
	input  []byte
	source string
	pos    int
	line   int
	col    int
}

// parseDefinition parses one top-level definition:
//
//	name = expr
//	name() = expr
//	name(p1, ..., pn) = expr
//	name(p1, ..., pn) | c1 = b1 | c2 = b2 ...
//
// Guards may continue on subsequent lines; every other form is terminated
// by the end of its line.
func (p *parser) parseDefinition() (Ident, Node, error) {
	name, err := p.parseIdent("definition name")
	if err != nil {
		return "", nil, err
	}

	p.skipInline()

	if p.peekByte() != '(' {
		if err := p.expect('='); err != nil {
			return "", nil, err
		}

		p.skipInline()

		value, err := p.parseExpr()
		if err != nil {
			return "", nil, err
		}

		return name, value, p.endOfLine()
	}

	params, err := p.parseParams()
	if err != nil {
		return "", nil, err
	}

	p.skipInline()

	if p.peekByte() == '|' {
		guards, err := p.parseGuards(0)
		if err != nil {
			return "", nil, err
		}

		return name, Func{Params: params, Body: guards}, nil
	}

	if err := p.expect('='); err != nil {
		return "", nil, err
	}

	p.skipInline()

	body, err := p.parseExpr()
	if err != nil {
		return "", nil, err
	}

	return name, Func{Params: params, Body: body}, p.endOfLine()
}

// parseGuards parses one or more guard cases, each "| cond = body". A guard
// list extends to the next line whenever the next non-blank line begins
// with '|'. The terminator byte, when nonzero, ends the list instead of a
// line boundary (used for guards braced inside a lambda body).
func (p *parser) parseGuards(term byte) (Cases, error) {
	var guards Cases

	for {
		if err := p.expect('|'); err != nil {
			return nil, err
		}

		p.skipInline()

		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		p.skipInline()

		if err := p.expect('='); err != nil {
			return nil, err
		}

		p.skipInline()

		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		guards = append(guards, Case{Cond: cond, Body: body})

		if term != 0 {
			p.skipBlank()

			switch p.peekByte() {
			case term:
				return guards, nil
			case '|':
				continue
			default:
				return nil, p.failf(p.position(),
					"malformed guard list",
					string(term), "|",
				)
			}
		}

		p.skipInline()

		if p.peekByte() == '|' {
			continue
		}

		if !p.eof() && p.peekByte() != '\n' {
			return nil, p.failf(p.position(),
				"unexpected trailing input after guard",
				"newline", "|",
			)
		}

		// The guard list continues only if the next non-blank line
		// begins another case.
		mark := p.mark()
		p.skipBlank()

		if p.peekByte() != '|' {
			p.reset(mark)

			return guards, p.endOfLine()
		}
	}
}

// parseParams parses a parenthesized, comma-separated list of distinct
// parameter names. The list may be empty.
func (p *parser) parseParams() (Params, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}

	var params Params

	p.skipInline()

	if p.peekByte() == ')' {
		p.advance()

		return params, nil
	}

	for {
		pos := p.position()

		name, err := p.parseIdent("parameter name")
		if err != nil {
			return nil, err
		}

		for _, prev := range params {
			if prev == name {
				return nil, p.failf(pos,
					ErrDuplicateParam.Error()+": "+string(name))
			}
		}

		params = append(params, name)

		p.skipInline()

		switch p.peekByte() {
		case ',':
			p.advance()
			p.skipInline()
		case ')':
			p.advance()

			return params, nil
		default:
			return nil, p.failf(p.position(),
				"malformed parameter list", ",", ")")
		}
	}
}

// parseArgs parses a parenthesized, comma-separated list of argument
// expressions. The list may be empty.
func (p *parser) parseArgs() (Args, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}

	var args Args

	p.skipInline()

	if p.peekByte() == ')' {
		p.advance()

		return args, nil
	}

	for {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, expr)

		p.skipInline()

		switch p.peekByte() {
		case ',':
			p.advance()
			p.skipInline()
		case ')':
			p.advance()

			return args, nil
		default:
			return nil, p.failf(p.position(),
				"malformed argument list", ",", ")")
		}
	}
}

// Expression grammar, precedence low to high, all levels left-associative:
//
//	expr: term  (("==" | "<>" | "<=" | ">=" | "<" | ">") term)*
//	term: factor (("+" | "-") factor)*
//	factor: atom (("*" | "/") atom)*

func (p *parser) parseExpr() (Node, error) {
	return p.parseInfix(p.parseTerm, "==", "<>", "<=", ">=", "<", ">")
}

func (p *parser) parseTerm() (Node, error) {
	return p.parseInfix(p.parseFactor, "+", "-")
}

func (p *parser) parseFactor() (Node, error) {
	return p.parseInfix(p.parseAtom, "*", "/")
}

// parseInfix parses a left-associative chain of binary applications at one
// precedence level. Operands are parsed by next; ops are tried in order, so
// longer operators must precede their prefixes.
func (p *parser) parseInfix(
	next func() (Node, error),
	ops ...string,
) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for {
		mark := p.mark()
		p.skipInline()

		op := p.scanOperator(ops)
		if op == "" {
			p.reset(mark)

			return left, nil
		}

		p.skipInline()

		right, err := next()
		if err != nil {
			return nil, err
		}

		left = App{
			Callee: Ident(op),
			Args:   Args{left, right},
			Infix:  true,
		}
	}
}

// scanOperator consumes and returns the first operator that prefixes the
// remaining input, or "" when none does. A bare '=' is never an operator:
// it belongs to the enclosing definition or guard.
func (p *parser) scanOperator(ops []string) string {
	rest := p.input[p.pos:]

	for _, op := range ops {
		if len(rest) < len(op) || string(rest[:len(op)]) != op {
			continue
		}

		if op == "<" || op == ">" {
			// Reject prefixes of the two-byte forms.
			if len(rest) > 1 && (rest[1] == '=' || rest[1] == '>') {
				continue
			}
		}

		for range len(op) {
			p.advance()
		}

		return op
	}

	return ""
}

// parseAtom parses the highest-precedence expression forms.
func (p *parser) parseAtom() (Node, error) {
	pos := p.position()

	switch c := p.peekByte(); {
	case c == '(':
		p.advance()
		p.skipInline()

		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		p.skipInline()

		return expr, p.expect(')')

	case c == '[':
		return p.parseList()

	case c == '"':
		return p.parseString()

	case c == '@':
		return p.parseFunc()

	case c >= '0' && c <= '9', c == '.',
		(c == '+' || c == '-') && p.startsNumber(1):
		return p.parseNumber()

	case isIdentStart(p.peekRune()):
		name, err := p.parseIdent("identifier")
		if err != nil {
			return nil, err
		}

		mark := p.mark()
		p.skipInline()

		if p.peekByte() != '(' {
			p.reset(mark)

			return name, nil
		}

		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}

		return App{Callee: name, Args: args}, nil

	default:
		return nil, p.failf(pos, "expected expression",
			"number", "identifier", "string", "(", "[", "@")
	}
}

// parseList parses a bracketed, comma-separated list of expressions.
func (p *parser) parseList() (Node, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}

	var list List

	p.skipInline()

	if p.peekByte() == ']' {
		p.advance()

		return list, nil
	}

	for {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		list = append(list, expr)

		p.skipInline()

		switch p.peekByte() {
		case ',':
			p.advance()
			p.skipInline()
		case ']':
			p.advance()

			return list, nil
		default:
			return nil, p.failf(p.position(),
				"malformed list", ",", "]")
		}
	}
}

// parseFunc parses an anonymous function:
//
//	@(p1, ..., pn){ body }
//	@(p1, ..., pn){ | c1 = b1 | c2 = b2 ... }
//
// The braced body may span lines.
func (p *parser) parseFunc() (Node, error) {
	if err := p.expect('@'); err != nil {
		return nil, err
	}

	p.skipInline()

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	p.skipInline()

	if err := p.expect('{'); err != nil {
		return nil, err
	}

	p.skipBlank()

	var body Node

	if p.peekByte() == '|' {
		body, err = p.parseGuards('}')
	} else {
		body, err = p.parseExpr()
	}

	if err != nil {
		return nil, err
	}

	p.skipBlank()

	if err := p.expect('}'); err != nil {
		return nil, err
	}

	return Func{Params: params, Body: body}, nil
}

// parseIdent parses an identifier: a letter or underscore followed by
// letters, digits, or underscores.
func (p *parser) parseIdent(what string) (Ident, error) {
	if !isIdentStart(p.peekRune()) {
		return "", p.failf(p.position(), "expected "+what, "identifier")
	}

	start := p.pos

	p.advance()

	for !p.eof() && isIdentContinue(p.peekRune()) {
		p.advance()
	}

	return Ident(p.input[start:p.pos]), nil
}

// parseNumber parses an optionally signed decimal literal with an optional
// fraction and exponent.
func (p *parser) parseNumber() (Node, error) {
	pos := p.position()
	start := p.pos

	if c := p.peekByte(); c == '+' || c == '-' {
		p.advance()
	}

	digits := 0

	for isDigit(p.peekByte()) {
		digits++

		p.advance()
	}

	if p.peekByte() == '.' {
		p.advance()

		for isDigit(p.peekByte()) {
			digits++

			p.advance()
		}
	}

	if digits == 0 {
		return nil, p.failf(pos, "malformed number literal", "digit")
	}

	if c := p.peekByte(); c == 'e' || c == 'E' {
		p.advance()

		if c := p.peekByte(); c == '+' || c == '-' {
			p.advance()
		}

		if !isDigit(p.peekByte()) {
			return nil, p.failf(p.position(),
				"malformed exponent", "digit")
		}

		for isDigit(p.peekByte()) {
			p.advance()
		}
	}

	text := string(p.input[start:p.pos])

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.failf(pos, "malformed number literal: "+text)
	}

	return Num(value), nil
}

// parseString parses a double-quoted literal, resolving backslash escapes.
// Literals may span lines.
func (p *parser) parseString() (Node, error) {
	pos := p.position()

	if err := p.expect('"'); err != nil {
		return nil, err
	}

	var buf strings.Builder

	for {
		if p.eof() {
			return nil, p.failf(pos, "unterminated string literal", `"`)
		}

		r := p.peekRune()
		p.advance()

		switch r {
		case '"':
			return Str(buf.String()), nil

		case '\\':
			if p.eof() {
				return nil, p.failf(pos,
					"unterminated string literal", `"`)
			}

			esc := p.peekRune()
			p.advance()

			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case 'r':
				buf.WriteByte('\r')
			default:
				// Unknown escapes resolve to the escaped rune,
				// covering \" and \\.
				buf.WriteRune(esc)
			}

		default:
			buf.WriteRune(r)
		}
	}
}

// endOfLine requires that nothing but inline whitespace and comments remain
// before the next newline or end of input, consuming the newline.
func (p *parser) endOfLine() error {
	p.skipInline()

	if p.eof() {
		return nil
	}

	if p.peekByte() != '\n' {
		return p.failf(p.position(), "unexpected trailing input", "newline")
	}

	p.advance()

	return nil
}

// Scanning primitives.

type mark struct {
	pos  int
	line int
	col  int
}

func (p *parser) mark() mark { return mark{p.pos, p.line, p.col} }

func (p *parser) reset(m mark) { p.pos, p.line, p.col = m.pos, m.line, m.col }

func (p *parser) eof() bool { return p.pos >= len(p.input) }

// peekByte returns the next input byte, or 0 at end of input.
func (p *parser) peekByte() byte {
	if p.eof() {
		return 0
	}

	return p.input[p.pos]
}

func (p *parser) peekRune() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size

	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) expect(c byte) error {
	if p.peekByte() != c {
		return p.failf(p.position(), "unexpected input", string(c))
	}

	p.advance()

	return nil
}

func (p *parser) position() Position {
	return Position{Offset: p.pos, Line: p.line, Column: p.col}
}

// startsNumber reports whether a digit or a dot-digit pair begins at the
// given byte offset from the current position.
func (p *parser) startsNumber(off int) bool {
	i := p.pos + off
	if i >= len(p.input) {
		return false
	}

	if isDigit(p.input[i]) {
		return true
	}

	return p.input[i] == '.' &&
		i+1 < len(p.input) && isDigit(p.input[i+1])
}

// skipInline skips spaces, tabs, and comment text WITHOUT crossing a line
// boundary. Expressions and definitions are newline-terminated, so the
// newline itself is left for the caller.
func (p *parser) skipInline() {
	for !p.eof() {
		switch p.peekByte() {
		case ' ', '\t', '\r':
			p.advance()
		case '#':
			for !p.eof() && p.peekByte() != '\n' {
				p.advance()
			}
		default:
			return
		}
	}
}

// skipBlank skips all whitespace, including newlines, and comments.
func (p *parser) skipBlank() {
	for !p.eof() {
		switch c := p.peekByte(); {
		case c == '#':
			for !p.eof() && p.peekByte() != '\n' {
				p.advance()
			}
		case unicode.IsSpace(rune(c)):
			p.advance()
		default:
			return
		}
	}
}

func (p *parser) failf(pos Position, msg string, expected ...string) error {
	return &ParseError{
		Pos:      pos,
		Message:  msg,
		Expected: expected,
		Source:   p.source,
	}
}

// Character classification.

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
