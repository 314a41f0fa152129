package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the program in native source syntax, one definition per
// line in declaration order. When indent is positive, guarded functions
// place each case on its own indented line.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	for name, value := range p.Definitions() {
		if err := formatDefinition(w, name, value, indent); err != nil {
			return err
		}
	}

	return nil
}

func formatDefinition(w io.Writer, name Ident, value Node, indent int) error {
	fn, ok := value.(Func)
	if !ok {
		_, err := fmt.Fprintf(w, "%s = %s\n", name, value)

		return err
	}

	guards, guarded := fn.Body.(Cases)
	if !guarded {
		_, err := fmt.Fprintf(w, "%s%s = %s\n", name, fn.Params, fn.Body)

		return err
	}

	if _, err := fmt.Fprintf(w, "%s%s", name, fn.Params); err != nil {
		return err
	}

	for i, c := range guards {
		sep := " "
		// The first case must share the definition's line.
		if i > 0 && indent > 0 {
			sep = "\n" + strings.Repeat(" ", indent)
		}

		if _, err := fmt.Fprintf(w, "%s%s", sep, c); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w)

	return err
}

// FormatJSON writes the program's definition table as JSON.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(p)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the program's definition table as YAML.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, p.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// MarshalJSON implements json.Marshaler.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// ToMap converts the definition table to a native Go map keyed by
// definition name.
func (p *Program) ToMap() map[string]any {
	result := make(map[string]any, p.Len())

	for name, value := range p.Definitions() {
		result[string(name)] = ToNative(value)
	}

	return result
}

// ToNative converts an AST value to its nearest native Go representation.
// Literals become Go scalars and slices; functions become maps naming
// their parameters and body; anything else (applications, bare guard
// cases) is rendered as source text.
func ToNative(n Node) any {
	switch n := n.(type) {
	case Ident:
		return string(n)

	case Num:
		f := float64(n)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}

		return f

	case Str:
		return string(n)

	case List:
		return nativeSlice(n)

	case Args:
		return nativeSlice(n)

	case Params:
		names := make([]any, len(n))
		for i, name := range n {
			names[i] = string(name)
		}

		return names

	case Func:
		body := map[string]any{
			"(parameters)": ToNative(n.Params),
		}

		if guards, ok := n.Body.(Cases); ok {
			body["(cases)"] = ToNative(guards)
		} else {
			body["(body)"] = ToNative(n.Body)
		}

		return body

	case Cases:
		cases := make([]any, len(n))
		for i, c := range n {
			cases[i] = map[string]any{
				"(cond)": ToNative(c.Cond),
				"(body)": ToNative(c.Body),
			}
		}

		return cases

	default:
		// Applications and bare cases have no native analogue.
		return n.String()
	}
}

func nativeSlice(nodes []Node) []any {
	values := make([]any, len(nodes))
	for i, n := range nodes {
		values[i] = ToNative(n)
	}

	return values
}

// Print writes an indented structural dump of the definition table,
// labeling every node with its kind.
func (p *Program) Print(w io.Writer) {
	for name, value := range p.Definitions() {
		fmt.Fprintf(w, "%s:\n", name)
		printNode(w, value, 1)
	}
}

func printNode(w io.Writer, n Node, depth int) {
	pad := strings.Repeat("  ", depth)

	switch n := n.(type) {
	case List:
		fmt.Fprintf(w, "%s%s:\n", pad, n.Kind())
		printNodes(w, n, depth+1)

	case Args:
		fmt.Fprintf(w, "%s%s:\n", pad, n.Kind())
		printNodes(w, n, depth+1)

	case Func:
		fmt.Fprintf(w, "%s%s %s:\n", pad, n.Kind(), n.Params)
		printNode(w, n.Body, depth+1)

	case Case:
		fmt.Fprintf(w, "%scond:\n", pad)
		printNode(w, n.Cond, depth+1)
		fmt.Fprintf(w, "%sbody:\n", pad)
		printNode(w, n.Body, depth+1)

	case Cases:
		fmt.Fprintf(w, "%s%s:\n", pad, n.Kind())

		for _, c := range n {
			printNode(w, c, depth+1)
		}

	case App:
		fmt.Fprintf(w, "%s%s:\n", pad, n.Kind())
		printNode(w, n.Callee, depth+1)
		printNode(w, n.Args, depth+1)

	default:
		fmt.Fprintf(w, "%s%s %s\n", pad, n.Kind(), n)
	}
}

func printNodes(w io.Writer, nodes []Node, depth int) {
	for _, n := range nodes {
		printNode(w, n, depth)
	}
}
