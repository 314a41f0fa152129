package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/efpl/lang"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from a
// configuration file written in the language's own syntax.
//
// Each top-level constant definition names a flag and binds its value:
//   - Flag names with hyphens (e.g., "log-level") use underscores in the
//     config file (e.g., "log_level")
//   - String values are quoted
//   - Boolean values are the identifiers true and false
//   - Numbers are unquoted
//   - Repeated flags bind a list
//
// Example config file:
//
//	log_level = "debug"
//	log_format = "text"
//	log_pretty = true
//	max_depth = 10000
//
// Command-line flags override config file values.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		prog, err := lang.ParseReader(ctx, r)
		if err != nil {
			// An unreadable config never blocks the command line.
			return config{}, nil
		}

		values := make(config, prog.Len())

		for name, value := range prog.Definitions() {
			values[string(name)] = flagValue(value)
		}

		return values, nil
	}
}

// config implements [kong.Resolver] over the flattened definition table.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	// Identifiers cannot contain hyphens, so hyphenated flag names are
	// written with underscores.
	underscoreName := strings.ReplaceAll(flag.Name, "-", "_")
	if value, ok := r[underscoreName]; ok {
		return value, nil
	}

	// Not found: kong falls back to the flag's default.
	return nil, nil
}

// flagValue converts a bound definition value to the representation kong
// expects. Numbers must be strings for kong's flag parsing.
func flagValue(n lang.Node) any {
	switch v := lang.ToNative(n).(type) {
	case int64:
		return strconv.FormatInt(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	default:
		return v
	}
}
