package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/ardnew/efpl/lang"
	"github.com/ardnew/efpl/log"
	"github.com/ardnew/efpl/profile"
)

// defaultConfigIndent is the indent width used when generating the default
// configuration file.
const defaultConfigIndent = 2

// Init generates a configuration file holding the current flag values as
// efpl constants. Flag hyphens become underscores in definition names.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# efpl configuration")
	fmt.Fprintln(file, "# flag names use underscores in place of hyphens")

	prog := i.buildProgram(ctx)

	if err := prog.Format(ctx, file, defaultConfigIndent); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
		slog.Int("flags", prog.Len()),
	)

	return nil
}

// buildProgram collects the current flag values as constant definitions.
func (i *Init) buildProgram(ctx context.Context) *lang.Program {
	ktx := kongContextFrom(ctx)

	prog := lang.NewProgram()

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		node := flagNode(ktx.FlagValue(flag))
		if node == nil {
			continue
		}

		name := strings.ReplaceAll(flag.Name, "-", "_")
		prog.Define(lang.Ident(name), node)
	}

	return prog
}

// flagNode converts a flag value to the efpl node bound in the generated
// configuration, or nil for values with no sensible rendering.
func flagNode(val any) lang.Node {
	switch v := val.(type) {
	case nil:
		return nil

	case bool:
		if v {
			return lang.Truth
		}

		return lang.Falsehood

	case string:
		if v == "" {
			return nil
		}

		return lang.Str(v)

	case int:
		return lang.Num(float64(v))

	case int64:
		return lang.Num(float64(v))

	case uint64:
		return lang.Num(float64(v))

	case float64:
		return lang.Num(v)

	case []string:
		if len(v) == 0 {
			return nil
		}

		list := make(lang.List, len(v))
		for i, s := range v {
			list[i] = lang.Str(s)
		}

		return list

	default:
		return lang.Str(fmt.Sprint(v))
	}
}
