package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// ConfigIdentifier is the kong variable carrying the configuration file
// path.
const ConfigIdentifier = "configFile"

// CacheIdentifier is the kong variable carrying the cache directory path.
const CacheIdentifier = "cacheDir"

// contextKey stores a [kong.Context] value in a [context.Context].
type contextKey struct{}

// WithContext returns a context carrying the given kong parse context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdinSource is the special source path naming standard input.
const stdinSource = "-"

// openSource opens a source argument: a file path, or stdin for "-".
func openSource(path string) (io.ReadCloser, error) {
	if path == stdinSource {
		return io.NopCloser(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, ErrOpenSource.
			With(slog.String("path", path)).
			Wrap(err)
	}

	return file, nil
}
