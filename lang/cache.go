package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// programCache memoizes parsed programs keyed by source and option hash,
// so re-running the same file never re-parses it.
var programCache sync.Map

// state holds the one-shot parse result for a cached source.
type state struct {
	once sync.Once
	prog *Program
	err  error
}

// hashOptions hashes the option fields that affect the parsed program.
// The logger is excluded: it never changes parse output.
func hashOptions(o options) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(string(o.entry))
	_ = enc.Encode(o.maxDepth)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader reads and parses source from r, memoizing the result. The
// reader is wrapped with asynchronous read-ahead so input is pre-fetched
// while earlier chunks are consumed.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	o := makeOptions(opts...)

	o.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
	)

	return parseCached(ctx, string(data), o, opts...)
}

// parseCached parses source text, reusing a previously parsed program for
// identical source and options. Cache hits return a shallow copy carrying
// the caller's options; the definition table is shared, as it is immutable
// after load.
func parseCached(
	ctx context.Context,
	source string,
	o options,
	opts ...Option,
) (*Program, error) {
	key := strconv.FormatUint(
		xxh3.HashString(source)^hashOptions(o), 36)

	entry := new(state)

	value, hit := programCache.LoadOrStore(key, entry)
	if cached, ok := value.(*state); ok {
		entry = cached
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("hit", hit),
	)

	entry.once.Do(func() {
		entry.prog, entry.err = Parse(ctx, source, opts...)
	})

	if entry.err != nil {
		return nil, entry.err
	}

	return entry.prog.withOptions(opts...), nil
}

// ClearCache discards all memoized programs.
func ClearCache() {
	programCache.Clear()
}
