// Package cli contains the command line interface for efpl.
//
// # Usage
//
// The CLI evaluates a program's entry point by default:
//
//	efpl run program.efpl
//	efpl run --entry=start program.efpl
//	echo 'main() = 6 * 7' | efpl run
//
// Additional subcommands reformat source (fmt native, fmt json, fmt yaml,
// fmt ast), generate a configuration file (init), and start an interactive
// session (repl).
//
// # Configuration Loader
//
// Flag defaults can be set in a configuration file written in the
// language's own syntax, resolved by [resolve]. Flag names use underscores
// in place of hyphens:
//
//	log_level = "debug"
//	max_depth = 10000
//
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Enable colorized pretty printing
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/efpl/pprof)
package cli
