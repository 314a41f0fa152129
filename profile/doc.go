// Package profile provides optional runtime profiling for the efpl
// interpreter.
//
// Profiling integrates [github.com/pkg/profile] and must be enabled at
// build time with the pprof build tag:
//
//	go build -tags pprof .
//
// Without the tag every operation is a no-op with zero overhead, and the
// CLI hides the profiling flags.
//
// With the tag, the interpreter accepts --pprof-mode and --pprof-dir flags;
// [Modes] lists the supported modes. Profile output lands in the cache
// directory by default and is analyzed with go tool pprof:
//
//	efpl --pprof-mode=cpu run program.efpl
//	go tool pprof ./efpl ~/.cache/efpl/pprof/cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
