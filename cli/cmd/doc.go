// Package cmd implements the efpl subcommands: run (the default), fmt,
// init, and repl.
//
// Each command is a kong-bound struct whose Run method receives the
// context.Context prepared by the cli package. The kong parse context is
// carried in the context for commands that inspect flag metadata (init).
package cmd
