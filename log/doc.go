// Package log provides a concurrency-safe wrapper around [log/slog] with a
// trace level below debug, selectable text/JSON output, named timestamp
// layouts, and an optional colorized pretty handler for terminals.
//
// A process-wide default logger is available through the package-level
// functions ([Trace], [Debug], [Info], [Warn], [Error] and their *Context
// variants) and is reconfigured with [Config].
package log
