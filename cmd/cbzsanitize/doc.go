// Package main hosts the cbzsanitize CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, applies command-line
// overrides, and hands archives to the sanitize pipeline. Results are printed
// as tables on stdout while structured logs go to stderr, so the summary can
// be piped without interleaving log lines.
//
// Keep this package thin: behaviour belongs in the internal packages and is
// only surfaced here through commands and flags.
package main
