// Package main hosts the suimu CLI entrypoint and command graph.
//
// The Cobra command tree loads CSV clip lists in process (parse, check,
// hash), talks to a running daemon over the IPC socket (invoke, status),
// runs the daemon in the foreground (serve), reads the invocation journal
// (history), tails the daemon log (logs) and scaffolds configuration.
// Configuration resolution, socket discovery and logger setup live in
// commandContext so subcommands stay small; command semantics belong in the
// internal packages.
package main
