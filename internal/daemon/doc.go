// Package daemon hosts the long-running suimu process.
//
// It wires the boundary service to its observers (Prometheus recorder and
// invocation journal), exposes it over the IPC socket and, when configured,
// over HTTP, and holds a flock on the runtime lock file so only one daemon
// serves a runtime directory at a time. Keep command semantics in
// internal/boundary; the daemon only owns startup, shutdown and status.
package daemon
