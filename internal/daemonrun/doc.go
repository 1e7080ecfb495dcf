// Package daemonrun runs the suimu daemon in the foreground for
// `suimu serve`: it prepares directories and the per-run log file, runs
// preflight checks, writes a pid file, and blocks until a shutdown signal.
package daemonrun
