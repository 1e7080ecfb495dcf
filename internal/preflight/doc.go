// Package preflight checks that the runtime paths and listen addresses suimu
// needs are usable before the daemon starts.
//
// The daemon calls RunAll on startup and refuses to run when a check fails;
// "suimu config validate" prints the same results as a table.
package preflight
