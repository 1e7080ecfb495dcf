// Package logs reads the daemon's run log for `suimu logs`.
//
// Last returns the final lines of a file with bounded memory, ReadFrom
// resumes at a byte offset, and Follow polls for appended lines until its
// context ends. A missing file reads as empty so the CLI can wait for a
// daemon that has not written anything yet.
package logs
