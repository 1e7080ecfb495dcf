// Package boundary exposes CSV loading to callers on the far side of a
// process boundary.
//
// Go errors do not survive serialization, so every command answers with a
// Result envelope: {"ok":true,"object":...} on success or
// {"ok":false,"kind":...,"message":...} on failure. GetMaybeMusicByCSVPath is
// the pure form of the one command; Service adds request ids, logging and
// observers (metrics, journal) and dispatches commands by name for the IPC
// and HTTP transports.
package boundary
