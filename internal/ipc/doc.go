// Package ipc exposes the boundary commands over JSON-RPC on a Unix domain
// socket and ships the matching client used by the CLI.
//
// The RPC service is registered as "Suimu". GetMaybeMusicByCSVPath replies
// with the Result envelope itself, so the "result" member of a JSON-RPC
// response is exactly {"ok":...}. Invoke is the by-name form used by
// generic front ends; Status reports daemon state.
package ipc
