// Package httpapi exposes the boundary commands over HTTP for web clients.
//
// Routes are mounted on a chi router: POST /api/invoke/{command} takes the
// command's named arguments as a JSON object and replies with the result
// envelope, GET /api/maybemusic is a query-string shortcut for the CSV load
// command, and /healthz and /metrics serve liveness and Prometheus scrapes.
// Transport errors (unknown command, undecodable arguments) are reported
// with 4xx status codes and an {"error": ...} body; load failures are
// ordinary 200 responses carrying a failed envelope.
package httpapi
