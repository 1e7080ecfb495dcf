// Package logging builds the slog loggers used by the suimu CLI and daemon.
//
// Two handlers are available: a single-line console format with a component
// prefix and key=value pairs, and a JSON format keyed by ts, level and msg.
// Attribute helpers and WarnWithContext keep warnings shaped the same way
// everywhere (cause, impact, next step), and WithContext tags lines with the
// request id and command carried on a context.
package logging
