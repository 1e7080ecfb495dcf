// Package history journals boundary invocations to SQLite.
//
// Each served command becomes one row in invocations, with the rows the
// parser skipped stored alongside it. The journal is the durable diagnostics
// channel for callers that only ever see the Result envelope: "suimu history"
// reads it back, and the daemon prunes entries past the configured retention
// at startup. Schema changes ship as embedded, ordered migrations.
package history
