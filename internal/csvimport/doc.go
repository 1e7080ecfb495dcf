// Package csvimport turns a CSV file into ordered maybemusic records.
//
// The first row is a header matched by column name, so column order does not
// matter and unknown columns are ignored. Rows missing a required identifier
// are skipped and reported in Outcome.Skipped; unparsable numeric cells become
// absent values rather than failing the row. Only problems that prevent
// reading the file at all (missing path, permissions, I/O, invalid UTF-8)
// are returned as an *Error.
//
// Parse is safe for concurrent use: every call opens its own handle and keeps
// no state between calls.
package csvimport
