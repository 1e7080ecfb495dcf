package csvimport

import "fmt"

// Kind classifies parser failures.
type Kind string

const (
	// KindNotFound means the path does not resolve to a regular file.
	KindNotFound Kind = "NotFound"
	// KindReadError means the file exists but could not be fully read or decoded.
	KindReadError Kind = "ReadError"
	// KindMalformedRow only ever appears on skipped rows.
	KindMalformedRow Kind = "MalformedRow"
)

// Error is a file-level failure. It aborts the whole parse.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %q: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func notFound(path string, err error) *Error {
	return &Error{Kind: KindNotFound, Path: path, Err: err}
}

func readError(path string, err error) *Error {
	return &Error{Kind: KindReadError, Path: path, Err: err}
}
