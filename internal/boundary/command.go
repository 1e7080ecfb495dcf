package boundary

import (
	"errors"
	"fmt"
	"io"

	"suimu/internal/csvimport"
	"suimu/internal/maybemusic"
)

// CommandGetMaybeMusicByCSVPath is the wire name of the CSV load command.
const CommandGetMaybeMusicByCSVPath = "get_maybemusic_by_csv_path"

var (
	// ErrUnknownCommand is returned by Service.Invoke for names it does not serve.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidArgs is returned when command arguments cannot be decoded.
	ErrInvalidArgs = errors.New("invalid command arguments")
)

// MaybeMusicResult is the envelope of CommandGetMaybeMusicByCSVPath.
type MaybeMusicResult = Result[[]maybemusic.MaybeMusic]

// GetMaybeMusicArgs are the named arguments of CommandGetMaybeMusicByCSVPath.
type GetMaybeMusicArgs struct {
	CSVPath *string `json:"csvPath"`
}

// GetMaybeMusicByCSVPath parses the CSV file at csvPath into an envelope. A
// failure never carries a partial list; a success list is never nil.
func GetMaybeMusicByCSVPath(csvPath string) MaybeMusicResult {
	result, _ := load(csvPath)
	return result
}

// ReadMaybeMusic parses CSV text from r into an envelope, for callers that
// hold a stream rather than a path.
func ReadMaybeMusic(r io.Reader) (MaybeMusicResult, *csvimport.Outcome) {
	return resultFrom(csvimport.ParseReader(r))
}

func load(csvPath string) (MaybeMusicResult, *csvimport.Outcome) {
	return resultFrom(csvimport.Parse(csvPath))
}

func resultFrom(out *csvimport.Outcome, err error) (MaybeMusicResult, *csvimport.Outcome) {
	if err != nil {
		return failureFrom[[]maybemusic.MaybeMusic](err), nil
	}
	records := out.Records
	if records == nil {
		records = []maybemusic.MaybeMusic{}
	}
	return Success(records), out
}

// failureFrom maps a parser error onto the wire kinds. Anything that is not a
// *csvimport.Error counts as a read failure.
func failureFrom[T any](err error) Result[T] {
	var perr *csvimport.Error
	if !errors.As(err, &perr) {
		return Failure[T](KindReadError, err.Error())
	}
	switch {
	case perr.Kind == csvimport.KindNotFound:
		return Failure[T](KindNotFound, fmt.Sprintf("%q is not a readable CSV file: %v", perr.Path, perr.Err))
	case perr.Path == "":
		return Failure[T](KindReadError, fmt.Sprintf("failed to read input: %v", perr.Err))
	default:
		return Failure[T](KindReadError, fmt.Sprintf("failed to read %q: %v", perr.Path, perr.Err))
	}
}
