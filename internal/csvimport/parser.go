package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"syscall"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"suimu/internal/maybemusic"
)

var (
	errEmptyPath   = errors.New("empty path")
	errInvalidUTF8 = errors.New("file is not valid UTF-8 text")
)

// SkippedRow describes a data row left out of the result.
type SkippedRow struct {
	Line   int    `json:"line"`
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`
}

// Outcome is a successful parse.
type Outcome struct {
	// Records holds the kept rows in file order. It is never nil.
	Records []maybemusic.MaybeMusic
	// Skipped lists rows that were dropped, in file order.
	Skipped []SkippedRow
	// Rows counts data rows seen after the header, kept or not.
	Rows int
	// MissingColumns names required columns absent from the header. When
	// non-empty every data row is skipped.
	MissingColumns []string
}

// Parse reads the CSV file at path.
func Parse(path string) (*Outcome, error) {
	if strings.TrimSpace(path) == "" {
		return nil, notFound(path, errEmptyPath)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, classifyOpenError(path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, notFound(path, fmt.Errorf("not a regular file (%s)", info.Mode().Type()))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, classifyOpenError(path, err)
	}
	defer file.Close()

	out, err := parse(file)
	if err != nil {
		return nil, readError(path, err)
	}
	return out, nil
}

// ParseReader parses CSV text from r. Failures are reported as KindReadError.
func ParseReader(r io.Reader) (*Outcome, error) {
	out, err := parse(r)
	if err != nil {
		return nil, readError("", err)
	}
	return out, nil
}

func classifyOpenError(path string, err error) *Error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return notFound(path, err)
	}
	return readError(path, err)
}

func parse(r io.Reader) (*Outcome, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	text, err := decode(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1

	out := &Outcome{Records: make([]maybemusic.MaybeMusic, 0)}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	idx := makeHeaderIndex(header)
	out.MissingColumns = idx.missing(RequiredColumns)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("read row: %w", err)
			}
			out.Rows++
			out.Skipped = append(out.Skipped, SkippedRow{
				Line:   parseErr.StartLine,
				Kind:   KindMalformedRow,
				Reason: parseErr.Err.Error(),
			})
			continue
		}

		out.Rows++
		line, _ := reader.FieldPos(0)
		record, reason := mapRow(row, idx)
		if reason != "" {
			out.Skipped = append(out.Skipped, SkippedRow{Line: line, Kind: KindMalformedRow, Reason: reason})
			continue
		}
		out.Records = append(out.Records, record)
	}
	return out, nil
}

// decode strips a byte order mark (transcoding UTF-16 when its BOM is
// present) and rejects anything that is not UTF-8.
func decode(raw []byte) ([]byte, error) {
	text, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), raw)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if !utf8.Valid(text) {
		return nil, errInvalidUTF8
	}
	return text, nil
}

func mapRow(row []string, idx headerIndex) (maybemusic.MaybeMusic, string) {
	for _, name := range RequiredColumns {
		value, ok := idx.cell(row, name)
		if !ok {
			return maybemusic.MaybeMusic{}, fmt.Sprintf("missing required column %s", name)
		}
		if strings.TrimSpace(value) == "" {
			return maybemusic.MaybeMusic{}, fmt.Sprintf("empty required field %s", name)
		}
	}
	text := func(name string) string {
		value, _ := idx.cell(row, name)
		return value
	}
	return maybemusic.MaybeMusic{
		Datetime:  text(ColumnDatetime),
		VideoType: text(ColumnVideoType),
		VideoID:   text(ColumnVideoID),
		ClipStart: parseOffset(text(ColumnClipStart)),
		ClipEnd:   parseOffset(text(ColumnClipEnd)),
		Status:    parseStatus(text(ColumnStatus)),
		Title:     text(ColumnTitle),
		Artist:    text(ColumnArtist),
		Performer: text(ColumnPerformer),
		Comment:   text(ColumnComment),
	}, ""
}

func parseOffset(cell string) maybemusic.Optional[float64] {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return maybemusic.None[float64]()
	}
	if !isDecimal(trimmed) {
		return maybemusic.None[float64]()
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return maybemusic.None[float64]()
	}
	return maybemusic.Some(v)
}

// isDecimal rejects the Go literal forms ParseFloat also accepts, such as hex
// mantissas and digit separators.
func isDecimal(s string) bool {
	return strings.Trim(s, "0123456789+-.eE") == ""
}

func parseStatus(cell string) maybemusic.Optional[uint16] {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return maybemusic.None[uint16]()
	}
	v, err := strconv.ParseUint(trimmed, 10, 16)
	if err != nil {
		return maybemusic.None[uint16]()
	}
	return maybemusic.Some(uint16(v))
}
