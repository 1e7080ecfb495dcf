package csvimport

import "strings"

// Column names recognised in the header row.
const (
	ColumnDatetime  = "datetime"
	ColumnVideoType = "video_type"
	ColumnVideoID   = "video_id"
	ColumnClipStart = "clip_start"
	ColumnClipEnd   = "clip_end"
	ColumnStatus    = "status"
	ColumnTitle     = "title"
	ColumnArtist    = "artist"
	ColumnPerformer = "performer"
	ColumnComment   = "comment"
)

// RequiredColumns must hold a non-blank value for a row to be kept.
var RequiredColumns = []string{ColumnDatetime, ColumnVideoType, ColumnVideoID}

// Columns lists every mapped column in canonical order.
var Columns = []string{
	ColumnDatetime,
	ColumnVideoType,
	ColumnVideoID,
	ColumnClipStart,
	ColumnClipEnd,
	ColumnStatus,
	ColumnTitle,
	ColumnArtist,
	ColumnPerformer,
	ColumnComment,
}

// headerIndex maps a cleaned column name to its position.
type headerIndex map[string]int

func makeHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		key := cleanHeader(h)
		if key == "" {
			continue
		}
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

func cleanHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// cell returns the raw value for name, or "" and false when the column is
// unknown or the row is short.
func (idx headerIndex) cell(row []string, name string) (string, bool) {
	pos, ok := idx[name]
	if !ok || pos >= len(row) {
		return "", false
	}
	return row[pos], true
}

func (idx headerIndex) missing(names []string) []string {
	var out []string
	for _, name := range names {
		if _, ok := idx[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
