package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SampleHeader is the canonical column order used by fixtures.
const SampleHeader = "datetime,video_type,video_id,clip_start,clip_end,status,title,artist,performer,comment"

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteCSV writes the given lines joined by newlines into a fresh temp
// directory and returns the file path.
func WriteCSV(t testing.TB, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "music.csv")
	WriteFile(t, path, []byte(strings.Join(lines, "\n")+"\n"))
	return path
}

// SampleCSV writes a small, fully valid file with three records.
func SampleCSV(t testing.TB) string {
	t.Helper()

	return WriteCSV(t,
		SampleHeader,
		"2018-03-27T20:54+09:00,TWITTER,978601113791299585,,,0,Starduster,ジミーサムP,星街すいせい,",
		"2021-06-25T22:30:00+09:00,YOUTUBE,ZfDYRy17CBY,,,0,Bluerose,星街すいせい,星街すいせい,",
		"2020-01-31T19:58+09:00,BILIBILI,BV1U7411s7X1,971.0,1194.8,0,ホワイトハッピー,極悪P,星街すいせい,\"live, encore\"",
	)
}
