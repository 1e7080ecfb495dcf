package main

import (
	"fmt"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Socket", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Socket:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Running", statusOK, "pid 1", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderStatusLineWithoutMessage(t *testing.T) {
	got := renderStatusLine("History", statusWarn, "", false)
	if !strings.HasSuffix(got, "[WARN]") {
		t.Fatalf("expected bare badge, got %q", got)
	}
}

func TestRenderTableTrimsLongCells(t *testing.T) {
	long := strings.Repeat("x", maxCellWidth+20)
	out := renderTable([]string{"A", "B"}, [][]string{{"1", long}, {"2"}}, []columnAlignment{alignRight})
	if strings.Contains(out, long) {
		t.Fatalf("expected long cell to be trimmed:\n%s", out)
	}
	if !strings.Contains(out, "│ 2 │") {
		t.Fatalf("expected short row padded:\n%s", out)
	}
}
