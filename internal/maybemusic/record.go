package maybemusic

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// hashSeed matches the suisei-music archive tooling. Offsets are hashed from
// the parsed single-precision values, as the desktop editor does, so "971.0"
// in a cell hashes as "971".
const hashSeed = 0x9f88f860

// MaybeMusic is one candidate clip as read from a CSV row.
type MaybeMusic struct {
	Datetime  string            `json:"datetime"`
	VideoType string            `json:"video_type"`
	VideoID   string            `json:"video_id"`
	ClipStart Optional[float64] `json:"clip_start,omitzero"`
	ClipEnd   Optional[float64] `json:"clip_end,omitzero"`
	Status    Optional[uint16]  `json:"status,omitzero"`
	Title     string            `json:"title"`
	Artist    string            `json:"artist"`
	Performer string            `json:"performer"`
	Comment   string            `json:"comment"`
}

// String renders the record the way the check output and logs show it.
func (m MaybeMusic) String() string {
	videoID := fmt.Sprintf("%s/%s", m.VideoType, m.VideoID)
	if m.VideoType == "" {
		videoID = fmt.Sprintf("paid, %s", m.Datetime)
	}
	return displayName(m.Title, m.Artist, videoID)
}

// Hash returns the 16 hex digit clip digest.
func (m MaybeMusic) Hash() string {
	return clipHash(m.VideoType, m.VideoID, m.ClipStart, m.ClipEnd, m.Title, m.Artist, m.Performer)
}

func displayName(title, artist, videoID string) string {
	switch {
	case title == "":
		return fmt.Sprintf("Untitled (%s)", videoID)
	case artist == "":
		return fmt.Sprintf("%s (%s)", title, videoID)
	default:
		return fmt.Sprintf("%s - %s (%s)", artist, title, videoID)
	}
}

func clipHash(videoType, videoID string, start, end Optional[float64], title, artist, performer string) string {
	d := xxhash.NewWithSeed(hashSeed)
	for _, part := range []string{
		videoType,
		videoID,
		formatClip(start),
		formatClip(end),
		title,
		artist,
		performer,
	} {
		_, _ = d.WriteString(part)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// formatClip prints offsets in shortest single-precision form ("971", "1194.8").
func formatClip(v Optional[float64]) string {
	f, ok := v.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 32)
}
