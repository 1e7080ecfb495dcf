package maybemusic

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Platform identifies a supported video source.
type Platform string

const (
	PlatformTwitter  Platform = "TWITTER"
	PlatformBilibili Platform = "BILIBILI"
	PlatformYouTube  Platform = "YOUTUBE"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{PlatformTwitter, PlatformBilibili, PlatformYouTube}

// ParsePlatform resolves an exact platform identifier.
func ParsePlatform(value string) (Platform, bool) {
	for _, p := range Platforms {
		if string(p) == value {
			return p, true
		}
	}
	return "", false
}

var (
	ErrUnsupportedPlatform = errors.New("platform not supported")
	ErrMissingStatus       = errors.New("no status present")
	ErrEmptyTitle          = errors.New("title is empty")
	ErrClipOrder           = errors.New("clip_start is later than clip_end")
)

// datetimeLayouts are tried in order; the short forms omit seconds.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04-0700",
}

// Music is a record that passed validation.
type Music struct {
	Datetime  time.Time
	VideoType Platform
	VideoID   string
	ClipStart Optional[float64]
	ClipEnd   Optional[float64]
	Status    uint16
	Title     string
	Artist    string
	Performer string
	Comment   string
}

// ParseDatetime parses a record timestamp in any accepted layout.
func ParseDatetime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse datetime %q: unsupported format", value)
}

// ToMusic validates a candidate record.
func ToMusic(m MaybeMusic) (Music, error) {
	datetime, err := ParseDatetime(m.Datetime)
	if err != nil {
		return Music{}, err
	}
	status, ok := m.Status.Get()
	if !ok {
		return Music{}, ErrMissingStatus
	}
	platform, ok := ParsePlatform(strings.TrimSpace(m.VideoType))
	if !ok {
		return Music{}, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, m.VideoType)
	}
	title := strings.TrimSpace(m.Title)
	if title == "" {
		return Music{}, ErrEmptyTitle
	}
	return Music{
		Datetime:  datetime,
		VideoType: platform,
		VideoID:   strings.TrimSpace(m.VideoID),
		ClipStart: m.ClipStart,
		ClipEnd:   m.ClipEnd,
		Status:    status,
		Title:     title,
		Artist:    strings.TrimSpace(m.Artist),
		Performer: strings.TrimSpace(m.Performer),
		Comment:   m.Comment,
	}, nil
}

// CheckLogic reports inconsistent clip bounds. Records without both bounds pass.
func CheckLogic(m MaybeMusic) error {
	start, hasStart := m.ClipStart.Get()
	end, hasEnd := m.ClipEnd.Get()
	if hasStart && hasEnd && start >= end {
		return ErrClipOrder
	}
	return nil
}

// String renders the validated record.
func (m Music) String() string {
	return displayName(m.Title, m.Artist, fmt.Sprintf("%s/%s", m.VideoType, m.VideoID))
}

// Hash returns the same digest as the candidate record it came from, after trimming.
func (m Music) Hash() string {
	return clipHash(string(m.VideoType), m.VideoID, m.ClipStart, m.ClipEnd, m.Title, m.Artist, m.Performer)
}
