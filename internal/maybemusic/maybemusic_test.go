package maybemusic_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"suimu/internal/maybemusic"
)

func TestHashCompat(t *testing.T) {
	cases := []struct {
		name string
		rec  maybemusic.MaybeMusic
		want string
	}{
		{
			name: "bluerose",
			rec: maybemusic.MaybeMusic{
				Datetime:  "2021-06-25T22:30:00+09:00",
				VideoType: "YOUTUBE",
				VideoID:   "ZfDYRy17CBY",
				Status:    maybemusic.Some[uint16](0),
				Title:     "Bluerose",
				Artist:    "星街すいせい",
				Performer: "星街すいせい",
			},
			want: "0c2b9da9cfe08c9e",
		},
		{
			name: "next color planet",
			rec: maybemusic.MaybeMusic{
				Datetime:  "2020-03-22T20:00:00+09:00",
				VideoType: "YOUTUBE",
				VideoID:   "vQHVGXdcqEQ",
				Status:    maybemusic.Some[uint16](0),
				Title:     "NEXT COLOR PLANET",
				Artist:    "星街すいせい",
				Performer: "星街すいせい",
			},
			want: "4db7f3845af9cce9",
		},
		{
			// Offsets hash as "971" and "1194.8", not the cell text "971.0".
			name: "white happy with clip offsets",
			rec: maybemusic.MaybeMusic{
				Datetime:  "2020-01-31T19:58+09:00",
				VideoType: "BILIBILI",
				VideoID:   "BV1U7411s7X1",
				ClipStart: maybemusic.Some(971.0),
				ClipEnd:   maybemusic.Some(1194.8),
				Status:    maybemusic.Some[uint16](0),
				Title:     "ホワイトハッピー",
				Artist:    "極悪P",
				Performer: "星街すいせい",
			},
			want: "da6a2a033dc3751a",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.Hash(); got != tc.want {
				t.Fatalf("Hash() = %s, want %s", got, tc.want)
			}
			music, err := maybemusic.ToMusic(tc.rec)
			if err != nil {
				t.Fatalf("ToMusic: %v", err)
			}
			if got := music.Hash(); got != tc.want {
				t.Fatalf("Music.Hash() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestHashIncludesClipBounds(t *testing.T) {
	base := maybemusic.MaybeMusic{VideoType: "BILIBILI", VideoID: "BV1U7411s7X1", Title: "ホワイトハッピー"}
	clipped := base
	clipped.ClipStart = maybemusic.Some(971.0)
	clipped.ClipEnd = maybemusic.Some(1194.8)
	if base.Hash() == clipped.Hash() {
		t.Fatal("expected clip bounds to change the digest")
	}
	if len(clipped.Hash()) != 16 {
		t.Fatalf("expected 16 hex digits, got %q", clipped.Hash())
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		rec  maybemusic.MaybeMusic
		want string
	}{
		{maybemusic.MaybeMusic{VideoType: "YOUTUBE", VideoID: "abc", Title: "Song", Artist: "Someone"}, "Someone - Song (YOUTUBE/abc)"},
		{maybemusic.MaybeMusic{VideoType: "YOUTUBE", VideoID: "abc", Title: "Song"}, "Song (YOUTUBE/abc)"},
		{maybemusic.MaybeMusic{VideoType: "YOUTUBE", VideoID: "abc"}, "Untitled (YOUTUBE/abc)"},
		{maybemusic.MaybeMusic{Datetime: "2021-01-01T00:00:00Z", Title: "Song"}, "Song (paid, 2021-01-01T00:00:00Z)"},
	}
	for _, tc := range cases {
		if got := tc.rec.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestToMusic(t *testing.T) {
	valid := maybemusic.MaybeMusic{
		Datetime:  "2018-03-27T20:54+09:00",
		VideoType: " TWITTER ",
		VideoID:   " 978601113791299585 ",
		Status:    maybemusic.Some[uint16](0),
		Title:     " Starduster ",
		Artist:    "ジミーサムP",
		Performer: "星街すいせい",
	}
	music, err := maybemusic.ToMusic(valid)
	if err != nil {
		t.Fatalf("ToMusic: %v", err)
	}
	if music.VideoType != maybemusic.PlatformTwitter {
		t.Fatalf("unexpected platform %q", music.VideoType)
	}
	if music.VideoID != "978601113791299585" || music.Title != "Starduster" {
		t.Fatalf("expected trimmed fields, got %#v", music)
	}
	if _, offset := music.Datetime.Zone(); offset != 9*3600 {
		t.Fatalf("expected +09:00 offset, got %d", offset)
	}

	noStatus := valid
	noStatus.Status = maybemusic.None[uint16]()
	if _, err := maybemusic.ToMusic(noStatus); !errors.Is(err, maybemusic.ErrMissingStatus) {
		t.Fatalf("expected ErrMissingStatus, got %v", err)
	}

	badPlatform := valid
	badPlatform.VideoType = "NICONICO"
	if _, err := maybemusic.ToMusic(badPlatform); !errors.Is(err, maybemusic.ErrUnsupportedPlatform) {
		t.Fatalf("expected ErrUnsupportedPlatform, got %v", err)
	}

	noTitle := valid
	noTitle.Title = "   "
	if _, err := maybemusic.ToMusic(noTitle); !errors.Is(err, maybemusic.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}

	badTime := valid
	badTime.Datetime = "yesterday"
	if _, err := maybemusic.ToMusic(badTime); err == nil {
		t.Fatal("expected datetime error")
	}
}

func TestCheckLogic(t *testing.T) {
	cases := []struct {
		name    string
		start   maybemusic.Optional[float64]
		end     maybemusic.Optional[float64]
		wantErr bool
	}{
		{"no bounds", maybemusic.None[float64](), maybemusic.None[float64](), false},
		{"start only", maybemusic.Some(1.1), maybemusic.None[float64](), false},
		{"ordered", maybemusic.Some(1.1), maybemusic.Some(2.2), false},
		{"reversed", maybemusic.Some(3.1), maybemusic.Some(2.2), true},
		{"equal", maybemusic.Some(2.2), maybemusic.Some(2.2), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := maybemusic.CheckLogic(maybemusic.MaybeMusic{ClipStart: tc.start, ClipEnd: tc.end})
			if (err != nil) != tc.wantErr {
				t.Fatalf("CheckLogic err=%v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestJSONOmitsAbsentOptionals(t *testing.T) {
	rec := maybemusic.MaybeMusic{
		Datetime:  "2021-06-25T22:30:00+09:00",
		VideoType: "YOUTUBE",
		VideoID:   "ZfDYRy17CBY",
		ClipStart: maybemusic.Some(12.5),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `"clip_start":12.5`) {
		t.Fatalf("expected clip_start in %s", text)
	}
	for _, key := range []string{"clip_end", "status"} {
		if strings.Contains(text, `"`+key+`"`) {
			t.Fatalf("expected %s to be omitted from %s", key, text)
		}
	}

	var decoded maybemusic.MaybeMusic
	if err := json.Unmarshal([]byte(`{"video_id":"x","clip_end":null,"status":3}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ClipEnd.Present() {
		t.Fatal("expected null clip_end to decode as absent")
	}
	if got := decoded.Status.OrElse(99); got != 3 {
		t.Fatalf("expected status 3, got %d", got)
	}
}
