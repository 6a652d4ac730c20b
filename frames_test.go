package id3tag

import (
	"bytes"
	"errors"
	"testing"
)

func TestText_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantEnc byte
	}{
		{"ascii", "Kind of Blue", 0},
		{"latin-1", "Café Müller", 0},
		{"needs utf-16", "東京事変", 1},
		{"mixed", "Sigur Rós – Ágætis byrjun", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := emptyTag(t)
			if err := WriteText(tag, FrameTitle, TagContent{Text: tt.text}, false); err != nil {
				t.Fatal(err)
			}

			frames, _ := tag.FramesByID(FrameTitle)
			content, _ := frames[0].Content()
			if content[0] != tt.wantEnc {
				t.Errorf("expected encoding %d, got %d", tt.wantEnc, content[0])
			}

			got, err := ReadText(tag, FrameTitle)
			if err != nil {
				t.Fatal(err)
			}
			if got.Text != tt.text {
				t.Errorf("expected %q, got %q", tt.text, got.Text)
			}
		})
	}
}

func TestText_ReplacesExisting(t *testing.T) {
	tag := emptyTag(t)
	for _, s := range []string{"one", "two", "three"} {
		if err := tag.SetTitle(s); err != nil {
			t.Fatal(err)
		}
	}

	frames, err := tag.FramesByID(FrameTitle)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected a single TIT2 frame, got %d", len(frames))
	}
	if tag.Title() != "three" {
		t.Errorf("expected %q, got %q", "three", tag.Title())
	}

	if err := tag.SetTitle(""); err != nil {
		t.Fatal(err)
	}
	if _, err := tag.FramesByID(FrameTitle); err == nil {
		t.Error("expected an empty title to remove the frame")
	}
}

func TestText_Missing(t *testing.T) {
	tag := emptyTag(t)

	got, err := ReadText(tag, FrameTitle)
	if err != nil {
		t.Fatalf("missing tag should not be an error, got %v", err)
	}
	if !got.Empty() {
		t.Errorf("expected empty content, got %+v", got)
	}
	if tag.Title() != "" {
		t.Errorf("expected empty title, got %q", tag.Title())
	}
}

func TestText_TerminatedAndEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{"terminated", []byte{0, 'a', 'b', 0}, "ab"},
		{"encoding only", []byte{0}, ""},
		{"utf-16 with BOM", []byte{1, 0xFF, 0xFE, 'h', 0, 'i', 0}, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := emptyTag(t)
			f, err := NewFrame(FrameTitle, tt.content, 0, NoCompression)
			if err != nil {
				t.Fatal(err)
			}
			tag.AddFrame(f)

			got, err := ReadText(tag, FrameTitle)
			if err != nil {
				t.Fatal(err)
			}
			if got.Text != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got.Text)
			}
		})
	}
}

func TestComment_RoundTrip(t *testing.T) {
	tag := emptyTag(t)
	in := TagContent{Type: "deu", Description: "Notiz", Text: "Grüße"}
	if err := WriteComment(tag, in, true); err != nil {
		t.Fatal(err)
	}

	got, err := ReadComment(tag)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(in) {
		t.Errorf("expected %+v, got %+v", in, got)
	}

	frames, _ := tag.FramesByID(FrameComment)
	if !frames[0].Flags().Has(FlagCompressed) {
		t.Error("expected the comment frame to be compressed")
	}
}

func TestComment_Defaults(t *testing.T) {
	tag := emptyTag(t)
	if err := tag.SetComment("Recorded live"); err != nil {
		t.Fatal(err)
	}

	got, err := ReadComment(tag)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != "eng" || got.Description != "" || got.Text != "Recorded live" {
		t.Errorf("unexpected comment %+v", got)
	}
	if tag.Comment() != "Recorded live" {
		t.Errorf("unexpected Comment() %q", tag.Comment())
	}

	err = WriteComment(tag, TagContent{Type: "english", Text: "x"}, false)
	var illegal *IllegalValueError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected *IllegalValueError for a long language, got %v", err)
	}
}

func TestSetComment_EmptyRemoves(t *testing.T) {
	tag := emptyTag(t)
	if err := tag.SetComment("first"); err != nil {
		t.Fatal(err)
	}
	if err := tag.SetTitle("Title"); err != nil {
		t.Fatal(err)
	}

	if err := tag.SetComment(""); err != nil {
		t.Fatalf("SetComment(\"\") failed: %v", err)
	}
	if _, err := tag.FramesByID(FrameComment); err == nil {
		t.Error("expected the COMM frames to be removed")
	}
	if tag.Title() != "Title" {
		t.Errorf("other frames touched: Title() = %q", tag.Title())
	}
	if !tag.Changed() {
		t.Error("expected the tag to be marked changed")
	}

	// Nothing left to remove.
	path := growTag(t)
	clean := mustOpen(t, path)
	if err := clean.SetComment(""); err != nil {
		t.Fatal(err)
	}
	if clean.Changed() {
		t.Error("removing an absent comment marked the tag changed")
	}
}

func TestUserText(t *testing.T) {
	tag := emptyTag(t)
	for _, c := range []TagContent{
		{Description: "MusicBrainz Album Id", Text: "1234"},
		{Description: "CATALOGNUMBER", Text: "ECM 1064"},
		{Description: "MusicBrainz Album Id", Text: "5678"},
	} {
		if err := WriteUserText(tag, c, false); err != nil {
			t.Fatal(err)
		}
	}

	frames, _ := tag.FramesByID(FrameUserText)
	if len(frames) != 2 {
		t.Fatalf("expected 2 TXXX frames, got %d", len(frames))
	}

	got, err := ReadUserText(tag, "MusicBrainz Album Id")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "5678" {
		t.Errorf("expected the replaced value, got %q", got.Text)
	}

	got, _ = ReadUserText(tag, "CATALOGNUMBER")
	if got.Text != "ECM 1064" {
		t.Errorf("expected %q, got %q", "ECM 1064", got.Text)
	}

	got, _ = ReadUserText(tag, "absent")
	if !got.Empty() {
		t.Errorf("expected empty content, got %+v", got)
	}
}

func TestBinary_RoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("binary\x00\xff"), 50)

	for _, compress := range []bool{false, true} {
		tag := emptyTag(t)
		if err := WriteBinary(tag, "PRIV", TagContent{Binary: payload}, compress); err != nil {
			t.Fatal(err)
		}

		got, err := ReadBinary(tag, "PRIV")
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got.Binary, payload) {
			t.Errorf("compress=%v: payload mismatch", compress)
		}
	}
}

func TestBinary_InvalidID(t *testing.T) {
	err := WriteBinary(emptyTag(t), "priv", TagContent{Binary: []byte{1}}, false)
	var illegal *IllegalValueError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected *IllegalValueError, got %T: %v", err, err)
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"2023", 2023},
		{"2023-11-08", 2023},
		{"invalid", 0},
		{"", 0},
		{"1899", 0},
		{"2101", 0},
	}

	for _, tt := range tests {
		if got := parseYear(tt.input); got != tt.expected {
			t.Errorf("parseYear(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestParseTrackNumber(t *testing.T) {
	tests := []struct {
		input         string
		expectedNum   int
		expectedTotal int
	}{
		{"5", 5, 0},
		{"5/12", 5, 12},
		{"1/1", 1, 1},
		{" 3 / 9 ", 3, 9},
		{"invalid", 0, 0},
	}

	for _, tt := range tests {
		num, total := parseTrackNumber(tt.input)
		if num != tt.expectedNum || total != tt.expectedTotal {
			t.Errorf("parseTrackNumber(%q) = (%d, %d), expected (%d, %d)",
				tt.input, num, total, tt.expectedNum, tt.expectedTotal)
		}
	}
}

func TestTag_NumberAccessors(t *testing.T) {
	tag := emptyTag(t)
	if err := tag.SetYear("1959"); err != nil {
		t.Fatal(err)
	}
	if err := tag.SetTrack("2/5"); err != nil {
		t.Fatal(err)
	}

	if tag.YearNumber() != 1959 {
		t.Errorf("expected 1959, got %d", tag.YearNumber())
	}
	if n, total := tag.TrackNumber(); n != 2 || total != 5 {
		t.Errorf("expected 2/5, got %d/%d", n, total)
	}
}
