package id3tag

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/simonhull/id3tag/internal/fieldparse"
)

// Frame identifiers used by the convenience accessors.
const (
	FrameTitle    = "TIT2"
	FrameArtist   = "TPE1"
	FrameAlbum    = "TALB"
	FrameYear     = "TYER"
	FrameTrack    = "TRCK"
	FrameGenre    = "TCON"
	FrameComment  = "COMM"
	FrameUserText = "TXXX"
)

// defaultLanguage is written for comments without a language.
const defaultLanguage = "eng"

// frameContent returns the content of the first frame with id. A missing
// tag or frame is reported with ok false.
func frameContent(t *Tag, id string) (content []byte, ok bool, err error) {
	f, err := t.firstFrame(id)
	if err != nil {
		if missing(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	content, err = f.Content()
	if err != nil {
		return nil, false, err
	}
	return content, true, nil
}

// missing reports whether err means there is no tag or no such frame.
func missing(err error) bool {
	var noTag *NoTagError
	var noFrame *NoSuchFrameError
	return errors.As(err, &noTag) || errors.As(err, &noFrame)
}

// replaceFrames removes every frame with id and adds one holding content.
func replaceFrames(t *Tag, id string, content []byte, compress bool) error {
	c := NoCompression
	if compress {
		c = Compress
	}
	f, err := NewFrame(id, content, 0, c)
	if err != nil {
		return err
	}
	if t.frames != nil {
		t.frames = deleteByID(t.frames, id)
	}
	t.AddFrame(f)
	return nil
}

func deleteByID(frames []*Frame, id string) []*Frame {
	out := frames[:0]
	for _, f := range frames {
		if f.ID() != id {
			out = append(out, f)
		}
	}
	return out
}

// ReadBinary returns the raw content of the first frame with id in
// TagContent.Binary. A missing tag or frame yields an empty TagContent;
// a damaged frame yields its error.
func ReadBinary(t *Tag, id string) (TagContent, error) {
	content, ok, err := frameContent(t, id)
	if err != nil || !ok {
		return TagContent{}, err
	}
	return TagContent{Binary: content}, nil
}

// WriteBinary replaces every frame with id by one holding c.Binary.
func WriteBinary(t *Tag, id string, c TagContent, compress bool) error {
	return replaceFrames(t, id, c.Binary, compress)
}

// ReadText decodes a text information frame: an encoding byte followed by
// the text.
func ReadText(t *Tag, id string) (TagContent, error) {
	f, err := t.firstFrame(id)
	if err != nil {
		if missing(err) {
			return TagContent{}, nil
		}
		return TagContent{}, err
	}
	text, err := FrameText(f)
	if err != nil {
		return TagContent{}, err
	}
	return TagContent{Text: text}, nil
}

// FrameText decodes f as a text information frame.
func FrameText(f *Frame) (string, error) {
	content, err := f.Content()
	if err != nil {
		return "", err
	}
	p, err := fieldparse.New(content, true)
	if err != nil {
		return "", fmt.Errorf("frame %s: %w", f.ID(), err)
	}
	text, err := optionalText(p)
	if err != nil {
		return "", fmt.Errorf("frame %s: %w", f.ID(), err)
	}
	return text, nil
}

// WriteText replaces every frame with id by a text frame holding c.Text,
// encoded as ISO-8859-1 when possible and UTF-16 otherwise.
func WriteText(t *Tag, id string, c TagContent, compress bool) error {
	enc := fieldparse.ChooseEncoding(c.Text)
	text, err := fieldparse.EncodeText(c.Text, enc, false)
	if err != nil {
		return err
	}
	content := append([]byte{byte(enc)}, text...)
	return replaceFrames(t, id, content, compress)
}

// ReadComment decodes the first COMM frame: Type holds the three-letter
// language, Description the short description, Text the comment.
func ReadComment(t *Tag) (TagContent, error) {
	content, ok, err := frameContent(t, FrameComment)
	if err != nil || !ok {
		return TagContent{}, err
	}

	p, err := fieldparse.New(content, true)
	if err != nil {
		return TagContent{}, fmt.Errorf("frame %s: %w", FrameComment, err)
	}
	lang, err := p.ParseBinaryN(3)
	if err != nil {
		return TagContent{}, fmt.Errorf("frame %s: language: %w", FrameComment, err)
	}
	desc, err := optionalText(p)
	if err != nil {
		return TagContent{}, fmt.Errorf("frame %s: description: %w", FrameComment, err)
	}
	text, err := optionalText(p)
	if err != nil {
		return TagContent{}, fmt.Errorf("frame %s: text: %w", FrameComment, err)
	}
	return TagContent{Type: string(lang), Description: desc, Text: text}, nil
}

// WriteComment replaces every COMM frame by one built from c. An empty
// Type is written as "eng".
func WriteComment(t *Tag, c TagContent, compress bool) error {
	lang := c.Type
	if lang == "" {
		lang = defaultLanguage
	}
	if len(lang) != 3 {
		return &IllegalValueError{Field: "comment language", Value: lang, Reason: "must be 3 bytes"}
	}

	enc := fieldparse.ChooseEncoding(c.Description + c.Text)
	desc, err := fieldparse.EncodeText(c.Description, enc, true)
	if err != nil {
		return err
	}
	text, err := fieldparse.EncodeText(c.Text, enc, false)
	if err != nil {
		return err
	}

	content := make([]byte, 0, 4+len(desc)+len(text))
	content = append(content, byte(enc))
	content = append(content, lang...)
	content = append(content, desc...)
	content = append(content, text...)
	return replaceFrames(t, FrameComment, content, compress)
}

// ReadUserText returns the TXXX frame whose description matches desc.
func ReadUserText(t *Tag, desc string) (TagContent, error) {
	frames, err := t.FramesByID(FrameUserText)
	if err != nil {
		if missing(err) {
			return TagContent{}, nil
		}
		return TagContent{}, err
	}

	for _, f := range frames {
		c, err := decodeUserText(f)
		if err != nil {
			return TagContent{}, err
		}
		if c.Description == desc {
			return c, nil
		}
	}
	return TagContent{}, nil
}

func decodeUserText(f *Frame) (TagContent, error) {
	content, err := f.Content()
	if err != nil {
		return TagContent{}, err
	}
	p, err := fieldparse.New(content, true)
	if err != nil {
		return TagContent{}, fmt.Errorf("frame %s: %w", f.ID(), err)
	}
	desc, err := optionalText(p)
	if err != nil {
		return TagContent{}, fmt.Errorf("frame %s: description: %w", f.ID(), err)
	}
	value, err := optionalText(p)
	if err != nil {
		return TagContent{}, fmt.Errorf("frame %s: value: %w", f.ID(), err)
	}
	return TagContent{Description: desc, Text: value}, nil
}

// WriteUserText replaces the TXXX frame with the same description, keeping
// TXXX frames with other descriptions.
func WriteUserText(t *Tag, c TagContent, compress bool) error {
	enc := fieldparse.ChooseEncoding(c.Description + c.Text)
	desc, err := fieldparse.EncodeText(c.Description, enc, true)
	if err != nil {
		return err
	}
	value, err := fieldparse.EncodeText(c.Text, enc, false)
	if err != nil {
		return err
	}
	content := make([]byte, 0, 1+len(desc)+len(value))
	content = append(content, byte(enc))
	content = append(content, desc...)
	content = append(content, value...)

	mode := NoCompression
	if compress {
		mode = Compress
	}
	f, err := NewFrame(FrameUserText, content, 0, mode)
	if err != nil {
		return err
	}

	if t.frames != nil {
		kept := t.frames[:0]
		for _, old := range t.frames {
			if old.ID() == FrameUserText {
				if oc, err := decodeUserText(old); err == nil && oc.Description == c.Description {
					continue
				}
			}
			kept = append(kept, old)
		}
		t.frames = kept
	}
	t.AddFrame(f)
	return nil
}

// optionalText parses a text field that may be absent at the end of the
// frame.
func optionalText(p *fieldparse.Parser) (string, error) {
	if p.Remaining() == 0 {
		return "", nil
	}
	return p.ParseText()
}

// Text returns the text of the first frame with id, empty when the frame
// is missing or cannot be decoded.
func (t *Tag) Text(id string) string {
	c, err := ReadText(t, id)
	if err != nil {
		t.logger.Debug("text frame unreadable", "path", t.path, "frame", id, "error", err)
		return ""
	}
	return c.Text
}

// SetText replaces the frames with id by a text frame holding s. An empty
// s removes them.
func (t *Tag) SetText(id string, s string) error {
	if s == "" {
		t.dropFrames(id)
		return nil
	}
	return WriteText(t, id, TagContent{Text: s}, false)
}

// dropFrames removes every frame with id, marking the tag changed only if
// one was there.
func (t *Tag) dropFrames(id string) {
	if t.frames == nil {
		return
	}
	n := len(t.frames)
	t.frames = deleteByID(t.frames, id)
	if len(t.frames) != n {
		t.changed = true
	}
}

// Title returns the TIT2 frame text.
func (t *Tag) Title() string { return t.Text(FrameTitle) }

// SetTitle sets the TIT2 frame.
func (t *Tag) SetTitle(s string) error { return t.SetText(FrameTitle, s) }

// Artist returns the TPE1 frame text.
func (t *Tag) Artist() string { return t.Text(FrameArtist) }

// SetArtist sets the TPE1 frame.
func (t *Tag) SetArtist(s string) error { return t.SetText(FrameArtist, s) }

// Album returns the TALB frame text.
func (t *Tag) Album() string { return t.Text(FrameAlbum) }

// SetAlbum sets the TALB frame.
func (t *Tag) SetAlbum(s string) error { return t.SetText(FrameAlbum, s) }

// Year returns the TYER frame text.
func (t *Tag) Year() string { return t.Text(FrameYear) }

// SetYear sets the TYER frame.
func (t *Tag) SetYear(s string) error { return t.SetText(FrameYear, s) }

// Track returns the TRCK frame text, for example "3/12".
func (t *Tag) Track() string { return t.Text(FrameTrack) }

// SetTrack sets the TRCK frame.
func (t *Tag) SetTrack(s string) error { return t.SetText(FrameTrack, s) }

// YearNumber returns the year from TYER, 0 when missing or outside
// 1900-2100. Dates such as "2023-11-08" yield their leading year.
func (t *Tag) YearNumber() int {
	return parseYear(t.Year())
}

// TrackNumber parses TRCK as "N" or "N/Total".
func (t *Tag) TrackNumber() (number, total int) {
	return parseTrackNumber(t.Track())
}

func parseYear(text string) int {
	if len(text) < 4 {
		return 0
	}
	year, err := strconv.Atoi(text[:4])
	if err != nil || year < 1900 || year > 2100 {
		return 0
	}
	return year
}

func parseTrackNumber(text string) (number, total int) {
	n, tot, _ := strings.Cut(text, "/")
	number, _ = strconv.Atoi(strings.TrimSpace(n))
	total, _ = strconv.Atoi(strings.TrimSpace(tot))
	return number, total
}

// Genre returns the TCON frame text.
func (t *Tag) Genre() string { return t.Text(FrameGenre) }

// SetGenre sets the TCON frame.
func (t *Tag) SetGenre(s string) error { return t.SetText(FrameGenre, s) }

// Comment returns the text of the first COMM frame.
func (t *Tag) Comment() string {
	c, err := ReadComment(t)
	if err != nil {
		t.logger.Debug("comment frame unreadable", "path", t.path, "error", err)
		return ""
	}
	return c.Text
}

// SetComment replaces the COMM frames by one with the given text. An empty
// s removes them.
func (t *Tag) SetComment(s string) error {
	if s == "" {
		t.dropFrames(FrameComment)
		return nil
	}
	return WriteComment(t, TagContent{Text: s}, false)
}
