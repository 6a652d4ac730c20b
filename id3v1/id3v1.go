// Package id3v1 reads and writes the legacy 128-byte ID3v1 and ID3v1.1
// trailer found at the end of many MP3 files, often alongside an ID3v2 tag.
//
// Layout:
//
//	"TAG" title:30 artist:30 album:30 year:4 comment:30 genre:1
//
// ID3v1.1 shortens the comment to 28 bytes and stores the track number in
// the last comment byte, behind a zero byte.
package id3v1

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/id3tag/internal/types"
)

// Size is the length of the trailer.
const Size = 128

var magic = []byte("TAG")

// GenreNone marks an unset genre.
const GenreNone byte = 0xFF

// Tag is a decoded ID3v1 trailer. Text fields are ISO-8859-1 on disk and
// are truncated to their field width when written.
type Tag struct {
	Title   string
	Artist  string
	Album   string
	Year    string
	Comment string
	Track   byte // 0 means ID3v1.0, no track stored
	Genre   byte
}

// genres is the genre list defined for ID3v1, including the Winamp
// extensions up to "Dance Hall".
var genres = [...]string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient",
	"Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical",
	"Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel",
	"Noise", "AlternRock", "Bass", "Soul", "Punk", "Space", "Meditative",
	"Instrumental Pop", "Instrumental Rock", "Ethnic", "Gothic",
	"Darkwave", "Techno-Industrial", "Electronic", "Pop-Folk",
	"Eurodance", "Dream", "Southern Rock", "Comedy", "Cult", "Gangsta",
	"Top 40", "Christian Rap", "Pop/Funk", "Jungle", "Native American",
	"Cabaret", "New Wave", "Psychadelic", "Rave", "Showtunes", "Trailer",
	"Lo-Fi", "Tribal", "Acid Punk", "Acid Jazz", "Polka", "Retro",
	"Musical", "Rock & Roll", "Hard Rock", "Folk", "Folk-Rock",
	"National Folk", "Swing", "Fast Fusion", "Bebob", "Latin", "Revival",
	"Celtic", "Bluegrass", "Avantgarde", "Gothic Rock", "Progressive Rock",
	"Psychedelic Rock", "Symphonic Rock", "Slow Rock", "Big Band",
	"Chorus", "Easy Listening", "Acoustic", "Humour", "Speech", "Chanson",
	"Opera", "Chamber Music", "Sonata", "Symphony", "Booty Bass", "Primus",
	"Porn Groove", "Satire", "Slow Jam", "Club", "Tango", "Samba",
	"Folklore", "Ballad", "Power Ballad", "Rhythmic Soul", "Freestyle",
	"Duet", "Punk Rock", "Drum Solo", "Acapella", "Euro-House", "Dance Hall",
}

// GenreName returns the name of a genre index, empty if unknown.
func GenreName(g byte) string {
	if int(g) < len(genres) {
		return genres[g]
	}
	return ""
}

// GenreIndex returns the index of a genre name, case-insensitive.
func GenreIndex(name string) (byte, bool) {
	for i, g := range genres {
		if strings.EqualFold(g, name) {
			return byte(i), true
		}
	}
	return GenreNone, false
}

// Read decodes the trailer at the end of r. It returns a NoTagError when
// the last 128 bytes do not start with "TAG".
func Read(r io.ReaderAt, size int64) (*Tag, error) {
	if size < Size {
		return nil, &types.NoTagError{}
	}
	buf := make([]byte, Size)
	if _, err := r.ReadAt(buf, size-Size); err != nil {
		return nil, fmt.Errorf("read ID3v1 trailer: %w", err)
	}
	return Decode(buf)
}

// ReadFile decodes the trailer of the file at path.
func ReadFile(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only handle

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	t, err := Read(f, info.Size())
	if err != nil {
		var nt *types.NoTagError
		if errors.As(err, &nt) {
			nt.Path = path
		}
		return nil, err
	}
	return t, nil
}

// Decode parses a 128-byte trailer.
func Decode(b []byte) (*Tag, error) {
	if len(b) != Size || !bytes.HasPrefix(b, magic) {
		return nil, &types.NoTagError{}
	}

	t := &Tag{
		Title:  field(b[3:33]),
		Artist: field(b[33:63]),
		Album:  field(b[63:93]),
		Year:   field(b[93:97]),
		Genre:  b[127],
	}
	if b[125] == 0 && b[126] != 0 {
		t.Comment = field(b[97:125])
		t.Track = b[126]
	} else {
		t.Comment = field(b[97:127])
	}
	return t, nil
}

// field decodes a zero- or space-padded ISO-8859-1 field.
func field(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return strings.TrimRight(string(b), " ")
	}
	return strings.TrimRight(string(s), " ")
}

// Bytes encodes the trailer. Characters outside ISO-8859-1 are replaced
// by '?'.
func (t *Tag) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, magic)
	put(b[3:33], t.Title)
	put(b[33:63], t.Artist)
	put(b[63:93], t.Album)
	put(b[93:97], t.Year)
	if t.Track != 0 {
		put(b[97:125], t.Comment)
		b[126] = t.Track
	} else {
		put(b[97:127], t.Comment)
	}
	b[127] = t.Genre
	return b
}

func put(dst []byte, s string) {
	i := 0
	for _, r := range s {
		if i == len(dst) {
			return
		}
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			c = '?'
		}
		dst[i] = c
		i++
	}
}

// GenreName returns the name of the tag's genre.
func (t *Tag) GenreName() string {
	return GenreName(t.Genre)
}

// Write stores t as the trailer of the file at path, replacing an
// existing trailer or appending a new one.
func Write(path string, t *Tag) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}

	offset, err := trailerOffset(f)
	if err != nil {
		_ = f.Close() //nolint:errcheck // Read error takes precedence
		return err
	}
	if _, err := f.WriteAt(t.Bytes(), offset); err != nil {
		_ = f.Close() //nolint:errcheck // Write error takes precedence
		return fmt.Errorf("write ID3v1 trailer: %w", err)
	}
	return f.Close()
}

// Strip removes the trailer from the file at path. A file without a
// trailer is left untouched and returns a NoTagError.
func Strip(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close() //nolint:errcheck // Stat error takes precedence
		return fmt.Errorf("stat file: %w", err)
	}
	if _, err := Read(f, info.Size()); err != nil {
		_ = f.Close() //nolint:errcheck // Read error takes precedence
		var nt *types.NoTagError
		if errors.As(err, &nt) {
			nt.Path = path
		}
		return err
	}
	if err := f.Truncate(info.Size() - Size); err != nil {
		_ = f.Close() //nolint:errcheck // Truncate error takes precedence
		return fmt.Errorf("truncate file: %w", err)
	}
	return f.Close()
}

// trailerOffset returns where the trailer starts or would start.
func trailerOffset(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	size := info.Size()
	_, err = Read(f, size)
	var nt *types.NoTagError
	switch {
	case err == nil:
		return size - Size, nil
	case errors.As(err, &nt):
		return size, nil
	default:
		return 0, err
	}
}
