package id3tag

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	binutil "github.com/simonhull/id3tag/internal/binary"
	"github.com/simonhull/id3tag/internal/id3v2"
)

// audioData stands in for the MPEG stream behind the tag. It starts with a
// sync word so misplaced copies are easy to spot.
var audioData = bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x64, 'a', 'u', 'd', 'i', 'o'}, 100)

// rawTag assembles a version 2.3 tag from an already encoded body.
func rawTag(t testing.TB, version, flags byte, body []byte) []byte {
	t.Helper()
	size, err := binutil.EncodeSynchsafe(uint32(len(body)))
	if err != nil {
		t.Fatal(err)
	}
	out := []byte{'I', 'D', '3', version, 0, flags}
	out = append(out, size...)
	return append(out, body...)
}

// frameBytes encodes a frame built from the arguments.
func frameBytes(t testing.TB, id string, content []byte, flags FrameFlags, c Compression) []byte {
	t.Helper()
	f, err := NewFrame(id, content, flags, c)
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// textFrame encodes a Latin-1 text frame.
func textFrame(t testing.TB, id, text string) []byte {
	t.Helper()
	return frameBytes(t, id, append([]byte{0}, text...), 0, NoCompression)
}

// legacyFrame encodes an ID3v2.2 frame: three-character id, three-byte size.
func legacyFrame(id string, content []byte) []byte {
	n := len(content)
	out := append([]byte(id), byte(n>>16), byte(n>>8), byte(n))
	return append(out, content...)
}

// extHeader encodes an extended header.
func extHeader(useCRC bool, crc, padding uint32) []byte {
	return id3v2.NewExtendedHeader(useCRC, crc, padding).Bytes()
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// writeTemp writes data to a new file and returns its path.
func writeTemp(t testing.TB, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func mustOpen(t testing.TB, path string, opts ...Option) *Tag {
	t.Helper()
	tag, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", path, err)
	}
	return tag
}

// emptyTag returns a stream-backed tag without frames.
func emptyTag(t testing.TB) *Tag {
	t.Helper()
	tag, err := Read(bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	return tag
}
