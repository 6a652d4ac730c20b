package id3v2

import (
	"bytes"
	"compress/zlib"
	"errors"
	"testing"

	binutil "github.com/simonhull/id3tag/internal/binary"
	"github.com/simonhull/id3tag/internal/types"
)

func mustFrame(t *testing.T, id string, content []byte, flags FrameFlags, c Compression) *Frame {
	t.Helper()
	f, err := NewFrame(id, content, flags, c)
	if err != nil {
		t.Fatalf("NewFrame(%s) failed: %v", id, err)
	}
	return f
}

func encode(t *testing.T, f *Frame) []byte {
	t.Helper()
	b, err := f.Bytes()
	if err != nil {
		t.Fatalf("Bytes(%s) failed: %v", f.ID(), err)
	}
	return b
}

func TestValidID(t *testing.T) {
	valid := []string{"TIT2", "COMM", "APIC", "TXXX", "WOAR", "TYER"}
	invalid := []string{"", "TIT", "TIT22", "tit2", "\x00\x00\x00\x00", "TI T", "TI-2"}

	for _, id := range valid {
		if !ValidID(id) {
			t.Errorf("ValidID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if ValidID(id) {
			t.Errorf("ValidID(%q) = true, want false", id)
		}
	}
}

func TestFrame_Bytes(t *testing.T) {
	f := mustFrame(t, "TIT2", []byte("\x00Title"), FlagReadOnly, NoCompression)

	want := []byte{'T', 'I', 'T', '2', 0, 0, 0, 6, 0x20, 0x00, 0, 'T', 'i', 't', 'l', 'e'}
	if got := encode(t, f); !bytes.Equal(got, want) {
		t.Errorf("Bytes() = %x, want %x", got, want)
	}
}

func TestFrame_RoundTrip(t *testing.T) {
	long := bytes.Repeat([]byte("compressible "), 200)

	tests := []struct {
		name        string
		id          string
		content     []byte
		flags       FrameFlags
		compression Compression
	}{
		{name: "plain text", id: "TIT2", content: []byte("\x00Hello")},
		{name: "empty content", id: "TPE1", content: []byte{}},
		{name: "all status flags", id: "TALB", content: []byte("x"),
			flags: FlagTagAlterPreserve | FlagFileAlterPreserve | FlagReadOnly},
		{name: "compressed", id: "COMM", content: long, compression: Compress},
		{name: "compressed empty", id: "PRIV", content: []byte{}, compression: Compress},
		{name: "binary with sync bytes", id: "APIC", content: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFrame(t, tt.id, tt.content, tt.flags, tt.compression)
			b := encode(t, f)

			got, err := ReadFrame(reader(b))
			if err != nil {
				t.Fatalf("ReadFrame failed: %v", err)
			}
			if got.ID() != tt.id {
				t.Errorf("ID() = %q, want %q", got.ID(), tt.id)
			}
			if got.Flags() != f.Flags() {
				t.Errorf("Flags() = %04x, want %04x", got.Flags(), f.Flags())
			}
			content, err := got.Content()
			if err != nil {
				t.Fatalf("Content failed: %v", err)
			}
			if !bytes.Equal(content, tt.content) {
				t.Errorf("Content() = %q, want %q", content, tt.content)
			}
		})
	}
}

func TestFrame_CompressedIsSmaller(t *testing.T) {
	content := bytes.Repeat([]byte{'a'}, 4096)
	plain := encode(t, mustFrame(t, "TXXX", content, 0, NoCompression))
	packed := encode(t, mustFrame(t, "TXXX", content, 0, Compress))

	if len(packed) >= len(plain) {
		t.Errorf("compressed frame is %d bytes, plain %d", len(packed), len(plain))
	}
	if !FrameFlags(uint16(packed[8])<<8 | uint16(packed[9])).Has(FlagCompressed) {
		t.Error("compression flag not set in encoded header")
	}
	if binutil.Uint32(packed[10:14]) != 4096 {
		t.Errorf("declared size = %d, want 4096", binutil.Uint32(packed[10:14]))
	}
}

func TestFrame_Grouped(t *testing.T) {
	f := mustFrame(t, "TIT2", []byte("\x00grouped"), 0, Compress)
	f.SetGroup(0x42)

	got, err := ReadFrame(reader(encode(t, f)))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Flags().Has(FlagGrouped) || got.Group() != 0x42 {
		t.Errorf("group: flags=%04x group=%02x", got.Flags(), got.Group())
	}
	content, err := got.Content()
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "\x00grouped" {
		t.Errorf("Content() = %q", content)
	}
}

func TestFrame_Encrypted(t *testing.T) {
	payload := []byte{0x80, 0x01, 0x02, 0x03}
	f := mustFrame(t, "TIT2", payload, FlagEncrypted|FlagCompressed, NoCompression)

	b := encode(t, f)
	if !bytes.Equal(b[10:], payload) {
		t.Errorf("encrypted payload altered: %x", b[10:])
	}

	got, err := ReadFrame(reader(b))
	if err != nil {
		t.Fatal(err)
	}
	content, err := got.Content()
	if err != nil {
		t.Fatalf("encrypted frame should not be decompressed: %v", err)
	}
	if !bytes.Equal(content, payload) {
		t.Errorf("Content() = %x, want %x", content, payload)
	}
	if !bytes.Equal(encode(t, got), b) {
		t.Error("re-encoding an encrypted frame changed its bytes")
	}
}

// compressedFrame builds a compressed frame by hand with an arbitrary
// declared size.
func compressedFrame(id string, content []byte, declared uint32) []byte {
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	zw.Write(content)
	zw.Close()

	payload := make([]byte, 4, 4+z.Len())
	binutil.PutUint32(payload, declared)
	payload = append(payload, z.Bytes()...)

	hdr := make([]byte, FrameHeaderSize)
	copy(hdr, id)
	binutil.PutUint32(hdr[4:8], uint32(len(payload)))
	hdr[9] = byte(FlagCompressed)
	return append(hdr, payload...)
}

func TestReadFrame_DecompressionFailure(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "declared too large", data: compressedFrame("TIT2", []byte("hello"), 10)},
		{name: "declared too small", data: compressedFrame("TIT2", []byte("hello"), 2)},
		{name: "not zlib", data: []byte{'T', 'I', 'T', '2', 0, 0, 0, 7, 0, 0x80, 0, 0, 0, 3, 1, 2, 3}},
		{name: "no size prefix", data: []byte{'T', 'I', 'T', '2', 0, 0, 0, 2, 0, 0x80, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reader(append(tt.data, encode(t, mustFrame(t, "TPE1", []byte("\x00next"), 0, NoCompression))...))

			f, err := ReadFrame(r)
			if err != nil {
				t.Fatalf("damaged frame must not fail the stream: %v", err)
			}
			_, err = f.Content()
			var decomp *types.DecompressionError
			if !errors.As(err, &decomp) {
				t.Fatalf("expected *DecompressionError, got %v", err)
			}
			if decomp.FrameID != "TIT2" {
				t.Errorf("FrameID = %q", decomp.FrameID)
			}

			// The damaged frame re-encodes byte for byte.
			if !bytes.Equal(encode(t, f), tt.data) {
				t.Error("damaged frame not preserved on encode")
			}

			next, err := ReadFrame(r)
			if err != nil {
				t.Fatalf("next frame: %v", err)
			}
			if next.ID() != "TPE1" {
				t.Errorf("next frame ID = %q, want TPE1", next.ID())
			}
		})
	}
}

func TestReadFrame_EndOfFrames(t *testing.T) {
	frame := encode(t, mustFrame(t, "TIT2", []byte("\x00a"), 0, NoCompression))

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "zero padding", data: make([]byte, 64)},
		{name: "short padding", data: make([]byte, 3)},
		{name: "lower-case id", data: []byte("tit2\x00\x00\x00\x01\x00\x00a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reader(append(append([]byte{}, frame...), tt.data...))
			if _, err := ReadFrame(r); err != nil {
				t.Fatalf("first frame: %v", err)
			}
			if _, err := ReadFrame(r); !errors.Is(err, ErrEndOfFrames) {
				t.Errorf("expected ErrEndOfFrames, got %v", err)
			}
		})
	}
}

func TestReadFrame_Truncated(t *testing.T) {
	full := encode(t, mustFrame(t, "TIT2", []byte("\x00some title"), 0, NoCompression))

	for _, n := range []int{6, FrameHeaderSize + 2} {
		r := binutil.NewSizedReader(bytes.NewReader(full[:n]), int64(n), "test.mp3")
		_, err := ReadFrame(r)
		var corrupted *types.CorruptedTagError
		if !errors.As(err, &corrupted) {
			t.Errorf("%d bytes: expected *CorruptedTagError, got %v", n, err)
		}
	}
}

func TestNewFrame_InvalidID(t *testing.T) {
	_, err := NewFrame("bad", nil, 0, NoCompression)
	var illegal *types.IllegalValueError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected *IllegalValueError, got %v", err)
	}
}

func TestNewFrame_CopiesContent(t *testing.T) {
	content := []byte("\x00original")
	f := mustFrame(t, "TIT2", content, 0, NoCompression)
	content[1] = 'X'

	got, _ := f.Content()
	if string(got) != "\x00original" {
		t.Errorf("frame aliases caller buffer: %q", got)
	}
}

func FuzzReadFrame(f *testing.F) {
	seed, _ := mustFrameNoT("TIT2", []byte("\x00seed"), Compress).Bytes()
	f.Add(seed)
	f.Add([]byte("TIT2\x00\x00\x00\x00\x00\x00"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		r := binutil.NewSizedReader(bytes.NewReader(data), int64(len(data)), "fuzz")
		for {
			fr, err := ReadFrame(r)
			if err != nil {
				return
			}
			if _, err := fr.Bytes(); err != nil {
				t.Fatalf("decoded frame failed to encode: %v", err)
			}
		}
	})
}

func mustFrameNoT(id string, content []byte, c Compression) *Frame {
	f, err := NewFrame(id, content, 0, c)
	if err != nil {
		panic(err)
	}
	return f
}
