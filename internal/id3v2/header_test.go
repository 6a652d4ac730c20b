package id3v2

import (
	"bytes"
	"errors"
	"testing"

	binutil "github.com/simonhull/id3tag/internal/binary"
	"github.com/simonhull/id3tag/internal/types"
)

func reader(b []byte) *binutil.Reader {
	return binutil.NewReader(bytes.NewReader(b), "test.mp3")
}

func TestHeader_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		h    Header
	}{
		{name: "plain", h: NewHeader(false, false, 0)},
		{name: "unsynchronized", h: NewHeader(true, false, 1234)},
		{name: "extended", h: NewHeader(false, true, 2038)},
		{name: "max size", h: NewHeader(true, true, binutil.MaxSynchsafe)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.h.Bytes()
			if err != nil {
				t.Fatalf("Bytes failed: %v", err)
			}
			if len(b) != HeaderSize {
				t.Fatalf("encoded %d bytes, want %d", len(b), HeaderSize)
			}

			got, err := ReadHeader(reader(b))
			if err != nil {
				t.Fatalf("ReadHeader failed: %v", err)
			}
			if got != tt.h {
				t.Errorf("round trip = %+v, want %+v", got, tt.h)
			}
		})
	}
}

func TestHeader_Bytes(t *testing.T) {
	h := NewHeader(true, true, 257)
	h.Experimental = true

	b, err := h.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{'I', 'D', '3', 3, 0, 0xE0, 0, 0, 0x02, 0x01}
	if !bytes.Equal(b, want) {
		t.Errorf("Bytes() = %x, want %x", b, want)
	}
	if h.Footprint() != 267 {
		t.Errorf("Footprint() = %d, want 267", h.Footprint())
	}
}

func TestHeader_TooLarge(t *testing.T) {
	h := NewHeader(false, false, binutil.MaxSynchsafe+1)
	_, err := h.Bytes()
	var illegal *types.IllegalValueError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected *IllegalValueError, got %v", err)
	}
}

func TestReadHeader_NoTag(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "too short", data: []byte("ID3\x03\x00")},
		{name: "audio frame", data: []byte{0xFF, 0xFB, 0x90, 0x64, 0, 0, 0, 0, 0, 0}},
		{name: "id3v1 marker", data: []byte("TAG0123456789")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHeader(reader(tt.data))
			var noTag *types.NoTagError
			if !errors.As(err, &noTag) {
				t.Fatalf("expected *NoTagError, got %T: %v", err, err)
			}
		})
	}
}

func TestReadHeader_UnsupportedVersion(t *testing.T) {
	for _, version := range []byte{4, 5, 0xFF} {
		data := []byte{'I', 'D', '3', version, 0, 0, 0, 0, 0, 0}
		_, err := ReadHeader(reader(data))

		var unsupported *types.UnsupportedVersionError
		if !errors.As(err, &unsupported) {
			t.Fatalf("version %d: expected *UnsupportedVersionError, got %v", version, err)
		}
		if unsupported.Version != version {
			t.Errorf("version %d: error reports %d", version, unsupported.Version)
		}
	}
}

func TestReadHeader_OlderVersions(t *testing.T) {
	tests := []struct {
		name           string
		data           []byte
		wantExtended   bool
		wantCompressed bool
	}{
		{name: "v2.2", data: []byte{'I', 'D', '3', 2, 0, 0, 0, 0, 0, 0}},
		{name: "v2.2 compressed", data: []byte{'I', 'D', '3', 2, 0, 0x40, 0, 0, 0, 0}, wantCompressed: true},
		{name: "v2.3 extended", data: []byte{'I', 'D', '3', 3, 0, 0x40, 0, 0, 0, 0}, wantExtended: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ReadHeader(reader(tt.data))
			if err != nil {
				t.Fatalf("ReadHeader failed: %v", err)
			}
			if h.Version != tt.data[3] {
				t.Errorf("Version = %d, want %d", h.Version, tt.data[3])
			}
			if h.Extended != tt.wantExtended {
				t.Errorf("Extended = %v, want %v", h.Extended, tt.wantExtended)
			}
			if h.Compressed != tt.wantCompressed {
				t.Errorf("Compressed = %v, want %v", h.Compressed, tt.wantCompressed)
			}
		})
	}
}

func TestReadHeader_BadSize(t *testing.T) {
	data := []byte{'I', 'D', '3', 3, 0, 0, 0, 0, 0x80, 0}
	_, err := ReadHeader(reader(data))
	var corrupted *types.CorruptedTagError
	if !errors.As(err, &corrupted) {
		t.Fatalf("expected *CorruptedTagError, got %v", err)
	}
}
