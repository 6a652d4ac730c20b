// Package id3v2 implements the ID3v2.3 header, extended header and frame
// codecs, and reads ID3v2.2 frames into their ID3v2.3 form.
//
// Layout on disk:
//
//	"ID3" version:u8 revision:u8 flags:u8 size:synchsafe32
//	[extended header: size:u32 flags:u16 padding:u32 [crc:u32]]
//	frames: id:4 size:u32 flags:u16 content
//	[padding]
package id3v2

import (
	"errors"
	"fmt"

	binutil "github.com/simonhull/id3tag/internal/binary"
	"github.com/simonhull/id3tag/internal/types"
)

const (
	// Version is the supported major version (ID3v2.3).
	Version byte = 3
	// VersionLegacy is the major version with three-character frame
	// identifiers (ID3v2.2).
	VersionLegacy byte = 2
	// Revision is the supported revision.
	Revision byte = 0
	// HeaderSize is the size of the fixed tag header.
	HeaderSize = 10
)

// Header flag bits.
const (
	headerFlagUnsynchronized = 1 << 7
	headerFlagExtended       = 1 << 6
	headerFlagExperimental   = 1 << 5
)

var magic = [3]byte{'I', 'D', '3'}

// Header is the fixed 10-byte tag preamble.
type Header struct {
	Version        byte
	Revision       byte
	Unsynchronized bool
	Extended       bool
	Experimental   bool
	Compressed     bool   // ID3v2.2 only: whole-tag compression, no scheme defined
	Size           uint32 // everything after the header: extended header, frames, padding
}

// NewHeader returns a header for the supported version.
func NewHeader(unsynchronized, extended bool, size uint32) Header {
	return Header{
		Version:        Version,
		Revision:       Revision,
		Unsynchronized: unsynchronized,
		Extended:       extended,
		Size:           size,
	}
}

// ReadHeader decodes the tag header from r.
//
// A stream that is too short or does not start with "ID3" yields a
// NoTagError. Versions newer than 2.3 yield an UnsupportedVersionError.
// In a version 2 header the extended header bit means compression.
func ReadHeader(r *binutil.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if err := r.Read(buf, "ID3v2 header"); err != nil {
		var trunc *types.TruncatedError
		if errors.As(err, &trunc) {
			return Header{}, &types.NoTagError{Path: r.Path()}
		}
		return Header{}, err
	}

	if [3]byte(buf[0:3]) != magic {
		return Header{}, &types.NoTagError{Path: r.Path()}
	}

	h := Header{
		Version:        buf[3],
		Revision:       buf[4],
		Unsynchronized: buf[5]&headerFlagUnsynchronized != 0,
		Experimental:   buf[5]&headerFlagExperimental != 0,
	}
	if h.Version == VersionLegacy {
		h.Compressed = buf[5]&headerFlagExtended != 0
	} else {
		h.Extended = buf[5]&headerFlagExtended != 0
	}

	if h.Version > Version {
		return Header{}, &types.UnsupportedVersionError{
			Path:     r.Path(),
			Version:  h.Version,
			Revision: h.Revision,
		}
	}

	size, err := binutil.DecodeSynchsafe(buf[6:10])
	if err != nil {
		return Header{}, &types.CorruptedTagError{
			Path:   r.Path(),
			Reason: fmt.Sprintf("invalid tag size: %v", err),
			Offset: 6,
		}
	}
	h.Size = size

	return h, nil
}

// Bytes encodes the header. The supported version and revision are always
// written, whatever was decoded.
func (h Header) Bytes() ([]byte, error) {
	size, err := binutil.EncodeSynchsafe(h.Size)
	if err != nil {
		return nil, err
	}

	var flags byte
	if h.Unsynchronized {
		flags |= headerFlagUnsynchronized
	}
	if h.Extended {
		flags |= headerFlagExtended
	}
	if h.Experimental {
		flags |= headerFlagExperimental
	}

	buf := make([]byte, 0, HeaderSize)
	buf = append(buf, magic[:]...)
	buf = append(buf, Version, Revision, flags)
	buf = append(buf, size...)
	return buf, nil
}

// Footprint returns the number of bytes the tag occupies on disk.
func (h Header) Footprint() int64 {
	return HeaderSize + int64(h.Size)
}
