package id3v2

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	binutil "github.com/simonhull/id3tag/internal/binary"
	"github.com/simonhull/id3tag/internal/types"
)

// FrameHeaderSize is the size of a frame header: id, size, flags.
const FrameHeaderSize = 10

// ErrEndOfFrames is returned by ReadFrame when the stream holds no further
// frame, either because it is exhausted or because padding was reached.
var ErrEndOfFrames = errors.New("id3v2: end of frames")

// FrameFlags holds the two flag bytes of a frame header.
type FrameFlags uint16

// Frame flag bits. The first byte holds status flags, the second format flags.
const (
	FlagTagAlterPreserve  FrameFlags = 0x8000
	FlagFileAlterPreserve FrameFlags = 0x4000
	FlagReadOnly          FrameFlags = 0x2000
	FlagCompressed        FrameFlags = 0x0080
	FlagEncrypted         FrameFlags = 0x0040
	FlagGrouped           FrameFlags = 0x0020
)

// Has reports whether all bits of x are set.
func (f FrameFlags) Has(x FrameFlags) bool {
	return f&x == x
}

// Compression selects how NewFrame stores content.
type Compression int

const (
	// NoCompression stores content as is.
	NoCompression Compression = iota
	// Compress stores content zlib-deflated behind its decompressed size.
	Compress
)

// Frame is one tag entry.
//
// Encrypted frames are opaque: their payload is kept exactly as read and
// Content returns it undecoded. A compressed frame that fails to inflate is
// kept the same way, and Content reports the DecompressionError.
type Frame struct {
	id      string
	flags   FrameFlags
	group   byte
	content []byte // decompressed content
	raw     []byte // payload as stored, for opaque or damaged frames
	err     error
}

// ValidID reports whether id is a four-character frame identifier made of
// upper-case letters and digits.
func ValidID(id string) bool {
	if len(id) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// NewFrame creates a frame. The compression flag is derived from c; the
// other flag bits are taken from flags. With FlagEncrypted set, content is
// treated as an already-encrypted payload and stored untouched.
func NewFrame(id string, content []byte, flags FrameFlags, c Compression) (*Frame, error) {
	if !ValidID(id) {
		return nil, &types.IllegalValueError{Field: "frame id", Value: id, Reason: "must be 4 characters A-Z or 0-9"}
	}

	f := &Frame{id: id, flags: flags}
	if flags.Has(FlagEncrypted) {
		f.raw = bytes.Clone(content)
		return f, nil
	}

	f.flags &^= FlagCompressed
	if c == Compress {
		f.flags |= FlagCompressed
	}
	f.content = bytes.Clone(content)
	return f, nil
}

// ID returns the frame identifier.
func (f *Frame) ID() string {
	return f.id
}

// Flags returns the frame flags.
func (f *Frame) Flags() FrameFlags {
	return f.flags
}

// Group returns the group identifier byte, meaningful when FlagGrouped is set.
func (f *Frame) Group() byte {
	return f.group
}

// SetGroup sets the group identifier and the grouping flag.
func (f *Frame) SetGroup(g byte) {
	f.group = g
	f.flags |= FlagGrouped
}

// Content returns the frame content, decompressed if the frame is
// compressed. A damaged frame returns its DecompressionError.
func (f *Frame) Content() ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.opaque() {
		return f.raw, nil
	}
	return f.content, nil
}

// Err returns the decode error of a damaged frame, nil otherwise.
func (f *Frame) Err() error {
	return f.err
}

func (f *Frame) opaque() bool {
	return f.flags.Has(FlagEncrypted) || f.err != nil
}

// ReadFrame decodes the next frame from r.
//
// It returns ErrEndOfFrames when r is exhausted or the next identifier is
// not a valid frame identifier, which is how padding is recognized. A
// frame whose content fails to decompress is returned with a nil error;
// its damage is reported by Content and Err.
func ReadFrame(r *binutil.Reader) (*Frame, error) {
	start := r.Offset()

	hdr := make([]byte, FrameHeaderSize)
	if err := r.Read(hdr, "frame header"); err != nil {
		var trunc *types.TruncatedError
		if !errors.As(err, &trunc) {
			return nil, err
		}
		if trunc.Got < 4 || !ValidID(string(hdr[:4])) {
			return nil, ErrEndOfFrames
		}
		return nil, &types.CorruptedTagError{
			Path:   r.Path(),
			Reason: fmt.Sprintf("frame %s: header truncated", hdr[:4]),
			Offset: start,
		}
	}

	id := string(hdr[0:4])
	if !ValidID(id) {
		return nil, ErrEndOfFrames
	}

	size := binutil.Uint32(hdr[4:8])
	flags := FrameFlags(uint16(hdr[8])<<8 | uint16(hdr[9]))

	payload, err := r.ReadBytes(int(size), "frame "+id+" content")
	if err != nil {
		var trunc *types.TruncatedError
		if errors.As(err, &trunc) {
			return nil, &types.CorruptedTagError{
				Path:   r.Path(),
				Reason: fmt.Sprintf("frame %s: declared %d content bytes, %d available", id, size, trunc.Got),
				Offset: start,
			}
		}
		return nil, err
	}

	f := &Frame{id: id, flags: flags}
	f.decode(payload)
	return f, nil
}

// decode splits the stored payload into the optional decompressed size,
// group byte and content, inflating when needed.
func (f *Frame) decode(payload []byte) {
	if f.flags.Has(FlagEncrypted) {
		f.raw = payload
		return
	}

	rest := payload
	var declared uint32
	if f.flags.Has(FlagCompressed) {
		if len(rest) < 4 {
			f.damage(payload, &types.DecompressionError{FrameID: f.id, Err: errors.New("missing decompressed size")})
			return
		}
		declared = binutil.Uint32(rest[:4])
		rest = rest[4:]
	}
	if f.flags.Has(FlagGrouped) {
		if len(rest) < 1 {
			f.damage(payload, &types.CorruptedTagError{Reason: fmt.Sprintf("frame %s: missing group byte", f.id)})
			return
		}
		f.group = rest[0]
		rest = rest[1:]
	}

	if !f.flags.Has(FlagCompressed) {
		f.content = rest
		return
	}

	content, err := inflate(rest, declared)
	if err != nil {
		f.damage(payload, &types.DecompressionError{FrameID: f.id, Declared: declared, Actual: len(content), Err: err})
		return
	}
	if uint32(len(content)) != declared {
		f.damage(payload, &types.DecompressionError{FrameID: f.id, Declared: declared, Actual: len(content)})
		return
	}
	f.content = content
}

func (f *Frame) damage(payload []byte, err error) {
	f.raw = payload
	f.err = err
}

// inflate decompresses at most declared+1 bytes, enough to detect a size
// mismatch without trusting the declared size for allocation.
func inflate(b []byte, declared uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(io.LimitReader(zr, int64(declared)+1))
}

func deflate(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Bytes encodes the frame header followed by its stored payload.
func (f *Frame) Bytes() ([]byte, error) {
	payload, err := f.payload()
	if err != nil {
		return nil, err
	}

	size, err := binutil.Encode(uint64(len(payload)), 4)
	if err != nil {
		return nil, &types.IllegalValueError{Field: "frame " + f.id + " size", Value: len(payload), Reason: "exceeds 4 bytes"}
	}

	var buf bytes.Buffer
	sw := binutil.NewSafeWriter(&buf)
	if err := sw.WriteString(f.id); err != nil {
		return nil, err
	}
	if err := sw.WriteBytes(size); err != nil {
		return nil, err
	}
	if err := binutil.Write(sw, uint16(f.flags)); err != nil {
		return nil, err
	}
	if err := sw.WriteBytes(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *Frame) payload() ([]byte, error) {
	if f.opaque() {
		return f.raw, nil
	}

	var out []byte
	if f.flags.Has(FlagCompressed) {
		declared, err := binutil.Encode(uint64(len(f.content)), 4)
		if err != nil {
			return nil, &types.IllegalValueError{Field: "frame " + f.id + " decompressed size", Value: len(f.content), Reason: "exceeds 4 bytes"}
		}
		out = append(out, declared...)
	}
	if f.flags.Has(FlagGrouped) {
		out = append(out, f.group)
	}

	if !f.flags.Has(FlagCompressed) {
		return append(out, f.content...), nil
	}

	packed, err := deflate(f.content)
	if err != nil {
		return nil, fmt.Errorf("compress frame %s: %w", f.id, err)
	}
	return append(out, packed...), nil
}

// String returns a short description for debugging output.
func (f *Frame) String() string {
	switch {
	case f.err != nil:
		return fmt.Sprintf("%s (damaged: %v)", f.id, f.err)
	case f.opaque():
		return fmt.Sprintf("%s (%d bytes, encrypted)", f.id, len(f.raw))
	case f.flags.Has(FlagCompressed):
		return fmt.Sprintf("%s (%d bytes, compressed)", f.id, len(f.content))
	default:
		return fmt.Sprintf("%s (%d bytes)", f.id, len(f.content))
	}
}
