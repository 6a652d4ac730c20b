package id3v2

import (
	"fmt"

	binutil "github.com/simonhull/id3tag/internal/binary"
)

const (
	extFlagCRC = 1 << 7 // bit 7 of the first flag byte

	// extSizeField is always written as 10, whether or not a CRC follows.
	extSizeField = 10
	extBaseLen   = 10
	extCRCLen    = 4
)

// ExtendedHeader is the optional block carrying CRC and padding size.
type ExtendedHeader struct {
	hasCRC      bool
	crc         uint32
	PaddingSize uint32
}

// NewExtendedHeader creates an extended header. crc is ignored unless
// useCRC is set.
func NewExtendedHeader(useCRC bool, crc, paddingSize uint32) ExtendedHeader {
	e := ExtendedHeader{hasCRC: useCRC, PaddingSize: paddingSize}
	if useCRC {
		e.crc = crc
	}
	return e
}

// HasCRC reports whether a CRC is present.
func (e ExtendedHeader) HasCRC() bool {
	return e.hasCRC
}

// CRC returns the stored CRC, 0 if none.
func (e ExtendedHeader) CRC() uint32 {
	return e.crc
}

// SetCRC stores crc and marks it present.
func (e *ExtendedHeader) SetCRC(crc uint32) {
	e.crc = crc
	e.hasCRC = true
}

// SetHasCRC toggles CRC presence. Turning it off resets the value to 0.
func (e *ExtendedHeader) SetHasCRC(on bool) {
	if !on {
		e.crc = 0
	}
	e.hasCRC = on
}

// Size returns the extended header size as the format counts it: 6 bytes,
// or 10 with a CRC, excluding the 4-byte size field.
func (e ExtendedHeader) Size() int {
	if e.hasCRC {
		return 10
	}
	return 6
}

// Len returns the encoded length including the size field.
func (e ExtendedHeader) Len() int {
	return e.Size() + 4
}

// ReadExtendedHeader decodes an extended header. The declared size field is
// read but not trusted; the CRC flag decides whether four more bytes follow.
func ReadExtendedHeader(r *binutil.Reader) (ExtendedHeader, error) {
	buf, err := r.ReadBytes(extBaseLen, "extended header")
	if err != nil {
		return ExtendedHeader{}, err
	}

	e := ExtendedHeader{
		hasCRC:      buf[4]&extFlagCRC != 0,
		PaddingSize: binutil.Uint32(buf[6:10]),
	}

	if e.hasCRC {
		crc, err := binutil.ReadValue[uint32](r, "extended header CRC")
		if err != nil {
			return ExtendedHeader{}, err
		}
		e.crc = crc
	}

	return e, nil
}

// Bytes encodes the extended header. The result is not unsynchronized.
func (e ExtendedHeader) Bytes() []byte {
	buf := make([]byte, extBaseLen, extBaseLen+extCRCLen)
	binutil.PutUint32(buf[0:4], extSizeField)
	if e.hasCRC {
		buf[4] = extFlagCRC
	}
	binutil.PutUint32(buf[6:10], e.PaddingSize)

	if e.hasCRC {
		buf = buf[:extBaseLen+extCRCLen]
		binutil.PutUint32(buf[10:14], e.crc)
	}
	return buf
}

// String returns a short description for debugging output.
func (e ExtendedHeader) String() string {
	if e.hasCRC {
		return fmt.Sprintf("extended header (crc %08x, padding %d)", e.crc, e.PaddingSize)
	}
	return fmt.Sprintf("extended header (padding %d)", e.PaddingSize)
}
