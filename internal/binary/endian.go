package binary

import (
	"fmt"

	"github.com/simonhull/id3tag/internal/types"
)

// MaxWidth is the widest integer field the codec handles.
const MaxWidth = 8

// Encode encodes v into exactly n bytes, most significant byte first.
//
// Returns IllegalValueError if v does not fit in n bytes.
//
// Example:
//
//	b, err := binary.Encode(uint64(frameSize), 4)
func Encode(v uint64, n int) ([]byte, error) {
	if n <= 0 || n > MaxWidth {
		return nil, &types.IllegalValueError{
			Field:  "integer width",
			Value:  n,
			Reason: fmt.Sprintf("must be between 1 and %d", MaxWidth),
		}
	}
	if n < MaxWidth && v>>(uint(n)*8) != 0 {
		return nil, &types.IllegalValueError{
			Field:  fmt.Sprintf("%d-byte integer", n),
			Value:  v,
			Reason: "value out of range",
		}
	}

	b := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b, nil
}

// Decode decodes a big-endian unsigned integer from all of b.
//
// Returns ParseError if b is empty or wider than MaxWidth.
func Decode(b []byte) (uint64, error) {
	if len(b) == 0 || len(b) > MaxWidth {
		return 0, &types.ParseError{
			What:   "big-endian integer",
			Reason: fmt.Sprintf("width %d not in 1..%d", len(b), MaxWidth),
		}
	}

	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// PutUint32 writes v into the first four bytes of b.
func PutUint32(b []byte, v uint32) {
	_ = b[3]
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

// Uint32 decodes the first four bytes of b.
func Uint32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
