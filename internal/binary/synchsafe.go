package binary

import "github.com/simonhull/id3tag/internal/types"

// MaxSynchsafe is the largest value a 4-byte synchsafe integer can hold.
const MaxSynchsafe = 1<<28 - 1

// EncodeSynchsafe encodes v as a 4-byte synchsafe integer (7 bits per byte,
// bit 7 always clear), as used by the ID3v2 tag size.
func EncodeSynchsafe(v uint32) ([]byte, error) {
	if v > MaxSynchsafe {
		return nil, &types.IllegalValueError{
			Field:  "synchsafe integer",
			Value:  v,
			Reason: "exceeds 28 bits",
		}
	}
	return []byte{
		byte(v>>21) & 0x7F,
		byte(v>>14) & 0x7F,
		byte(v>>7) & 0x7F,
		byte(v) & 0x7F,
	}, nil
}

// DecodeSynchsafe decodes a 4-byte synchsafe integer.
//
// A byte with bit 7 set is a format error.
func DecodeSynchsafe(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, &types.ParseError{What: "synchsafe integer", Reason: "need exactly 4 bytes"}
	}
	for i, c := range b {
		if c&0x80 != 0 {
			return 0, &types.ParseError{What: "synchsafe integer", Offset: i, Reason: "bit 7 set"}
		}
	}
	return uint32(b[0])<<21 | uint32(b[1])<<14 | uint32(b[2])<<7 | uint32(b[3]), nil
}
