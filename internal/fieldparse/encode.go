package fieldparse

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/id3tag/internal/types"
)

// EncodeText converts s to bytes in the given encoding. When terminate is
// true the null terminator for the encoding is appended.
func EncodeText(s string, enc Encoding, terminate bool) ([]byte, error) {
	codec, err := enc.codec()
	if err != nil {
		return nil, &types.IllegalValueError{Field: "text encoding", Value: byte(enc), Reason: err.Error()}
	}

	var out []byte
	if s != "" || enc == UTF16 {
		out, err = codec.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, &types.IllegalValueError{Field: "text", Value: s, Reason: "not representable in " + enc.String()}
		}
	}

	if terminate {
		out = append(out, make([]byte, enc.Width())...)
	}
	return out, nil
}

// ChooseEncoding returns Latin1 when every character of s is representable
// in ISO-8859-1 and UTF16 otherwise.
func ChooseEncoding(s string) Encoding {
	for _, r := range s {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); !ok {
			return UTF16
		}
	}
	return Latin1
}
