// Package fieldparse extracts text and binary fields from frame content.
//
// A Parser keeps a cursor into a byte buffer so several fields can be read
// back to back. Text fields run up to a null terminator (one zero byte for
// Latin-1, two aligned zero bytes for UTF-16); a field that reaches the end
// of the buffer is implicitly terminated there.
package fieldparse

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/simonhull/id3tag/internal/types"
)

// Encoding is the ID3v2.3 text encoding byte.
type Encoding byte

const (
	// Latin1 is ISO-8859-1, one byte per character.
	Latin1 Encoding = 0
	// UTF16 is UTF-16 with a byte order mark, two bytes per code unit.
	UTF16 Encoding = 1
)

// String returns the name of the encoding.
func (e Encoding) String() string {
	switch e {
	case Latin1:
		return "ISO-8859-1"
	case UTF16:
		return "UTF-16"
	default:
		return fmt.Sprintf("Encoding(%d)", byte(e))
	}
}

// Width returns the terminator width in bytes.
func (e Encoding) Width() int {
	if e == UTF16 {
		return 2
	}
	return 1
}

func (e Encoding) codec() (encoding.Encoding, error) {
	switch e {
	case Latin1:
		return charmap.ISO8859_1, nil
	case UTF16:
		// BOM decides byte order; big-endian when absent.
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	default:
		return nil, fmt.Errorf("unknown text encoding %d", byte(e))
	}
}

// Parser is a cursor over buf[start:stop+1].
type Parser struct {
	buf      []byte
	pos      int
	stop     int // inclusive
	encoding Encoding
}

// New creates a parser over the whole buffer. When readEncoding is true the
// first byte is consumed as the encoding byte; otherwise Latin1 is assumed.
func New(buf []byte, readEncoding bool) (*Parser, error) {
	return NewRange(buf, readEncoding, 0, len(buf)-1)
}

// NewRange creates a parser over buf[start..stop], stop inclusive.
func NewRange(buf []byte, readEncoding bool, start, stop int) (*Parser, error) {
	if start < 0 || stop >= len(buf) || start > stop+1 {
		return nil, &types.ParseError{
			What:   "field range",
			Offset: start,
			Reason: fmt.Sprintf("range [%d, %d] outside buffer of %d bytes", start, stop, len(buf)),
		}
	}

	p := &Parser{buf: buf, pos: start, stop: stop, encoding: Latin1}
	if readEncoding {
		if err := p.ParseEncoding(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ParseEncoding consumes one byte as the encoding used by ParseText.
func (p *Parser) ParseEncoding() error {
	if p.pos > p.stop {
		return &types.ParseError{What: "encoding byte", Offset: p.pos, Reason: "no bytes left"}
	}
	p.encoding = Encoding(p.buf[p.pos])
	p.pos++
	return nil
}

// Encoding returns the encoding in effect.
func (p *Parser) Encoding() Encoding {
	return p.encoding
}

// SetEncoding fixes the encoding externally.
func (p *Parser) SetEncoding(e Encoding) {
	p.encoding = e
}

// Position returns the offset of the next byte to parse.
func (p *Parser) Position() int {
	return p.pos
}

// SetPosition moves the cursor.
func (p *Parser) SetPosition(pos int) {
	p.pos = pos
}

// Remaining returns the number of unparsed bytes.
func (p *Parser) Remaining() int {
	return max(p.stop+1-p.pos, 0)
}

// ParseText reads a text field in the parser's encoding.
func (p *Parser) ParseText() (string, error) {
	return p.ParseTextAs(p.encoding)
}

// ParseTextAs reads a text field in the given encoding and moves the cursor
// past its terminator. A missing terminator ends the field at the stop
// offset; the cursor still advances by the terminator width.
func (p *Parser) ParseTextAs(enc Encoding) (string, error) {
	codec, err := enc.codec()
	if err != nil {
		return "", &types.ParseError{What: "text", Offset: p.pos, Reason: err.Error()}
	}
	if p.pos > p.stop {
		return "", &types.ParseError{What: "text", Offset: p.pos, Reason: "no bytes left"}
	}

	width := enc.Width()
	end := p.stop + 1
	for i := p.pos; i+width-1 <= p.stop; i += width {
		if p.buf[i] == 0 && (width == 1 || p.buf[i+1] == 0) {
			end = i
			break
		}
	}

	span := p.buf[p.pos:end]
	if len(span)%width != 0 {
		return "", &types.ParseError{
			What:   "text",
			Offset: p.pos,
			Reason: fmt.Sprintf("%d bytes is not a whole number of %s code units", len(span), enc),
		}
	}

	text, err := codec.NewDecoder().Bytes(span)
	if err != nil {
		return "", &types.ParseError{What: "text", Offset: p.pos, Reason: err.Error()}
	}

	p.pos = end + width
	return string(text), nil
}

// ParseBinary copies all remaining bytes through the stop offset.
func (p *Parser) ParseBinary() ([]byte, error) {
	return p.ParseBinaryN(p.Remaining())
}

// ParseBinaryN copies exactly n bytes and advances the cursor by n.
func (p *Parser) ParseBinaryN(n int) ([]byte, error) {
	if n < 0 || n > p.Remaining() {
		return nil, &types.ParseError{
			What:   "binary",
			Offset: p.pos,
			Reason: fmt.Sprintf("requested %d bytes, %d left", n, p.Remaining()),
		}
	}

	out := make([]byte, n)
	copy(out, p.buf[p.pos:p.pos+n])
	p.pos += n
	return out, nil
}
