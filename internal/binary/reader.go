// Package binary provides the big-endian and synchsafe integer codecs and
// sequential reading and writing primitives with offset tracking.
package binary

import (
	"errors"
	"fmt"
	"io"

	"github.com/simonhull/id3tag/internal/types"
)

// Reader wraps an io.Reader with offset tracking and helpful error messages.
type Reader struct {
	r      io.Reader
	path   string
	offset int64
	size   int64 // -1 when unknown
}

// NewReader creates a new Reader over a stream of unknown length.
// path is only used in error messages.
func NewReader(r io.Reader, path string) *Reader {
	return &Reader{r: r, path: path, size: -1}
}

// NewSizedReader creates a Reader over exactly size bytes of r. Reads that
// would run past size fail up front without allocating.
func NewSizedReader(r io.Reader, size int64, path string) *Reader {
	return &Reader{r: io.LimitReader(r, size), path: path, size: size}
}

// Remaining returns the unread byte count, or -1 if the size is unknown.
func (r *Reader) Remaining() int64 {
	if r.size < 0 {
		return -1
	}
	return r.size - r.offset
}

// Path returns the file path associated with this reader.
func (r *Reader) Path() string {
	return r.path
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Read fills b completely. A stream that ends early yields a TruncatedError
// carrying the number of bytes actually read; the offset still advances by
// that count.
func (r *Reader) Read(b []byte, what string) error {
	n, err := io.ReadFull(r.r, b)
	start := r.offset
	r.offset += int64(n)

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &types.TruncatedError{What: what, Offset: start, Want: len(b), Got: n}
	}
	if err != nil {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", r.path, what, start, err)
	}
	return nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, &types.IllegalValueError{Field: what + " length", Value: n, Reason: "negative"}
	}
	if rem := r.Remaining(); rem >= 0 && int64(n) > rem {
		return nil, &types.TruncatedError{What: what, Offset: r.offset, Want: n, Got: int(rem)}
	}
	b := make([]byte, n)
	if err := r.Read(b, what); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadValue reads a big-endian value of type T and advances the offset.
func ReadValue[T uint8 | uint16 | uint32 | uint64](r *Reader, what string) (T, error) {
	var zero T
	var size int

	switch any(zero).(type) {
	case uint8:
		size = 1
	case uint16:
		size = 2
	case uint32:
		size = 4
	case uint64:
		size = 8
	}

	buf := make([]byte, size)
	if err := r.Read(buf, what); err != nil {
		return zero, err
	}

	v, err := Decode(buf)
	if err != nil {
		return zero, err
	}
	return T(v), nil
}
