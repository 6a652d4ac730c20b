package binary

import (
	"io"
)

// SafeWriter wraps io.Writer with position tracking.
type SafeWriter struct {
	w      io.Writer
	offset int64
}

// NewSafeWriter creates a new SafeWriter.
func NewSafeWriter(w io.Writer) *SafeWriter {
	return &SafeWriter{w: w}
}

// Offset returns the current position (number of bytes written).
func (sw *SafeWriter) Offset() int64 {
	return sw.offset
}

// WriteBytes writes raw bytes to the underlying writer.
func (sw *SafeWriter) WriteBytes(b []byte) error {
	n, err := sw.w.Write(b)
	sw.offset += int64(n)
	return err
}

// WriteString writes a string as bytes to the underlying writer.
func (sw *SafeWriter) WriteString(s string) error {
	return sw.WriteBytes([]byte(s))
}

// WriteZeros writes n zero bytes, used for tag padding.
func (sw *SafeWriter) WriteZeros(n int64) error {
	var chunk [512]byte
	for n > 0 {
		k := min(n, int64(len(chunk)))
		if err := sw.WriteBytes(chunk[:k]); err != nil {
			return err
		}
		n -= k
	}
	return nil
}

// Write writes a value of type T in big-endian byte order.
// T must be uint8, uint16, uint32, or uint64.
func Write[T uint8 | uint16 | uint32 | uint64](sw *SafeWriter, val T) error {
	var n int

	var zero T
	switch any(zero).(type) {
	case uint8:
		n = 1
	case uint16:
		n = 2
	case uint32:
		n = 4
	case uint64:
		n = 8
	}

	buf, err := Encode(uint64(val), n)
	if err != nil {
		return err
	}
	return sw.WriteBytes(buf)
}
