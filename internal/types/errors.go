// Package types provides the error kinds and warning type shared by the
// ID3 tag engine packages.
package types

import "fmt"

// NoTagError is returned when a tag is requested but the input carries no
// ID3v2 header. Untagged files are an expected outcome; callers decide
// whether it matters.
type NoTagError struct {
	Path string
}

func (e *NoTagError) Error() string {
	if e.Path == "" {
		return "no ID3v2 tag present"
	}
	return fmt.Sprintf("%s: no ID3v2 tag present", e.Path)
}

// UnsupportedVersionError is returned when a header declares a version the
// engine cannot decode.
type UnsupportedVersionError struct {
	Path     string
	Version  byte
	Revision byte
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s: unsupported ID3v2 version 2.%d.%d", e.Path, e.Version, e.Revision)
}

// CorruptedTagError is returned when the tag structure is invalid.
type CorruptedTagError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedTagError) Error() string {
	return fmt.Sprintf("%s: corrupted tag at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// TruncatedError is returned when a stream ends before a fixed-size
// structure could be read completely.
type TruncatedError struct {
	What   string
	Offset int64
	Want   int
	Got    int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("short read for %s at offset %d: got %d bytes, expected %d",
		e.What, e.Offset, e.Got, e.Want)
}

// ParseError is returned when a frame field cannot be extracted.
type ParseError struct {
	What   string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s at offset %d: %s", e.What, e.Offset, e.Reason)
}

// DecompressionError reports a compressed frame whose payload could not be
// inflated to its declared size. Only that frame is damaged.
type DecompressionError struct {
	FrameID  string
	Declared uint32
	Actual   int
	Err      error
}

func (e *DecompressionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("frame %s: decompression failed: %v", e.FrameID, e.Err)
	}
	return fmt.Sprintf("frame %s: decompressed %d bytes, declared %d", e.FrameID, e.Actual, e.Declared)
}

func (e *DecompressionError) Unwrap() error {
	return e.Err
}

// CRCMismatchError reports that the CRC-32 stored in the extended header
// differs from the one computed over the frames.
type CRCMismatchError struct {
	Path     string
	Stored   uint32
	Computed uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("%s: CRC mismatch: stored %08x, computed %08x", e.Path, e.Stored, e.Computed)
}

// UnsupportedWriteError indicates the tag cannot be written back, for
// example because it was read from a stream.
type UnsupportedWriteError struct {
	Reason string
}

func (e *UnsupportedWriteError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("write not supported: %s", e.Reason)
	}
	return "write not supported"
}

// IllegalValueError is returned when a value does not fit the field it is
// stored in.
type IllegalValueError struct {
	Field  string
	Value  any
	Reason string
}

func (e *IllegalValueError) Error() string {
	return fmt.Sprintf("illegal value %v for %s: %s", e.Value, e.Field, e.Reason)
}

// NoSuchFrameError is returned when a lookup or removal finds no matching frame.
type NoSuchFrameError struct {
	ID    string
	Index int // -1 when no index was requested
}

func (e *NoSuchFrameError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("no frame %s at index %d", e.ID, e.Index)
	}
	if e.ID == "" {
		return "no such frame"
	}
	return fmt.Sprintf("no frame %s", e.ID)
}

// Warning represents a non-fatal issue encountered while reading or writing.
//
// Examples include:
//   - A compressed frame that could not be inflated
//   - A CRC mismatch in lenient mode
//   - A file replaced by copy instead of atomic rename
type Warning struct {
	// Stage where the warning occurred
	Stage string // "header", "frames", "crc", "write"

	// Warning message
	Message string

	// Offset where the issue occurred (0 if not applicable)
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
