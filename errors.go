package id3tag

import (
	"github.com/simonhull/id3tag/internal/types"
)

// NoTagError is an alias to types.NoTagError.
// Re-exporting from internal/types to maintain public API.
type NoTagError = types.NoTagError

// UnsupportedVersionError is an alias to types.UnsupportedVersionError.
// Re-exporting from internal/types to maintain public API.
type UnsupportedVersionError = types.UnsupportedVersionError

// CorruptedTagError is an alias to types.CorruptedTagError.
// Re-exporting from internal/types to maintain public API.
type CorruptedTagError = types.CorruptedTagError

// TruncatedError is an alias to types.TruncatedError.
type TruncatedError = types.TruncatedError

// ParseError is an alias to types.ParseError.
type ParseError = types.ParseError

// DecompressionError is an alias to types.DecompressionError.
type DecompressionError = types.DecompressionError

// CRCMismatchError is an alias to types.CRCMismatchError.
type CRCMismatchError = types.CRCMismatchError

// UnsupportedWriteError is an alias to types.UnsupportedWriteError.
// Re-exporting from internal/types to maintain public API.
type UnsupportedWriteError = types.UnsupportedWriteError

// IllegalValueError is an alias to types.IllegalValueError.
type IllegalValueError = types.IllegalValueError

// NoSuchFrameError is an alias to types.NoSuchFrameError.
type NoSuchFrameError = types.NoSuchFrameError

// Warning is an alias to types.Warning.
// Re-exporting from internal/types to maintain public API.
type Warning = types.Warning
