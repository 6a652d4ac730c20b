package id3tag

import "log/slog"

// Option configures behavior when opening a tag.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	tag, err := id3tag.Open("song.mp3",
//	    id3tag.WithStrictCRC(),
//	    id3tag.WithLogger(slog.Default()),
//	)
type Option func(*openOptions)

// openOptions holds configuration for opening tags.
type openOptions struct {
	logger               *slog.Logger
	strictCRC            bool // Fail the read on CRC mismatch
	strictParsing        bool // Fail the read on a damaged frame
	usePadding           bool
	useCRC               bool
	useUnsynchronization bool
}

// defaultOptions returns the default configuration.
func defaultOptions() *openOptions {
	return &openOptions{
		logger:               slog.New(slog.DiscardHandler),
		strictCRC:            false,
		strictParsing:        false,
		usePadding:           true,
		useCRC:               true,
		useUnsynchronization: true,
	}
}

// WithStrictCRC makes a CRC mismatch fail the read.
//
// By default a mismatch is recorded as a warning and reported by
// Tag.CRCMismatch, and the frames are still decoded.
func WithStrictCRC() Option {
	return func(o *openOptions) {
		o.strictCRC = true
	}
}

// WithStrictParsing makes a damaged frame fail the read.
//
// By default a frame that cannot be decompressed is kept in the tag,
// reported in Tag.Warnings, and its Content returns the error.
func WithStrictParsing() Option {
	return func(o *openOptions) {
		o.strictParsing = true
	}
}

// WithLogger sets the logger used for read and write decisions.
// The default discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(o *openOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPadding sets the initial padding policy (default on).
//
// With padding, a rewritten file is padded to the next multiple of
// PaddingBlock bytes so later growth can be written in place.
func WithPadding(on bool) Option {
	return func(o *openOptions) {
		o.usePadding = on
	}
}

// WithCRC sets whether written tags carry a CRC-32 (default on).
func WithCRC(on bool) Option {
	return func(o *openOptions) {
		o.useCRC = on
	}
}

// WithUnsynchronization sets whether written tags are unsynchronized when
// needed (default on).
func WithUnsynchronization(on bool) Option {
	return func(o *openOptions) {
		o.useUnsynchronization = on
	}
}
