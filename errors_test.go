package id3tag

import (
	"errors"
	"strings"
	"testing"
)

func TestErrors_Messages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "no tag",
			err:      &NoTagError{Path: "song.mp3"},
			contains: []string{"song.mp3", "no ID3v2 tag"},
		},
		{
			name:     "unsupported version",
			err:      &UnsupportedVersionError{Path: "song.mp3", Version: 4},
			contains: []string{"song.mp3", "2.4.0"},
		},
		{
			name:     "corrupted",
			err:      &CorruptedTagError{Path: "song.mp3", Reason: "frame TIT2: header truncated", Offset: 42},
			contains: []string{"song.mp3", "offset 42", "TIT2"},
		},
		{
			name:     "crc mismatch",
			err:      &CRCMismatchError{Path: "song.mp3", Stored: 0xDEADBEEF, Computed: 1},
			contains: []string{"deadbeef", "00000001"},
		},
		{
			name:     "decompression sizes",
			err:      &DecompressionError{FrameID: "COMM", Declared: 50, Actual: 5},
			contains: []string{"COMM", "5 bytes", "declared 50"},
		},
		{
			name:     "no such frame at index",
			err:      &NoSuchFrameError{ID: "TXXX", Index: 2},
			contains: []string{"TXXX", "index 2"},
		},
		{
			name:     "unsupported write",
			err:      &UnsupportedWriteError{Reason: "tag was read from a stream"},
			contains: []string{"write not supported", "stream"},
		},
		{
			name:     "illegal value",
			err:      &IllegalValueError{Field: "frame id", Value: "ab", Reason: "must be 4 characters"},
			contains: []string{"frame id", "ab"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(msg, substr) {
					t.Errorf("error message %q should contain %q", msg, substr)
				}
			}
		})
	}
}

func TestDecompressionError_Unwrap(t *testing.T) {
	inner := errors.New("zlib: invalid header")
	err := error(&DecompressionError{FrameID: "PRIV", Err: inner})

	if !errors.Is(err, inner) {
		t.Error("expected DecompressionError to unwrap to its cause")
	}
}

func TestWarning_String(t *testing.T) {
	w := Warning{Stage: "frames", Message: "frame PRIV damaged", Offset: 120}
	if got := w.String(); got != "frames (at offset 120): frame PRIV damaged" {
		t.Errorf("unexpected warning string %q", got)
	}

	w.Offset = 0
	if got := w.String(); got != "frames: frame PRIV damaged" {
		t.Errorf("unexpected warning string %q", got)
	}
}
