// Package unsync implements the ID3v2 unsynchronization scheme.
//
// An MPEG audio frame starts with 0xFF followed by a byte whose top three
// bits are set. Unsynchronization stuffs a 0x00 after every 0xFF that is
// followed by such a byte, or by 0x00, so tag data can never look like an
// audio sync point. Synchronization removes the stuffing again.
//
// Both transforms report whether they changed anything; callers use that
// to decide the header's unsynchronization flag.
package unsync

// Unsynchronize inserts 0x00 after every 0xFF that is followed by 0x00 or
// by a byte >= 0xE0. It returns the input unchanged and false when no byte
// had to be inserted.
func Unsynchronize(in []byte) ([]byte, bool) {
	n := count(in)
	if n == 0 {
		return in, false
	}

	out := make([]byte, 0, len(in)+n)
	for i := 0; i < len(in); i++ {
		out = append(out, in[i])
		if needsStuffing(in, i) {
			out = append(out, 0x00)
		}
	}
	return out, true
}

// Synchronize drops the 0x00 following every 0xFF. It returns the input
// unchanged and false when there was no 0xFF 0x00 pair.
func Synchronize(in []byte) ([]byte, bool) {
	out := make([]byte, 0, len(in))
	changed := false
	for i := 0; i < len(in); i++ {
		out = append(out, in[i])
		if in[i] == 0xFF && i+1 < len(in) && in[i+1] == 0x00 {
			changed = true
			i++
		}
	}
	if !changed {
		return in, false
	}
	return out, true
}

// HasFalseSync reports whether b contains 0xFF followed by a byte >= 0xE0.
func HasFalseSync(b []byte) bool {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == 0xFF && b[i+1] >= 0xE0 {
			return true
		}
	}
	return false
}

func needsStuffing(b []byte, i int) bool {
	return b[i] == 0xFF && i+1 < len(b) && (b[i+1] >= 0xE0 || b[i+1] == 0x00)
}

func count(b []byte) int {
	n := 0
	for i := range b {
		if needsStuffing(b, i) {
			n++
		}
	}
	return n
}
