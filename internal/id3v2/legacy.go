package id3v2

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	binutil "github.com/simonhull/id3tag/internal/binary"
	"github.com/simonhull/id3tag/internal/types"
)

// LegacyFrameHeaderSize is the size of an ID3v2.2 frame header: id, size.
const LegacyFrameHeaderSize = 6

// legacyIDs maps ID3v2.2 identifiers to their ID3v2.3 equivalents. Frames
// whose layout changed beyond the identifier (LNK, CRM) are left out.
var legacyIDs = map[string]string{
	"BUF": "RBUF", "CNT": "PCNT", "COM": "COMM", "CRA": "AENC",
	"ETC": "ETCO", "EQU": "EQUA", "GEO": "GEOB", "IPL": "IPLS",
	"MCI": "MCDI", "MLL": "MLLT", "PIC": "APIC", "POP": "POPM",
	"REV": "RVRB", "RVA": "RVAD", "SLT": "SYLT", "STC": "SYTC",
	"TAL": "TALB", "TBP": "TBPM", "TCM": "TCOM", "TCO": "TCON",
	"TCR": "TCOP", "TDA": "TDAT", "TDY": "TDLY", "TEN": "TENC",
	"TFT": "TFLT", "TIM": "TIME", "TKE": "TKEY", "TLA": "TLAN",
	"TLE": "TLEN", "TMT": "TMED", "TOA": "TOPE", "TOF": "TOFN",
	"TOL": "TOLY", "TOR": "TORY", "TOT": "TOAL", "TP1": "TPE1",
	"TP2": "TPE2", "TP3": "TPE3", "TP4": "TPE4", "TPA": "TPOS",
	"TPB": "TPUB", "TRC": "TSRC", "TRD": "TRDA", "TRK": "TRCK",
	"TSI": "TSIZ", "TSS": "TSSE", "TT1": "TIT1", "TT2": "TIT2",
	"TT3": "TIT3", "TXT": "TEXT", "TXX": "TXXX", "TYE": "TYER",
	"UFI": "UFID", "ULT": "USLT", "WAF": "WOAF", "WAR": "WOAR",
	"WAS": "WOAS", "WCM": "WCOM", "WCP": "WCOP", "WPB": "WPUB",
	"WXX": "WXXX",
}

// ErrUnmappedFrame is returned by ReadLegacyFrame for a well-formed ID3v2.2
// frame that has no ID3v2.3 equivalent. The frame has been consumed.
var ErrUnmappedFrame = errors.New("id3v2: ID3v2.2 frame has no ID3v2.3 equivalent")

func validLegacyID(id string) bool {
	if len(id) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// ReadLegacyFrame decodes the next ID3v2.2 frame from r and returns it
// under its ID3v2.3 identifier, with no flags set.
//
// It returns ErrEndOfFrames at padding or end of data, and an error
// wrapping ErrUnmappedFrame naming the identifier of a frame it skipped.
func ReadLegacyFrame(r *binutil.Reader) (*Frame, error) {
	start := r.Offset()

	hdr := make([]byte, LegacyFrameHeaderSize)
	if err := r.Read(hdr, "ID3v2.2 frame header"); err != nil {
		var trunc *types.TruncatedError
		if !errors.As(err, &trunc) {
			return nil, err
		}
		if trunc.Got < 3 || !validLegacyID(string(hdr[:3])) {
			return nil, ErrEndOfFrames
		}
		return nil, &types.CorruptedTagError{
			Path:   r.Path(),
			Reason: fmt.Sprintf("frame %s: header truncated", hdr[:3]),
			Offset: start,
		}
	}

	legacy := string(hdr[0:3])
	if !validLegacyID(legacy) {
		return nil, ErrEndOfFrames
	}

	size, _ := binutil.Decode(hdr[3:6]) //nolint:errcheck // Fixed three-byte width
	content, err := r.ReadBytes(int(size), "frame "+legacy+" content")
	if err != nil {
		var trunc *types.TruncatedError
		if errors.As(err, &trunc) {
			return nil, &types.CorruptedTagError{
				Path:   r.Path(),
				Reason: fmt.Sprintf("frame %s: declared %d content bytes, %d available", legacy, size, trunc.Got),
				Offset: start,
			}
		}
		return nil, err
	}

	id, ok := legacyIDs[legacy]
	if !ok {
		return nil, fmt.Errorf("frame %s: %w", legacy, ErrUnmappedFrame)
	}
	if id == "APIC" {
		content = legacyPicture(content)
	}
	return &Frame{id: id, content: content}, nil
}

// legacyPicture rewrites a PIC payload, whose image format is three fixed
// characters, into the APIC layout with a null-terminated MIME type.
func legacyPicture(content []byte) []byte {
	if len(content) < 4 {
		return content
	}

	var mime string
	switch format := strings.ToUpper(string(content[1:4])); format {
	case "JPG":
		mime = "image/jpeg"
	case "-->":
		mime = "-->" // picture is a URL
	default:
		mime = "image/" + strings.ToLower(strings.TrimRight(format, "\x00 "))
	}

	var buf bytes.Buffer
	buf.Grow(len(content) + len(mime))
	buf.WriteByte(content[0])
	buf.WriteString(mime)
	buf.WriteByte(0)
	buf.Write(content[4:])
	return buf.Bytes()
}
