package id3tag

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/simonhull/id3tag/internal/fieldparse"
)

// FramePicture is the attached picture frame identifier.
const FramePicture = "APIC"

// PictureType is the APIC picture type byte.
type PictureType byte

// Common picture types.
const (
	PictureOther      PictureType = 0x00
	PictureFileIcon   PictureType = 0x01
	PictureFrontCover PictureType = 0x03
	PictureBackCover  PictureType = 0x04
	PictureArtist     PictureType = 0x08
)

// Picture is the decoded content of an APIC frame.
type Picture struct {
	MIMEType    string
	Type        PictureType
	Description string
	Data        []byte
	Width       int // 0 when not detectable
	Height      int // 0 when not detectable
}

var errPictureNoData = errors.New("picture frame has no image data")

// ReadPictures decodes every APIC frame in tag order. A missing tag yields
// no pictures; a damaged or malformed frame fails.
//
// APIC layout:
//
//	[1 byte]              Text encoding
//	[null-terminated]     MIME type, ISO-8859-1
//	[1 byte]              Picture type
//	[null-terminated]     Description
//	[remaining]           Picture data
func ReadPictures(t *Tag) ([]Picture, error) {
	frames, err := t.FramesByID(FramePicture)
	if err != nil {
		if missing(err) {
			return nil, nil
		}
		return nil, err
	}

	pics := make([]Picture, 0, len(frames))
	for i, f := range frames {
		content, err := f.Content()
		if err != nil {
			return nil, err
		}
		pic, err := parsePicture(content)
		if err != nil {
			return nil, fmt.Errorf("frame %s #%d: %w", FramePicture, i, err)
		}
		pics = append(pics, pic)
	}
	return pics, nil
}

func parsePicture(content []byte) (Picture, error) {
	p, err := fieldparse.New(content, true)
	if err != nil {
		return Picture{}, err
	}

	mime, err := p.ParseTextAs(fieldparse.Latin1)
	if err != nil {
		return Picture{}, fmt.Errorf("MIME type: %w", err)
	}
	switch mime {
	case "JPG", "jpg":
		mime = "image/jpeg"
	case "PNG", "png":
		mime = "image/png"
	}

	kind, err := p.ParseBinaryN(1)
	if err != nil {
		return Picture{}, fmt.Errorf("picture type: %w", err)
	}
	desc, err := optionalText(p)
	if err != nil {
		return Picture{}, fmt.Errorf("description: %w", err)
	}
	if p.Remaining() == 0 {
		return Picture{}, errPictureNoData
	}
	data, err := p.ParseBinary()
	if err != nil {
		return Picture{}, err
	}

	if detected := detectMIMEType(data); detected != "" {
		mime = detected
	}
	w, h := detectImageDimensions(data, mime)

	return Picture{
		MIMEType:    mime,
		Type:        PictureType(kind[0]),
		Description: desc,
		Data:        data,
		Width:       w,
		Height:      h,
	}, nil
}

// AddPicture appends an APIC frame. An empty MIMEType is detected from the
// data.
func AddPicture(t *Tag, pic Picture, compress bool) error {
	if len(pic.Data) == 0 {
		return errPictureNoData
	}
	mime := pic.MIMEType
	if mime == "" {
		mime = detectMIMEType(pic.Data)
	}

	mimeBytes, err := fieldparse.EncodeText(mime, fieldparse.Latin1, true)
	if err != nil {
		return err
	}
	enc := fieldparse.ChooseEncoding(pic.Description)
	desc, err := fieldparse.EncodeText(pic.Description, enc, true)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteByte(byte(enc))
	buf.Write(mimeBytes)
	buf.WriteByte(byte(pic.Type))
	buf.Write(desc)
	buf.Write(pic.Data)

	mode := NoCompression
	if compress {
		mode = Compress
	}
	f, err := NewFrame(FramePicture, buf.Bytes(), 0, mode)
	if err != nil {
		return err
	}
	t.AddFrame(f)
	return nil
}

// detectMIMEType detects image MIME type from magic bytes.
func detectMIMEType(data []byte) string {
	switch {
	case len(data) < 4:
		return ""
	case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}):
		return "image/png"
	case bytes.HasPrefix(data, []byte("GIF")):
		return "image/gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "image/bmp"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	}
	return ""
}

func detectImageDimensions(data []byte, mimeType string) (int, int) {
	switch mimeType {
	case "image/jpeg":
		return detectJPEGDimensions(data)
	case "image/png":
		return detectPNGDimensions(data)
	default:
		return 0, 0
	}
}

// detectJPEGDimensions scans for a baseline, extended or progressive SOF
// marker: FF Cn len:2 precision:1 height:2 width:2.
func detectJPEGDimensions(data []byte) (int, int) {
	for i := 0; i+9 <= len(data); i++ {
		if data[i] != 0xFF {
			continue
		}
		switch data[i+1] {
		case 0xC0, 0xC1, 0xC2:
			height := int(data[i+5])<<8 | int(data[i+6])
			width := int(data[i+7])<<8 | int(data[i+8])
			return width, height
		}
	}
	return 0, 0
}

// detectPNGDimensions reads the IHDR chunk that follows the signature.
func detectPNGDimensions(data []byte) (int, int) {
	sig := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	if len(data) < 24 || !bytes.HasPrefix(data, sig) {
		return 0, 0
	}
	width := int(data[16])<<24 | int(data[17])<<16 | int(data[18])<<8 | int(data[19])
	height := int(data[20])<<24 | int(data[21])<<16 | int(data[22])<<8 | int(data[23])
	return width, height
}
