package id3tag

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"iter"
	"log/slog"
	"os"
	"slices"

	binutil "github.com/simonhull/id3tag/internal/binary"
	"github.com/simonhull/id3tag/internal/id3v2"
	"github.com/simonhull/id3tag/internal/unsync"
)

// Frame is an alias to id3v2.Frame.
type Frame = id3v2.Frame

// FrameFlags is an alias to id3v2.FrameFlags.
type FrameFlags = id3v2.FrameFlags

// Compression is an alias to id3v2.Compression.
type Compression = id3v2.Compression

// Frame flag bits.
const (
	FlagTagAlterPreserve  = id3v2.FlagTagAlterPreserve
	FlagFileAlterPreserve = id3v2.FlagFileAlterPreserve
	FlagReadOnly          = id3v2.FlagReadOnly
	FlagCompressed        = id3v2.FlagCompressed
	FlagEncrypted         = id3v2.FlagEncrypted
	FlagGrouped           = id3v2.FlagGrouped
)

// Compression modes for NewFrame.
const (
	NoCompression = id3v2.NoCompression
	Compress      = id3v2.Compress
)

const (
	// TagVersion is the ID3v2 major version read and written.
	TagVersion = id3v2.Version
	// TagRevision is the ID3v2 revision written.
	TagRevision = id3v2.Revision
)

// NewFrame creates a frame with the given identifier and content.
//
// The identifier must be four characters from A-Z and 0-9. Content is
// copied. The compression flag in flags is ignored; c decides it.
func NewFrame(id string, content []byte, flags FrameFlags, c Compression) (*Frame, error) {
	return id3v2.NewFrame(id, content, flags, c)
}

// Tag is the ID3v2.3 tag of one file.
//
// A Tag is opened from a path with Open, which allows writing it back with
// Update, or decoded from a stream with Read, which is read-only. A file
// without a tag yields a Tag whose HasTag is false; adding frames and
// calling Update creates the tag at the start of the file.
//
// Mutating methods only change memory. Update writes when something
// changed. A Tag is not safe for concurrent use.
type Tag struct {
	// Warnings encountered while reading or writing (non-fatal issues)
	Warnings []Warning

	path   string // empty for stream-backed tags
	logger *slog.Logger

	header *id3v2.Header
	ext    *id3v2.ExtendedHeader
	frames []*Frame // nil means no frame collection

	footprint int64 // bytes the tag occupies at the start of the file
	changed   bool

	usePadding           bool
	useCRC               bool
	useUnsynchronization bool

	crcMismatch *CRCMismatchError
	lastWrite   WriteResult
}

// Open reads the tag of the file at path.
//
// A file without an ID3v2 tag is not an error: the returned Tag reports
// HasTag false. Tags newer than ID3v2.3 and structurally broken tags fail.
// ID3v2.2 frames are read under their ID3v2.3 identifiers; Update writes
// the tag back as ID3v2.3.
// Damaged frames and CRC mismatches are recorded in Warnings unless the
// strict options are given.
//
// Example:
//
//	tag, err := id3tag.Open("song.mp3")
//	if err != nil {
//		return err
//	}
//	fmt.Println(tag.Title())
func Open(path string, opts ...Option) (*Tag, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only handle

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	t := newTag(path, options)
	if err := t.read(f, stat.Size(), options); err != nil {
		return nil, err
	}
	return t, nil
}

// Read decodes a tag from r. The returned Tag cannot be written back;
// Update reports an UnsupportedWriteError.
func Read(r io.Reader, opts ...Option) (*Tag, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	t := newTag("", options)
	if err := t.read(r, -1, options); err != nil {
		return nil, err
	}
	return t, nil
}

func newTag(path string, options *openOptions) *Tag {
	return &Tag{
		path:                 path,
		logger:               options.logger,
		usePadding:           options.usePadding,
		useCRC:               options.useCRC,
		useUnsynchronization: options.useUnsynchronization,
	}
}

// read decodes the tag at the start of r. size is the stream length, or -1
// when unknown.
func (t *Tag) read(r io.Reader, size int64, options *openOptions) error { //nolint:gocyclo // Sequential decode stages
	br := binutil.NewReader(r, t.path)

	h, err := id3v2.ReadHeader(br)
	if err != nil {
		var noTag *NoTagError
		if errors.As(err, &noTag) {
			t.logger.Debug("no ID3v2 tag", "path", t.path)
			return nil
		}
		return err
	}

	if size >= 0 && h.Footprint() > size {
		return &CorruptedTagError{
			Path:   t.path,
			Reason: fmt.Sprintf("tag size %d exceeds file size %d", h.Size, size),
			Offset: 6,
		}
	}

	// Grows with the data actually present, not with the declared size.
	body, err := io.ReadAll(io.LimitReader(r, int64(h.Size)))
	if err != nil {
		return fmt.Errorf("%s: read tag body: %w", t.path, err)
	}
	if len(body) != int(h.Size) {
		return &CorruptedTagError{
			Path:   t.path,
			Reason: fmt.Sprintf("tag declares %d bytes, %d available", h.Size, len(body)),
			Offset: id3v2.HeaderSize,
		}
	}

	if h.Unsynchronized {
		body, _ = unsync.Synchronize(body)
	}

	start := 0
	end := len(body)
	var ext *id3v2.ExtendedHeader
	if h.Extended {
		e, err := id3v2.ReadExtendedHeader(binutil.NewSizedReader(bytes.NewReader(body), int64(len(body)), t.path))
		if err != nil {
			return &CorruptedTagError{
				Path:   t.path,
				Reason: fmt.Sprintf("extended header: %v", err),
				Offset: id3v2.HeaderSize,
			}
		}
		start = e.Len()
		if int64(e.PaddingSize) > int64(end-start) {
			return &CorruptedTagError{
				Path:   t.path,
				Reason: fmt.Sprintf("padding size %d exceeds the %d bytes after the extended header", e.PaddingSize, end-start),
				Offset: id3v2.HeaderSize,
			}
		}
		end -= int(e.PaddingSize)
		ext = &e
	}
	frameData := body[start:end]

	if ext != nil && ext.HasCRC() {
		if computed := crc32.ChecksumIEEE(frameData); computed != ext.CRC() {
			mismatch := &CRCMismatchError{Path: t.path, Stored: ext.CRC(), Computed: computed}
			if options.strictCRC {
				return mismatch
			}
			t.crcMismatch = mismatch
			t.warn("crc", mismatch.Error(), id3v2.HeaderSize)
		}
	}

	frames := make([]*Frame, 0)
	readFrame := id3v2.ReadFrame
	switch {
	case h.Version == id3v2.VersionLegacy && h.Compressed:
		t.warn("header", "ID3v2.2 tag is compressed, frames not read", 5)
		frameData = nil
	case h.Version == id3v2.VersionLegacy:
		readFrame = id3v2.ReadLegacyFrame
	case h.Version < id3v2.VersionLegacy:
		t.warn("header", fmt.Sprintf("ID3v2.%d frame layout is undefined, frames not read", h.Version), 3)
		frameData = nil
	}

	fr := binutil.NewSizedReader(bytes.NewReader(frameData), int64(len(frameData)), t.path)
	for {
		offset := fr.Offset()
		f, err := readFrame(fr)
		if errors.Is(err, id3v2.ErrEndOfFrames) {
			break
		}
		if errors.Is(err, id3v2.ErrUnmappedFrame) {
			t.warn("frames", err.Error()+", dropped", int64(start)+offset)
			continue
		}
		if err != nil {
			return err
		}
		if ferr := f.Err(); ferr != nil {
			if options.strictParsing {
				return ferr
			}
			t.warn("frames", ferr.Error(), int64(start)+offset)
		}
		frames = append(frames, f)
	}

	t.header = &h
	t.ext = ext
	t.frames = frames
	t.footprint = h.Footprint()

	t.logger.Debug("read ID3v2 tag",
		"path", t.path,
		"size", h.Size,
		"frames", len(frames),
		"unsynchronized", h.Unsynchronized,
		"extended", h.Extended)
	return nil
}

func (t *Tag) warn(stage, msg string, offset int64) {
	t.Warnings = append(t.Warnings, Warning{Stage: stage, Message: msg, Offset: offset})
	t.logger.Warn(msg, "stage", stage, "path", t.path, "offset", offset)
}

// Path returns the file path, empty for stream-backed tags.
func (t *Tag) Path() string {
	return t.path
}

// HasTag reports whether the tag was present when read or has been
// written since.
func (t *Tag) HasTag() bool {
	return t.header != nil
}

// Version returns the major version of the tag as read, 0 if none.
func (t *Tag) Version() byte {
	if t.header == nil {
		return 0
	}
	return t.header.Version
}

// Revision returns the revision of the tag as read, 0 if none.
func (t *Tag) Revision() byte {
	if t.header == nil {
		return 0
	}
	return t.header.Revision
}

// CRCMismatch returns the mismatch found while reading, nil if the CRC
// matched or was absent.
func (t *Tag) CRCMismatch() *CRCMismatchError {
	return t.crcMismatch
}

// Frames returns the frames in tag order. The slice is a copy; the frames
// are shared. It fails with NoTagError when there is no frame collection.
func (t *Tag) Frames() ([]*Frame, error) {
	if t.frames == nil {
		return nil, &NoTagError{Path: t.path}
	}
	return slices.Clone(t.frames), nil
}

// All iterates over the frames in tag order. It yields nothing when there
// is no frame collection.
func (t *Tag) All() iter.Seq[*Frame] {
	return func(yield func(*Frame) bool) {
		for _, f := range t.frames {
			if !yield(f) {
				return
			}
		}
	}
}

// FramesByID returns the frames with the given identifier in tag order.
func (t *Tag) FramesByID(id string) ([]*Frame, error) {
	if t.frames == nil {
		return nil, &NoTagError{Path: t.path}
	}
	var out []*Frame
	for _, f := range t.frames {
		if f.ID() == id {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, &NoSuchFrameError{ID: id, Index: -1}
	}
	return out, nil
}

// firstFrame returns the first frame with id.
func (t *Tag) firstFrame(id string) (*Frame, error) {
	frames, err := t.FramesByID(id)
	if err != nil {
		return nil, err
	}
	return frames[0], nil
}

// AddFrame appends f, creating the frame collection if needed.
func (t *Tag) AddFrame(f *Frame) {
	if t.frames == nil {
		t.frames = make([]*Frame, 0, 1)
	}
	t.frames = append(t.frames, f)
	t.changed = true
}

// RemoveFrame removes f, matched by identity.
func (t *Tag) RemoveFrame(f *Frame) error {
	if t.frames == nil {
		return &NoTagError{Path: t.path}
	}
	i := slices.Index(t.frames, f)
	if i < 0 {
		id := ""
		if f != nil {
			id = f.ID()
		}
		return &NoSuchFrameError{ID: id, Index: -1}
	}
	t.frames = slices.Delete(t.frames, i, i+1)
	t.changed = true
	return nil
}

// RemoveFramesByID removes every frame with the given identifier.
func (t *Tag) RemoveFramesByID(id string) error {
	if t.frames == nil {
		return &NoTagError{Path: t.path}
	}
	n := len(t.frames)
	t.frames = slices.DeleteFunc(t.frames, func(f *Frame) bool { return f.ID() == id })
	if len(t.frames) == n {
		return &NoSuchFrameError{ID: id, Index: -1}
	}
	t.changed = true
	return nil
}

// RemoveFrameAt removes the n-th frame with the given identifier, counting
// from 0 over the matching frames only.
func (t *Tag) RemoveFrameAt(id string, n int) error {
	if t.frames == nil {
		return &NoTagError{Path: t.path}
	}
	seen := 0
	for i, f := range t.frames {
		if f.ID() != id {
			continue
		}
		if seen == n {
			t.frames = slices.Delete(t.frames, i, i+1)
			t.changed = true
			return nil
		}
		seen++
	}
	return &NoSuchFrameError{ID: id, Index: n}
}

// RemoveAllFrames empties the frame collection. The tag itself stays; use
// Clear to remove it from the file.
func (t *Tag) RemoveAllFrames() {
	t.frames = make([]*Frame, 0)
	t.changed = true
}

// Clear discards the tag. The next Update strips it from the file.
func (t *Tag) Clear() {
	t.header = nil
	t.ext = nil
	t.frames = nil
	t.crcMismatch = nil
	t.changed = true
}

// Touch marks the tag as changed so the next Update rewrites it.
func (t *Tag) Touch() {
	t.changed = true
}

// Changed reports whether an Update would write.
func (t *Tag) Changed() bool {
	return t.changed
}

// UsePadding reports whether rewrites pad the file to PaddingBlock bytes.
func (t *Tag) UsePadding() bool {
	return t.usePadding
}

// SetUsePadding sets the padding policy.
func (t *Tag) SetUsePadding(on bool) {
	if t.usePadding != on {
		t.usePadding = on
		t.changed = true
	}
}

// UseCRC reports whether written tags carry a CRC.
func (t *Tag) UseCRC() bool {
	return t.useCRC
}

// SetUseCRC sets whether written tags carry a CRC.
func (t *Tag) SetUseCRC(on bool) {
	if t.useCRC != on {
		t.useCRC = on
		t.changed = true
	}
}

// UseUnsynchronization reports whether written tags are unsynchronized
// when they contain false sync patterns.
func (t *Tag) UseUnsynchronization() bool {
	return t.useUnsynchronization
}

// SetUseUnsynchronization sets the unsynchronization policy.
func (t *Tag) SetUseUnsynchronization(on bool) {
	if t.useUnsynchronization != on {
		t.useUnsynchronization = on
		t.changed = true
	}
}

// Info describes the tag structure as last read or written.
type Info struct {
	Version        byte
	Revision       byte
	Size           uint32 // tag size excluding the 10-byte header
	Unsynchronized bool
	Experimental   bool
	Extended       bool
	HasCRC         bool
	CRC            uint32
	PaddingSize    uint32
	Footprint      int64 // bytes occupied at the start of the file
}

// Info returns the tag structure, false when there is no tag.
func (t *Tag) Info() (Info, bool) {
	if t.header == nil {
		return Info{}, false
	}
	info := Info{
		Version:        t.header.Version,
		Revision:       t.header.Revision,
		Size:           t.header.Size,
		Unsynchronized: t.header.Unsynchronized,
		Experimental:   t.header.Experimental,
		Extended:       t.header.Extended,
		Footprint:      t.footprint,
	}
	if t.ext != nil {
		info.HasCRC = t.ext.HasCRC()
		info.CRC = t.ext.CRC()
		info.PaddingSize = t.ext.PaddingSize
	}
	return info, true
}
