package id3tag

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	binutil "github.com/simonhull/id3tag/internal/binary"
	"github.com/simonhull/id3tag/internal/id3v2"
	"github.com/simonhull/id3tag/internal/unsync"
)

// PaddingBlock is the granularity rewritten files are padded to.
const PaddingBlock = 2048

// maxPaddingStuffing is the most bytes unsynchronization can add to the
// four-byte padding size field.
const maxPaddingStuffing = 4

// rename replaces dst with src. Tests swap it to exercise the fallback.
var rename = os.Rename

// WriteResult describes the last successful Update.
type WriteResult struct {
	// Written is false when Update had nothing to do
	Written bool

	// InPlace is true when the tag was overwritten inside its old footprint
	InPlace bool

	// Stripped is true when a cleared tag was removed from the file
	Stripped bool

	// TagSize is the size of the written tag including header and padding
	TagSize int64

	// Padding is the number of padding bytes written
	Padding int64

	// NonAtomic is true when the file was replaced by copying because the
	// rename failed. A crash during the copy could have left it truncated.
	NonAtomic bool
}

// LastWrite returns the outcome of the most recent Update.
func (t *Tag) LastWrite() WriteResult {
	return t.lastWrite
}

// layout is a fully encoded tag ready to be written.
type layout struct {
	header  id3v2.Header
	ext     id3v2.ExtendedHeader
	head    []byte // header and extended header
	frames  []byte
	padding int64
	inPlace bool
}

func (l *layout) used() int64 {
	return int64(len(l.head) + len(l.frames))
}

func (l *layout) size() int64 {
	return l.used() + l.padding
}

// writeTo writes the header, extended header, frames and padding to w. A
// nil layout writes nothing.
func (l *layout) writeTo(w io.Writer) error {
	if l == nil {
		return nil
	}
	sw := binutil.NewSafeWriter(w)
	if err := sw.WriteBytes(l.head); err != nil {
		return err
	}
	if err := sw.WriteBytes(l.frames); err != nil {
		return err
	}
	return sw.WriteZeros(l.padding)
}

// Update writes the tag back to its file if anything changed.
//
// A tag that fits its old footprint is overwritten in place; the remaining
// bytes become padding. Otherwise the file is rewritten through a temporary
// file in the same directory that replaces the original. With padding
// enabled the rewritten file is padded to a multiple of PaddingBlock bytes.
//
// A cleared tag is stripped from the file. Stream-backed tags return an
// UnsupportedWriteError.
func (t *Tag) Update(opts ...SaveOption) error { //nolint:gocyclo // File replacement requires sequential steps
	if t.path == "" {
		return &UnsupportedWriteError{Reason: "tag was read from a stream"}
	}

	options := defaultSaveOptions()
	for _, opt := range opts {
		opt(options)
	}

	if !t.changed {
		t.lastWrite = WriteResult{}
		return nil
	}

	info, err := os.Stat(t.path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if t.footprint > info.Size() {
		return &CorruptedTagError{
			Path:   t.path,
			Reason: fmt.Sprintf("file shrank to %d bytes, tag occupied %d", info.Size(), t.footprint),
		}
	}

	if options.backupSuffix != "" {
		if err := copyFile(t.path, t.path+options.backupSuffix); err != nil {
			return fmt.Errorf("create backup: %w", err)
		}
	}

	var result WriteResult
	if t.frames == nil {
		result, err = t.strip(info)
	} else {
		result, err = t.write(info)
	}
	if err != nil {
		return err
	}

	if options.preserveModTime {
		_ = os.Chtimes(t.path, info.ModTime(), info.ModTime()) //nolint:errcheck // Non-fatal: file was written successfully
	}

	t.changed = false
	t.lastWrite = result

	if options.validate {
		if err := t.validateWrittenFile(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}

func (t *Tag) write(info os.FileInfo) (WriteResult, error) {
	l, err := t.layout(info.Size())
	if err != nil {
		return WriteResult{}, err
	}

	result := WriteResult{Written: true, InPlace: l.inPlace, TagSize: l.size(), Padding: l.padding}
	if l.inPlace {
		err = t.overwrite(l)
	} else {
		result.NonAtomic, err = t.rewrite(l, info)
	}
	if err != nil {
		return WriteResult{}, err
	}

	t.logger.Debug("wrote ID3v2 tag",
		"path", t.path,
		"in_place", l.inPlace,
		"size", l.size(),
		"padding", l.padding,
		"frames", len(t.frames))

	h, ext := l.header, l.ext
	t.header = &h
	t.ext = &ext
	t.footprint = l.size()
	t.crcMismatch = nil
	return result, nil
}

func (t *Tag) strip(info os.FileInfo) (WriteResult, error) {
	if t.footprint == 0 {
		return WriteResult{Written: true, Stripped: true}, nil
	}
	nonAtomic, err := t.rewrite(nil, info)
	if err != nil {
		return WriteResult{}, err
	}
	t.logger.Debug("stripped ID3v2 tag", "path", t.path, "removed", t.footprint)
	t.footprint = 0
	return WriteResult{Written: true, Stripped: true, NonAtomic: nonAtomic}, nil
}

// layout encodes the frames and settles where and how the tag is written.
func (t *Tag) layout(fileSize int64) (*layout, error) {
	var raw []byte
	for _, f := range t.frames {
		b, err := f.Bytes()
		if err != nil {
			return nil, err
		}
		raw = append(raw, b...)
	}

	var crc uint32
	if t.useCRC {
		crc = crc32.ChecksumIEEE(raw)
	}

	frames, framesStuffed := raw, false
	if t.useUnsynchronization {
		frames, framesStuffed = unsynchronize(raw)
	}

	base, err := t.encodeHead(frames, framesStuffed, crc, 0)
	if err != nil {
		return nil, err
	}
	used := base.used()
	old := t.footprint
	rest := fileSize - old

	if old > 0 && used <= old {
		switch {
		case !t.usePadding && used == old:
			base.inPlace = true
			return base, nil
		case t.usePadding:
			l, err := t.fit(frames, framesStuffed, crc, old, used)
			if err != nil {
				return nil, err
			}
			if l != nil {
				l.inPlace = true
				return l, nil
			}
		}
	}

	if !t.usePadding {
		return base, nil
	}

	target := roundUpBlock(used + rest)
	for range 2 {
		l, err := t.fit(frames, framesStuffed, crc, target-rest, used)
		if err != nil {
			return nil, err
		}
		if l != nil {
			return l, nil
		}
		target += PaddingBlock
	}

	// No padding size lands exactly on a block boundary. A rewrite accepts
	// any declared padding, so settle for the nearest one.
	padding := roundUpBlock(used+rest) - rest - used
	l, err := t.encodeHead(frames, framesStuffed, crc, padding)
	if err != nil {
		return nil, err
	}
	l.padding = padding
	t.logger.Debug("padding not block aligned", "path", t.path, "padding", padding)
	return l, nil
}

// fit finds a padding size p for which the encoded tag plus p is exactly
// size bytes. used is the encoded length with zero padding; a non-zero
// padding field can only add stuffing bytes, at most one per byte.
func (t *Tag) fit(frames []byte, framesStuffed bool, crc uint32, size, used int64) (*layout, error) {
	for slack := range int64(maxPaddingStuffing + 1) {
		p := size - used - slack
		if p < 0 {
			break
		}
		l, err := t.encodeHead(frames, framesStuffed, crc, p)
		if err != nil {
			return nil, err
		}
		if l.used()+p == size {
			l.padding = p
			return l, nil
		}
	}
	return nil, nil
}

func roundUpBlock(n int64) int64 {
	return (n + PaddingBlock - 1) / PaddingBlock * PaddingBlock
}

func (t *Tag) encodeHead(frames []byte, framesStuffed bool, crc uint32, padding int64) (*layout, error) {
	if padding > int64(^uint32(0)) {
		return nil, &IllegalValueError{Field: "padding size", Value: padding, Reason: "exceeds 4 bytes"}
	}
	ext := id3v2.NewExtendedHeader(t.useCRC, crc, uint32(padding))

	extBytes, extStuffed := ext.Bytes(), false
	if t.useUnsynchronization {
		extBytes, extStuffed = unsynchronize(extBytes)
	}

	unsynced := framesStuffed || extStuffed
	body := int64(len(extBytes)+len(frames)) + padding
	if body > binutil.MaxSynchsafe {
		return nil, &IllegalValueError{Field: "tag size", Value: body, Reason: "exceeds 28 bits"}
	}

	h := id3v2.NewHeader(unsynced, true, uint32(body))
	hb, err := h.Bytes()
	if err != nil {
		return nil, err
	}

	head := make([]byte, 0, len(hb)+len(extBytes))
	head = append(head, hb...)
	head = append(head, extBytes...)
	return &layout{header: h, ext: ext, head: head, frames: frames}, nil
}

// unsynchronize stuffs b and also terminates a trailing 0xFF, since the
// segment that follows may start with a byte that would complete a false
// sync.
func unsynchronize(b []byte) ([]byte, bool) {
	out, stuffed := unsync.Unsynchronize(b)
	if len(out) > 0 && out[len(out)-1] == 0xFF {
		if !stuffed {
			out = bytes.Clone(out)
		}
		out = append(out, 0x00)
		stuffed = true
	}
	return out, stuffed
}

// overwrite writes l over the start of the file.
func (t *Tag) overwrite(l *layout) error {
	f, err := os.OpenFile(t.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open file for writing: %w", err)
	}
	if err := l.writeTo(io.NewOffsetWriter(f, 0)); err != nil {
		_ = f.Close() //nolint:errcheck // Write error takes precedence
		return fmt.Errorf("write tag: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close() //nolint:errcheck // Sync error takes precedence
		return fmt.Errorf("sync file: %w", err)
	}
	return f.Close()
}

// rewrite writes l followed by everything after the old footprint to a
// temporary file and replaces the original with it. A nil l strips the tag.
func (t *Tag) rewrite(l *layout, info os.FileInfo) (nonAtomic bool, err error) {
	src, err := os.Open(t.path)
	if err != nil {
		return false, fmt.Errorf("open file: %w", err)
	}
	defer src.Close() //nolint:errcheck // Read-only handle

	tempFile, err := os.CreateTemp(filepath.Dir(t.path), ".id3tag-*.tmp")
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()    //nolint:errcheck // Best effort cleanup
			_ = os.Remove(tempPath) //nolint:errcheck // Best effort cleanup
		}
	}()

	if err := l.writeTo(tempFile); err != nil {
		return false, fmt.Errorf("write tag: %w", err)
	}
	if _, err := src.Seek(t.footprint, io.SeekStart); err != nil {
		return false, fmt.Errorf("seek past old tag: %w", err)
	}
	if _, err := io.Copy(tempFile, src); err != nil {
		return false, fmt.Errorf("copy audio data: %w", err)
	}
	if err := tempFile.Chmod(info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("set permissions: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return false, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return false, fmt.Errorf("close temp file: %w", err)
	}
	_ = src.Close() //nolint:errcheck // Released before replacing the file

	nonAtomic, err = t.replace(tempPath)
	if err != nil {
		return false, err
	}
	success = true
	return nonAtomic, nil
}

// replace moves tempPath over the tag's file. When the rename fails, the
// content is copied over the original instead and the temporary file
// removed; the result is reported as non-atomic.
func (t *Tag) replace(tempPath string) (nonAtomic bool, err error) {
	renameErr := rename(tempPath, t.path)
	if renameErr == nil {
		return false, nil
	}

	if err := copyFile(tempPath, t.path); err != nil {
		return false, fmt.Errorf("replace file: %w", errors.Join(renameErr, err))
	}
	_ = os.Remove(tempPath) //nolint:errcheck // Original already holds the content

	t.warn("write", fmt.Sprintf("rename failed, file replaced by copy: %v", renameErr), 0)
	return true, nil
}

// copyFile copies src over dst, creating dst if needed.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Read-only handle

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close() //nolint:errcheck // Copy error takes precedence
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close() //nolint:errcheck // Sync error takes precedence
		return err
	}
	return out.Close()
}

// validateWrittenFile re-reads the file and compares every frame.
func (t *Tag) validateWrittenFile() error {
	written, err := Open(t.path)
	if err != nil {
		return fmt.Errorf("re-open: %w", err)
	}

	if t.frames == nil {
		if written.HasTag() {
			return errors.New("tag still present after strip")
		}
		return nil
	}

	got, err := written.Frames()
	if err != nil {
		return err
	}
	if len(got) != len(t.frames) {
		return fmt.Errorf("frame count mismatch: got %d, want %d", len(got), len(t.frames))
	}
	for i, want := range t.frames {
		if got[i].ID() != want.ID() {
			return fmt.Errorf("frame %d: id mismatch: got %s, want %s", i, got[i].ID(), want.ID())
		}
		gb, err := got[i].Bytes()
		if err != nil {
			return err
		}
		wb, err := want.Bytes()
		if err != nil {
			return err
		}
		if !bytes.Equal(gb, wb) {
			return fmt.Errorf("frame %d (%s): content mismatch", i, want.ID())
		}
	}
	return nil
}
