// Package id3tag reads, edits and writes ID3v2.3 tags at the start of audio
// files.
//
// # Quick Start
//
// Reading a tag:
//
//	tag, err := id3tag.Open("song.mp3")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !tag.HasTag() {
//		fmt.Println("untagged")
//	}
//	fmt.Printf("%s - %s\n", tag.Artist(), tag.Title())
//
// Editing and writing it back:
//
//	if err := tag.SetTitle("Blue in Green"); err != nil {
//		log.Fatal(err)
//	}
//	if err := tag.Update(); err != nil {
//		log.Fatal(err)
//	}
//
// # Frames
//
// A tag is an ordered list of frames, each a four-character identifier with
// a payload. Frames may be compressed with zlib, grouped, or flagged as
// encrypted; encrypted frames are carried opaquely. Typed access goes
// through ReadText, ReadComment, ReadBinary and their Write counterparts,
// which exchange a TagContent.
//
//	for f := range tag.All() {
//		fmt.Println(f)
//	}
//
// # Writing
//
// Update rewrites the tag only when something changed. A tag that still
// fits in the space the old one occupied is written in place and the rest
// becomes padding. A larger tag is written to a temporary file with the
// audio data copied behind it, which then replaces the original. With
// padding enabled, rewritten files are padded to a multiple of PaddingBlock
// bytes so later edits can stay in place.
//
// Written tags always carry an extended header. The CRC-32 over the frames
// and unsynchronization are on by default; see SetUseCRC and
// SetUseUnsynchronization.
//
// # Error Handling
//
// id3tag distinguishes between fatal errors and warnings:
//
//   - Fatal errors stop reading (unsupported version, truncated frame, a
//     padding size larger than the tag)
//   - Warnings record damage that leaves the rest of the tag usable (a
//     frame that fails to decompress, a CRC mismatch)
//
// WithStrictParsing and WithStrictCRC turn those warnings into errors.
// Error values are typed; use errors.As to inspect them:
//
//	var v *id3tag.UnsupportedVersionError
//	if errors.As(err, &v) {
//		fmt.Printf("ID3v2.%d is not supported\n", v.Version)
//	}
//
// # Logging
//
// Read and write decisions are logged through log/slog at debug level,
// damage at warn level. Pass WithLogger to see them; the default logger
// discards everything.
package id3tag
