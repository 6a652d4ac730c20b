package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/simonhull/id3tag"
	"github.com/simonhull/id3tag/id3v1"
)

// Useful for checking what the library makes of a file's tags.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: id3-dump [-v] <file.mp3>...")
		os.Exit(1)
	}

	args := os.Args[1:]
	var opts []id3tag.Option
	if args[0] == "-v" {
		args = args[1:]
		opts = append(opts, id3tag.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	tags, err := id3tag.OpenMany(context.Background(), args, opts...)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	for _, tag := range tags {
		dumpTag(tag)
		dumpTrailer(tag.Path())
		fmt.Println()
	}
}

func dumpTag(tag *id3tag.Tag) {
	fmt.Printf("%s\n", tag.Path())

	info, ok := tag.Info()
	if !ok {
		fmt.Println("  no ID3v2 tag")
		return
	}

	fmt.Printf("  ID3v2.%d.%d, %d bytes", info.Version, info.Revision, info.Footprint)
	if info.Unsynchronized {
		fmt.Print(", unsynchronized")
	}
	if info.Experimental {
		fmt.Print(", experimental")
	}
	fmt.Println()
	if info.Extended {
		if info.HasCRC {
			fmt.Printf("  extended header: crc %08x, padding %d\n", info.CRC, info.PaddingSize)
		} else {
			fmt.Printf("  extended header: padding %d\n", info.PaddingSize)
		}
	}
	if m := tag.CRCMismatch(); m != nil {
		fmt.Printf("  CRC MISMATCH: stored %08x, computed %08x\n", m.Stored, m.Computed)
	}

	for f := range tag.All() {
		fmt.Printf("  %-40s %s\n", f.String(), preview(f))
	}

	for _, w := range tag.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

// preview renders the start of a frame's content, text as text.
func preview(f *id3tag.Frame) string {
	content, err := f.Content()
	if err != nil || f.Flags().Has(id3tag.FlagEncrypted) {
		return ""
	}
	if len(content) > 0 && f.ID()[0] == 'T' && f.ID() != "TXXX" {
		if text, err := id3tag.FrameText(f); err == nil {
			return fmt.Sprintf("%q", truncate(text, 60))
		}
	}
	n := min(len(content), 16)
	return fmt.Sprintf("% x", content[:n])
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

func dumpTrailer(path string) {
	t, err := id3v1.ReadFile(path)
	if err != nil {
		var noTag *id3tag.NoTagError
		if !errors.As(err, &noTag) {
			fmt.Printf("  ID3v1 error: %v\n", err)
		}
		return
	}
	fmt.Printf("  ID3v1: %q by %q on %q (%s)", t.Title, t.Artist, t.Album, t.Year)
	if t.Track != 0 {
		fmt.Printf(", track %d", t.Track)
	}
	if name := t.GenreName(); name != "" {
		fmt.Printf(", %s", name)
	}
	fmt.Println()
}
