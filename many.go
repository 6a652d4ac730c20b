package id3tag

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// OpenMany reads the tags of multiple files concurrently.
//
// Files are read in parallel using up to runtime.NumCPU() goroutines.
// Results are returned in the same order as the input paths. The options
// apply to every file.
//
// If any file fails to open, the first error is returned and no tags.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	tags, err := id3tag.OpenMany(ctx, paths, id3tag.WithStrictCRC())
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, t := range tags {
//		fmt.Printf("%s: %s - %s\n", t.Path(), t.Artist(), t.Title())
//	}
func OpenMany(ctx context.Context, paths []string, opts ...Option) ([]*Tag, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*Tag, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			tag, err := Open(path, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			results[i] = tag
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
