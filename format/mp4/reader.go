// Package mp4 provides functionality for reading MP4 atom trees and rewriting the iTunes
// metadata they carry.
package mp4

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/ugparu/mp4meta/format/mp4/mp4io"
	"github.com/ugparu/mp4meta/utils/logger"
	"golang.org/x/sync/errgroup"
)

// Reader walks one seekable stream. Both walks are memoized.
type Reader struct {
	r      io.ReadSeeker
	file   *mp4io.File
	bounds *mp4io.FileBounds
}

func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{r: r}
}

// Read parses the atom tree of the stream.
func (rd *Reader) Read() (*mp4io.File, error) {
	if rd.file != nil {
		return rd.file, nil
	}

	f, err := mp4io.ReadFile(rd.r)
	if err != nil {
		return nil, err
	}
	if f.Movie == nil {
		logger.Debugf(rd, "no moov atom in %d bytes", f.Size)
	}
	rd.file = f
	return f, nil
}

// Bounds locates the atoms a metadata rewrite touches.
func (rd *Reader) Bounds() (*mp4io.FileBounds, error) {
	if rd.bounds != nil {
		return rd.bounds, nil
	}

	b, err := mp4io.FindFile(rd.r)
	if err != nil {
		return nil, err
	}
	rd.bounds = b
	return b, nil
}

// ItemList returns the parsed moov.udta.meta.ilst, or nil when the stream has none.
func (rd *Reader) ItemList() (*mp4io.ItemList, error) {
	f, err := rd.Read()
	if err != nil {
		return nil, err
	}
	return f.ItemList(), nil
}

// ReadFile opens path and parses its atom tree.
func ReadFile(path string) (*mp4io.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return NewReader(f).Read()
}

// ReadMany parses paths concurrently, each with its own file handle. The first failure
// cancels the files not yet started and is returned prefixed with its path.
func ReadMany(ctx context.Context, paths ...string) ([]*mp4io.File, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*mp4io.File, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			f, err := ReadFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Tracef(path, "read %d bytes, duration %s", f.Size, f.Duration())
			results[i] = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
