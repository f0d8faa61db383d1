package mp4io

import (
	"io"
	"time"
)

// rootTag names the whole stream in error paths.
const rootTag = Tag(0)

// File is the parsed top level of a stream.
type File struct {
	FileType *FileType
	Movie    *Movie
	Size     uint64
}

// Atoms returns the parsed top-level atoms in a fixed order.
func (f *File) Atoms() (r []Atom) {
	if f.FileType != nil {
		r = append(r, f.FileType)
	}
	if f.Movie != nil {
		r = append(r, f.Movie)
	}
	return
}

// Duration is the movie header duration, or zero without one.
func (f *File) Duration() time.Duration {
	if f.Movie == nil || f.Movie.Header == nil {
		return 0
	}
	return f.Movie.Header.Duration
}

// ItemList returns moov.udta.meta.ilst, or nil.
func (f *File) ItemList() *ItemList {
	if f.Movie == nil || f.Movie.UserData == nil || f.Movie.UserData.Meta == nil {
		return nil
	}
	return f.Movie.UserData.Meta.ItemList
}

// ReadFile parses the whole stream from offset 0.
func ReadFile(r io.ReadSeeker) (*File, error) {
	if err := seekTo(r, 0); err != nil {
		return nil, err
	}
	size, err := RemainingLen(r)
	if err != nil {
		return nil, err
	}

	f := &File{Size: size}
	root := Head{Tag: rootTag, Size: size}
	_, err = walkChildren(r, rootTag, root.End(), 0, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		hit = true
		switch child.Tag {
		case FTYP:
			f.FileType, err = parseChild[FileType](r, child, depth)
		case MOOV:
			f.Movie, err = parseChild[Movie](r, child, depth)
		default:
			hit = false
		}
		return
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// FileBounds locates the atoms a metadata rewrite touches. Spans cover the stream.
type FileBounds struct {
	BoundsNode
	Movie *MovieBounds
}

// FindFile scans the whole stream from offset 0 without materializing content.
func FindFile(r io.ReadSeeker) (*FileBounds, error) {
	if err := seekTo(r, 0); err != nil {
		return nil, err
	}
	size, err := RemainingLen(r)
	if err != nil {
		return nil, err
	}

	f := &FileBounds{}
	root := Head{Tag: rootTag, Size: size}
	f.Bounds = AtomBounds{Tag: rootTag, ContentLen: size}
	f.Spans, err = walkChildren(r, rootTag, root.End(), 0, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		if child.Tag != MOOV {
			return false, nil
		}
		f.Movie, err = findMovie(r, child, depth)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ParseAtom parses the known atom whose head was just read and leaves the stream at the
// atom's end. Atoms outside the closed set are skipped and reported as nil.
func ParseAtom(r io.ReadSeeker, head Head) (atom Atom, err error) {
	switch head.Tag {
	case FTYP:
		atom, err = parseChild[FileType](r, head, 0)
	case MOOV:
		atom, err = parseChild[Movie](r, head, 0)
	case MVHD:
		atom, err = parseChild[MovieHeader](r, head, 0)
	case TRAK:
		atom, err = parseChild[Track](r, head, 0)
	case TKHD:
		atom, err = parseChild[TrackHeader](r, head, 0)
	case MDIA:
		atom, err = parseChild[Media](r, head, 0)
	case MDHD:
		atom, err = parseChild[MediaHeader](r, head, 0)
	case HDLR:
		atom, err = parseChild[HandlerRef](r, head, 0)
	case MINF:
		atom, err = parseChild[MediaInfo](r, head, 0)
	case STBL:
		atom, err = parseChild[SampleTable](r, head, 0)
	case STCO, CO64:
		atom, err = parseChild[ChunkOffsets](r, head, 0)
	case UDTA:
		atom, err = parseChild[UserData](r, head, 0)
	case META:
		atom, err = parseChild[Meta](r, head, 0)
	case ILST:
		atom, err = parseChild[ItemList](r, head, 0)
	}
	if err != nil {
		return nil, parseErr(head.Tag, head.Offset, err)
	}
	return atom, seekTo(r, head.End())
}

// Located is implemented by every bounds kind.
type Located interface {
	Node() *BoundsNode
}

func (n *BoundsNode) Node() *BoundsNode {
	return n
}

// FindAtom scans the container whose head was just read. Containers that hold no atom
// of interest are skipped and reported as nil.
func FindAtom(r io.ReadSeeker, head Head) (node Located, err error) {
	switch head.Tag {
	case MOOV:
		node, err = findMovie(r, head, 0)
	case TRAK:
		node, err = findTrack(r, head, 0)
	case MDIA:
		node, err = findMedia(r, head, 0)
	case MINF:
		node, err = findMediaInfo(r, head, 0)
	case STBL:
		node, err = findSampleTable(r, head, 0)
	case UDTA:
		node, err = findUserData(r, head, 0)
	case META:
		node, err = findMeta(r, head, 0)
	}
	if err != nil {
		return nil, parseErr(head.Tag, head.Offset, err)
	}
	return node, seekTo(r, head.End())
}
