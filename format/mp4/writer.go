package mp4

import (
	"bufio"
	"bytes"
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/ugparu/mp4meta/format/mp4/mp4io"
	"github.com/ugparu/mp4meta/utils/bits/pio"
	"github.com/ugparu/mp4meta/utils/logger"
)

// edit replaces n bytes of the source at off with b.
type edit struct {
	off int64
	n   uint64
	b   []byte
}

func (e edit) end() int64 {
	return e.off + int64(e.n) //nolint:gosec
}

// splicer copies a source stream to a destination, applying edits on the way.
type splicer struct {
	src    io.ReadSeeker
	dst    *bufio.Writer
	bounds *mp4io.FileBounds
	edits  []edit
	delta  int64
}

func (s *splicer) String() string {
	return "splicer"
}

// WriteMetadata copies src to dst with the item list of its moov replaced by ilst. A
// missing ilst, meta or udta is created. Free space after an existing ilst absorbs a
// change in size; otherwise chunk offsets pointing past the moov are shifted, so dst
// stays playable when the media data follows the moov. A nil ilst writes an empty
// item list.
func WriteMetadata(src io.ReadSeeker, dst io.Writer, ilst *mp4io.ItemList) error {
	bounds, err := NewReader(src).Bounds()
	if err != nil {
		return err
	}
	if bounds.Movie == nil {
		return malformed("no moov atom")
	}
	if ilst == nil {
		ilst = &mp4io.ItemList{}
	}

	s := &splicer{
		src:    src,
		dst:    bufio.NewWriterSize(dst, pio.RecommendBufioSize),
		bounds: bounds,
	}
	if err = s.splice(ilst); err != nil {
		return err
	}
	if s.delta != 0 {
		if err = s.shiftChunkOffsets(); err != nil {
			return err
		}
	}
	return s.stream()
}

// splice plans the new item list and the header rewrites of its ancestors.
func (s *splicer) splice(ilst *mp4io.ItemList) error {
	moov := s.bounds.Movie
	udta := moov.UserData

	var (
		buf      bytes.Buffer
		at       int64
		replaced uint64
		parents  = []mp4io.AtomBounds{moov.Bounds}
		err      error
	)
	switch {
	case udta != nil && udta.Meta != nil && udta.Meta.ItemList != nil:
		parents = append(parents, udta.Bounds, udta.Meta.Bounds)
		at, replaced, err = replaceItemList(&buf, udta.Meta, ilst)
		logger.Debugf(s, "replacing %d bytes at %d with %d", replaced, at, buf.Len())
	case udta != nil && udta.Meta != nil:
		parents = append(parents, udta.Bounds, udta.Meta.Bounds)
		at = udta.Meta.Bounds.End()
		err = ilst.Write(&buf)
		logger.Debugf(s, "appending ilst to meta at %d", at)
	case udta != nil:
		parents = append(parents, udta.Bounds)
		at = udta.Bounds.End()
		err = mp4io.NewMeta(ilst).Write(&buf)
		logger.Debugf(s, "appending meta to udta at %d", at)
	default:
		at = moov.Bounds.End()
		err = mp4io.UserData{Meta: mp4io.NewMeta(ilst)}.Write(&buf)
		logger.Debugf(s, "appending udta to moov at %d", at)
	}
	if err != nil {
		return err
	}

	s.delta = int64(buf.Len()) - int64(replaced) //nolint:gosec
	s.edits = append(s.edits, edit{off: at, n: replaced, b: buf.Bytes()})
	if s.delta == 0 {
		return nil
	}

	for _, p := range parents {
		head := p.Head()
		size := int64(head.Size) + s.delta //nolint:gosec
		if size < int64(head.HeaderLen()) || (!head.Extended && size > math.MaxUint32) { //nolint:gosec
			return malformed("%s at %d cannot hold %d bytes", p.Tag, p.Start, size)
		}
		head.Size = uint64(size)

		var hb bytes.Buffer
		if err = head.Write(&hb); err != nil {
			return err
		}
		s.edits = append(s.edits, edit{off: p.Start, n: head.HeaderLen(), b: hb.Bytes()})
	}
	return nil
}

// replaceItemList writes ilst in place of the current one. When it fits the room of the
// old ilst and the free atom after it, the rest is padded so nothing else moves.
func replaceItemList(buf *bytes.Buffer, meta *mp4io.MetaBounds, ilst *mp4io.ItemList) (at int64, replaced uint64, err error) {
	at, room := meta.ItemListSpace()
	replaced = meta.ItemList.Len()
	if err = ilst.Write(buf); err != nil {
		return
	}
	n := uint64(buf.Len())
	switch {
	case n == room:
		replaced = room
	case n+mp4io.HeaderSize <= room:
		replaced = room
		err = mp4io.NewFree(room - n).Write(buf)
	}
	return
}

// shiftChunkOffsets moves the chunk offsets that point beyond the old end of the moov.
func (s *splicer) shiftChunkOffsets() error {
	moovEnd := uint64(s.bounds.Movie.Bounds.End()) //nolint:gosec
	for _, trak := range s.bounds.Movie.Tracks {
		if trak.Media == nil || trak.Media.Info == nil || trak.Media.Info.SampleTable == nil {
			continue
		}
		stbl := trak.Media.Info.SampleTable
		for _, b := range []*mp4io.AtomBounds{stbl.ChunkOffsets, stbl.ChunkOffsets64} {
			if b == nil {
				continue
			}
			c, err := mp4io.ParseChunkOffsets(s.src, *b)
			if err != nil {
				return err
			}
			if err = c.Shift(moovEnd, s.delta); err != nil {
				return err
			}
			content := c.MarshalContent()
			s.edits = append(s.edits, edit{off: b.ContentStart, n: uint64(len(content)), b: content})
		}
	}
	logger.Debugf(s, "shifted chunk offsets past %d by %d", moovEnd, s.delta)
	return nil
}

// stream copies the source to the destination in offset order, substituting the edits.
func (s *splicer) stream() error {
	slices.SortFunc(s.edits, func(a, b edit) int {
		return cmp.Or(cmp.Compare(a.off, b.off), cmp.Compare(a.n, b.n))
	})

	if _, err := s.src.Seek(0, io.SeekStart); err != nil {
		return ioErr("seek", err)
	}
	var pos int64
	for _, e := range s.edits {
		if e.off < pos {
			return malformed("overlapping edits at %d", e.off)
		}
		if _, err := io.CopyN(s.dst, s.src, e.off-pos); err != nil {
			return ioErr("copy", err)
		}
		if _, err := s.dst.Write(e.b); err != nil {
			return ioErr("write", err)
		}
		if _, err := s.src.Seek(int64(e.n), io.SeekCurrent); err != nil { //nolint:gosec
			return ioErr("seek", err)
		}
		pos = e.end()
	}
	if _, err := io.Copy(s.dst, s.src); err != nil {
		return ioErr("copy", err)
	}
	return ioErr("flush", s.dst.Flush())
}

func malformed(format string, args ...any) error {
	return &mp4io.Error{Kind: mp4io.ErrorKindMalformed, Description: fmt.Sprintf(format, args...)}
}

func ioErr(what string, err error) error {
	if err == nil {
		return nil
	}
	return &mp4io.Error{Kind: mp4io.ErrorKindIo, Description: what, Err: err}
}
