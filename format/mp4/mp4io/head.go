package mp4io

import (
	"io"
	"math"

	"github.com/ugparu/mp4meta/utils/bits/pio"
)

// Head is the decoded header of one atom.
type Head struct {
	Tag      Tag
	Size     uint64 // declared size including the header
	Offset   int64  // absolute offset of the first header byte
	Extended bool   // 64-bit size follows the tag
}

// NewHead returns the head of an atom with contentLen bytes of content, using the
// 16-byte form only when the size does not fit 32 bits.
func NewHead(tag Tag, contentLen uint64) Head {
	if contentLen+HeaderSize > math.MaxUint32 {
		return Head{Tag: tag, Size: contentLen + ExtendedHeaderSize, Extended: true}
	}
	return Head{Tag: tag, Size: contentLen + HeaderSize}
}

func (h Head) HeaderLen() uint64 {
	if h.Extended {
		return ExtendedHeaderSize
	}
	return HeaderSize
}

func (h Head) ContentLen() uint64 {
	if h.Size < h.HeaderLen() {
		return 0
	}
	return h.Size - h.HeaderLen()
}

func (h Head) Len() uint64 {
	return h.Size
}

func (h Head) ContentOffset() int64 {
	return h.Offset + int64(h.HeaderLen()) //nolint:gosec
}

// End is the offset just past the atom, saturating for sizes beyond the int64 range.
func (h Head) End() int64 {
	if h.Size > uint64(math.MaxInt64-h.Offset) { //nolint:gosec
		return math.MaxInt64
	}
	return h.Offset + int64(h.Size) //nolint:gosec
}

func (h Head) Bounds() AtomBounds {
	return AtomBounds{
		Tag:          h.Tag,
		Start:        h.Offset,
		ContentStart: h.ContentOffset(),
		ContentLen:   h.ContentLen(),
	}
}

// clamp shrinks h so that it ends at end. It reports false when not even the header fits.
func (h *Head) clamp(end int64) bool {
	if end-h.Offset < int64(h.HeaderLen()) { //nolint:gosec
		return false
	}
	h.Size = uint64(end - h.Offset)
	return true
}

// Write emits the 8 or 16 byte header.
func (h Head) Write(w io.Writer) error {
	var b [ExtendedHeaderSize]byte
	n := HeaderSize
	pio.PutU32BE(b[4:], uint32(h.Tag))
	if h.Extended {
		pio.PutU32BE(b[0:], 1)
		pio.PutU64BE(b[8:], h.Size)
		n = ExtendedHeaderSize
	} else {
		pio.PutU32BE(b[0:], uint32(h.Size)) //nolint:gosec
	}
	_, err := w.Write(b[:n])
	return ioErr("write head", err)
}

// ParseHead reads the atom header at the current position. A size field of 1 announces
// a 64-bit size, 0 an atom that runs to the end of the stream.
func ParseHead(r io.ReadSeeker) (head Head, err error) {
	if head.Offset, err = tell(r); err != nil {
		return
	}
	var b [HeaderSize]byte
	if err = readFull(r, b[:], "atom head"); err != nil {
		return
	}
	size := pio.U32BE(b[0:])
	head.Tag = Tag(pio.U32BE(b[4:]))

	switch size {
	case 0:
		var rest uint64
		if rest, err = RemainingLen(r); err != nil {
			return
		}
		head.Size = rest + HeaderSize
	case 1:
		head.Extended = true
		if head.Size, err = readU64(r, "extended size"); err != nil {
			return
		}
	default:
		head.Size = uint64(size)
	}

	if head.Size < head.HeaderLen() {
		err = newErr(ErrorKindMalformed, 0, "atom %s declares size %d below its header length %d",
			head.Tag, head.Size, head.HeaderLen())
	}
	return
}

// AtomBounds locates an atom within a stream without holding its content.
type AtomBounds struct {
	Tag          Tag
	Start        int64
	ContentStart int64
	ContentLen   uint64
}

func (b AtomBounds) HeaderLen() uint64 {
	return uint64(b.ContentStart - b.Start) //nolint:gosec
}

func (b AtomBounds) Len() uint64 {
	return b.HeaderLen() + b.ContentLen
}

func (b AtomBounds) End() int64 {
	return b.ContentStart + int64(b.ContentLen) //nolint:gosec
}

// Head returns the header the bounds were recorded from.
func (b AtomBounds) Head() Head {
	return Head{
		Tag:      b.Tag,
		Size:     b.Len(),
		Offset:   b.Start,
		Extended: b.HeaderLen() == ExtendedHeaderSize,
	}
}
