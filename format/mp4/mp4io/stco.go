package mp4io

import (
	"fmt"
	"io"
	"math"

	"github.com/ugparu/mp4meta/utils/bits/pio"
)

// ChunkOffsets is a stco (32-bit) or co64 (64-bit) chunk offset table.
type ChunkOffsets struct {
	Large   bool
	Version uint8
	Flags   uint32
	Entries []uint64
	AtomPos
}

func (c ChunkOffsets) Tag() Tag {
	if c.Large {
		return CO64
	}
	return STCO
}

func (c ChunkOffsets) Children() []Atom {
	return nil
}

func (c ChunkOffsets) String() string {
	return fmt.Sprintf("entries=%d", len(c.Entries))
}

func (c ChunkOffsets) entrySize() uint64 {
	if c.Large {
		return 8
	}
	return 4
}

func (c *ChunkOffsets) parse(r io.ReadSeeker, head Head, _ int) (err error) {
	c.setPos(head)
	c.Large = head.Tag == CO64
	if c.Version, c.Flags, err = readFullHead(r); err != nil {
		return
	}
	var count uint32
	if count, err = readU32(r, "entry count"); err != nil {
		return
	}
	size := uint64(count) * c.entrySize()
	if size+fullHeadSize+4 > head.ContentLen() {
		return newErr(ErrorKindMalformed, 0, "%s declares %d entries in %d bytes", head.Tag, count, head.ContentLen())
	}
	var b []byte
	if b, err = readBytes(r, size, "chunk offsets"); err != nil {
		return
	}
	c.Entries = make([]uint64, count)
	for i := range c.Entries {
		if c.Large {
			c.Entries[i] = pio.U64BE(b[8*i:])
		} else {
			c.Entries[i] = uint64(pio.U32BE(b[4*i:]))
		}
	}
	return nil
}

// ParseChunkOffsets reads the table located by b.
func ParseChunkOffsets(r io.ReadSeeker, b AtomBounds) (*ChunkOffsets, error) {
	if err := seekTo(r, b.ContentStart); err != nil {
		return nil, err
	}
	c := &ChunkOffsets{}
	if err := c.parse(r, b.Head(), 0); err != nil {
		return nil, parseErr(b.Tag, b.Start, err)
	}
	return c, nil
}

// Shift moves every entry at or beyond from by delta.
func (c *ChunkOffsets) Shift(from uint64, delta int64) error {
	for i, off := range c.Entries {
		if off < from {
			continue
		}
		var shifted uint64
		if delta < 0 {
			d := uint64(-delta)
			if d > off {
				return newErr(ErrorKindMalformed, 0, "%s entry %d underflows", c.Tag(), off)
			}
			shifted = off - d
		} else {
			shifted = off + uint64(delta)
		}
		if !c.Large && shifted > math.MaxUint32 {
			return newErr(ErrorKindMalformed, 0, "stco entry %d overflows 32 bits after shift", off)
		}
		c.Entries[i] = shifted
	}
	return nil
}

// MarshalContent encodes the table without its atom header.
func (c ChunkOffsets) MarshalContent() []byte {
	b := make([]byte, fullHeadSize+4+uint64(len(c.Entries))*c.entrySize())
	putFullHead(b, c.Version, c.Flags)
	pio.PutU32BE(b[4:], uint32(len(c.Entries))) //nolint:gosec
	n := 8
	for _, e := range c.Entries {
		if c.Large {
			pio.PutU64BE(b[n:], e)
			n += 8
		} else {
			pio.PutU32BE(b[n:], uint32(e)) //nolint:gosec
			n += 4
		}
	}
	return b
}
