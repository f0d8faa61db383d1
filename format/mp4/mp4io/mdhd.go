package mp4io

import (
	"fmt"
	"io"

	"github.com/ugparu/mp4meta/utils/bits/pio"
)

// MediaHeader is the mdhd atom of a track's media.
type MediaHeader struct {
	Version  uint8
	Flags    uint32
	Language string // ISO 639-2/T code
	Timing
	AtomPos
}

func (mdhd MediaHeader) Tag() Tag {
	return MDHD
}

func (mdhd MediaHeader) Children() []Atom {
	return nil
}

func (mdhd MediaHeader) String() string {
	return fmt.Sprintf("timescale=%d duration=%s language=%s", mdhd.TimeScale, mdhd.Duration, mdhd.Language)
}

func (mdhd *MediaHeader) parse(r io.ReadSeeker, head Head, _ int) (err error) {
	mdhd.setPos(head)
	if err = needContent(head, fullHeadSize); err != nil {
		return
	}
	if mdhd.Version, mdhd.Flags, err = readFullHead(r); err != nil {
		return
	}
	n, err := timingLen(MDHD, mdhd.Version)
	if err != nil {
		return
	}
	if err = needContent(head, fullHeadSize+n+2); err != nil {
		return
	}
	if err = mdhd.readTiming(r, MDHD, mdhd.Version); err != nil {
		return
	}
	var b [2]byte
	if err = readFull(r, b[:], "language"); err != nil {
		return
	}
	mdhd.Language = unpackLanguage(pio.U16BE(b[:]))
	return nil
}

// unpackLanguage decodes three 5-bit letters offset from 0x60.
func unpackLanguage(v uint16) string {
	if v == 0 {
		return ""
	}
	return string([]byte{
		byte(v>>10&0x1f) + 0x60,
		byte(v>>5&0x1f) + 0x60,
		byte(v&0x1f) + 0x60,
	})
}
