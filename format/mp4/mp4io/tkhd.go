package mp4io

import (
	"fmt"
	"io"
	"time"

	"github.com/ugparu/mp4meta/utils/bits/pio"
)

const TKHD = Tag(0x746b6864)

// tkhdTailSize covers the fields after the duration: reserved, layer, alternate group,
// volume, reserved, matrix, width and height.
const tkhdTailSize = 8 + 2 + 2 + 2 + 2 + 36 + 4 + 4

// TrackHeader is the tkhd atom. Its duration is in the movie time scale.
type TrackHeader struct {
	Version       uint8
	Flags         uint32
	CreateTime    time.Time
	ModifyTime    time.Time
	TrackID       uint32
	DurationTicks uint64
	Layer         int16
	Volume        float64
	Width         float64
	Height        float64
	AtomPos
}

func (tkhd TrackHeader) Tag() Tag {
	return TKHD
}

func (tkhd TrackHeader) Children() []Atom {
	return nil
}

func (tkhd TrackHeader) String() string {
	return fmt.Sprintf("id=%d volume=%.2f size=%gx%g", tkhd.TrackID, tkhd.Volume, tkhd.Width, tkhd.Height)
}

// Duration converts the track duration with the time scale of the movie header.
func (tkhd TrackHeader) Duration(movieTimeScale uint32) time.Duration {
	return TicksToDuration(tkhd.DurationTicks, movieTimeScale)
}

func (tkhd *TrackHeader) parse(r io.ReadSeeker, head Head, _ int) (err error) {
	tkhd.setPos(head)
	if err = needContent(head, fullHeadSize); err != nil {
		return
	}
	if tkhd.Version, tkhd.Flags, err = readFullHead(r); err != nil {
		return
	}

	var create, modify uint64
	switch tkhd.Version {
	case 0:
		var b [20]byte
		if err = needContent(head, fullHeadSize+20+tkhdTailSize); err != nil {
			return
		}
		if err = readFull(r, b[:], "tkhd"); err != nil {
			return
		}
		create, modify = uint64(pio.U32BE(b[0:])), uint64(pio.U32BE(b[4:]))
		tkhd.TrackID = pio.U32BE(b[8:])
		tkhd.DurationTicks = uint64(pio.U32BE(b[16:]))
	case 1:
		var b [32]byte
		if err = needContent(head, fullHeadSize+32+tkhdTailSize); err != nil {
			return
		}
		if err = readFull(r, b[:], "tkhd"); err != nil {
			return
		}
		create, modify = pio.U64BE(b[0:]), pio.U64BE(b[8:])
		tkhd.TrackID = pio.U32BE(b[16:])
		tkhd.DurationTicks = pio.U64BE(b[24:])
	default:
		return newErr(ErrorKindUnknownVersion, uint32(tkhd.Version), "unknown tkhd version %d", tkhd.Version)
	}
	tkhd.CreateTime = secondsSince1904(create)
	tkhd.ModifyTime = secondsSince1904(modify)

	var b [tkhdTailSize]byte
	if err = readFull(r, b[:], "tkhd"); err != nil {
		return
	}
	tkhd.Layer = pio.I16BE(b[8:])
	tkhd.Volume = fixed16(b[12:])
	tkhd.Width = fixed32(b[52:])
	tkhd.Height = fixed32(b[56:])
	return nil
}

// fixed16 decodes an 8.8 fixed point number.
func fixed16(b []byte) float64 {
	return float64(int8(b[0])) + float64(b[1])/256.0
}

// fixed32 decodes a 16.16 fixed point number.
func fixed32(b []byte) float64 {
	return float64(pio.U16BE(b[0:2])) + float64(pio.U16BE(b[2:4]))/65536.0
}
