package mp4io

import (
	"fmt"
	"io"
	"math"
	"math/bits"
	"time"
)

// Timing holds the time fields shared by the movie and media headers.
type Timing struct {
	CreateTime    time.Time // seconds since midnight, Jan 1, 1904, in UTC
	ModifyTime    time.Time
	TimeScale     uint32 // time units per second
	DurationTicks uint64 // duration in TimeScale units
	Duration      time.Duration
}

// timingLen is the size of the time fields for a header version.
func timingLen(tag Tag, version uint8) (uint64, error) {
	switch version {
	case 0:
		return 16, nil
	case 1:
		return 28, nil
	default:
		return 0, newErr(ErrorKindUnknownVersion, uint32(version), "unknown %s version %d", tag, version)
	}
}

// readTiming reads the creation/modification times, time scale and duration. Version 0
// stores times and duration in 32 bits, version 1 in 64 bits.
func (t *Timing) readTiming(r io.Reader, tag Tag, version uint8) (err error) {
	var create, modify uint64
	switch version {
	case 0:
		var v uint32
		if v, err = readU32(r, "creation time"); err != nil {
			return
		}
		create = uint64(v)
		if v, err = readU32(r, "modification time"); err != nil {
			return
		}
		modify = uint64(v)
		if t.TimeScale, err = readU32(r, "time scale"); err != nil {
			return
		}
		if v, err = readU32(r, "duration"); err != nil {
			return
		}
		t.DurationTicks = uint64(v)
	case 1:
		if create, err = readU64(r, "creation time"); err != nil {
			return
		}
		if modify, err = readU64(r, "modification time"); err != nil {
			return
		}
		if t.TimeScale, err = readU32(r, "time scale"); err != nil {
			return
		}
		if t.DurationTicks, err = readU64(r, "duration"); err != nil {
			return
		}
	default:
		return newErr(ErrorKindUnknownVersion, uint32(version), "unknown %s version %d", tag, version)
	}

	t.CreateTime = secondsSince1904(create)
	t.ModifyTime = secondsSince1904(modify)
	t.Duration = TicksToDuration(t.DurationTicks, t.TimeScale)
	return nil
}

// TicksToDuration converts ticks of a time scale to a duration using integer division
// of ticks*1e9 by timescale. A zero time scale yields zero; results beyond the range of
// time.Duration saturate.
func TicksToDuration(ticks uint64, timescale uint32) time.Duration {
	if timescale == 0 {
		return 0
	}
	hi, lo := bits.Mul64(ticks, uint64(time.Second))
	if hi >= uint64(timescale) {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, uint64(timescale))
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(q)
}

// MovieHeader is the mvhd atom.
type MovieHeader struct {
	Version uint8
	Flags   uint32
	Timing
	AtomPos
}

func (mvhd MovieHeader) Tag() Tag {
	return MVHD
}

func (mvhd MovieHeader) Children() []Atom {
	return nil
}

func (mvhd MovieHeader) String() string {
	return fmt.Sprintf("version=%d timescale=%d duration=%s", mvhd.Version, mvhd.TimeScale, mvhd.Duration)
}

func (mvhd *MovieHeader) parse(r io.ReadSeeker, head Head, _ int) (err error) {
	mvhd.setPos(head)
	if err = needContent(head, fullHeadSize); err != nil {
		return
	}
	if mvhd.Version, mvhd.Flags, err = readFullHead(r); err != nil {
		return
	}
	n, err := timingLen(MVHD, mvhd.Version)
	if err != nil {
		return
	}
	if err = needContent(head, fullHeadSize+n); err != nil {
		return
	}
	return mvhd.readTiming(r, MVHD, mvhd.Version)
}
