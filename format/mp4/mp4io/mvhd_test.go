package mp4io

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	m "github.com/ugparu/mp4meta/format/mp4/mp4io/mp4iotest"
)

func parseBytes(t *testing.T, b []byte) (Atom, error) {
	t.Helper()
	r := bytes.NewReader(b)
	head, err := ParseHead(r)
	require.NoError(t, err)
	return ParseAtom(r, head)
}

func TestMovieHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		atom      []byte
		version   uint8
		timescale uint32
		want      time.Duration
	}{
		{name: "version_0", atom: m.MovieHeaderV0(1000, 5000), timescale: 1000, want: 5 * time.Second},
		{name: "version_1", atom: m.MovieHeaderV1(48000, 48000), version: 1, timescale: 48000, want: time.Second},
		{name: "zero_timescale", atom: m.MovieHeaderV0(0, 5000), want: 0},
		{name: "sub_second", atom: m.MovieHeaderV0(44100, 22050), timescale: 44100, want: 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			atom, err := parseBytes(t, tt.atom)
			require.NoError(t, err)

			mvhd, ok := atom.(*MovieHeader)
			require.True(t, ok)
			require.Equal(t, tt.version, mvhd.Version)
			require.Equal(t, tt.timescale, mvhd.TimeScale)
			require.Equal(t, tt.want, mvhd.Duration)
			require.Equal(t, epoch1904, mvhd.CreateTime)
		})
	}

	t.Run("unknown_version", func(t *testing.T) {
		t.Parallel()
		_, err := parseBytes(t, m.FullAtom("mvhd", 2, make([]byte, 100)))
		require.ErrorIs(t, err, ErrUnknownVersion)

		var e *Error
		require.ErrorAs(t, err, &e)
		require.Equal(t, uint32(2), e.Code)
		require.Equal(t, []Frame{{Tag: MVHD, Offset: 0}}, e.Path)
	})

	t.Run("truncated_stream", func(t *testing.T) {
		t.Parallel()
		b := m.FullAtom("mvhd", 0, make([]byte, 16))
		_, err := parseBytes(t, b[:len(b)-6])
		require.ErrorIs(t, err, ErrIo)
	})
}

func TestShortHeaders(t *testing.T) {
	t.Parallel()

	// The sibling holds plausible time scale and duration words.
	sibling := m.Atom("junk", m.BE32(1000), m.BE32(7000), make([]byte, 96))

	tests := []struct {
		name string
		atom []byte
	}{
		{name: "mvhd_flags_only", atom: m.FullAtom("mvhd", 0)},
		{name: "mvhd_no_flags", atom: m.Atom("mvhd", []byte{0, 0})},
		{name: "mvhd_v0", atom: m.FullAtom("mvhd", 0, make([]byte, 12))},
		{name: "mvhd_v1", atom: m.FullAtom("mvhd", 1, make([]byte, 20))},
		{name: "mdhd_no_language", atom: m.FullAtom("mdhd", 0, make([]byte, 16))},
		{name: "tkhd_v0", atom: m.FullAtom("tkhd", 0, make([]byte, 20))},
		{name: "tkhd_v1", atom: m.FullAtom("tkhd", 1, make([]byte, 32+59))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			atom, err := parseBytes(t, m.Cat(tt.atom, sibling))
			require.ErrorIs(t, err, ErrMalformed)
			require.Nil(t, atom)

			var e *Error
			require.ErrorAs(t, err, &e)
			require.Len(t, e.Path, 1)
			require.Equal(t, int64(0), e.Path[0].Offset)
		})
	}

	t.Run("inside_moov", func(t *testing.T) {
		t.Parallel()
		b := m.Atom("moov", m.FullAtom("mvhd", 0), sibling)
		_, err := parseBytes(t, b)
		require.ErrorIs(t, err, ErrMalformed)

		var e *Error
		require.ErrorAs(t, err, &e)
		require.Equal(t, []Frame{{Tag: MVHD, Offset: 8}, {Tag: MOOV, Offset: 0}}, e.Path)
	})
}

func TestMediaHeader(t *testing.T) {
	t.Parallel()

	atom, err := parseBytes(t, m.MediaHeaderV0(44100, 441000))
	require.NoError(t, err)

	mdhd, ok := atom.(*MediaHeader)
	require.True(t, ok)
	require.Equal(t, "eng", mdhd.Language)
	require.Equal(t, 10*time.Second, mdhd.Duration)
}

func TestTicksToDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ticks     uint64
		timescale uint32
		want      time.Duration
	}{
		{name: "zero_timescale", ticks: 10, timescale: 0, want: 0},
		{name: "truncates", ticks: 1, timescale: 3, want: 333333333},
		{name: "wide_intermediate", ticks: 1 << 40, timescale: 1 << 20, want: time.Duration(1<<20) * time.Second},
		{name: "saturates", ticks: math.MaxUint64, timescale: 1, want: math.MaxInt64},
		{name: "saturates_below_quotient_overflow", ticks: math.MaxUint64 / 2, timescale: 2, want: math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, TicksToDuration(tt.ticks, tt.timescale))
		})
	}
}

func TestTrackHeader(t *testing.T) {
	t.Parallel()

	t.Run("version_1", func(t *testing.T) {
		t.Parallel()
		b := m.FullAtom("tkhd", 1,
			m.BE64(0), m.BE64(0), m.BE32(7), m.BE32(0), m.BE64(1<<33),
			make([]byte, 12), m.BE16(0x0080), make([]byte, 2),
			make([]byte, 36), m.BE32(0x01400000), m.BE32(0x00f08000),
		)
		atom, err := parseBytes(t, b)
		require.NoError(t, err)

		tkhd := atom.(*TrackHeader)
		require.Equal(t, uint32(7), tkhd.TrackID)
		require.Equal(t, uint64(1<<33), tkhd.DurationTicks)
		require.InDelta(t, 0.5, tkhd.Volume, 1e-9)
		require.InDelta(t, 320.0, tkhd.Width, 1e-9)
		require.InDelta(t, 240.5, tkhd.Height, 1e-9)
		require.Equal(t, time.Duration(1<<33)*time.Second, tkhd.Duration(1))
	})

	t.Run("unknown_version", func(t *testing.T) {
		t.Parallel()
		_, err := parseBytes(t, m.FullAtom("tkhd", 3, make([]byte, 80)))
		require.ErrorIs(t, err, ErrUnknownVersion)
	})
}
