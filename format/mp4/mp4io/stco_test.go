package mp4io

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	m "github.com/ugparu/mp4meta/format/mp4/mp4io/mp4iotest"
)

func TestChunkOffsetsShift(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		large   bool
		entries []uint64
		from    uint64
		delta   int64
		want    []uint64
		err     error
	}{
		{name: "grow", entries: []uint64{100, 500, 900}, from: 500, delta: 16, want: []uint64{100, 516, 916}},
		{name: "shrink", entries: []uint64{100, 500, 900}, from: 200, delta: -50, want: []uint64{100, 450, 850}},
		{name: "nothing_after", entries: []uint64{10, 20}, from: 30, delta: 1000, want: []uint64{10, 20}},
		{name: "stco_overflow", entries: []uint64{math.MaxUint32 - 4}, delta: 5, err: ErrMalformed},
		{name: "co64_no_overflow", large: true, entries: []uint64{math.MaxUint32 - 4}, delta: 5, want: []uint64{math.MaxUint32 + 1}},
		{name: "underflow", entries: []uint64{10}, delta: -11, err: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := &ChunkOffsets{Large: tt.large, Entries: tt.entries}
			err := c.Shift(tt.from, tt.delta)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, c.Entries)
		})
	}
}

func TestChunkOffsetsMarshal(t *testing.T) {
	t.Parallel()

	for _, b := range [][]byte{m.ChunkOffsets(8, 1024, 4096), m.ChunkOffsets64(8, 1<<40)} {
		r := bytes.NewReader(b)
		head, err := ParseHead(r)
		require.NoError(t, err)

		c, err := ParseChunkOffsets(r, head.Bounds())
		require.NoError(t, err)
		require.Equal(t, head.Tag == CO64, c.Large)
		require.Equal(t, b[HeaderSize:], c.MarshalContent())
	}
}

func TestChunkOffsetsMalformed(t *testing.T) {
	t.Parallel()

	b := m.FullAtom("stco", 0, m.BE32(1000), m.BE32(1))
	r := bytes.NewReader(b)
	head, err := ParseHead(r)
	require.NoError(t, err)

	_, err = ParseChunkOffsets(r, head.Bounds())
	require.ErrorIs(t, err, ErrMalformed)
}
