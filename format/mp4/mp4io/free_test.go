package mp4io

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	m "github.com/ugparu/mp4meta/format/mp4/mp4io/mp4iotest"
)

func TestFreeWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewFree(24).Write(&buf))
	require.Equal(t, m.Atom("free", make([]byte, 16)), buf.Bytes())

	buf.Reset()
	require.NoError(t, NewFree(3).Write(&buf))
	require.Equal(t, m.Atom("free"), buf.Bytes())
}

func TestItemListSpace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		meta []byte
		room uint64
	}{
		{
			name: "free_after_ilst",
			meta: m.FullAtom("meta", 0, m.Handler("mdir", ""), m.Atom("ilst", make([]byte, 2)), m.Atom("free", make([]byte, 6))),
			room: 10 + 14,
		},
		{
			name: "free_before_ilst",
			meta: m.FullAtom("meta", 0, m.Atom("free", make([]byte, 6)), m.Atom("ilst", make([]byte, 2))),
			room: 10,
		},
		{
			name: "no_ilst",
			meta: m.FullAtom("meta", 0, m.Handler("mdir", "")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := bytes.NewReader(tt.meta)
			head, err := ParseHead(r)
			require.NoError(t, err)
			node, err := FindAtom(r, head)
			require.NoError(t, err)

			meta := node.(*MetaBounds)
			start, room := meta.ItemListSpace()
			require.Equal(t, tt.room, room)
			if meta.ItemList != nil {
				require.Equal(t, meta.ItemList.Start, start)
			}
		})
	}
}
