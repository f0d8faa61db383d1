package mp4

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/mp4meta/format/mp4/mp4io"
	m "github.com/ugparu/mp4meta/format/mp4/mp4io/mp4iotest"
)

func writeMetadata(t *testing.T, src []byte, ilst *mp4io.ItemList) []byte {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, WriteMetadata(bytes.NewReader(src), &out, ilst))
	return out.Bytes()
}

// requireSamples checks that both chunk offset tables still point at their samples.
func requireSamples(t *testing.T, b []byte) *mp4io.File {
	t.Helper()
	f, err := NewReader(bytes.NewReader(b)).Read()
	require.NoError(t, err)
	require.Len(t, f.Movie.Tracks, 2)

	stco := f.Movie.Tracks[0].Media.Info.SampleTable.ChunkOffsets.Entries[0]
	co64 := f.Movie.Tracks[1].Media.Info.SampleTable.ChunkOffsets64.Entries[0]
	require.Equal(t, "sample-one", string(b[stco:stco+10]))
	require.Equal(t, "sample-two", string(b[co64:co64+10]))
	return f
}

func requireMediaData(t *testing.T, b []byte) {
	t.Helper()
	bounds, err := NewReader(bytes.NewReader(b)).Bounds()
	require.NoError(t, err)
	for _, span := range bounds.Spans {
		if span.Tag == mp4io.MDAT {
			require.Equal(t, m.MediaPayload, b[span.ContentStart:span.End()])
			return
		}
	}
	require.Fail(t, "no mdat")
}

func newItems() *mp4io.ItemList {
	l := &mp4io.ItemList{}
	l.Set(mp4io.FourCC("\xa9nam"), mp4io.NewUTF8("A considerably longer title than before"))
	l.Set(mp4io.FourCC("\xa9ART"), mp4io.NewUTF8("Artist"))
	l.Set(mp4io.Freeform("com.apple.iTunes", "ISRC"), mp4io.NewUTF16("USRC17607839"))
	return l
}

func TestWriteMetadataReplace(t *testing.T) {
	t.Parallel()

	// The fixture ilst is 187 bytes followed by a 24 byte free atom.
	oldLen := len(m.ItemList())
	title := func(n int) func(*mp4io.ItemList) {
		return func(l *mp4io.ItemList) {
			l.Set(mp4io.FourCC("\xa9nam"), mp4io.NewUTF8(strings.Repeat("x", n)))
		}
	}

	tests := []struct {
		name  string
		edit  func(*mp4io.ItemList)
		delta func(*mp4io.ItemList) int
		spans []mp4io.Tag
	}{
		{
			name: "pads_remaining_space",
			edit: func(l *mp4io.ItemList) {
				title(39)(l)
				l.Remove(mp4io.FourCC("tmpo"))
			},
			spans: []mp4io.Tag{mp4io.HDLR, mp4io.ILST, mp4io.FREE},
		},
		{
			name:  "consumes_free_exactly",
			edit:  title(29),
			spans: []mp4io.Tag{mp4io.HDLR, mp4io.ILST},
		},
		{
			name:  "gap_too_small_for_padding",
			edit:  title(25),
			delta: func(*mp4io.ItemList) int { return 20 },
			spans: []mp4io.Tag{mp4io.HDLR, mp4io.ILST, mp4io.FREE},
		},
		{
			name: "shrinks_into_padding",
			edit: func(l *mp4io.ItemList) {
				*l = mp4io.ItemList{}
				l.Set(mp4io.FourCC("\xa9nam"), mp4io.NewUTF8("T"))
			},
			spans: []mp4io.Tag{mp4io.HDLR, mp4io.ILST, mp4io.FREE},
		},
		{
			name: "grows_past_free",
			edit: func(l *mp4io.ItemList) {
				l.Set(mp4io.FourCC("covr"), mp4io.NewJPEG(append([]byte{0xff, 0xd8, 0xff}, make([]byte, 297)...)))
			},
			delta: func(l *mp4io.ItemList) int { return int(l.Len()) - oldLen },
			spans: []mp4io.Tag{mp4io.HDLR, mp4io.ILST, mp4io.FREE},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := m.File()
			f, err := NewReader(bytes.NewReader(src)).Read()
			require.NoError(t, err)

			ilst := f.ItemList()
			tt.edit(ilst)
			delta := 0
			if tt.delta != nil {
				delta = tt.delta(ilst)
			}

			out := writeMetadata(t, src, ilst)
			require.Len(t, out, len(src)+delta)

			got := requireSamples(t, out)
			requireMediaData(t, out)

			_, moovSize := got.Movie.Pos()
			_, oldSize := f.Movie.Pos()
			require.Equal(t, int(oldSize)+delta, int(moovSize))

			items := got.ItemList()
			require.Len(t, items.Items, len(ilst.Items))
			for i, it := range items.Items {
				require.Equal(t, ilst.Items[i].Ident, it.Ident)
				require.True(t, ilst.Items[i].Data[0].Equal(it.Data[0]))
			}

			bounds, err := NewReader(bytes.NewReader(out)).Bounds()
			require.NoError(t, err)
			var tags []mp4io.Tag
			for _, span := range bounds.Movie.UserData.Meta.Spans {
				tags = append(tags, span.Tag)
			}
			require.Equal(t, tt.spans, tags)
		})
	}
}

func TestWriteMetadataUnchanged(t *testing.T) {
	t.Parallel()

	src := m.File()
	f, err := NewReader(bytes.NewReader(src)).Read()
	require.NoError(t, err)

	require.Equal(t, src, writeMetadata(t, src, f.ItemList()))
}

func TestWriteMetadataInsert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		udta []byte
	}{
		{name: "new_udta"},
		{name: "new_meta", udta: m.Atom("udta", m.Atom("\xa9xyz", make([]byte, 6)))},
		{name: "empty_udta", udta: m.Atom("udta")},
		{name: "new_ilst", udta: m.Atom("udta", m.FullAtom("meta", 0, m.Handler("mdir", ""), m.Atom("free", make([]byte, 4))))},
		{name: "existing_ilst", udta: m.UserData(m.ItemList())},
	}

	for _, tt := range tests {
		for _, mdatFirst := range []bool{false, true} {
			name := tt.name
			if mdatFirst {
				name += "_mdat_first"
			}
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				src := m.Layout(tt.udta, mdatFirst)
				out := writeMetadata(t, src, newItems())

				got := requireSamples(t, out)
				requireMediaData(t, out)

				items := got.ItemList()
				require.NotNil(t, items)
				require.Len(t, items.Items, 3)
				isrc := items.Find(mp4io.Freeform("com.apple.iTunes", "ISRC"))
				require.NotNil(t, isrc)
				s, ok := isrc.Data[0].UTF16()
				require.True(t, ok)
				require.Equal(t, "USRC17607839", s)
				require.Equal(t, mp4io.MDIR, got.Movie.UserData.Meta.Handler.HandlerType)

				bounds, err := NewReader(bytes.NewReader(out)).Bounds()
				require.NoError(t, err)
				require.Equal(t, int64(len(out)), bounds.Spans[len(bounds.Spans)-1].End())
			})
		}
	}
}

func TestWriteMetadataNilItemList(t *testing.T) {
	t.Parallel()

	out := writeMetadata(t, m.File(), nil)
	got := requireSamples(t, out)
	require.NotNil(t, got.ItemList())
	require.Empty(t, got.ItemList().Items)
}

func TestWriteMetadataErrors(t *testing.T) {
	t.Parallel()

	t.Run("no_moov", func(t *testing.T) {
		t.Parallel()
		src := m.Cat(m.Atom("ftyp", []byte("isom"), m.BE32(0)), m.Atom("mdat", m.MediaPayload))
		err := WriteMetadata(bytes.NewReader(src), &bytes.Buffer{}, newItems())
		require.ErrorIs(t, err, mp4io.ErrMalformed)
	})

	t.Run("stco_overflow", func(t *testing.T) {
		t.Parallel()
		src := m.Cat(
			m.Atom("ftyp", []byte("isom"), m.BE32(0)),
			m.Atom("moov", m.MovieHeaderV0(1, 1), m.Track(1, m.ChunkOffsets(0xfffffff0))),
			m.Atom("mdat", m.MediaPayload),
		)
		err := WriteMetadata(bytes.NewReader(src), &bytes.Buffer{}, newItems())
		require.ErrorIs(t, err, mp4io.ErrMalformed)
	})

	t.Run("broken_item", func(t *testing.T) {
		t.Parallel()
		src := m.Layout(m.UserData(m.Atom("ilst", m.Atom("\xa9nam", m.Data(999, nil)))), false)
		_, err := NewReader(bytes.NewReader(src)).Read()
		require.ErrorIs(t, err, mp4io.ErrUnknownDataType)

		// The splice only needs bounds, so the unreadable item is simply replaced.
		out := writeMetadata(t, src, newItems())
		requireSamples(t, out)
	})
}
