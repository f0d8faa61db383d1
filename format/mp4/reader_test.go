package mp4

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/mp4meta/format/mp4/mp4io"
	m "github.com/ugparu/mp4meta/format/mp4/mp4io/mp4iotest"
)

func TestReaderMemoizes(t *testing.T) {
	t.Parallel()

	rd := NewReader(bytes.NewReader(m.File()))
	f1, err := rd.Read()
	require.NoError(t, err)
	f2, err := rd.Read()
	require.NoError(t, err)
	require.Same(t, f1, f2)

	b1, err := rd.Bounds()
	require.NoError(t, err)
	b2, err := rd.Bounds()
	require.NoError(t, err)
	require.Same(t, b1, b2)

	ilst, err := rd.ItemList()
	require.NoError(t, err)
	require.Same(t, f1.ItemList(), ilst)
}

func TestReaderWithoutMovie(t *testing.T) {
	t.Parallel()

	rd := NewReader(bytes.NewReader(m.Atom("ftyp", []byte("isom"), m.BE32(0))))
	ilst, err := rd.ItemList()
	require.NoError(t, err)
	require.Nil(t, ilst)

	b, err := rd.Bounds()
	require.NoError(t, err)
	require.Nil(t, b.Movie)
}

func writeFiles(t *testing.T, files map[string][]byte) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(files))
	for name, b := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, b, 0o600))
		paths = append(paths, path)
	}
	return paths
}

func TestReadMany(t *testing.T) {
	t.Parallel()

	t.Run("reads_in_order", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		var paths []string
		for i, b := range [][]byte{m.File(), m.Layout(nil, true), m.Layout(m.Atom("udta"), false)} {
			path := filepath.Join(dir, string(rune('a'+i))+".m4a")
			require.NoError(t, os.WriteFile(path, b, 0o600))
			paths = append(paths, path)
		}

		files, err := ReadMany(context.Background(), paths...)
		require.NoError(t, err)
		require.Len(t, files, 3)
		require.NotNil(t, files[0].ItemList())
		require.Nil(t, files[1].Movie.UserData)
		require.NotNil(t, files[2].Movie.UserData)
		for _, f := range files {
			require.Equal(t, 5*time.Second, f.Duration())
		}
	})

	t.Run("no_paths", func(t *testing.T) {
		t.Parallel()
		files, err := ReadMany(context.Background())
		require.NoError(t, err)
		require.Nil(t, files)
	})

	t.Run("missing_file", func(t *testing.T) {
		t.Parallel()
		paths := writeFiles(t, map[string][]byte{"ok.m4a": m.File()})
		missing := filepath.Join(filepath.Dir(paths[0]), "missing.m4a")

		_, err := ReadMany(context.Background(), append(paths, missing)...)
		require.ErrorIs(t, err, os.ErrNotExist)
		require.Contains(t, err.Error(), missing)
	})

	t.Run("parse_error", func(t *testing.T) {
		t.Parallel()
		bad := m.Layout(m.UserData(m.Atom("ilst", m.Atom("\xa9nam", m.Data(999, nil)))), false)
		paths := writeFiles(t, map[string][]byte{"bad.m4a": bad})

		_, err := ReadMany(context.Background(), paths...)
		require.ErrorIs(t, err, mp4io.ErrUnknownDataType)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		paths := writeFiles(t, map[string][]byte{"ok.m4a": m.File()})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := ReadMany(ctx, paths...)
		require.ErrorIs(t, err, context.Canceled)
	})
}
