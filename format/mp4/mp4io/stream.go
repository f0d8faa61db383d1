package mp4io

import (
	"bytes"
	"io"

	"github.com/ugparu/mp4meta/utils/bits/pio"
)

func tell(r io.Seeker) (int64, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	return pos, ioErr("tell", err)
}

func seekTo(r io.Seeker, pos int64) error {
	_, err := r.Seek(pos, io.SeekStart)
	return ioErr("seek", err)
}

// RemainingLen returns the number of bytes between the current position and the end of
// the stream. The position is restored before returning.
func RemainingLen(r io.Seeker) (uint64, error) {
	pos, err := tell(r)
	if err != nil {
		return 0, err
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, ioErr("seek end", err)
	}
	if err = seekTo(r, pos); err != nil {
		return 0, err
	}
	if end < pos {
		return 0, nil
	}
	return uint64(end - pos), nil
}

func readFull(r io.Reader, b []byte, what string) error {
	_, err := io.ReadFull(r, b)
	return ioErr(what, err)
}

func readU8(r io.Reader, what string) (uint8, error) {
	var b [1]byte
	err := readFull(r, b[:], what)
	return b[0], err
}

func readU32(r io.Reader, what string) (uint32, error) {
	var b [4]byte
	if err := readFull(r, b[:], what); err != nil {
		return 0, err
	}
	return pio.U32BE(b[:]), nil
}

func readU64(r io.Reader, what string) (uint64, error) {
	var b [8]byte
	if err := readFull(r, b[:], what); err != nil {
		return 0, err
	}
	return pio.U64BE(b[:]), nil
}

// readBytes reads exactly n bytes. The buffer grows with the data actually read, so a
// bogus length fails with io.ErrUnexpectedEOF instead of a huge allocation.
func readBytes(r io.Reader, n uint64, what string) ([]byte, error) {
	buf := new(bytes.Buffer)
	m, err := io.Copy(buf, io.LimitReader(r, int64(min(n, uint64(1<<63-1))))) //nolint:gosec
	if err != nil {
		return nil, ioErr(what, err)
	}
	if uint64(m) != n {
		return nil, ioErr(what, io.ErrUnexpectedEOF)
	}
	return buf.Bytes(), nil
}

// needContent fails when head carries fewer than n content bytes.
func needContent(head Head, n uint64) error {
	if head.ContentLen() < n {
		return newErr(ErrorKindMalformed, 0, "%s content of %d bytes, need %d", head.Tag, head.ContentLen(), n)
	}
	return nil
}

// readFullHead reads the version byte and 24-bit flags that open a full atom.
func readFullHead(r io.Reader) (version uint8, flags uint32, err error) {
	var b [fullHeadSize]byte
	if err = readFull(r, b[:], "version and flags"); err != nil {
		return
	}
	version = pio.U8(b[:])
	flags = pio.U24BE(b[1:])
	return
}

func putFullHead(b []byte, version uint8, flags uint32) {
	pio.PutU8(b, version)
	pio.PutU24BE(b[1:], flags)
}
