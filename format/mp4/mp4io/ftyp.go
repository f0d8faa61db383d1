package mp4io

import (
	"fmt"
	"io"

	"github.com/ugparu/mp4meta/utils/bits/pio"
)

// FileType is the ftyp atom.
type FileType struct {
	MajorBrand       Tag
	MinorVersion     uint32
	CompatibleBrands []Tag
	AtomPos
}

func (f FileType) Tag() Tag {
	return FTYP
}

func (f FileType) Children() []Atom {
	return nil
}

func (f FileType) String() string {
	return fmt.Sprintf("brand=%s version=%d compatible=%v", f.MajorBrand, f.MinorVersion, f.CompatibleBrands)
}

func (f *FileType) parse(r io.ReadSeeker, head Head, _ int) error {
	f.setPos(head)
	if head.ContentLen() < 8 {
		return newErr(ErrorKindMalformed, 0, "ftyp content of %d bytes", head.ContentLen())
	}
	b, err := readBytes(r, head.ContentLen(), "ftyp")
	if err != nil {
		return err
	}
	f.MajorBrand = Tag(pio.U32BE(b[0:]))
	f.MinorVersion = pio.U32BE(b[4:])
	f.CompatibleBrands = nil
	for n := 8; n+4 <= len(b); n += 4 {
		f.CompatibleBrands = append(f.CompatibleBrands, Tag(pio.U32BE(b[n:])))
	}
	return nil
}
