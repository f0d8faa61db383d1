// Package mp4io walks the atom tree of ISO base media files and codes the typed values
// stored in iTunes style metadata atoms.
//
// Two walks share one recursive-descent skeleton: ReadFile materializes the atoms it
// knows, FindFile only records where the atoms needed for a metadata rewrite live.
// Atoms outside a kind's schema are skipped, never reported as errors.
package mp4io

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ugparu/mp4meta/utils/bits/pio"
)

const (
	HeaderSize         = 8
	ExtendedHeaderSize = 16
	fullHeadSize       = 4

	// MaxDepth bounds the nesting of atoms a walk descends into.
	MaxDepth = 32
)

const (
	FTYP     = Tag(0x66747970)
	MOOV     = Tag(0x6d6f6f76)
	MVHD     = Tag(0x6d766864)
	TRAK     = Tag(0x7472616b)
	MDIA     = Tag(0x6d646961)
	MDHD     = Tag(0x6d646864)
	HDLR     = Tag(0x68646c72)
	MINF     = Tag(0x6d696e66)
	STBL     = Tag(0x7374626c)
	STCO     = Tag(0x7374636f)
	CO64     = Tag(0x636f3634)
	UDTA     = Tag(0x75647461)
	META     = Tag(0x6d657461)
	ILST     = Tag(0x696c7374)
	DATA     = Tag(0x64617461)
	MEAN     = Tag(0x6d65616e)
	NAME     = Tag(0x6e616d65)
	FREEFORM = Tag(0x2d2d2d2d) // "----"
	MDAT     = Tag(0x6d646174)
	FREE     = Tag(0x66726565)
	MDIR     = Tag(0x6d646972)
	APPL     = Tag(0x6170706c)
)

var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

func secondsSince1904(sec uint64) time.Time {
	return epoch1904.Add(time.Second * time.Duration(sec)) //nolint:gosec
}

// Tag is a four character atom type code.
type Tag uint32

func (t Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(t))
	for i := 0; i < 4; i++ {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	return string(b[:])
}

// StringToTag packs the first four bytes of tag, e.g. "\xa9nam".
func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], tag)
	return Tag(pio.U32BE(b[:]))
}

// Atom is a node of the parsed tree.
type Atom interface {
	Tag() Tag
	Pos() (int64, uint64)
	Children() []Atom
}

// AtomPos is the absolute offset and declared size of a parsed atom.
type AtomPos struct {
	Offset int64
	Size   uint64
}

func (p AtomPos) Pos() (int64, uint64) {
	return p.Offset, p.Size
}

func (p *AtomPos) setPos(head Head) {
	p.Offset, p.Size = head.Offset, head.Size
}

func printatom(out io.Writer, root Atom, depth int) {
	offset, size := root.Pos()

	fmt.Fprintf(out,
		"%s%s offset=%d size=%d",
		strings.Repeat(" ", depth*2), root.Tag(), offset, size,
	)
	if str, ok := root.(fmt.Stringer); ok {
		fmt.Fprint(out, " ", str.String())
	}
	fmt.Fprintln(out)

	for _, child := range root.Children() {
		printatom(out, child, depth+1)
	}
}

// FprintAtom writes an indented dump of root and its descendants.
func FprintAtom(out io.Writer, root Atom) {
	printatom(out, root, 0)
}

func PrintAtom(root Atom) {
	FprintAtom(os.Stdout, root)
}
