package mp4io

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ugparu/mp4meta/utils/bits/pio"
)

const hdlrFixedSize = fullHeadSize + 4 + 4 + 12

// HandlerRef is the hdlr atom naming the handler of a media or metadata box.
type HandlerRef struct {
	Version     uint8
	Flags       uint32
	PreDefined  uint32
	HandlerType Tag
	Reserved    [3]uint32
	Name        string
	AtomPos
}

// NewMetadataHandler returns the handler iTunes writes in front of an ilst.
func NewMetadataHandler() *HandlerRef {
	return &HandlerRef{
		HandlerType: MDIR,
		Reserved:    [3]uint32{uint32(APPL), 0, 0},
	}
}

func (hdlr HandlerRef) Tag() Tag {
	return HDLR
}

func (hdlr HandlerRef) Children() []Atom {
	return nil
}

func (hdlr HandlerRef) String() string {
	return fmt.Sprintf("type=%s name=%q", hdlr.HandlerType, hdlr.Name)
}

func (hdlr *HandlerRef) parse(r io.ReadSeeker, head Head, _ int) error {
	hdlr.setPos(head)
	if head.ContentLen() < hdlrFixedSize {
		return newErr(ErrorKindMalformed, 0, "hdlr content of %d bytes", head.ContentLen())
	}
	b, err := readBytes(r, head.ContentLen(), "hdlr")
	if err != nil {
		return err
	}
	hdlr.Version = pio.U8(b)
	hdlr.Flags = pio.U24BE(b[1:])
	hdlr.PreDefined = pio.U32BE(b[4:])
	hdlr.HandlerType = Tag(pio.U32BE(b[8:]))
	for i := range hdlr.Reserved {
		hdlr.Reserved[i] = pio.U32BE(b[12+4*i:])
	}
	hdlr.Name = string(bytes.TrimRight(b[hdlrFixedSize:], "\x00"))
	return nil
}

func (hdlr HandlerRef) contentLen() uint64 {
	return hdlrFixedSize + uint64(len(hdlr.Name)) + 1
}

func (hdlr HandlerRef) Len() uint64 {
	return NewHead(HDLR, hdlr.contentLen()).Len()
}

// Write emits the atom; the name is NUL terminated.
func (hdlr HandlerRef) Write(w io.Writer) error {
	if err := NewHead(HDLR, hdlr.contentLen()).Write(w); err != nil {
		return err
	}
	b := make([]byte, hdlr.contentLen())
	putFullHead(b, hdlr.Version, hdlr.Flags)
	pio.PutU32BE(b[4:], hdlr.PreDefined)
	pio.PutU32BE(b[8:], uint32(hdlr.HandlerType))
	for i, v := range hdlr.Reserved {
		pio.PutU32BE(b[12+4*i:], v)
	}
	copy(b[hdlrFixedSize:], hdlr.Name)
	_, err := w.Write(b)
	return ioErr("write hdlr", err)
}
