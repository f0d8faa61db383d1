package mp4io

import (
	"io"
)

// Meta is the meta atom of the user data. It is a full atom: version and flags precede
// the children.
type Meta struct {
	Version  uint8
	Flags    uint32
	Handler  *HandlerRef
	ItemList *ItemList
	AtomPos
}

// NewMeta wraps ilst with the handler iTunes expects.
func NewMeta(ilst *ItemList) *Meta {
	return &Meta{Handler: NewMetadataHandler(), ItemList: ilst}
}

func (m Meta) Tag() Tag {
	return META
}

func (m Meta) Children() (r []Atom) {
	if m.Handler != nil {
		r = append(r, m.Handler)
	}
	if m.ItemList != nil {
		r = append(r, m.ItemList)
	}
	return
}

func (m *Meta) parse(r io.ReadSeeker, head Head, depth int) (err error) {
	m.setPos(head)
	if m.Version, m.Flags, err = readFullHead(r); err != nil {
		return
	}
	return container(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		hit = true
		switch child.Tag {
		case HDLR:
			m.Handler, err = parseChild[HandlerRef](r, child, depth)
		case ILST:
			m.ItemList, err = parseChild[ItemList](r, child, depth)
		default:
			hit = false
		}
		return
	})
}

func (m Meta) contentLen() (n uint64) {
	n = fullHeadSize
	if m.Handler != nil {
		n += m.Handler.Len()
	}
	if m.ItemList != nil {
		n += m.ItemList.Len()
	}
	return
}

func (m Meta) Len() uint64 {
	return NewHead(META, m.contentLen()).Len()
}

func (m Meta) Write(w io.Writer) error {
	if err := NewHead(META, m.contentLen()).Write(w); err != nil {
		return err
	}
	var b [fullHeadSize]byte
	putFullHead(b[:], m.Version, m.Flags)
	if _, err := w.Write(b[:]); err != nil {
		return ioErr("write meta", err)
	}
	if m.Handler != nil {
		if err := m.Handler.Write(w); err != nil {
			return err
		}
	}
	if m.ItemList != nil {
		return m.ItemList.Write(w)
	}
	return nil
}

// MetaBounds locates the handler and item list of a meta atom. Its spans start after
// the 4-byte version and flags.
type MetaBounds struct {
	BoundsNode
	Handler  *AtomBounds
	ItemList *AtomBounds
}

func findMeta(r io.ReadSeeker, head Head, depth int) (*MetaBounds, error) {
	m := &MetaBounds{}
	if _, _, err := readFullHead(r); err != nil {
		return nil, err
	}
	err := m.find(r, head, depth, func(_ io.ReadSeeker, child Head, _ int) (bool, error) {
		b := child.Bounds()
		switch child.Tag {
		case HDLR:
			m.Handler = &b
		case ILST:
			m.ItemList = &b
		default:
			return false, nil
		}
		return true, nil
	})
	return m, err
}
