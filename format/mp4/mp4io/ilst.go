package mp4io

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// dataHeadSize is the type code and locale in front of every data payload.
const dataHeadSize = 8

// Ident identifies a metadata item: a four character code, or for freeform ("----")
// items the mean/name pair.
type Ident struct {
	Tag  Tag
	Mean string
	Name string
}

// FourCC returns the identifier of a plain item such as "\xa9nam".
func FourCC(code string) Ident {
	return Ident{Tag: StringToTag(code)}
}

// Freeform returns the identifier of a "----" item.
func Freeform(mean, name string) Ident {
	return Ident{Tag: FREEFORM, Mean: mean, Name: name}
}

func (id Ident) IsFreeform() bool {
	return id.Tag == FREEFORM
}

func (id Ident) String() string {
	if id.IsFreeform() {
		return fmt.Sprintf("----:%s:%s", id.Mean, id.Name)
	}
	return id.Tag.String()
}

// MetadataItem is one child of the ilst atom with all of its data values.
type MetadataItem struct {
	Ident Ident
	Data  []Data
	AtomPos
}

func (it MetadataItem) Tag() Tag {
	return it.Ident.Tag
}

func (it MetadataItem) Children() []Atom {
	return nil
}

func (it MetadataItem) String() string {
	s := make([]string, 0, len(it.Data))
	for _, d := range it.Data {
		s = append(s, d.String())
	}
	return it.Ident.String() + " [" + strings.Join(s, ", ") + "]"
}

func (it *MetadataItem) parse(r io.ReadSeeker, head Head, depth int) error {
	it.setPos(head)
	it.Ident = Ident{Tag: head.Tag}
	return container(r, head, depth, func(r io.ReadSeeker, child Head, _ int) (hit bool, err error) {
		hit = true
		switch {
		case child.Tag == MEAN && it.Ident.IsFreeform():
			it.Ident.Mean, err = readTextAtom(r, child)
		case child.Tag == NAME && it.Ident.IsFreeform():
			it.Ident.Name, err = readTextAtom(r, child)
		case child.Tag == DATA:
			var d Data
			if d, err = readDataAtom(r, child); err == nil {
				it.Data = append(it.Data, d)
			}
		default:
			hit = false
		}
		return
	})
}

// readTextAtom reads the UTF-8 string of a mean or name atom.
func readTextAtom(r io.Reader, head Head) (string, error) {
	if head.ContentLen() < fullHeadSize {
		return "", newErr(ErrorKindMalformed, 0, "%s content of %d bytes", head.Tag, head.ContentLen())
	}
	if _, _, err := readFullHead(r); err != nil {
		return "", err
	}
	b, err := readBytes(r, head.ContentLen()-fullHeadSize, head.Tag.String())
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", newErr(ErrorKindStringDecode, uint32(UTF8), "invalid utf-8 in %s", head.Tag)
	}
	return string(b), nil
}

func readDataAtom(r io.Reader, head Head) (Data, error) {
	if head.ContentLen() < dataHeadSize {
		return Data{}, newErr(ErrorKindMalformed, 0, "data content of %d bytes", head.ContentLen())
	}
	code, err := readU32(r, "data type")
	if err != nil {
		return Data{}, err
	}
	if _, err = readU32(r, "locale"); err != nil {
		return Data{}, err
	}
	return ParseData(r, DataType(code), head.ContentLen()-dataHeadSize)
}

func textAtomLen(s string) uint64 {
	return HeaderSize + fullHeadSize + uint64(len(s))
}

func writeTextAtom(w io.Writer, tag Tag, s string) error {
	if err := NewHead(tag, fullHeadSize+uint64(len(s))).Write(w); err != nil {
		return err
	}
	var b [fullHeadSize]byte
	if _, err := w.Write(b[:]); err != nil {
		return ioErr("write "+tag.String(), err)
	}
	_, err := io.WriteString(w, s)
	return ioErr("write "+tag.String(), err)
}

func (it MetadataItem) contentLen() (n uint64) {
	if it.Ident.IsFreeform() {
		n += textAtomLen(it.Ident.Mean) + textAtomLen(it.Ident.Name)
	}
	for _, d := range it.Data {
		n += NewHead(DATA, dataHeadSize+d.RawLen()).Len()
	}
	return
}

func (it MetadataItem) Len() uint64 {
	return NewHead(it.Ident.Tag, it.contentLen()).Len()
}

func (it MetadataItem) Write(w io.Writer) error {
	if err := NewHead(it.Ident.Tag, it.contentLen()).Write(w); err != nil {
		return err
	}
	if it.Ident.IsFreeform() {
		if err := writeTextAtom(w, MEAN, it.Ident.Mean); err != nil {
			return err
		}
		if err := writeTextAtom(w, NAME, it.Ident.Name); err != nil {
			return err
		}
	}
	for _, d := range it.Data {
		if err := NewHead(DATA, dataHeadSize+d.RawLen()).Write(w); err != nil {
			return err
		}
		if err := d.WriteTyped(w); err != nil {
			return err
		}
	}
	return nil
}

// ItemList is the ilst atom. Every child is a metadata item, kept in stream order.
type ItemList struct {
	Items []*MetadataItem
	AtomPos
}

func (l ItemList) Tag() Tag {
	return ILST
}

func (l ItemList) Children() (r []Atom) {
	for _, it := range l.Items {
		r = append(r, it)
	}
	return
}

func (l *ItemList) parse(r io.ReadSeeker, head Head, depth int) error {
	l.setPos(head)
	return container(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (bool, error) {
		it, err := parseChild[MetadataItem](r, child, depth)
		if err != nil {
			return true, err
		}
		l.Items = append(l.Items, it)
		return true, nil
	})
}

// Find returns the first item with identifier id.
func (l *ItemList) Find(id Ident) *MetadataItem {
	for _, it := range l.Items {
		if it.Ident == id {
			return it
		}
	}
	return nil
}

// Set replaces the data of the first item with identifier id, dropping any further
// items with the same identifier, or appends a new item.
func (l *ItemList) Set(id Ident, data ...Data) {
	found := false
	kept := l.Items[:0]
	for _, it := range l.Items {
		if it.Ident == id {
			if found {
				continue
			}
			found = true
			it.Data = data
		}
		kept = append(kept, it)
	}
	clear(l.Items[len(kept):])
	l.Items = kept
	if !found {
		l.Items = append(l.Items, &MetadataItem{Ident: id, Data: data})
	}
}

// Remove drops every item with identifier id.
func (l *ItemList) Remove(id Ident) {
	kept := l.Items[:0]
	for _, it := range l.Items {
		if it.Ident != id {
			kept = append(kept, it)
		}
	}
	clear(l.Items[len(kept):])
	l.Items = kept
}

func (l ItemList) contentLen() (n uint64) {
	for _, it := range l.Items {
		n += it.Len()
	}
	return
}

func (l ItemList) Len() uint64 {
	return NewHead(ILST, l.contentLen()).Len()
}

func (l ItemList) Write(w io.Writer) error {
	if err := NewHead(ILST, l.contentLen()).Write(w); err != nil {
		return err
	}
	for _, it := range l.Items {
		if err := it.Write(w); err != nil {
			return err
		}
	}
	return nil
}
