package mp4io

import (
	"fmt"
	"io"
)

// Free is a free atom of zero padding.
type Free struct {
	AtomPos
}

// NewFree returns padding of size bytes including the header; size must be at least
// HeaderSize.
func NewFree(size uint64) *Free {
	return &Free{AtomPos: AtomPos{Size: max(size, HeaderSize)}}
}

func (f Free) Tag() Tag {
	return FREE
}

func (f Free) Children() []Atom {
	return nil
}

func (f Free) String() string {
	return fmt.Sprintf("padding=%d", f.Size-HeaderSize)
}

func (f Free) Len() uint64 {
	return f.Size
}

func (f Free) Write(w io.Writer) error {
	head := Head{Tag: FREE, Size: f.Size}
	if err := head.Write(w); err != nil {
		return err
	}
	_, err := w.Write(make([]byte, f.Size-HeaderSize))
	return ioErr("write free", err)
}

// freeAfter returns the free atom directly following the span at start, if any.
func freeAfter(spans []AtomBounds, start int64) *AtomBounds {
	for i, s := range spans {
		if s.Start == start && i+1 < len(spans) && spans[i+1].Tag == FREE {
			return &spans[i+1]
		}
	}
	return nil
}

// ItemListSpace is the room an item list may occupy in place: the current ilst plus
// the free atom right after it.
func (m *MetaBounds) ItemListSpace() (start int64, n uint64) {
	if m.ItemList == nil {
		return 0, 0
	}
	start, n = m.ItemList.Start, m.ItemList.Len()
	if free := freeAfter(m.Spans, start); free != nil {
		n += free.Len()
	}
	return
}
