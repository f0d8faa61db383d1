package mp4io

import "io"

// Media is the mdia atom.
type Media struct {
	Header  *MediaHeader
	Handler *HandlerRef
	Info    *MediaInfo
	AtomPos
}

func (m Media) Tag() Tag {
	return MDIA
}

func (m Media) Children() (r []Atom) {
	if m.Header != nil {
		r = append(r, m.Header)
	}
	if m.Handler != nil {
		r = append(r, m.Handler)
	}
	if m.Info != nil {
		r = append(r, m.Info)
	}
	return
}

func (m *Media) parse(r io.ReadSeeker, head Head, depth int) error {
	m.setPos(head)
	return container(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		hit = true
		switch child.Tag {
		case MDHD:
			m.Header, err = parseChild[MediaHeader](r, child, depth)
		case HDLR:
			m.Handler, err = parseChild[HandlerRef](r, child, depth)
		case MINF:
			m.Info, err = parseChild[MediaInfo](r, child, depth)
		default:
			hit = false
		}
		return
	})
}

type MediaBounds struct {
	BoundsNode
	Info *MediaInfoBounds
}

func findMedia(r io.ReadSeeker, head Head, depth int) (*MediaBounds, error) {
	m := &MediaBounds{}
	err := m.find(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		if child.Tag != MINF {
			return false, nil
		}
		m.Info, err = findMediaInfo(r, child, depth)
		return true, err
	})
	return m, err
}
