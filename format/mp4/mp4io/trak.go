package mp4io

import "io"

// Track is the trak atom.
type Track struct {
	Header *TrackHeader
	Media  *Media
	AtomPos
}

func (t Track) Tag() Tag {
	return TRAK
}

func (t Track) Children() (r []Atom) {
	if t.Header != nil {
		r = append(r, t.Header)
	}
	if t.Media != nil {
		r = append(r, t.Media)
	}
	return
}

func (t *Track) parse(r io.ReadSeeker, head Head, depth int) error {
	t.setPos(head)
	return container(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		hit = true
		switch child.Tag {
		case TKHD:
			t.Header, err = parseChild[TrackHeader](r, child, depth)
		case MDIA:
			t.Media, err = parseChild[Media](r, child, depth)
		default:
			hit = false
		}
		return
	})
}

type TrackBounds struct {
	BoundsNode
	Media *MediaBounds
}

func findTrack(r io.ReadSeeker, head Head, depth int) (*TrackBounds, error) {
	t := &TrackBounds{}
	err := t.find(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		if child.Tag != MDIA {
			return false, nil
		}
		t.Media, err = findMedia(r, child, depth)
		return true, err
	})
	return t, err
}
