package mp4io

import "io"

type atomParser interface {
	parse(r io.ReadSeeker, head Head, depth int) error
}

// parseChild parses the atom whose head was just read into a fresh T.
func parseChild[T any, PT interface {
	*T
	atomParser
}](r io.ReadSeeker, head Head, depth int) (*T, error) {
	atom := PT(new(T))
	if err := atom.parse(r, head, depth); err != nil {
		return nil, err
	}
	return atom, nil
}

// Movie is the moov atom.
type Movie struct {
	Header   *MovieHeader
	Tracks   []*Track
	UserData *UserData
	AtomPos
}

func (m Movie) Tag() Tag {
	return MOOV
}

func (m Movie) Children() (r []Atom) {
	if m.Header != nil {
		r = append(r, m.Header)
	}
	for _, atom := range m.Tracks {
		r = append(r, atom)
	}
	if m.UserData != nil {
		r = append(r, m.UserData)
	}
	return
}

func (m *Movie) parse(r io.ReadSeeker, head Head, depth int) error {
	m.setPos(head)
	return container(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		hit = true
		switch child.Tag {
		case MVHD:
			m.Header, err = parseChild[MovieHeader](r, child, depth)
		case TRAK:
			var trak *Track
			if trak, err = parseChild[Track](r, child, depth); err == nil {
				m.Tracks = append(m.Tracks, trak)
			}
		case UDTA:
			m.UserData, err = parseChild[UserData](r, child, depth)
		default:
			hit = false
		}
		return
	})
}

// MovieBounds locates the parts of a moov atom a metadata rewrite touches.
type MovieBounds struct {
	BoundsNode
	Tracks   []*TrackBounds
	UserData *UserDataBounds
}

func findMovie(r io.ReadSeeker, head Head, depth int) (*MovieBounds, error) {
	m := &MovieBounds{}
	err := m.find(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		hit = true
		switch child.Tag {
		case TRAK:
			var trak *TrackBounds
			if trak, err = findTrack(r, child, depth); err == nil {
				m.Tracks = append(m.Tracks, trak)
			}
		case UDTA:
			m.UserData, err = findUserData(r, child, depth)
		default:
			hit = false
		}
		return
	})
	return m, err
}
