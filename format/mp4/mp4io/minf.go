package mp4io

import "io"

// MediaInfo is the minf atom.
type MediaInfo struct {
	SampleTable *SampleTable
	AtomPos
}

func (m MediaInfo) Tag() Tag {
	return MINF
}

func (m MediaInfo) Children() (r []Atom) {
	if m.SampleTable != nil {
		r = append(r, m.SampleTable)
	}
	return
}

func (m *MediaInfo) parse(r io.ReadSeeker, head Head, depth int) error {
	m.setPos(head)
	return container(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		if child.Tag != STBL {
			return false, nil
		}
		m.SampleTable, err = parseChild[SampleTable](r, child, depth)
		return true, err
	})
}

type MediaInfoBounds struct {
	BoundsNode
	SampleTable *SampleTableBounds
}

func findMediaInfo(r io.ReadSeeker, head Head, depth int) (*MediaInfoBounds, error) {
	m := &MediaInfoBounds{}
	err := m.find(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		if child.Tag != STBL {
			return false, nil
		}
		m.SampleTable, err = findSampleTable(r, child, depth)
		return true, err
	})
	return m, err
}
