package mp4io

import "io"

// SampleTable is the stbl atom. Only the chunk offset tables are kept: they are what
// must move when the metadata in front of the media data changes size.
type SampleTable struct {
	ChunkOffsets   *ChunkOffsets // stco
	ChunkOffsets64 *ChunkOffsets // co64
	AtomPos
}

func (s SampleTable) Tag() Tag {
	return STBL
}

func (s SampleTable) Children() (r []Atom) {
	if s.ChunkOffsets != nil {
		r = append(r, s.ChunkOffsets)
	}
	if s.ChunkOffsets64 != nil {
		r = append(r, s.ChunkOffsets64)
	}
	return
}

func (s *SampleTable) parse(r io.ReadSeeker, head Head, depth int) error {
	s.setPos(head)
	return container(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		hit = true
		switch child.Tag {
		case STCO:
			s.ChunkOffsets, err = parseChild[ChunkOffsets](r, child, depth)
		case CO64:
			s.ChunkOffsets64, err = parseChild[ChunkOffsets](r, child, depth)
		default:
			hit = false
		}
		return
	})
}

type SampleTableBounds struct {
	BoundsNode
	ChunkOffsets   *AtomBounds
	ChunkOffsets64 *AtomBounds
}

func findSampleTable(r io.ReadSeeker, head Head, depth int) (*SampleTableBounds, error) {
	s := &SampleTableBounds{}
	err := s.find(r, head, depth, func(_ io.ReadSeeker, child Head, _ int) (bool, error) {
		b := child.Bounds()
		switch child.Tag {
		case STCO:
			s.ChunkOffsets = &b
		case CO64:
			s.ChunkOffsets64 = &b
		default:
			return false, nil
		}
		return true, nil
	})
	return s, err
}
