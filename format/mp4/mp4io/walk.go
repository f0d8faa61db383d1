package mp4io

import (
	"io"

	"github.com/ugparu/mp4meta/utils/logger"
)

// visitFunc handles one direct child whose head has just been read. It reports whether
// the child belongs to the parent's schema; other children are skipped. The walk seeks
// to the child's end afterwards whatever the visitor consumed.
type visitFunc func(r io.ReadSeeker, child Head, depth int) (bool, error)

// walkChildren is the skeleton shared by the parse and find walks. It visits the
// children between the current position and end, and always leaves the stream at end.
// The returned spans cover every child visited, in stream order.
func walkChildren(r io.ReadSeeker, parent Tag, end int64, depth int, visit visitFunc) ([]AtomBounds, error) {
	if depth > MaxDepth {
		return nil, newErr(ErrorKindTooDeep, 0, "%s nested deeper than %d atoms", parent, MaxDepth)
	}

	pos, err := tell(r)
	if err != nil {
		return nil, err
	}

	var spans []AtomBounds
	for end-pos >= HeaderSize {
		child, err := ParseHead(r)
		if err != nil {
			return nil, parseErr(parent, pos, err)
		}
		if child.End() > end {
			logger.Warningf(parent, "%s at %d claims %d bytes, %d left in parent",
				child.Tag, child.Offset, child.Size, end-child.Offset)
			if !child.clamp(end) {
				break
			}
		}

		hit, err := visit(r, child, depth+1)
		if err != nil {
			return nil, parseErr(child.Tag, child.Offset, err)
		}
		if !hit {
			logger.Tracef(parent, "skipping %s at %d (%d bytes)", child.Tag, child.Offset, child.Size)
		}

		spans = append(spans, child.Bounds())
		pos = child.End()
		if err = seekTo(r, pos); err != nil {
			return nil, err
		}
	}

	if err = seekTo(r, end); err != nil {
		return nil, err
	}
	return spans, nil
}

// BoundsNode is embedded in every bounds kind.
type BoundsNode struct {
	Bounds AtomBounds
	Spans  []AtomBounds
}

func (n *BoundsNode) find(r io.ReadSeeker, head Head, depth int, visit visitFunc) (err error) {
	n.Bounds = head.Bounds()
	n.Spans, err = walkChildren(r, head.Tag, head.End(), depth, visit)
	return
}

// container parses the children of head with visit.
func container(r io.ReadSeeker, head Head, depth int, visit visitFunc) error {
	_, err := walkChildren(r, head.Tag, head.End(), depth, visit)
	return err
}
