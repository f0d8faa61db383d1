package mp4io

import "io"

// UserData is the udta atom.
type UserData struct {
	Meta *Meta
	AtomPos
}

func (u UserData) Tag() Tag {
	return UDTA
}

func (u UserData) Children() (r []Atom) {
	if u.Meta != nil {
		r = append(r, u.Meta)
	}
	return
}

func (u *UserData) parse(r io.ReadSeeker, head Head, depth int) error {
	u.setPos(head)
	return container(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		if child.Tag != META {
			return false, nil
		}
		u.Meta, err = parseChild[Meta](r, child, depth)
		return true, err
	})
}

func (u UserData) contentLen() uint64 {
	if u.Meta == nil {
		return 0
	}
	return u.Meta.Len()
}

func (u UserData) Len() uint64 {
	return NewHead(UDTA, u.contentLen()).Len()
}

func (u UserData) Write(w io.Writer) error {
	if err := NewHead(UDTA, u.contentLen()).Write(w); err != nil {
		return err
	}
	if u.Meta == nil {
		return nil
	}
	return u.Meta.Write(w)
}

type UserDataBounds struct {
	BoundsNode
	Meta *MetaBounds
}

func findUserData(r io.ReadSeeker, head Head, depth int) (*UserDataBounds, error) {
	u := &UserDataBounds{}
	err := u.find(r, head, depth, func(r io.ReadSeeker, child Head, depth int) (hit bool, err error) {
		if child.Tag != META {
			return false, nil
		}
		u.Meta, err = findMeta(r, child, depth)
		return true, err
	})
	return u, err
}
