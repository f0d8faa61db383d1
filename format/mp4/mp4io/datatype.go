package mp4io

import "fmt"

// DataType is a well-known data type code from the QuickTime metadata specification
// (Table 3-5). Only the kinds modelled by Data can be decoded; the remaining codes
// are listed so they can be named in errors and dumps.
type DataType uint32

const (
	Reserved           DataType = 0
	UTF8               DataType = 1
	UTF16              DataType = 2
	UTF8Sort           DataType = 4
	UTF16Sort          DataType = 5
	JPEG               DataType = 13
	PNG                DataType = 14
	BeSigned           DataType = 21
	BeUnsigned         DataType = 22
	BeFloat32          DataType = 23
	BeFloat64          DataType = 24
	BMP                DataType = 27
	QTMeta             DataType = 28
	Int8               DataType = 65
	BeInt16            DataType = 66
	BeInt32            DataType = 67
	BePointF32         DataType = 70
	BeDimsF32          DataType = 71
	BeRectF32          DataType = 72
	BeInt64            DataType = 74
	Uint8              DataType = 75
	BeUint16           DataType = 76
	BeUint32           DataType = 77
	BeUint64           DataType = 78
	AffineTransformF64 DataType = 79
)

var dataTypeNames = map[DataType]string{
	Reserved:           "reserved",
	UTF8:               "utf8",
	UTF16:              "utf16",
	UTF8Sort:           "utf8 sort",
	UTF16Sort:          "utf16 sort",
	JPEG:               "jpeg",
	PNG:                "png",
	BeSigned:           "be signed",
	BeUnsigned:         "be unsigned",
	BeFloat32:          "be f32",
	BeFloat64:          "be f64",
	BMP:                "bmp",
	QTMeta:             "qt meta",
	Int8:               "i8",
	BeInt16:            "be i16",
	BeInt32:            "be i32",
	BePointF32:         "be point f32",
	BeDimsF32:          "be dims f32",
	BeRectF32:          "be rect f32",
	BeInt64:            "be i64",
	Uint8:              "u8",
	BeUint16:           "be u16",
	BeUint32:           "be u32",
	BeUint64:           "be u64",
	AffineTransformF64: "affine transform f64",
}

func (t DataType) String() string {
	if s, ok := dataTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("datatype(%d)", uint32(t))
}

// Documented reports whether t appears in the well-known type table.
func (t DataType) Documented() bool {
	_, ok := dataTypeNames[t]
	return ok
}

// Modelled reports whether values of type t decode into a Data.
func (t DataType) Modelled() bool {
	switch t {
	case Reserved, UTF8, UTF16, JPEG, PNG, BeSigned, BMP:
		return true
	default:
		return false
	}
}
