package mp4io

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ugparu/mp4meta"
	"github.com/ugparu/mp4meta/utils/bits/pio"
)

// Data is one typed metadata value. The type selects the only valid interpretation of
// the payload; getters for any other interpretation report false.
type Data struct {
	typ  DataType
	raw  []byte
	text string
}

func NewReserved(b []byte) Data { return Data{typ: Reserved, raw: b} }
func NewUTF8(s string) Data     { return Data{typ: UTF8, text: s} }
func NewUTF16(s string) Data    { return Data{typ: UTF16, text: s} }
func NewJPEG(b []byte) Data     { return Data{typ: JPEG, raw: b} }
func NewPNG(b []byte) Data      { return Data{typ: PNG, raw: b} }
func NewBeSigned(b []byte) Data { return Data{typ: BeSigned, raw: b} }
func NewBMP(b []byte) Data      { return Data{typ: BMP, raw: b} }

// NewImageData picks the image kind matching img.Format. Unknown formats are stored
// as Reserved.
func NewImageData(img mp4meta.Image) Data {
	switch img.Format {
	case mp4meta.ImageFormatJPEG:
		return NewJPEG(img.Data)
	case mp4meta.ImageFormatPNG:
		return NewPNG(img.Data)
	case mp4meta.ImageFormatBMP:
		return NewBMP(img.Data)
	default:
		return NewReserved(img.Data)
	}
}

// NewBeSignedInt encodes v in the shortest of 1, 2, 4 or 8 big-endian bytes.
func NewBeSignedInt(v int64) Data {
	var b []byte
	switch {
	case v >= -1<<7 && v < 1<<7:
		b = []byte{byte(v)}
	case v >= -1<<15 && v < 1<<15:
		b = make([]byte, 2)
		pio.PutI16BE(b, int16(v))
	case v >= -1<<31 && v < 1<<31:
		b = make([]byte, 4)
		pio.PutI32BE(b, int32(v))
	default:
		b = make([]byte, 8)
		pio.PutI64BE(b, v)
	}
	return NewBeSigned(b)
}

func (d Data) Type() DataType {
	return d.typ
}

// Len is the payload length in bytes, or in UTF-16 code units for UTF16 values.
func (d Data) Len() uint64 {
	switch d.typ {
	case UTF8:
		return uint64(len(d.text))
	case UTF16:
		return uint64(len(utf16.Encode([]rune(d.text))))
	default:
		return uint64(len(d.raw))
	}
}

// RawLen is the number of bytes WriteRaw emits.
func (d Data) RawLen() uint64 {
	if d.typ == UTF16 {
		return 2 * d.Len()
	}
	return d.Len()
}

func (d Data) IsEmpty() bool {
	return d.Len() == 0
}

func (d Data) IsBytes() bool    { return d.typ == Reserved || d.typ == BeSigned }
func (d Data) IsString() bool   { return d.typ == UTF8 || d.typ == UTF16 }
func (d Data) IsImage() bool    { return d.typ == JPEG || d.typ == PNG || d.typ == BMP }
func (d Data) IsReserved() bool { return d.typ == Reserved }
func (d Data) IsUTF8() bool     { return d.typ == UTF8 }
func (d Data) IsUTF16() bool    { return d.typ == UTF16 }
func (d Data) IsJPEG() bool     { return d.typ == JPEG }
func (d Data) IsPNG() bool      { return d.typ == PNG }
func (d Data) IsBeSigned() bool { return d.typ == BeSigned }
func (d Data) IsBMP() bool      { return d.typ == BMP }

// Bytes returns the payload of Reserved and BeSigned values.
func (d Data) Bytes() ([]byte, bool) {
	if !d.IsBytes() {
		return nil, false
	}
	return d.raw, true
}

// Text returns the string of UTF8 and UTF16 values.
func (d Data) Text() (string, bool) {
	if !d.IsString() {
		return "", false
	}
	return d.text, true
}

// Image returns Jpeg, Png and Bmp values as an image.
func (d Data) Image() (mp4meta.Image, bool) {
	var f mp4meta.ImageFormat
	switch d.typ {
	case JPEG:
		f = mp4meta.ImageFormatJPEG
	case PNG:
		f = mp4meta.ImageFormatPNG
	case BMP:
		f = mp4meta.ImageFormatBMP
	default:
		return mp4meta.Image{}, false
	}
	return mp4meta.Image{Format: f, Data: d.raw}, true
}

func (d Data) ImageData() ([]byte, bool) {
	img, ok := d.Image()
	return img.Data, ok
}

func (d Data) rawOf(t DataType) ([]byte, bool) {
	if d.typ != t {
		return nil, false
	}
	return d.raw, true
}

func (d Data) textOf(t DataType) (string, bool) {
	if d.typ != t {
		return "", false
	}
	return d.text, true
}

func (d Data) Reserved() ([]byte, bool) { return d.rawOf(Reserved) }
func (d Data) UTF8() (string, bool)     { return d.textOf(UTF8) }
func (d Data) UTF16() (string, bool)    { return d.textOf(UTF16) }
func (d Data) JPEG() ([]byte, bool)     { return d.rawOf(JPEG) }
func (d Data) PNG() ([]byte, bool)      { return d.rawOf(PNG) }
func (d Data) BeSigned() ([]byte, bool) { return d.rawOf(BeSigned) }
func (d Data) BMP() ([]byte, bool)      { return d.rawOf(BMP) }

// Int sign-extends a BeSigned payload of 1 to 8 bytes.
func (d Data) Int() (int64, bool) {
	if d.typ != BeSigned || len(d.raw) == 0 || len(d.raw) > 8 {
		return 0, false
	}
	var v int64
	if d.raw[0]&0x80 != 0 {
		v = -1
	}
	for _, b := range d.raw {
		v = v<<8 | int64(b)
	}
	return v, true
}

// Equal compares type and payload.
func (d Data) Equal(o Data) bool {
	return d.typ == o.typ && d.text == o.text && bytes.Equal(d.raw, o.raw)
}

func (d Data) String() string {
	switch {
	case d.IsString():
		return fmt.Sprintf("%s(%q)", d.typ, d.text)
	case d.IsImage():
		return fmt.Sprintf("%s(%d bytes)", d.typ, len(d.raw))
	default:
		return fmt.Sprintf("%s(% x)", d.typ, d.raw)
	}
}

// WriteTyped emits the 4-byte type code, a zero locale and the raw payload.
func (d Data) WriteTyped(w io.Writer) error {
	var b [8]byte
	pio.PutU32BE(b[0:], uint32(d.typ))
	if _, err := w.Write(b[:]); err != nil {
		return ioErr("write data type", err)
	}
	return d.WriteRaw(w)
}

// WriteRaw emits the payload in its wire form: UTF-16 as big-endian code units,
// everything else verbatim.
func (d Data) WriteRaw(w io.Writer) (err error) {
	switch d.typ {
	case UTF8:
		_, err = io.WriteString(w, d.text)
	case UTF16:
		units := utf16.Encode([]rune(d.text))
		b := make([]byte, 2*len(units))
		for i, u := range units {
			pio.PutU16BE(b[2*i:], u)
		}
		_, err = w.Write(b)
	default:
		_, err = w.Write(d.raw)
	}
	return ioErr("write data", err)
}

// ParseData decodes exactly n payload bytes of type dt.
func ParseData(r io.Reader, dt DataType, n uint64) (Data, error) {
	if !dt.Modelled() {
		return Data{}, newErr(ErrorKindUnknownDataType, uint32(dt), "unknown datatype code %d", uint32(dt))
	}

	b, err := readBytes(r, n, dt.String())
	if err != nil {
		return Data{}, err
	}

	switch dt {
	case UTF8:
		if !utf8.Valid(b) {
			return Data{}, newErr(ErrorKindStringDecode, uint32(dt), "invalid utf-8")
		}
		return NewUTF8(string(b)), nil
	case UTF16:
		s, err := decodeUTF16(b)
		if err != nil {
			return Data{}, err
		}
		return NewUTF16(s), nil
	default:
		return Data{typ: dt, raw: b}, nil
	}
}

func decodeUTF16(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", newErr(ErrorKindStringDecode, uint32(UTF16), "odd utf-16 byte length %d", len(b))
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = pio.U16BE(b[2*i:])
	}
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= 0xd800 && u < 0xdc00:
			if i+1 >= len(units) || units[i+1] < 0xdc00 || units[i+1] >= 0xe000 {
				return "", newErr(ErrorKindStringDecode, uint32(UTF16), "unpaired surrogate at unit %d", i)
			}
			i++
		case u >= 0xdc00 && u < 0xe000:
			return "", newErr(ErrorKindStringDecode, uint32(UTF16), "unpaired surrogate at unit %d", i)
		}
	}
	return string(utf16.Decode(units)), nil
}
