// Package mp4meta reads and rewrites iTunes style metadata stored in MP4/M4A/M4B
// containers. The atom walks and the metadata value codec live in format/mp4/mp4io,
// stream level reading and the metadata splice in format/mp4.
package mp4meta

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
)

// ImageFormat identifies the encoding of embedded artwork.
type ImageFormat uint8

const (
	ImageFormatUnknown ImageFormat = iota
	ImageFormatJPEG
	ImageFormatPNG
	ImageFormatBMP
)

func (f ImageFormat) String() string {
	switch f {
	case ImageFormatJPEG:
		return "jpeg"
	case ImageFormatPNG:
		return "png"
	case ImageFormatBMP:
		return "bmp"
	default:
		return "unknown"
	}
}

// MIMEType returns the media type of the format, or an empty string.
func (f ImageFormat) MIMEType() string {
	switch f {
	case ImageFormatJPEG:
		return "image/jpeg"
	case ImageFormatPNG:
		return "image/png"
	case ImageFormatBMP:
		return "image/bmp"
	default:
		return ""
	}
}

var (
	jpegMagic = []byte{0xff, 0xd8, 0xff}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	bmpMagic  = []byte{'B', 'M'}
)

// ErrUnknownImageFormat is returned when image bytes match no supported signature.
var ErrUnknownImageFormat = errors.New("mp4meta: unknown image format")

// DetectImageFormat sniffs the leading signature of b.
func DetectImageFormat(b []byte) ImageFormat {
	switch {
	case bytes.HasPrefix(b, jpegMagic):
		return ImageFormatJPEG
	case bytes.HasPrefix(b, pngMagic):
		return ImageFormatPNG
	case bytes.HasPrefix(b, bmpMagic):
		return ImageFormatBMP
	default:
		return ImageFormatUnknown
	}
}

// Image is artwork bytes together with their encoding.
type Image struct {
	Format ImageFormat
	Data   []byte
}

// NewImage wraps b, detecting its format from the signature.
func NewImage(b []byte) (Image, error) {
	f := DetectImageFormat(b)
	if f == ImageFormatUnknown {
		return Image{}, ErrUnknownImageFormat
	}
	return Image{Format: f, Data: b}, nil
}

// Config decodes only the image header and returns its dimensions and color model.
func (img Image) Config() (image.Config, error) {
	r := bytes.NewReader(img.Data)
	switch img.Format {
	case ImageFormatJPEG:
		return jpeg.DecodeConfig(r)
	case ImageFormatPNG:
		return png.DecodeConfig(r)
	case ImageFormatBMP:
		return bmp.DecodeConfig(r)
	default:
		return image.Config{}, ErrUnknownImageFormat
	}
}
