package mp4io

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failure of a parse or write call.
type ErrorKind uint8

const (
	// ErrorKindIo wraps a failed read, seek or write of the underlying stream.
	ErrorKindIo ErrorKind = iota
	// ErrorKindStringDecode reports text that is not valid UTF-8 or UTF-16.
	ErrorKindStringDecode
	// ErrorKindUnknownDataType reports a metadata value type code outside the modelled table.
	ErrorKindUnknownDataType
	// ErrorKindUnknownVersion reports a versioned atom with an unsupported version.
	ErrorKindUnknownVersion
	// ErrorKindTooDeep reports nesting beyond MaxDepth.
	ErrorKindTooDeep
	// ErrorKindMalformed reports structure that cannot be located or rewritten.
	ErrorKindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindIo:
		return "io"
	case ErrorKindStringDecode:
		return "string decode"
	case ErrorKindUnknownDataType:
		return "unknown data type"
	case ErrorKindUnknownVersion:
		return "unknown version"
	case ErrorKindTooDeep:
		return "too deep"
	case ErrorKindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrIo              = &Error{Kind: ErrorKindIo}
	ErrStringDecode    = &Error{Kind: ErrorKindStringDecode}
	ErrUnknownDataType = &Error{Kind: ErrorKindUnknownDataType}
	ErrUnknownVersion  = &Error{Kind: ErrorKindUnknownVersion}
	ErrTooDeep         = &Error{Kind: ErrorKindTooDeep}
	ErrMalformed       = &Error{Kind: ErrorKindMalformed}
)

// Frame is one step of the atom path an error unwound through.
type Frame struct {
	Tag    Tag
	Offset int64
}

func (f Frame) String() string {
	if f.Tag == rootTag {
		return fmt.Sprintf("file:%d", f.Offset)
	}
	return fmt.Sprintf("%s:%d", f.Tag, f.Offset)
}

// Error is the single error type returned by this package.
type Error struct {
	Kind        ErrorKind
	Code        uint32 // data type code or atom version, depending on Kind
	Description string
	Path        []Frame // innermost first
	Err         error
}

func (e *Error) Error() string {
	sb := new(strings.Builder)
	sb.WriteString("mp4io: ")
	sb.WriteString(e.Kind.String())
	if e.Description != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Description)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if len(e.Path) > 0 {
		s := make([]string, 0, len(e.Path))
		for _, f := range e.Path {
			s = append(s, f.String())
		}
		sb.WriteString(" (")
		sb.WriteString(strings.Join(s, ","))
		sb.WriteString(")")
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error) //nolint:errorlint
	return ok && t.Kind == e.Kind
}

func newErr(kind ErrorKind, code uint32, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Description: fmt.Sprintf(format, args...)}
}

// ioErr wraps err as ErrorKindIo unless it already is an *Error.
func ioErr(what string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: ErrorKindIo, Description: what, Err: err}
}

// parseErr records that err unwound through the atom tag at offset.
func parseErr(tag Tag, offset int64, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: ErrorKindIo, Err: err}
	}
	e.Path = append(e.Path, Frame{Tag: tag, Offset: offset})
	return e
}
