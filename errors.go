package blockart

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies failures surfaced by the conversion core.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidImage
	KindGridSizeExceeded
	KindEmptyPalette
	KindPaletteLoad
	KindEncode
	KindDecode
	KindEmptyGrid
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindInvalidImage:
		return "invalid image"
	case KindGridSizeExceeded:
		return "grid size exceeded"
	case KindEmptyPalette:
		return "empty palette"
	case KindPaletteLoad:
		return "palette load"
	case KindEncode:
		return "encode"
	case KindDecode:
		return "decode"
	case KindEmptyGrid:
		return "empty grid"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by blockart and its subpackages.
// Offset is the byte position of a decode failure, or -1 when it does not apply.
type Error struct {
	Kind   Kind
	Op     string
	Field  string
	Offset int64
	Msg    string
	Err    error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrInvalidImage     = &Error{Kind: KindInvalidImage, Offset: -1}
	ErrGridSizeExceeded = &Error{Kind: KindGridSizeExceeded, Offset: -1}
	ErrEmptyPalette     = &Error{Kind: KindEmptyPalette, Offset: -1}
	ErrPaletteLoad      = &Error{Kind: KindPaletteLoad, Offset: -1}
	ErrEncode           = &Error{Kind: KindEncode, Offset: -1}
	ErrDecode           = &Error{Kind: KindDecode, Offset: -1}
	ErrEmptyGrid        = &Error{Kind: KindEmptyGrid, Offset: -1}
	ErrInvalidArgument  = &Error{Kind: KindInvalidArgument, Offset: -1}
)

// NewError builds an *Error without positional context.
func NewError(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// WrapError builds an *Error around a lower level cause.
func WrapError(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Offset: -1, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("blockart: ")
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.String())
	if e.Offset >= 0 {
		fmt.Fprintf(&sb, " at offset %d", e.Offset)
	}
	if e.Field != "" {
		fmt.Fprintf(&sb, " (%s)", e.Field)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
