package amqptable

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFieldType is returned when a value has no wire
	// representation.
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	// ErrInvalidFieldType is returned when a decoded tag byte names no
	// known variant.
	ErrInvalidFieldType = errors.New("invalid field type")
	// ErrInvalidEncoding is returned for strings and keys that are not
	// valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid utf-8 encoding")
	// ErrTruncated is returned when a declared length runs past the end of
	// the buffer or past the enclosing table or array.
	ErrTruncated = errors.New("field data truncated")
	// ErrNestingTooDeep is returned when tables and arrays nest deeper than
	// the codec allows.
	ErrNestingTooDeep = errors.New("field nesting too deep")
	ErrKeyTooLong     = errors.New("table key longer than 255 bytes")
	ErrOverflow       = errors.New("length overflow during encoding")
	ErrTooLarge       = errors.New("table larger than read limit")
	// ErrInternal wraps a panic recovered inside the codec.
	ErrInternal       = errors.New("internal codec error")
)

// EncodeError reports the value that could not be encoded and where it sits
// inside the outermost table, e.g. "headers.x-death[0]".
//
//	var encErr *amqptable.EncodeError
//	if errors.As(err, &encErr) {
//	    log.Printf("bad field %s", encErr.Path)
//	}
type EncodeError struct {
	Path  string
	Value any
	Err   error
}

func (e *EncodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("encoding %T: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("encoding %s (%T): %v", e.Path, e.Value, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports the absolute buffer offset at which decoding failed.
// Tag is set for ErrInvalidFieldType.
type DecodeError struct {
	Offset int
	Tag    byte
	Err    error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrInvalidFieldType) {
		return fmt.Sprintf("decoding at offset %d: %v %q (0x%02x)", e.Offset, e.Err, e.Tag, e.Tag)
	}
	return fmt.Sprintf("decoding at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
