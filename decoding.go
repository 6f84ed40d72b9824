package amqptable

import (
	"encoding/binary"
	"unicode/utf8"
)

// DecodeTable decodes the table starting at buf[offset] and returns it with
// the offset just past its last byte.
func DecodeTable(buf []byte, offset int) (*Table, int, error) {
	return defaultCodec.DecodeTable(buf, offset)
}

// DecodeValue decodes the tagged value starting at buf[offset] and returns it
// with the offset just past its last byte.
func DecodeValue(buf []byte, offset int) (Value, int, error) {
	return defaultCodec.DecodeValue(buf, offset)
}

// DecodeTable is the Codec form of the package-level DecodeTable. On error
// the table is nil and the returned offset is the one passed in.
func (c Codec) DecodeTable(buf []byte, offset int) (t *Table, next int, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, next, err = nil, offset, &DecodeError{Offset: offset, Err: panicError("DecodeTable", r)}
		}
	}()

	if offset < 0 || offset > len(buf) {
		return nil, offset, &DecodeError{Offset: offset, Err: ErrTruncated}
	}

	d := decoder{buf: buf, maxDepth: c.maxDepth()}
	t, next, err = d.table(offset, len(buf), 1)
	if err != nil {
		return nil, offset, err
	}
	return t, next, nil
}

func (c Codec) DecodeValue(buf []byte, offset int) (v Value, next int, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, next, err = nil, offset, &DecodeError{Offset: offset, Err: panicError("DecodeValue", r)}
		}
	}()

	if offset < 0 || offset > len(buf) {
		return nil, offset, &DecodeError{Offset: offset, Err: ErrTruncated}
	}

	d := decoder{buf: buf, maxDepth: c.maxDepth()}
	v, next, err = d.value(offset, len(buf), 0)
	if err != nil {
		return nil, offset, err
	}
	return v, next, nil
}

// decoder reads from buf. Every read is checked against a limit: the end of
// the buffer at the top level, or the end of the enclosing table or array.
type decoder struct {
	buf      []byte
	maxDepth int
}

// need ensures n bytes starting at offset lie before limit
func (d *decoder) need(offset int, n uint64, limit int) error {
	if uint64(offset)+n > uint64(limit) {
		return &DecodeError{Offset: offset, Err: ErrTruncated}
	}
	return nil
}

// length reads a 4-byte content length and checks the content fits
func (d *decoder) length(offset, limit int) (size int, next int, err error) {
	if err = d.need(offset, 4, limit); err != nil {
		return 0, 0, err
	}
	n := binary.BigEndian.Uint32(d.buf[offset:])
	offset += 4
	if err = d.need(offset, uint64(n), limit); err != nil {
		return 0, 0, err
	}
	return int(n), offset, nil
}

func (d *decoder) table(offset, limit, depth int) (*Table, int, error) {
	if depth > d.maxDepth {
		return nil, 0, &DecodeError{Offset: offset, Err: ErrNestingTooDeep}
	}

	// Decode the content length
	size, offset, err := d.length(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	end := offset + size

	t := &Table{}
	for offset < end {
		// Read the key length, then the key, both inside the table
		if err := d.need(offset, 1, end); err != nil {
			return nil, 0, err
		}
		keyLen := int(d.buf[offset])
		offset++
		key, err := d.str(offset, keyLen, end)
		if err != nil {
			return nil, 0, err
		}
		offset += keyLen

		// Decode the value; it may not run past the table either
		var v Value
		v, offset, err = d.value(offset, end, depth)
		if err != nil {
			return nil, 0, err
		}

		// Last write wins for repeated keys
		t.Set(key, v)
	}

	return t, offset, nil
}

func (d *decoder) array(offset, limit, depth int) (Array, int, error) {
	if depth > d.maxDepth {
		return nil, 0, &DecodeError{Offset: offset, Err: ErrNestingTooDeep}
	}

	size, offset, err := d.length(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	end := offset + size

	a := Array{}
	for offset < end {
		var v Value
		v, offset, err = d.value(offset, end, depth)
		if err != nil {
			return nil, 0, err
		}
		a = append(a, v)
	}

	return a, offset, nil
}

// str reads n bytes as a UTF-8 string
func (d *decoder) str(offset, n, limit int) (string, error) {
	if err := d.need(offset, uint64(n), limit); err != nil {
		return "", err
	}
	b := d.buf[offset : offset+n]
	if !utf8.Valid(b) {
		return "", &DecodeError{Offset: offset, Err: ErrInvalidEncoding}
	}
	return string(b), nil
}

// value decodes one tagged value. depth is the depth of the container
// holding it.
func (d *decoder) value(offset, limit, depth int) (Value, int, error) {
	// Read the type tag
	if err := d.need(offset, 1, limit); err != nil {
		return nil, 0, err
	}
	tagOffset := offset
	kind := Kind(d.buf[offset])
	offset++

	switch kind {
	case KindLongString:
		size, next, err := d.length(offset, limit)
		if err != nil {
			return nil, 0, err
		}
		s, err := d.str(next, size, limit)
		if err != nil {
			return nil, 0, err
		}
		return LongString(s), next + size, nil
	case KindShortString:
		if err := d.need(offset, 1, limit); err != nil {
			return nil, 0, err
		}
		size := int(d.buf[offset])
		offset++
		s, err := d.str(offset, size, limit)
		if err != nil {
			return nil, 0, err
		}
		return ShortString(s), offset + size, nil
	case KindBoolean:
		if err := d.need(offset, 1, limit); err != nil {
			return nil, 0, err
		}
		return Boolean(d.buf[offset] != 0), offset + 1, nil
	case KindInt32:
		if err := d.need(offset, 4, limit); err != nil {
			return nil, 0, err
		}
		return Int32(binary.BigEndian.Uint32(d.buf[offset:])), offset + 4, nil
	case KindInt64:
		if err := d.need(offset, 8, limit); err != nil {
			return nil, 0, err
		}
		return Int64(binary.BigEndian.Uint64(d.buf[offset:])), offset + 8, nil
	case KindDecimal:
		if err := d.need(offset, 5, limit); err != nil {
			return nil, 0, err
		}
		dec := Decimal{
			Scale:    d.buf[offset],
			Unscaled: int32(binary.BigEndian.Uint32(d.buf[offset+1:])),
		}
		return dec, offset + 5, nil
	case KindTimestamp:
		if err := d.need(offset, 8, limit); err != nil {
			return nil, 0, err
		}
		return Timestamp(binary.BigEndian.Uint64(d.buf[offset:])), offset + 8, nil
	case KindTable:
		t, next, err := d.table(offset, limit, depth+1)
		if err != nil {
			return nil, 0, err
		}
		return t, next, nil
	case KindArray:
		a, next, err := d.array(offset, limit, depth+1)
		if err != nil {
			return nil, 0, err
		}
		return a, next, nil
	case KindNull:
		return Null{}, offset, nil
	default:
		return nil, 0, &DecodeError{Offset: tagOffset, Tag: byte(kind), Err: ErrInvalidFieldType}
	}
}
