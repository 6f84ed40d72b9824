package amqptable

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// EncodeTable returns the wire form of t, length prefix included.
func EncodeTable(t *Table) ([]byte, error) {
	return defaultCodec.EncodeTable(t)
}

// AppendTable appends the wire form of t to dst. On error dst is returned
// unchanged.
func AppendTable(dst []byte, t *Table) ([]byte, error) {
	return defaultCodec.AppendTable(dst, t)
}

// EncodeValue returns the tag and payload of v.
func EncodeValue(v Value) ([]byte, error) {
	return defaultCodec.EncodeValue(v)
}

// AppendValue appends the tag and payload of v to dst. On error dst is
// returned unchanged.
func AppendValue(dst []byte, v Value) ([]byte, error) {
	return defaultCodec.AppendValue(dst, v)
}

func (c Codec) EncodeTable(t *Table) ([]byte, error) {
	return c.AppendTable(nil, t)
}

func (c Codec) EncodeValue(v Value) ([]byte, error) {
	return c.AppendValue(nil, v)
}

func (c Codec) AppendTable(dst []byte, t *Table) (res []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = dst, &EncodeError{Value: t, Err: panicError("AppendTable", r)}
		}
	}()

	out, err := c.appendTable(dst, t, 1)
	if err != nil {
		return dst, err
	}
	return out, nil
}

func (c Codec) AppendValue(dst []byte, v Value) (res []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = dst, &EncodeError{Value: v, Err: panicError("AppendValue", r)}
		}
	}()

	out, err := c.appendValue(dst, v, 0)
	if err != nil {
		return dst, err
	}
	return out, nil
}

// appendTable writes the 4-byte content length followed by each entry. The
// length is reserved up front and backfilled once the content is written.
func (c Codec) appendTable(dst []byte, t *Table, depth int) ([]byte, error) {
	if depth > c.maxDepth() {
		return nil, &EncodeError{Value: t, Err: ErrNestingTooDeep}
	}

	// Reserve space for the content length
	start := len(dst)
	dst = append(dst, 0, 0, 0, 0)

	for _, e := range t.all() {
		// Keys are short strings: one length byte, then the bytes
		if err := checkKey(e.Key); err != nil {
			return nil, &EncodeError{Path: e.Key, Value: e.Key, Err: err}
		}
		dst = append(dst, byte(len(e.Key)))
		dst = append(dst, e.Key...)

		// Then the tagged value
		var err error
		dst, err = c.appendValue(dst, e.Value, depth)
		if err != nil {
			return nil, withinPath(err, e.Key)
		}
	}

	return backfillLength(dst, start, t)
}

// appendArray writes the 'A' tag, the content length and every element in
// order. Like tables, the length counts bytes, not elements.
func (c Codec) appendArray(dst []byte, a Array, depth int) ([]byte, error) {
	if depth > c.maxDepth() {
		return nil, &EncodeError{Value: a, Err: ErrNestingTooDeep}
	}

	dst = append(dst, byte(KindArray))
	start := len(dst)
	dst = append(dst, 0, 0, 0, 0)

	for i, elem := range a {
		var err error
		dst, err = c.appendValue(dst, elem, depth)
		if err != nil {
			return nil, withinPath(err, indexSegment(i))
		}
	}

	return backfillLength(dst, start, a)
}

// backfillLength writes the size of everything after the 4 bytes at start
// into those 4 bytes
func backfillLength(dst []byte, start int, container Value) ([]byte, error) {
	size := len(dst) - start - 4
	if uint64(size) > math.MaxUint32 {
		return nil, &EncodeError{Value: container, Err: ErrOverflow}
	}
	binary.BigEndian.PutUint32(dst[start:start+4], uint32(size))
	return dst, nil
}

// appendValue writes one tagged value. depth is the depth of the container
// holding v; nested tables and arrays sit one level deeper.
func (c Codec) appendValue(dst []byte, v Value, depth int) ([]byte, error) {
	switch v := v.(type) {
	case LongString:
		return appendLongString(dst, string(v), v)
	case ShortString:
		// Written as a long string: peers disagree on what 's' means
		return appendLongString(dst, string(v), v)
	case Boolean:
		var b byte
		if v {
			b = 1
		}
		return append(dst, byte(KindBoolean), b), nil
	case Int32:
		dst = append(dst, byte(KindInt32))
		return binary.BigEndian.AppendUint32(dst, uint32(v)), nil
	case Int64:
		dst = append(dst, byte(KindInt64))
		return binary.BigEndian.AppendUint64(dst, uint64(v)), nil
	case Decimal:
		n := v.normalize()
		dst = append(dst, byte(KindDecimal), n.Scale)
		return binary.BigEndian.AppendUint32(dst, uint32(n.Unscaled)), nil
	case Timestamp:
		dst = append(dst, byte(KindTimestamp))
		return binary.BigEndian.AppendUint64(dst, uint64(v)), nil
	case *Table:
		dst = append(dst, byte(KindTable))
		return c.appendTable(dst, v, depth+1)
	case Array:
		return c.appendArray(dst, v, depth+1)
	case Null:
		return append(dst, byte(KindNull)), nil
	default:
		return nil, &EncodeError{Value: v, Err: ErrUnsupportedFieldType}
	}
}

// appendLongString writes the 'S' tag, a 4-byte length and the UTF-8 bytes
func appendLongString(dst []byte, s string, v Value) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, &EncodeError{Value: v, Err: ErrInvalidEncoding}
	}
	if uint64(len(s)) > math.MaxUint32 {
		return nil, &EncodeError{Value: v, Err: ErrOverflow}
	}

	dst = append(dst, byte(KindLongString))
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(s)))
	return append(dst, s...), nil
}
