package amqptable

import (
	"math"
	"time"
)

// ValueOf converts a plain Go value to a field value. Types are checked in
// wire precedence order: strings, booleans, integers (narrowest width that
// holds the value), decimals, times, maps, slices and finally nil. Existing
// Values pass through. Floats and every other type are rejected with
// ErrUnsupportedFieldType.
func ValueOf(v any) (Value, error) {
	return defaultCodec.ValueOf(v)
}

// TableOf converts m to a table whose entries are sorted by key.
func TableOf(m map[string]any) (*Table, error) {
	return defaultCodec.TableOf(m)
}

func (c Codec) ValueOf(v any) (Value, error) {
	return c.valueOf(v, 0)
}

func (c Codec) TableOf(m map[string]any) (*Table, error) {
	return c.tableOf(m, 1)
}

func (c Codec) tableOf(m map[string]any, depth int) (*Table, error) {
	if depth > c.maxDepth() {
		return nil, &EncodeError{Value: m, Err: ErrNestingTooDeep}
	}

	t := &Table{}
	for _, key := range sortedKeys(m) {
		if err := checkKey(key); err != nil {
			return nil, &EncodeError{Path: key, Value: key, Err: err}
		}
		v, err := c.valueOf(m[key], depth)
		if err != nil {
			return nil, withinPath(err, key)
		}
		t.Set(key, v)
	}
	return t, nil
}

func (c Codec) valueOf(v any, depth int) (Value, error) {
	switch v := v.(type) {
	case Value:
		return v, nil
	case string:
		return LongString(v), nil
	case bool:
		return Boolean(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return uintValue(uint64(v))
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		return uintValue(v)
	case time.Time:
		if v.Unix() < 0 {
			return nil, &EncodeError{Value: v, Err: ErrUnsupportedFieldType}
		}
		return TimestampOf(v), nil
	case map[string]any:
		return c.tableOf(v, depth+1)
	case []any:
		if depth+1 > c.maxDepth() {
			return nil, &EncodeError{Value: v, Err: ErrNestingTooDeep}
		}
		a := make(Array, 0, len(v))
		for i, elem := range v {
			ev, err := c.valueOf(elem, depth+1)
			if err != nil {
				return nil, withinPath(err, indexSegment(i))
			}
			a = append(a, ev)
		}
		return a, nil
	case nil:
		return Null{}, nil
	default:
		return nil, &EncodeError{Value: v, Err: ErrUnsupportedFieldType}
	}
}

// uintValue rejects unsigned values beyond the signed 64-bit range
func uintValue(v uint64) (Value, error) {
	if v > math.MaxInt64 {
		return nil, &EncodeError{Value: v, Err: ErrUnsupportedFieldType}
	}
	return Int(int64(v)), nil
}

// Native converts v back to plain Go values: string, bool, int32, int64,
// Decimal, time.Time, map[string]any, []any or nil. Timestamps that no
// time.Time can hold come back as uint64 seconds.
func Native(v Value) any {
	switch v := v.(type) {
	case LongString:
		return string(v)
	case ShortString:
		return string(v)
	case Boolean:
		return bool(v)
	case Int32:
		return int32(v)
	case Int64:
		return int64(v)
	case Decimal:
		return v
	case Timestamp:
		if !v.InTimeRange() {
			return uint64(v)
		}
		return v.Time()
	case *Table:
		return v.Map()
	case Array:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Native(elem)
		}
		return out
	default:
		return nil
	}
}

// Map converts t to a Go map with Native values. Key order is lost.
func (t *Table) Map() map[string]any {
	m := make(map[string]any, t.Len())
	for _, e := range t.all() {
		m[e.Key] = Native(e.Value)
	}
	return m
}
