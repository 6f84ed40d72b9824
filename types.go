package amqptable

import (
	"fmt"
	"math"
	"time"
)

// Kind is the type tag byte written in front of every field value.
type Kind byte

const (
	KindLongString  Kind = 'S'
	KindShortString Kind = 's'
	KindBoolean     Kind = 't'
	KindInt32       Kind = 'I'
	KindInt64       Kind = 'l'
	KindDecimal     Kind = 'D'
	KindTimestamp   Kind = 'T'
	KindTable       Kind = 'F'
	KindArray       Kind = 'A'
	KindNull        Kind = 'V'
)

// String returns the variant name for known tags and the hex byte otherwise.
func (k Kind) String() string {
	switch k {
	case KindLongString:
		return "longstr"
	case KindShortString:
		return "shortstr"
	case KindBoolean:
		return "boolean"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindDecimal:
		return "decimal"
	case KindTimestamp:
		return "timestamp"
	case KindTable:
		return "table"
	case KindArray:
		return "array"
	case KindNull:
		return "void"
	default:
		return fmt.Sprintf("0x%02x", byte(k))
	}
}

// Value is a single AMQP field value. The set of implementations is closed:
// only the types in this package satisfy it.
type Value interface {
	Kind() Kind
	fieldValue()
}

type LongString string

type ShortString string

type Boolean bool

type Int32 int32

type Int64 int64

// Timestamp is a count of seconds since the Unix epoch, UTC.
type Timestamp uint64

// Array is an ordered, heterogeneous sequence of values.
type Array []Value

// Null is the void value. It has no payload.
type Null struct{}

func (LongString) Kind() Kind  { return KindLongString }
func (ShortString) Kind() Kind { return KindShortString }
func (Boolean) Kind() Kind     { return KindBoolean }
func (Int32) Kind() Kind       { return KindInt32 }
func (Int64) Kind() Kind       { return KindInt64 }
func (Decimal) Kind() Kind     { return KindDecimal }
func (Timestamp) Kind() Kind   { return KindTimestamp }
func (*Table) Kind() Kind      { return KindTable }
func (Array) Kind() Kind       { return KindArray }
func (Null) Kind() Kind        { return KindNull }

func (LongString) fieldValue()  {}
func (ShortString) fieldValue() {}
func (Boolean) fieldValue()     {}
func (Int32) fieldValue()       {}
func (Int64) fieldValue()       {}
func (Decimal) fieldValue()     {}
func (Timestamp) fieldValue()   {}
func (*Table) fieldValue()      {}
func (Array) fieldValue()       {}
func (Null) fieldValue()        {}

// Int returns v as an Int32 when it fits in 32 bits and as an Int64
// otherwise.
func Int(v int64) Value {
	if v >= -1<<31 && v <= 1<<31-1 {
		return Int32(v)
	}
	return Int64(v)
}

// TimestampOf truncates t to whole seconds. t must not precede the epoch.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.Unix())
}

// maxTimeSeconds is the last Unix second a time.Time can hold. Its internal
// clock counts from year 1, 62135596800 seconds before the epoch.
const maxTimeSeconds = math.MaxInt64 - 62135596800

// Time returns the timestamp as a UTC time. The wire allows any uint64, but
// the result is only meaningful when InTimeRange reports true.
func (ts Timestamp) Time() time.Time {
	return time.Unix(int64(ts), 0).UTC()
}

// InTimeRange reports whether ts can be held by a time.Time.
func (ts Timestamp) InTimeRange() bool {
	return ts <= maxTimeSeconds
}

// Entry is a single key/value pair of a Table.
type Entry struct {
	Key   string
	Value Value
}

// Table is an ordered mapping from short-string keys to values. Entries keep
// the order in which their keys were first set; that order is the order they
// are encoded in. The zero value is an empty table ready to use.
type Table struct {
	entries []Entry
	index   map[string]int
}

// NewTable builds a table from entries in order. A repeated key keeps its
// first position and its last value.
func NewTable(entries ...Entry) *Table {
	t := &Table{}
	for _, e := range entries {
		t.Set(e.Key, e.Value)
	}
	return t
}

// Set stores v under key. An existing key is overwritten in place.
func (t *Table) Set(key string, v Value) {
	if i, ok := t.index[key]; ok {
		t.entries[i].Value = v
		return
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, Entry{Key: key, Value: v})
}

// Get returns the value stored under key.
func (t *Table) Get(key string) (Value, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	return t.entries[i].Value, true
}

// Delete removes key, reporting whether it was present.
func (t *Table) Delete(key string) bool {
	if t == nil {
		return false
	}
	i, ok := t.index[key]
	if !ok {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	delete(t.index, key)
	for j := i; j < len(t.entries); j++ {
		t.index[t.entries[j].Key] = j
	}
	return true
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Keys returns the keys in encoding order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, t.Len())
	for _, e := range t.all() {
		keys = append(keys, e.Key)
	}
	return keys
}

// Entries returns a copy of the entries in encoding order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.all()...)
}

func (t *Table) all() []Entry {
	if t == nil {
		return nil
	}
	return t.entries
}

// Equal reports whether t and o hold structurally equal values under the
// same keys in the same order. A nil table equals an empty one.
func (t *Table) Equal(o *Table) bool {
	a, b := t.all(), o.all()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || !Equal(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

// Equal reports whether a and b are the same variant with the same payload.
// Decimals compare by scale and unscaled value, so 1.0 and 1.00 differ.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case *Table:
		b, ok := b.(*Table)
		return ok && a.Equal(b)
	case Array:
		b, ok := b.(Array)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		// Every remaining variant is a comparable scalar
		return a == b
	}
}
