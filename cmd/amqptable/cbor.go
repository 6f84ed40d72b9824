package main

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/justicz/amqptable"
)

// cborDecimalFraction is the RFC 8949 tag for [exponent, mantissa] decimals.
const cborDecimalFraction = 4

// cborEncMode uses Core Deterministic Encoding so the same table always
// produces the same bytes. Timestamps are written as tag 1 epoch seconds.
var cborEncMode cbor.EncMode

func init() {
	options := cbor.CoreDetEncOptions()
	options.Time = cbor.TimeUnix
	options.TimeTag = cbor.EncTagRequired

	var err error
	cborEncMode, err = options.EncMode()
	if err != nil {
		panic("amqptable: CBOR encoder initialization failed: " + err.Error())
	}
}

// marshalTableCBOR renders t as a CBOR map. Key order follows CBOR's
// deterministic ordering, not the table's.
func marshalTableCBOR(t *amqptable.Table) ([]byte, error) {
	return cborEncMode.Marshal(cborTable(t))
}

func cborTable(t *amqptable.Table) map[string]any {
	m := make(map[string]any, t.Len())
	for _, e := range t.Entries() {
		m[e.Key] = cborValue(e.Value)
	}
	return m
}

func cborValue(v amqptable.Value) any {
	switch v := v.(type) {
	case amqptable.Decimal:
		return cbor.Tag{
			Number:  cborDecimalFraction,
			Content: []int64{-int64(v.Scale), int64(v.Unscaled)},
		}
	case amqptable.Timestamp:
		// Past time.Time's range the seconds are written untagged
		if !v.InTimeRange() {
			return uint64(v)
		}
		return v.Time()
	case *amqptable.Table:
		return cborTable(v)
	case amqptable.Array:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = cborValue(elem)
		}
		return out
	default:
		return amqptable.Native(v)
	}
}
