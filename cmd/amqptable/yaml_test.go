package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/justicz/amqptable"
)

func TestCanParseTaggedYAML(t *testing.T) {
	doc := `
name: orders
durable: true
"x-max-length": 1000
big: 10000000000
small64: !int64 5
narrow: !int32 7
short: !short id
price: !decimal "12.50"
ratio: 0.25
created: 2024-02-29T12:00:00Z
expires: !timestamp 60
nothing: null
quoted: "true"
args:
  x-match: all
list: [1, two, ~]
`
	table, err := parseTable([]byte(doc), "yaml", amqptable.DefaultMaxDepth)
	require.NoError(t, err)

	want := amqptable.NewTable(
		amqptable.Entry{Key: "name", Value: amqptable.LongString("orders")},
		amqptable.Entry{Key: "durable", Value: amqptable.Boolean(true)},
		amqptable.Entry{Key: "x-max-length", Value: amqptable.Int32(1000)},
		amqptable.Entry{Key: "big", Value: amqptable.Int64(10000000000)},
		amqptable.Entry{Key: "small64", Value: amqptable.Int64(5)},
		amqptable.Entry{Key: "narrow", Value: amqptable.Int32(7)},
		amqptable.Entry{Key: "short", Value: amqptable.ShortString("id")},
		amqptable.Entry{Key: "price", Value: amqptable.Decimal{Scale: 1, Unscaled: 125}},
		amqptable.Entry{Key: "ratio", Value: amqptable.Decimal{Scale: 2, Unscaled: 25}},
		amqptable.Entry{Key: "created", Value: amqptable.TimestampOf(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC))},
		amqptable.Entry{Key: "expires", Value: amqptable.Timestamp(60)},
		amqptable.Entry{Key: "nothing", Value: amqptable.Null{}},
		amqptable.Entry{Key: "quoted", Value: amqptable.LongString("true")},
		amqptable.Entry{Key: "args", Value: amqptable.NewTable(
			amqptable.Entry{Key: "x-match", Value: amqptable.LongString("all")},
		)},
		amqptable.Entry{Key: "list", Value: amqptable.Array{
			amqptable.Int32(1), amqptable.LongString("two"), amqptable.Null{},
		}},
	)
	require.Equal(t, want, table)
}

func TestCanParseJSONC(t *testing.T) {
	doc := `{
  // queue arguments
  "x-queue-type": "quorum",
  "x-delivery-limit": 20, /* redeliveries */
}`
	table, err := parseTable([]byte(doc), "jsonc", amqptable.DefaultMaxDepth)
	require.NoError(t, err)
	require.Equal(t, []string{"x-queue-type", "x-delivery-limit"}, table.Keys())

	v, _ := table.Get("x-delivery-limit")
	require.Equal(t, amqptable.Int32(20), v)
}

func TestJSONCNumbersWithExponents(t *testing.T) {
	table, err := parseTable([]byte(`{"ttl": 1e3, "rate": 2.5E-1}`), "jsonc", amqptable.DefaultMaxDepth)
	require.NoError(t, err)

	v, _ := table.Get("ttl")
	require.Equal(t, amqptable.Decimal{Scale: 0, Unscaled: 1000}, v)
	v, _ = table.Get("rate")
	require.Equal(t, amqptable.Decimal{Scale: 2, Unscaled: 25}, v)
}

func TestYAMLRoundTrip(t *testing.T) {
	table := amqptable.NewTable(
		amqptable.Entry{Key: "s", Value: amqptable.LongString("yes")},
		amqptable.Entry{Key: "short", Value: amqptable.ShortString("x")},
		amqptable.Entry{Key: "i", Value: amqptable.Int32(-3)},
		amqptable.Entry{Key: "l", Value: amqptable.Int64(3)},
		amqptable.Entry{Key: "d", Value: amqptable.Decimal{Scale: 3, Unscaled: -1}},
		amqptable.Entry{Key: "t", Value: amqptable.Timestamp(1700000000)},
		amqptable.Entry{Key: "far", Value: amqptable.Timestamp(1 << 40)},
		amqptable.Entry{Key: "b", Value: amqptable.Boolean(false)},
		amqptable.Entry{Key: "v", Value: amqptable.Null{}},
		amqptable.Entry{Key: "empty", Value: amqptable.NewTable()},
		amqptable.Entry{Key: "none", Value: amqptable.Array{}},
		amqptable.Entry{Key: "nested", Value: amqptable.Array{amqptable.NewTable(
			amqptable.Entry{Key: "k", Value: amqptable.LongString("123")},
		)}},
	)

	rendered, err := marshalTableYAML(table)
	require.NoError(t, err)

	parsed, err := parseTable(rendered, "yaml", amqptable.DefaultMaxDepth)
	require.NoError(t, err)
	require.Equal(t, table, parsed, string(rendered))
}

func TestEmptyDocumentIsEmptyTable(t *testing.T) {
	table, err := parseTable(nil, "yaml", amqptable.DefaultMaxDepth)
	require.NoError(t, err)
	require.Equal(t, 0, table.Len())
}

func TestCannotParseBadDocuments(t *testing.T) {
	// Top level must be a mapping
	_, err := parseTable([]byte("- 1\n- 2\n"), "yaml", amqptable.DefaultMaxDepth)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected a mapping")

	// Unknown tags are unsupported
	_, err = parseTable([]byte("k: !blob abc\n"), "yaml", amqptable.DefaultMaxDepth)
	require.True(t, errors.Is(err, amqptable.ErrUnsupportedFieldType))

	// Nesting is bounded while parsing
	_, err = parseTable([]byte("a: {b: {c: 1}}\n"), "yaml", 2)
	require.True(t, errors.Is(err, amqptable.ErrNestingTooDeep))

	_, err = parseTable([]byte("k: v\n"), "toml", amqptable.DefaultMaxDepth)
	require.Error(t, err)
}
