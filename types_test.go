package amqptable

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTableKeepsFirstPositionOnOverwrite(t *testing.T) {
	tbl := NewTable(Entry{"a", Int32(1)}, Entry{"b", Int32(2)}, Entry{"a", Int32(3)})

	require.Equal(t, []string{"a", "b"}, tbl.Keys())
	v, ok := tbl.Get("a")
	require.True(t, ok)
	require.Equal(t, Int32(3), v)
}

func TestTableDelete(t *testing.T) {
	tbl := NewTable(Entry{"a", Null{}}, Entry{"b", Null{}}, Entry{"c", Null{}})

	require.True(t, tbl.Delete("a"))
	require.False(t, tbl.Delete("a"))
	require.Equal(t, []string{"b", "c"}, tbl.Keys())

	// Remaining keys are still addressable
	tbl.Set("c", Boolean(true))
	v, _ := tbl.Get("c")
	require.Equal(t, Boolean(true), v)
	require.Equal(t, 2, tbl.Len())
}

func TestNilTableIsEmpty(t *testing.T) {
	var tbl *Table
	require.Equal(t, 0, tbl.Len())
	require.Empty(t, tbl.Keys())
	_, ok := tbl.Get("x")
	require.False(t, ok)
	require.True(t, tbl.Equal(NewTable()))
}

func TestEqual(t *testing.T) {
	require.True(t, Equal(Array{Int32(1), NewTable()}, Array{Int32(1), NewTable()}))
	require.False(t, Equal(Int32(1), Int64(1)))
	require.False(t, Equal(LongString("a"), ShortString("a")))
	require.False(t, Equal(NewTable(Entry{"a", Null{}}, Entry{"b", Null{}}), NewTable(Entry{"b", Null{}}, Entry{"a", Null{}})))
	require.True(t, Equal(nil, nil))
	require.False(t, Equal(Null{}, nil))
}

func TestIntPicksNarrowestWidth(t *testing.T) {
	require.Equal(t, Int32(2147483647), Int(2147483647))
	require.Equal(t, Int32(-2147483648), Int(-2147483648))
	require.Equal(t, Int64(2147483648), Int(2147483648))
	require.Equal(t, Int64(-2147483649), Int(-2147483649))
}

func TestTimestampIsUTCSeconds(t *testing.T) {
	local := time.Date(2022, 3, 4, 5, 6, 7, 999, time.FixedZone("X", 3600))
	ts := TimestampOf(local)

	require.Equal(t, Timestamp(local.Unix()), ts)
	require.Equal(t, time.UTC, ts.Time().Location())
	require.True(t, ts.Time().Equal(local.Truncate(time.Second)))
	require.True(t, ts.InTimeRange())
}

func TestTimestampBeyondTimeRange(t *testing.T) {
	require.True(t, Timestamp(maxTimeSeconds).InTimeRange())
	require.Equal(t, int64(maxTimeSeconds), Timestamp(maxTimeSeconds).Time().Unix())
	require.False(t, Timestamp(maxTimeSeconds+1).InTimeRange())
	require.False(t, Timestamp(math.MaxInt64).InTimeRange())
	require.False(t, Timestamp(math.MaxUint64).InTimeRange())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "table", KindTable.String())
	require.Equal(t, "0xff", Kind(0xff).String())
}
