package amqptable

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanWriteReadTable(t *testing.T) {
	tbl := NewTable(Entry{"product", LongString("amqptable")}, Entry{"capabilities", NewTable(
		Entry{"publisher_confirms", Boolean(true)},
	)})

	var buf bytes.Buffer
	n, err := WriteTable(&buf, tbl)
	require.NoError(t, err)
	require.Equal(t, buf.Len(), n)

	// Bytes after the table stay in the reader
	buf.WriteString("rest")

	res, err := ReadTable(&buf)
	require.NoError(t, err)
	require.Equal(t, tbl, res)
	require.Equal(t, "rest", buf.String())
}

func TestReadTableShortInput(t *testing.T) {
	_, err := ReadTable(bytes.NewReader([]byte{0, 0}))
	require.True(t, errors.Is(err, ErrTruncated))

	_, err = ReadTable(bytes.NewReader([]byte{0, 0, 0, 5, 1, 'a'}))
	require.True(t, errors.Is(err, ErrTruncated))
}

func TestReadTableHonoursSizeLimit(t *testing.T) {
	enc, err := EncodeTable(NewTable(Entry{"k", LongString("0123456789")}))
	require.NoError(t, err)

	_, err = Codec{MaxReadSize: 8}.ReadTable(bytes.NewReader(enc))
	require.True(t, errors.Is(err, ErrTooLarge))
	require.Contains(t, err.Error(), "max is 8")
}
