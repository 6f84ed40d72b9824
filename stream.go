package amqptable

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadTable reads exactly one length-prefixed table from r.
func ReadTable(r io.Reader) (*Table, error) {
	return defaultCodec.ReadTable(r)
}

// WriteTable encodes t and writes it to w, returning the bytes written.
func WriteTable(w io.Writer, t *Table) (int, error) {
	return defaultCodec.WriteTable(w, t)
}

func (c Codec) ReadTable(r io.Reader) (*Table, error) {
	// Read in the 4 byte content length
	var header [4]byte
	n, err := io.ReadFull(r, header[:])
	if err != nil {
		return nil, readError(n, err)
	}

	// Ensure the declared length isn't too long before allocating
	size := binary.BigEndian.Uint32(header[:])
	if limit := c.maxReadSize(); size > limit {
		return nil, fmt.Errorf("cannot read table of length %d, max is %d: %w", size, limit, ErrTooLarge)
	}

	// Read the content behind the header and decode the whole table
	buf := make([]byte, 4+int(size))
	copy(buf, header[:])
	n, err = io.ReadFull(r, buf[4:])
	if err != nil {
		return nil, readError(4+n, err)
	}

	t, _, err := c.DecodeTable(buf, 0)
	return t, err
}

func (c Codec) WriteTable(w io.Writer, t *Table) (int, error) {
	buf, err := c.EncodeTable(t)
	if err != nil {
		return 0, err
	}
	return w.Write(buf)
}

// readError maps a short read to ErrTruncated; other I/O errors pass through
func readError(offset int, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &DecodeError{Offset: offset, Err: ErrTruncated}
	}
	return err
}
