package amqptable

// DefaultMaxDepth is the nesting limit used when Codec.MaxDepth is zero.
const DefaultMaxDepth = 32

// DefaultMaxReadSize is the largest table ReadTable accepts when
// Codec.MaxReadSize is zero.
const DefaultMaxReadSize = 16 << 20

// Codec holds the limits applied while encoding and decoding. The zero value
// uses the defaults and is what the package-level functions use. A Codec is
// never modified by its methods and may be shared between goroutines.
type Codec struct {
	// MaxDepth bounds how deeply tables and arrays may nest. The outermost
	// table is depth 1 and every nested table or array adds one.
	MaxDepth int

	// MaxReadSize bounds the declared content length ReadTable will
	// allocate for.
	MaxReadSize uint32
}

var defaultCodec Codec

func (c Codec) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

func (c Codec) maxReadSize() uint32 {
	if c.MaxReadSize == 0 {
		return DefaultMaxReadSize
	}
	return c.MaxReadSize
}
