package amqptable

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxKeyLength is the longest key a 1-byte length prefix can carry
const maxKeyLength = 255

// checkKey ensures key can be written as a short string
func checkKey(key string) error {
	if len(key) > maxKeyLength {
		return ErrKeyTooLong
	}
	if !utf8.ValidString(key) {
		return ErrInvalidEncoding
	}
	return nil
}

// sortedKeys returns the keys of m in byte order so that tables built from
// Go maps encode identically every time
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// indexSegment is the path segment for element i of an array
func indexSegment(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// joinPath prefixes rest with the segment of its parent container
func joinPath(segment, rest string) string {
	switch {
	case rest == "":
		return segment
	case strings.HasPrefix(rest, "["):
		return segment + rest
	default:
		return segment + "." + rest
	}
}

// withinPath records that err happened below segment. Errors that are not
// EncodeErrors pass through untouched.
func withinPath(err error, segment string) error {
	if encErr, ok := err.(*EncodeError); ok {
		encErr.Path = joinPath(segment, encErr.Path)
	}
	return err
}

// panicError turns a value recovered from a panic into an error wrapping
// ErrInternal
func panicError(op string, r any) error {
	return fmt.Errorf("%w: recovered panic in %s: %v", ErrInternal, op, r)
}
