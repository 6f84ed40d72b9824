package amqptable

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want Decimal
	}{
		{"123.45", Decimal{Scale: 2, Unscaled: 12345}},
		{"123.4500", Decimal{Scale: 2, Unscaled: 12345}},
		{"-0.001", Decimal{Scale: 3, Unscaled: -1}},
		{"+7", Decimal{Scale: 0, Unscaled: 7}},
		{"1200", Decimal{Scale: 0, Unscaled: 1200}},
		{"1200.00", Decimal{Scale: 0, Unscaled: 1200}},
		{".5", Decimal{Scale: 1, Unscaled: 5}},
		{"0.000", Decimal{}},
		{" 2147483647 ", Decimal{Scale: 0, Unscaled: 2147483647}},
		{"0.000000000000000000000000000001", Decimal{Scale: 30, Unscaled: 1}},
		{"1e3", Decimal{Scale: 0, Unscaled: 1000}},
		{"1.5E+2", Decimal{Scale: 0, Unscaled: 150}},
		{"-12.5e-2", Decimal{Scale: 3, Unscaled: -125}},
		{"1200e-2", Decimal{Scale: 0, Unscaled: 12}},
		{"0e99", Decimal{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDecimal(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, d)
		})
	}
}

func TestCannotParseBadDecimals(t *testing.T) {
	for _, in := range []string{"", "-", ".", "1.2.3", "e5", "1e", "1e+", "1e5.5", "abc", "1,5"} {
		_, err := ParseDecimal(in)
		require.Error(t, err, in)
	}

	// Integral values beyond 32 bits are rejected, never truncated
	_, err := ParseDecimal("2147483648")
	require.True(t, errors.Is(err, ErrOverflow))

	_, err = ParseDecimal("21474836.480")
	require.True(t, errors.Is(err, ErrOverflow))

	// So are exponents that push the value past 32 bits
	_, err = ParseDecimal("3e9")
	require.True(t, errors.Is(err, ErrOverflow))

	_, err = ParseDecimal("1e1000")
	require.True(t, errors.Is(err, ErrOverflow))

	_, err = ParseDecimal("1e-256")
	require.True(t, errors.Is(err, ErrOverflow))
}

func TestDecimalString(t *testing.T) {
	require.Equal(t, "123.45", Decimal{Scale: 2, Unscaled: 12345}.String())
	require.Equal(t, "-0.005", Decimal{Scale: 3, Unscaled: -5}.String())
	require.Equal(t, "1.00", Decimal{Scale: 2, Unscaled: 100}.String())
	require.Equal(t, "-2147483648", Decimal{Unscaled: -2147483648}.String())
	require.Equal(t, "0", Decimal{}.String())
}

func TestDecimalRat(t *testing.T) {
	require.Equal(t, 0, big.NewRat(12345, 100).Cmp(Decimal{Scale: 2, Unscaled: 12345}.Rat()))
}

func TestDecimalEqualityIsStructural(t *testing.T) {
	require.True(t, Equal(Decimal{Scale: 1, Unscaled: 10}, Decimal{Scale: 1, Unscaled: 10}))
	require.False(t, Equal(Decimal{Scale: 1, Unscaled: 10}, Decimal{Scale: 0, Unscaled: 1}))
}
