package amqptable

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Decimal is a fixed-point number equal to Unscaled * 10^-Scale.
type Decimal struct {
	Scale    uint8
	Unscaled int32
}

// normalize strips trailing zero digits while a fractional digit remains
func (d Decimal) normalize() Decimal {
	for d.Scale > 0 && d.Unscaled%10 == 0 {
		d.Unscaled /= 10
		d.Scale--
	}
	return d
}

// String renders d in plain decimal notation, keeping every scale digit.
func (d Decimal) String() string {
	digits := strconv.FormatInt(int64(d.Unscaled), 10)
	sign := ""
	if d.Unscaled < 0 {
		sign, digits = "-", digits[1:]
	}
	if d.Scale == 0 {
		return sign + digits
	}

	// Pad so at least one digit sits left of the point
	scale := int(d.Scale)
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	point := len(digits) - scale
	return sign + digits[:point] + "." + digits[point:]
}

// Rat returns the exact value of d.
func (d Decimal) Rat() *big.Rat {
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.Scale)), nil)
	return new(big.Rat).SetFrac(big.NewInt(int64(d.Unscaled)), denom)
}

// ParseDecimal parses decimal notation such as "123.45", "-0.001" or "1.5e3"
// and strips trailing fractional zeros. Values whose unscaled digits do not
// fit in 32 bits, or that need more than 255 fractional digits, are rejected
// rather than rounded.
func ParseDecimal(s string) (Decimal, error) {
	text := strings.TrimSpace(s)

	// Split off the sign
	negative := false
	switch {
	case strings.HasPrefix(text, "-"):
		negative, text = true, text[1:]
	case strings.HasPrefix(text, "+"):
		text = text[1:]
	}

	// Split off a decimal exponent
	exp := 0
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		e, err := strconv.ParseInt(text[i+1:], 10, 32)
		if err != nil {
			return Decimal{}, fmt.Errorf("invalid decimal %q", s)
		}
		exp, text = int(e), text[:i]
	}

	// Split into integral and fractional digits
	intPart, fracPart, _ := strings.Cut(text, ".")
	if intPart == "" && fracPart == "" {
		return Decimal{}, fmt.Errorf("invalid decimal %q", s)
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return Decimal{}, fmt.Errorf("invalid decimal %q", s)
		}
	}

	// Parse all digits as one arbitrarily large coefficient
	coef, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("invalid decimal %q", s)
	}
	if negative {
		coef.Neg(coef)
	}

	// A positive exponent beyond the fraction scales the coefficient up.
	// Ten digits is already past int32.
	scale := len(fracPart) - exp
	if scale < 0 {
		if coef.Sign() != 0 {
			if -scale > 10 {
				return Decimal{}, fmt.Errorf("decimal %q does not fit a 32-bit unscaled value: %w", s, ErrOverflow)
			}
			coef.Mul(coef, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-scale)), nil))
		}
		scale = 0
	}

	// Strip trailing fractional zeros
	ten := big.NewInt(10)
	rem := new(big.Int)
	for scale > 0 && coef.Sign() != 0 {
		q, r := new(big.Int).QuoRem(coef, ten, rem)
		if r.Sign() != 0 {
			break
		}
		coef = q
		scale--
	}
	if coef.Sign() == 0 {
		scale = 0
	}

	if scale > math.MaxUint8 {
		return Decimal{}, fmt.Errorf("decimal %q has %d fractional digits, max is %d: %w", s, scale, math.MaxUint8, ErrOverflow)
	}
	if !coef.IsInt64() || coef.Int64() < math.MinInt32 || coef.Int64() > math.MaxInt32 {
		return Decimal{}, fmt.Errorf("decimal %q does not fit a 32-bit unscaled value: %w", s, ErrOverflow)
	}

	return Decimal{Scale: uint8(scale), Unscaled: int32(coef.Int64())}, nil
}
