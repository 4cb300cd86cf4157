// Package fixed implements the Q16.16 fixed-point arithmetic kernel used by
// the script VM. All runtime numeric values are 32-bit signed integers with
// 16 fractional bits; One (65536) represents 1.0.
package fixed

// Fixed is a Q16.16 fixed-point number.
type Fixed int32

const (
	// One is the fixed-point encoding of 1.0.
	One Fixed = 1 << 16

	// Half is the fixed-point encoding of 0.5.
	Half Fixed = 1 << 15

	shift = 16
)

// FromInt converts an integer to fixed point.
func FromInt(i int32) Fixed {
	return Fixed(i << shift)
}

// FromFloat converts a float to fixed point, truncating the sub-1/65536
// remainder toward zero.
func FromFloat(f float64) Fixed {
	return Fixed(f * float64(One))
}

// Float converts v to a float64.
func (v Fixed) Float() float64 {
	return float64(v) / float64(One)
}

// Int truncates v toward zero and returns the integer part.
func (v Fixed) Int() int32 {
	if v < 0 {
		return -int32(-v >> shift)
	}
	return int32(v >> shift)
}

// Mul returns v*o with an intermediate 64-bit product so that values up to
// the full 16-bit integer range multiply without overflow.
func (v Fixed) Mul(o Fixed) Fixed {
	return Fixed((int64(v) * int64(o)) >> shift)
}

// Div returns v/o. The caller must reject a zero divisor; Div on zero is a
// programming error and returns 0.
func (v Fixed) Div(o Fixed) Fixed {
	if o == 0 {
		return 0
	}
	return Fixed((int64(v) << shift) / int64(o))
}

// Mod returns the remainder of v/o with the sign of v, matching the C
// semantics the source language exposes. A zero divisor returns 0; callers
// reject it first.
func (v Fixed) Mod(o Fixed) Fixed {
	if o == 0 {
		return 0
	}
	return Fixed(int64(v) % int64(o))
}

// Abs returns the absolute value of v.
func (v Fixed) Abs() Fixed {
	if v < 0 {
		return -v
	}
	return v
}

// Floor rounds v down to the nearest whole number.
func (v Fixed) Floor() Fixed {
	return v &^ (One - 1)
}

// Ceil rounds v up to the nearest whole number.
func (v Fixed) Ceil() Fixed {
	return (v + One - 1) &^ (One - 1)
}

// Fract returns the fractional part of v, always in [0, 1).
func (v Fixed) Fract() Fixed {
	return v - v.Floor()
}

// Sqrt returns the square root of v, or 0 for negative inputs.
func (v Fixed) Sqrt() Fixed {
	if v <= 0 {
		return 0
	}
	// sqrt(raw/2^16) in Q16.16 is isqrt(raw << 16).
	return Fixed(isqrt(uint64(v) << shift))
}

// isqrt is a binary integer square root.
func isqrt(n uint64) uint32 {
	var res uint64
	bit := uint64(1) << 62
	for bit > n {
		bit >>= 2
	}
	for bit != 0 {
		if n >= res+bit {
			n -= res + bit
			res = res>>1 + bit
		} else {
			res >>= 1
		}
		bit >>= 2
	}
	return uint32(res)
}

// Min returns the smaller of a and b.
func Min(a, b Fixed) Fixed {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Fixed) Fixed {
	if a > b {
		return a
	}
	return b
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi Fixed) Fixed {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates from a to b by t.
func Lerp(a, b, t Fixed) Fixed {
	return a + (b - a).Mul(t)
}
