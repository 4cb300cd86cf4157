package fixed

import (
	"math"
	"testing"

	"github.com/nalgeon/be"
)

func TestFromIntAndBack(t *testing.T) {
	be.Equal(t, FromInt(0), Fixed(0))
	be.Equal(t, FromInt(1), One)
	be.Equal(t, FromInt(-3).Int(), int32(-3))
	be.Equal(t, FromInt(100).Int(), int32(100))
}

func TestFromFloat(t *testing.T) {
	be.Equal(t, FromFloat(0.5), Half)
	be.Equal(t, FromFloat(1.0), One)
	be.Equal(t, FromFloat(-1.0), -One)
	be.True(t, math.Abs(FromFloat(3.14159).Float()-3.14159) < 0.0001)
}

func TestFromFloatTruncatesTowardZero(t *testing.T) {
	// 1e-6 * 65536 = 0.065536, below one fixed-point step either way.
	be.Equal(t, FromFloat(0.0000152), Fixed(0))
	be.Equal(t, FromFloat(-0.0000152), Fixed(0))
	// 1.5 steps truncates to 1, toward zero on both signs.
	step := 1.0 / float64(One)
	be.Equal(t, FromFloat(1.5*step), Fixed(1))
	be.Equal(t, FromFloat(-1.5*step), Fixed(-1))
}

func TestMul(t *testing.T) {
	be.Equal(t, FromInt(3).Mul(FromInt(4)), FromInt(12))
	be.Equal(t, Half.Mul(Half), FromFloat(0.25))
	be.Equal(t, FromInt(-2).Mul(FromInt(5)), FromInt(-10))
	// Large intermediates must not wrap at 32 bits.
	be.Equal(t, FromInt(300).Mul(FromInt(100)), FromInt(30000))
}

func TestDiv(t *testing.T) {
	be.Equal(t, One.Div(FromInt(4)), FromFloat(0.25))
	be.Equal(t, FromInt(10).Div(FromInt(-2)), FromInt(-5))
	// Division by zero is the caller's problem; the primitive yields zero.
	be.Equal(t, One.Div(0), Fixed(0))
}

func TestModFollowsDividendSign(t *testing.T) {
	be.Equal(t, FromFloat(7.5).Mod(FromInt(2)), FromFloat(1.5))
	be.Equal(t, FromFloat(-7.5).Mod(FromInt(2)), FromFloat(-1.5))
}

func TestFloorCeilFract(t *testing.T) {
	be.Equal(t, FromFloat(2.75).Floor(), FromInt(2))
	be.Equal(t, FromFloat(-2.25).Floor(), FromInt(-3))
	be.Equal(t, FromFloat(2.25).Ceil(), FromInt(3))
	be.Equal(t, FromInt(2).Ceil(), FromInt(2))
	be.Equal(t, FromFloat(2.75).Fract(), FromFloat(0.75))
	be.Equal(t, FromInt(5).Fract(), Fixed(0))
}

func TestAbs(t *testing.T) {
	be.Equal(t, FromInt(-7).Abs(), FromInt(7))
	be.Equal(t, FromInt(7).Abs(), FromInt(7))
	be.Equal(t, Fixed(0).Abs(), Fixed(0))
}

func TestSqrt(t *testing.T) {
	be.Equal(t, FromInt(16).Sqrt(), FromInt(4))
	be.Equal(t, FromInt(1).Sqrt(), One)
	be.Equal(t, Fixed(0).Sqrt(), Fixed(0))
	// Fractional input.
	be.True(t, math.Abs(FromFloat(2.0).Sqrt().Float()-math.Sqrt2) < 0.001)
	// Negative input clamps to zero rather than faulting.
	be.Equal(t, FromInt(-4).Sqrt(), Fixed(0))
}

func TestClampLerp(t *testing.T) {
	be.Equal(t, Clamp(FromInt(5), Fixed(0), One), One)
	be.Equal(t, Clamp(FromInt(-5), Fixed(0), One), Fixed(0))
	be.Equal(t, Clamp(Half, Fixed(0), One), Half)
	be.Equal(t, Lerp(Fixed(0), FromInt(10), Half), FromInt(5))
	be.Equal(t, Lerp(FromInt(2), FromInt(4), Fixed(0)), FromInt(2))
	be.Equal(t, Lerp(FromInt(2), FromInt(4), One), FromInt(4))
}

func TestMinMax(t *testing.T) {
	be.Equal(t, Min(One, Half), Half)
	be.Equal(t, Max(One, Half), One)
	be.Equal(t, Min(FromInt(-1), Fixed(0)), FromInt(-1))
}
