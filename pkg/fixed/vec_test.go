package fixed

import (
	"math"
	"testing"

	"github.com/nalgeon/be"
)

func TestDot(t *testing.T) {
	a := Vec3{FromInt(1), FromInt(2), FromInt(3)}
	b := Vec3{FromInt(4), FromInt(5), FromInt(6)}
	be.Equal(t, Dot3(a, b), FromInt(32))

	be.Equal(t, Dot2(Vec2{One, 0}, Vec2{0, One}), Fixed(0))
	be.Equal(t, Dot4(Vec4{One, One, One, One}, Vec4{One, One, One, One}), FromInt(4))
}

func TestCross(t *testing.T) {
	x := Vec3{One, 0, 0}
	y := Vec3{0, One, 0}
	be.Equal(t, Cross(x, y), Vec3{0, 0, One})
	be.Equal(t, Cross(y, x), Vec3{0, 0, -One})
	// Parallel vectors cross to zero.
	be.Equal(t, Cross(x, x), Vec3{})
}

func TestLength(t *testing.T) {
	v := []Fixed{FromInt(3), FromInt(4)}
	be.Equal(t, Length(v), FromInt(5))
	be.Equal(t, Length([]Fixed{0, 0, 0}), Fixed(0))
}

func TestNormalize(t *testing.T) {
	v := []Fixed{FromInt(5), 0, 0}
	Normalize(v)
	be.Equal(t, v[0], One)
	be.Equal(t, v[1], Fixed(0))

	// The zero vector stays put instead of dividing by zero.
	z := []Fixed{0, 0}
	Normalize(z)
	be.Equal(t, z[0], Fixed(0))

	// A diagonal normalizes to unit length within table precision.
	d := []Fixed{FromInt(3), FromInt(4)}
	Normalize(d)
	be.True(t, math.Abs(Length(d).Float()-1.0) < 0.001)
}

func TestDistance(t *testing.T) {
	a := []Fixed{One, One}
	b := []Fixed{FromInt(4), FromInt(5)}
	be.Equal(t, Distance(a, b), FromInt(5))
	be.Equal(t, Distance(a, a), Fixed(0))
}
