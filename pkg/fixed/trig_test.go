package fixed

import (
	"math"
	"testing"

	"github.com/nalgeon/be"
)

// close reports whether a fixed-point result is within tol of want. The
// 1024-entry table gives roughly three decimal digits near the origin.
func close(got Fixed, want, tol float64) bool {
	return math.Abs(got.Float()-want) <= tol
}

func TestSinKeyAngles(t *testing.T) {
	cases := []struct {
		angle float64
		want  float64
	}{
		{0, 0},
		{math.Pi / 2, 1},
		{math.Pi, 0},
		{3 * math.Pi / 2, -1},
		{2 * math.Pi, 0},
		{math.Pi / 6, 0.5},
	}
	for _, tc := range cases {
		got := Sin(FromFloat(tc.angle))
		be.True(t, close(got, tc.want, 0.01))
	}
}

func TestCosIsShiftedSin(t *testing.T) {
	for a := -6.0; a < 6.0; a += 0.173 {
		s := Sin(FromFloat(a + math.Pi/2))
		c := Cos(FromFloat(a))
		// The quarter-phase shift uses the same table walk, so the two
		// reads may straddle adjacent entries.
		be.True(t, math.Abs(s.Float()-c.Float()) < 0.02)
	}
}

func TestSinPeriodicity(t *testing.T) {
	for a := 0.0; a < 6.2; a += 0.41 {
		base := Sin(FromFloat(a))
		wrapped := Sin(FromFloat(a + 2*math.Pi))
		be.True(t, math.Abs(base.Float()-wrapped.Float()) < 0.02)
	}
}

func TestSinNegativeAngles(t *testing.T) {
	for a := 0.1; a < 3.0; a += 0.37 {
		pos := Sin(FromFloat(a))
		neg := Sin(FromFloat(-a))
		be.True(t, math.Abs(pos.Float()+neg.Float()) < 0.02)
	}
}

func TestPythagoreanIdentity(t *testing.T) {
	for a := 0.0; a < 6.2; a += 0.29 {
		s := Sin(FromFloat(a)).Float()
		c := Cos(FromFloat(a)).Float()
		be.True(t, math.Abs(s*s+c*c-1) < 0.05)
	}
}

func TestTanSaturatesNearAsymptote(t *testing.T) {
	// Near pi/2 cosine underflows to zero; tan must stay finite.
	v := Tan(FromFloat(math.Pi / 2))
	be.True(t, v == Fixed(math.MaxInt32) || v == Fixed(math.MinInt32) || v.Abs() > FromInt(100))
}

func TestNoise1Deterministic(t *testing.T) {
	a := Noise1(FromFloat(1.375))
	b := Noise1(FromFloat(1.375))
	be.Equal(t, a, b)
}

func TestNoise1Varies(t *testing.T) {
	// A flat noise field would defeat its purpose; expect at least two
	// distinct values across a sweep.
	seen := map[Fixed]bool{}
	for x := 0.0; x < 8.0; x += 0.37 {
		seen[Noise1(FromFloat(x))] = true
	}
	be.True(t, len(seen) > 4)
}

func TestNoise1Bounded(t *testing.T) {
	for x := -16.0; x < 16.0; x += 0.53 {
		v := Noise1(FromFloat(x))
		be.True(t, v >= -2*One && v <= 2*One)
	}
}

func TestNoise2Deterministic(t *testing.T) {
	a := Noise2(FromFloat(0.25), FromFloat(0.75))
	b := Noise2(FromFloat(0.25), FromFloat(0.75))
	be.Equal(t, a, b)
}

func TestNoise2DependsOnBothAxes(t *testing.T) {
	base := Noise2(FromFloat(1.0), FromFloat(1.0))
	dx := Noise2(FromFloat(4.5), FromFloat(1.0))
	dy := Noise2(FromFloat(1.0), FromFloat(4.5))
	be.True(t, base != dx || base != dy)
}
