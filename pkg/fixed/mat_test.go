package fixed

import (
	"math"
	"testing"

	"github.com/nalgeon/be"
)

func TestIdentity(t *testing.T) {
	id := Identity3()
	v := Vec3{FromInt(1), FromInt(2), FromInt(3)}
	be.Equal(t, id.MulVec3(v), v)
	be.Equal(t, id.Mul(id), id)
}

func TestTranspose(t *testing.T) {
	m := Mat3{
		One, FromInt(2), FromInt(3),
		0, One, FromInt(4),
		0, 0, One,
	}
	tr := m.Transpose()
	be.Equal(t, tr[3], FromInt(2))
	be.Equal(t, tr.Transpose(), m)
}

func TestDeterminant(t *testing.T) {
	be.Equal(t, Identity3().Determinant(), One)

	diag := Mat3{FromInt(2), 0, 0, 0, FromInt(3), 0, 0, 0, FromInt(4)}
	be.Equal(t, diag.Determinant(), FromInt(24))

	singular := Mat3{One, One, One, One, One, One, One, One, One}
	be.Equal(t, singular.Determinant(), Fixed(0))
}

func TestInverse(t *testing.T) {
	diag := Mat3{FromInt(2), 0, 0, 0, FromInt(4), 0, 0, 0, FromInt(8)}
	inv, ok := diag.Inverse()
	be.True(t, ok)

	// inv * diag should be close to identity.
	prod := inv.Mul(diag)
	id := Identity3()
	for i := range prod {
		be.True(t, math.Abs(prod[i].Float()-id[i].Float()) < 0.001)
	}
}

func TestInverseSingular(t *testing.T) {
	singular := Mat3{One, One, One, One, One, One, One, One, One}
	_, ok := singular.Inverse()
	be.True(t, !ok)
}

func TestMulVec3Rotation(t *testing.T) {
	// 90-degree rotation around z maps x to y.
	c := Cos(FromFloat(math.Pi / 2))
	s := Sin(FromFloat(math.Pi / 2))
	rot := Mat3{
		c, -s, 0,
		s, c, 0,
		0, 0, One,
	}
	out := rot.MulVec3(Vec3{One, 0, 0})
	be.True(t, math.Abs(out[0].Float()) < 0.01)
	be.True(t, math.Abs(out[1].Float()-1.0) < 0.01)
}
