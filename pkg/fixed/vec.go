package fixed

// Vec2, Vec3 and Vec4 are fixed-point component vectors. They are plain
// arrays so the VM can copy them by value.
type (
	Vec2 [2]Fixed
	Vec3 [3]Fixed
	Vec4 [4]Fixed
)

// Dot2 returns the dot product of two 2-vectors.
func Dot2(a, b Vec2) Fixed {
	return a[0].Mul(b[0]) + a[1].Mul(b[1])
}

// Dot3 returns the dot product of two 3-vectors.
func Dot3(a, b Vec3) Fixed {
	return a[0].Mul(b[0]) + a[1].Mul(b[1]) + a[2].Mul(b[2])
}

// Dot4 returns the dot product of two 4-vectors.
func Dot4(a, b Vec4) Fixed {
	return a[0].Mul(b[0]) + a[1].Mul(b[1]) + a[2].Mul(b[2]) + a[3].Mul(b[3])
}

// Cross returns the cross product of two 3-vectors.
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		a[1].Mul(b[2]) - a[2].Mul(b[1]),
		a[2].Mul(b[0]) - a[0].Mul(b[2]),
		a[0].Mul(b[1]) - a[1].Mul(b[0]),
	}
}

// Length returns the Euclidean length of the first n components of c.
func Length(c []Fixed) Fixed {
	var sum Fixed
	for _, v := range c {
		sum += v.Mul(v)
	}
	return sum.Sqrt()
}

// Normalize scales the components in place to unit length. A zero vector is
// left unchanged.
func Normalize(c []Fixed) {
	l := Length(c)
	if l == 0 {
		return
	}
	for i := range c {
		c[i] = c[i].Div(l)
	}
}

// Distance returns the Euclidean distance between equal-length component
// slices a and b.
func Distance(a, b []Fixed) Fixed {
	var sum Fixed
	for i := range a {
		d := a[i] - b[i]
		sum += d.Mul(d)
	}
	return sum.Sqrt()
}
