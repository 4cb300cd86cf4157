package fixed

// Mat3 is a row-major 3x3 fixed-point matrix.
type Mat3 [9]Fixed

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{One, 0, 0, 0, One, 0, 0, 0, One}
}

// Transpose returns m with rows and columns swapped.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Determinant returns det(m).
func (m Mat3) Determinant() Fixed {
	return m[0].Mul(m[4].Mul(m[8]) - m[5].Mul(m[7])) -
		m[1].Mul(m[3].Mul(m[8]) - m[5].Mul(m[6])) +
		m[2].Mul(m[3].Mul(m[7]) - m[4].Mul(m[6]))
}

// Inverse returns the inverse of m via the adjugate. The second result is
// false when m is singular (determinant rounds to zero on the Q16.16 grid).
func (m Mat3) Inverse() (Mat3, bool) {
	det := m.Determinant()
	if det == 0 {
		return Mat3{}, false
	}
	adj := Mat3{
		m[4].Mul(m[8]) - m[5].Mul(m[7]),
		m[2].Mul(m[7]) - m[1].Mul(m[8]),
		m[1].Mul(m[5]) - m[2].Mul(m[4]),
		m[5].Mul(m[6]) - m[3].Mul(m[8]),
		m[0].Mul(m[8]) - m[2].Mul(m[6]),
		m[2].Mul(m[3]) - m[0].Mul(m[5]),
		m[3].Mul(m[7]) - m[4].Mul(m[6]),
		m[1].Mul(m[6]) - m[0].Mul(m[7]),
		m[0].Mul(m[4]) - m[1].Mul(m[3]),
	}
	var inv Mat3
	for i, v := range adj {
		inv[i] = v.Div(det)
	}
	return inv, true
}

// Mul returns the matrix product m*o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			var sum Fixed
			for k := 0; k < 3; k++ {
				sum += m[row*3+k].Mul(o[k*3+col])
			}
			r[row*3+col] = sum
		}
	}
	return r
}

// MulVec3 returns m*v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	var r Vec3
	for row := 0; row < 3; row++ {
		r[row] = m[row*3].Mul(v[0]) + m[row*3+1].Mul(v[1]) + m[row*3+2].Mul(v[2])
	}
	return r
}
