package luctisity

import "math"

// Mat3 is a 3x3 affine matrix stored column-major, the layout uploaded as the
// transform uniform:
//
//	| m[0] m[3] m[6] |
//	| m[1] m[4] m[7] |
//	| m[2] m[5] m[8] |
type Mat3 [9]float64

// Identity is the identity matrix.
var Identity = Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Translation returns a matrix translating by (x, y).
func Translation(x, y float64) Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, x, y, 1}
}

// Scaling returns a matrix scaling by (sx, sy).
func Scaling(sx, sy float64) Mat3 {
	return Mat3{sx, 0, 0, 0, sy, 0, 0, 0, 1}
}

// Rotation returns a counter-clockwise rotation by rad radians (y up).
func Rotation(rad float64) Mat3 {
	s, c := math.Sincos(rad)
	return Mat3{c, s, 0, -s, c, 0, 0, 0, 1}
}

// Mul returns m * o. Applied to a point, o acts first.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			r[col*3+row] = m[row]*o[col*3] + m[3+row]*o[col*3+1] + m[6+row]*o[col*3+2]
		}
	}
	return r
}

// Translate post-multiplies a translation, so it applies in m's local space.
func (m Mat3) Translate(x, y float64) Mat3 { return m.Mul(Translation(x, y)) }

// Scale post-multiplies a scale.
func (m Mat3) Scale(sx, sy float64) Mat3 { return m.Mul(Scaling(sx, sy)) }

// Rotate post-multiplies a rotation of rad radians.
func (m Mat3) Rotate(rad float64) Mat3 { return m.Mul(Rotation(rad)) }

// Apply transforms the point (x, y).
func (m Mat3) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[3]*y + m[6], m[1]*x + m[4]*y + m[7]
}

// Float32 returns the matrix as a float32 slice, column-major.
func (m Mat3) Float32() []float32 {
	out := make([]float32, 9)
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
