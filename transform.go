package vantage

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Transform2D is a 2D affine matrix stored as [a, b, c, d, e, f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
//
// A point (x, y) maps to (a*x + c*y + e, b*x + d*y + f).
type Transform2D [6]float64

// IdentityTransform is the identity affine matrix.
var IdentityTransform = Transform2D{1, 0, 0, 1, 0, 0}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Transform2D {
	return Transform2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Transform2D {
	return Transform2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (angle in radians, clockwise on screen).
func Rotate(radians float64) Transform2D {
	sin, cos := math.Sincos(radians)
	return Transform2D{cos, sin, -sin, cos, 0, 0}
}

// SetTransform rebuilds the matrix from a translation, a rotation and a
// non-uniform scale, composed as T(tx, ty) * R(rotation) * S(sx, sy): points
// are scaled first, then rotated, then translated. A zero scale on either
// axis produces a singular matrix.
func (m *Transform2D) SetTransform(tx, ty, rotation, sx, sy float64) {
	sin, cos := math.Sincos(rotation)
	m[0] = cos * sx
	m[1] = sin * sx
	m[2] = -sin * sy
	m[3] = cos * sy
	m[4] = tx
	m[5] = ty
}

// Determinant returns a*d - b*c.
func (m Transform2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invertible reports whether the matrix has a usable inverse this frame.
func (m Transform2D) Invertible() bool {
	return invertibleDet(m.Determinant())
}

func invertibleDet(det float64) bool {
	return det != 0 && !math.IsNaN(det) && !math.IsInf(det, 0)
}

// Invert returns the inverse matrix. ok is false when the determinant is zero
// (or not finite); callers treat that as a pass-through condition for the
// frame rather than an error.
func (m Transform2D) Invert() (inv Transform2D, ok bool) {
	det := m.Determinant()
	if !invertibleDet(det) {
		return IdentityTransform, false
	}
	invDet := 1.0 / det
	a, b, c, d, e, f := m[0], m[1], m[2], m[3], m[4], m[5]
	return Transform2D{
		d * invDet,
		-b * invDet,
		-c * invDet,
		a * invDet,
		(c*f - d*e) * invDet,
		(b*e - a*f) * invDet,
	}, true
}

// TransformPoint applies the matrix to a point.
func (m Transform2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Multiply returns m * other. The result applies other first, then m.
func (m Transform2D) Multiply(other Transform2D) Transform2D {
	return Transform2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// GeoM converts the matrix to an ebiten.GeoM for draw submission.
func (m Transform2D) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	return g
}
