package augment

import "math"

// AffineTransform is a 3×3 homogeneous matrix in row-major order:
//
//	| m[0] m[1] m[2] |
//	| m[3] m[4] m[5] |
//	| m[6] m[7] m[8] |
//
// It maps column vectors (x, y, 1). Values are immutable; every operation
// returns a new matrix.
type AffineTransform [9]float64

// IdentityTransform returns the identity transform.
func IdentityTransform() AffineTransform {
	return AffineTransform{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Translation returns a pure translation by (tx, ty).
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{1, 0, tx, 0, 1, ty, 0, 0, 1}
}

// Composite builds the transform that scales by (sx, sy), rotates by
// rotation radians, shears by shear radians and translates by (tx, ty), all
// about the origin.
func Composite(sx, sy, rotation, shear, tx, ty float64) AffineTransform {
	return AffineTransform{
		sx * math.Cos(rotation), -sy * math.Sin(rotation+shear), tx,
		sx * math.Sin(rotation), sy * math.Cos(rotation+shear), ty,
		0, 0, 1,
	}
}

// Mul returns the product a·b, i.e. the transform that applies b first and
// then a.
func (a AffineTransform) Mul(b AffineTransform) AffineTransform {
	var r AffineTransform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i*3+j] = a[i*3]*b[j] + a[i*3+1]*b[3+j] + a[i*3+2]*b[6+j]
		}
	}
	return r
}

// Det returns the determinant.
func (a AffineTransform) Det() float64 {
	return a[0]*(a[4]*a[8]-a[5]*a[7]) -
		a[1]*(a[3]*a[8]-a[5]*a[6]) +
		a[2]*(a[3]*a[7]-a[4]*a[6])
}

// Inverse returns the inverse through the adjugate. A singular matrix yields
// non-finite entries rather than an error; resampling through such a
// matrix produces a zero-filled image.
func (a AffineTransform) Inverse() AffineTransform {
	det := a.Det()
	adj := AffineTransform{
		a[4]*a[8] - a[5]*a[7], a[2]*a[7] - a[1]*a[8], a[1]*a[5] - a[2]*a[4],
		a[5]*a[6] - a[3]*a[8], a[0]*a[8] - a[2]*a[6], a[2]*a[3] - a[0]*a[5],
		a[3]*a[7] - a[4]*a[6], a[1]*a[6] - a[0]*a[7], a[0]*a[4] - a[1]*a[3],
	}
	var r AffineTransform
	for i := range adj {
		r[i] = adj[i] / det
	}
	return r
}

// Apply maps the point (x, y).
func (a AffineTransform) Apply(x, y float64) (float64, float64) {
	w := a[6]*x + a[7]*y + a[8]
	return (a[0]*x + a[1]*y + a[2]) / w, (a[3]*x + a[4]*y + a[5]) / w
}

// IsFinite reports whether every entry is a finite number.
func (a AffineTransform) IsFinite() bool {
	for _, v := range a {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
