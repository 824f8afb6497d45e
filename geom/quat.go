package geom

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Quat is a unit quaternion rotation, wrapping gonum's quat.Number the same
// way go.viam.com/rdk/spatialmath's Orientation implementations wrap it
// (see spatialmath/orientation.go's Quaternion() method). Keeping the wrapper
// thin means every caller still gets gonum's Mul/Conj for free through Raw.
type Quat struct {
	q quat.Number
}

// IdentityQuat returns the rotation that leaves every vector unchanged.
func IdentityQuat() Quat {
	return Quat{q: quat.Number{Real: 1}}
}

// NewQuat constructs a Quat from w,x,y,z components. The caller is
// responsible for passing a unit quaternion; this package never
// renormalizes on construction, matching the teacher's treatment of
// Orientation values as pre-normalized.
func NewQuat(w, x, y, z float64) Quat {
	return Quat{q: quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}}
}

// Raw exposes the underlying gonum quaternion for callers that need gonum's
// own operations.
func (q Quat) Raw() quat.Number { return q.q }

// Compose returns the rotation equivalent to applying q first, then other
// (other * q in quaternion multiplication order), matching
// spatialmath.OrientationBetween's convention of quat.Mul(outer, inner).
func (q Quat) Compose(other Quat) Quat {
	return Quat{q: quat.Mul(other.q, q.q)}
}

// Conjugate returns the inverse rotation for a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{q: quat.Conj(q.q)}
}

// RotateVec rotates v by q: q * v * q^-1, using the standard
// sandwich-product formula expanded for a pure-imaginary vector quaternion.
func (q Quat) RotateVec(v r3.Vector) r3.Vector {
	vq := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	rq := quat.Mul(quat.Mul(q.q, vq), quat.Conj(q.q))
	return r3.Vector{X: rq.Imag, Y: rq.Jmag, Z: rq.Kmag}
}

// RotationMatrixRows returns the 3x3 rotation matrix equivalent to q as its
// three rows.
func (q Quat) RotationMatrixRows() (row0, row1, row2 r3.Vector) {
	w, x, y, z := q.q.Real, q.q.Imag, q.q.Jmag, q.q.Kmag
	row0 = r3.Vector{X: 1 - 2*(y*y+z*z), Y: 2 * (x*y - w*z), Z: 2 * (x*z + w*y)}
	row1 = r3.Vector{X: 2 * (x*y + w*z), Y: 1 - 2*(x*x+z*z), Z: 2 * (y*z - w*x)}
	row2 = r3.Vector{X: 2 * (x*z - w*y), Y: 2 * (y*z + w*x), Z: 1 - 2*(x*x+y*y)}
	return
}

// Diag3x3 is a diagonal 3x3 matrix, used to represent non-uniform scale.
type Diag3x3 [3]float64

// IdentityScale is the scale that leaves every vector unchanged.
var IdentityScale = Diag3x3{1, 1, 1}

// MulVec applies the diagonal scale to v componentwise.
func (d Diag3x3) MulVec(v r3.Vector) r3.Vector {
	return r3.Vector{X: v.X * d[0], Y: v.Y * d[1], Z: v.Z * d[2]}
}

// Inverse returns the reciprocal diagonal scale. A zero axis yields an
// infinite reciprocal (no panic); an inverse scale is only ever needed to
// map normals into world space for a non-degenerate object.
func (d Diag3x3) Inverse() Diag3x3 {
	return Diag3x3{1 / d[0], 1 / d[1], 1 / d[2]}
}

// IsZero reports whether every axis of the scale is exactly zero -- used by
// the raytracer to skip degenerate instances per spec.md §4.E.
func (d Diag3x3) IsZero() bool {
	return d[0] == 0 && d[1] == 0 && d[2] == 0
}
