package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Matrix is a 4x4 float32 matrix stored in row-major order.
// Vectors are treated as row vectors and transformed as v * M, so a chain of transforms reads left to right.
// All helpers in this file build left-handed matrices with a [0, 1] clip-space depth range.
//
// Uploading a Matrix to a WGSL uniform without transposing yields the transpose on the GPU,
// so `m * v` in WGSL evaluates the same product as v * M on the CPU.
type Matrix [16]float32

// Vector3 is a three-component float32 vector.
type Vector3 [3]float32

// Vector4 is a four-component float32 vector.
type Vector4 [4]float32

// singularEpsilon is the determinant magnitude below which a matrix is treated as singular.
const singularEpsilon = 1e-12

// Identity returns the 4x4 identity matrix.
//
// Returns:
//   - Matrix: the identity matrix
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// At returns the element at the given row and column.
func (m Matrix) At(row, col int) float32 {
	return m[row*4+col]
}

// Mul multiplies two matrices and returns m * b.
// With row vectors this applies m first and b second.
//
// Parameters:
//   - b: right-hand matrix
//
// Returns:
//   - Matrix: the product m * b
func (m Matrix) Mul(b Matrix) Matrix {
	var out Matrix
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += m[r*4+k] * b[k*4+c]
			}
			out[r*4+c] = sum
		}
	}
	return out
}

// Transform multiplies the row vector v by m.
//
// Parameters:
//   - v: the row vector to transform
//
// Returns:
//   - Vector4: the product v * m
func (m Matrix) Transform(v Vector4) Vector4 {
	var out Vector4
	for c := 0; c < 4; c++ {
		out[c] = v[0]*m[c] + v[1]*m[4+c] + v[2]*m[8+c] + v[3]*m[12+c]
	}
	return out
}

// TransformNormal transforms a direction by the upper 3x3 of m, ignoring translation.
func (m Matrix) TransformNormal(v Vector3) Vector3 {
	t := m.Transform(Vector4{v[0], v[1], v[2], 0})
	return Vector3{t[0], t[1], t[2]}
}

// Transpose returns the transpose of m.
func (m Matrix) Transpose() Matrix {
	var out Matrix
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c*4+r] = m[r*4+c]
		}
	}
	return out
}

// ApproxEqual reports whether every element of m is within eps of the matching element of b.
func (m Matrix) ApproxEqual(b Matrix, eps float32) bool {
	for i := range m {
		if math32.Abs(m[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// IsFinite reports whether every element of m is a finite number.
func (m Matrix) IsFinite() bool {
	for _, v := range m {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Invert computes the inverse of m using the Laplace expansion (cofactor) method.
// If m is singular, near-singular, or contains non-finite values the identity matrix is returned
// together with false, so callers never see NaN propagate out of a degenerate view.
//
// Parameters:
//   - m: the matrix to invert
//
// Returns:
//   - Matrix: the inverse of m, or the identity matrix on failure
//   - bool: true if the matrix was successfully inverted
func Invert(m Matrix) (Matrix, bool) {
	if !m.IsFinite() {
		return Identity(), false
	}

	// 2x2 sub-determinants of the upper and lower row pairs.
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if math32.Abs(det) < singularEpsilon || math32.IsNaN(det) || math32.IsInf(det, 0) {
		return Identity(), false
	}

	invDet := 1.0 / det
	var out Matrix

	out[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	out[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	out[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	out[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	out[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	out[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	out[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	out[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	out[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	out[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	out[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	out[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	out[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	out[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	out[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	out[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	if !out.IsFinite() {
		return Identity(), false
	}
	return out, true
}

// RotationX returns a left-handed rotation of angle radians about the X axis.
func RotationX(angle float32) Matrix {
	s, c := math32.Sin(angle), math32.Cos(angle)
	return Matrix{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotationY returns a left-handed rotation of angle radians about the Y axis.
func RotationY(angle float32) Matrix {
	s, c := math32.Sin(angle), math32.Cos(angle)
	return Matrix{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// LookTo creates a left-handed view matrix for a camera at eye looking along forward.
// The resulting matrix transforms world coordinates to view space, with +Z pointing forward.
// A zero forward vector or a forward parallel to up has no defined basis; the identity matrix is returned.
//
// Parameters:
//   - eye: camera position in world space
//   - forward: view direction (need not be normalized)
//   - up: up vector defining camera roll (typically 0,1,0)
//
// Returns:
//   - Matrix: the view matrix
func LookTo(eye, forward, up Vector3) Matrix {
	z, ok := forward.Normalize()
	if !ok {
		return Identity()
	}
	x, ok := up.Cross(z).Normalize()
	if !ok {
		return Identity()
	}
	y := z.Cross(x)

	return Matrix{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// PerspectiveFov creates a left-handed perspective projection matrix.
// Depth maps to the [0, 1] range used by WebGPU clip space.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - Matrix: the projection matrix
func PerspectiveFov(fovY, aspect, near, far float32) Matrix {
	h := 1.0 / math32.Tan(fovY/2.0)
	w := h / aspect
	fRange := far / (far - near)

	return Matrix{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, fRange, 1,
		0, 0, -fRange * near, 0,
	}
}

// DegreesToRadians converts an angle in degrees to radians.
func DegreesToRadians(deg float32) float32 {
	return deg * math32.Pi / 180.0
}

// Dot returns the dot product of v and b.
func (v Vector3) Dot(b Vector3) float32 {
	return v[0]*b[0] + v[1]*b[1] + v[2]*b[2]
}

// Cross returns the cross product v x b.
func (v Vector3) Cross(b Vector3) Vector3 {
	return Vector3{
		v[1]*b[2] - v[2]*b[1],
		v[2]*b[0] - v[0]*b[2],
		v[0]*b[1] - v[1]*b[0],
	}
}

// Length returns the Euclidean length of v.
func (v Vector3) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalize returns v scaled to unit length.
// A zero-length or non-finite vector cannot be normalized and is returned unchanged with false.
func (v Vector3) Normalize() (Vector3, bool) {
	l := v.Length()
	if l < 1e-6 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return v, false
	}
	inv := 1.0 / l
	return Vector3{v[0] * inv, v[1] * inv, v[2] * inv}, true
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}
