// Package mesh generates the static geometry drawn by the engine: the coloured scene cube and the
// regular texture-coordinate grid the warp pass is rasterized through.
//
// Geometry is produced on the CPU once at startup; the renderer uploads it to immutable GPU buffers.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultGridResolution is the number of vertices along each side of the warp grid.
const DefaultGridResolution = 65

// ErrGridResolution is returned when a warp grid is requested with fewer than two vertices per side.
var ErrGridResolution = errors.New("warp grid needs at least 2 vertices per side")

// SceneVertex is a cube vertex with a position and an RGB colour.
type SceneVertex struct {
	Position [3]float32
	Color    [3]float32
}

// WarpVertex is a warp grid vertex carrying only its texture coordinate.
type WarpVertex struct {
	TexCoord [2]float32
}

// Mesh holds indexed triangle-list geometry. Indices are 32-bit and refer into Vertices.
type Mesh[V any] struct {
	Vertices []V
	Indices  []uint32
}

// VertexCount returns the number of vertices in the mesh.
func (m Mesh[V]) VertexCount() int {
	return len(m.Vertices)
}

// IndexCount returns the number of indices in the mesh.
func (m Mesh[V]) IndexCount() int {
	return len(m.Indices)
}

// VertexBytes returns the vertex data as a byte slice for GPU upload.
// The returned slice shares memory with the mesh.
func (m Mesh[V]) VertexBytes() []byte {
	return common.SliceToBytes(m.Vertices)
}

// IndexBytes returns the index data as a byte slice for GPU upload.
// The returned slice shares memory with the mesh.
func (m Mesh[V]) IndexBytes() []byte {
	return common.SliceToBytes(m.Indices)
}

// cubeVertices are the eight corners of a 2x2x2 cube centred on the origin.
var cubeVertices = []SceneVertex{
	{Position: [3]float32{-1, -1, -1}, Color: [3]float32{1, 0, 0}},
	{Position: [3]float32{-1, 1, -1}, Color: [3]float32{0, 1, 0}},
	{Position: [3]float32{1, 1, -1}, Color: [3]float32{0, 0, 1}},
	{Position: [3]float32{1, -1, -1}, Color: [3]float32{0, 1, 1}},
	{Position: [3]float32{1, -1, 1}, Color: [3]float32{1, 0, 0}},
	{Position: [3]float32{1, 1, 1}, Color: [3]float32{0, 1, 0}},
	{Position: [3]float32{-1, 1, 1}, Color: [3]float32{0, 0, 1}},
	{Position: [3]float32{-1, -1, 1}, Color: [3]float32{1, 1, 0}},
}

// cubeIndices wind each outward face clockwise when viewed from outside (left-handed).
var cubeIndices = []uint32{
	0, 1, 2, 0, 2, 3, // front  (-Z)
	4, 5, 6, 4, 6, 7, // back   (+Z)
	7, 6, 1, 7, 1, 0, // left   (-X)
	3, 2, 5, 3, 5, 4, // right  (+X)
	1, 6, 5, 1, 5, 2, // top    (+Y)
	7, 0, 3, 7, 3, 4, // bottom (-Y)
}

// NewSceneCube returns the coloured cube drawn by the scene pass: 8 vertices and 12 triangles.
//
// Returns:
//   - Mesh[SceneVertex]: a fresh copy of the cube geometry
func NewSceneCube() Mesh[SceneVertex] {
	m := Mesh[SceneVertex]{
		Vertices: make([]SceneVertex, len(cubeVertices)),
		Indices:  make([]uint32, len(cubeIndices)),
	}
	copy(m.Vertices, cubeVertices)
	copy(m.Indices, cubeIndices)
	return m
}

// NewWarpGrid builds an n-by-n grid of vertices whose texture coordinates span [0, 1] in both axes.
// Vertex (x, y) is stored at index y*n+x with texture coordinate (x/(n-1), y/(n-1)).
// Every cell is split into two triangles with the same winding.
//
// Parameters:
//   - n: vertices per side, at least 2
//
// Returns:
//   - Mesh[WarpVertex]: n*n vertices and (n-1)*(n-1)*6 indices
//   - error: ErrGridResolution if n < 2
func NewWarpGrid(n int) (Mesh[WarpVertex], error) {
	if n < 2 {
		return Mesh[WarpVertex]{}, fmt.Errorf("%w: got %d", ErrGridResolution, n)
	}

	m := Mesh[WarpVertex]{
		Vertices: make([]WarpVertex, 0, n*n),
		Indices:  make([]uint32, 0, (n-1)*(n-1)*6),
	}

	step := 1.0 / float32(n-1)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			m.Vertices = append(m.Vertices, WarpVertex{
				TexCoord: [2]float32{float32(x) * step, float32(y) * step},
			})
		}
	}
	// Pin the far edges so the corners are exactly 1 regardless of rounding in step.
	for i := 0; i < n; i++ {
		m.Vertices[i*n+n-1].TexCoord[0] = 1
		m.Vertices[(n-1)*n+i].TexCoord[1] = 1
	}

	stride := uint32(n)
	for y := uint32(0); y < stride-1; y++ {
		for x := uint32(0); x < stride-1; x++ {
			a := y*stride + x
			b := a + 1
			c := a + stride
			d := c + 1
			m.Indices = append(m.Indices, a, b, c, c, b, d)
		}
	}

	return m, nil
}

// SceneVertexLayout describes SceneVertex to the GPU: position at location 0 and colour at location 1.
func SceneVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 24,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

// WarpVertexLayout describes WarpVertex to the GPU: texture coordinate at location 0.
func WarpVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 8,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
		},
	}
}
