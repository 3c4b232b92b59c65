package scene

import "github.com/go-gl/mathgl/mgl32"

// Vertex is the lit-geometry vertex layout: position, normal, texture coords.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// FloatsPerVertex is the interleaved stride of Vertex, in float32s.
const FloatsPerVertex = 8

// Mesh holds CPU-side vertex/index data. Indices may be empty, in which
// case the vertices are drawn as a plain triangle list.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// Interleaved packs the vertices as [px py pz nx ny nz u v] for upload.
func (m *Mesh) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Vertices)*FloatsPerVertex)
	for _, v := range m.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV[0], v.UV[1])
	}
	return out
}

// DrawCount is the number of vertices a draw call has to submit.
func (m *Mesh) DrawCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices)
	}
	return len(m.Vertices)
}

// Bounds returns the local-space bounding box.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	return lo, hi
}
