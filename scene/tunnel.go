package scene

import "github.com/go-gl/mathgl/mgl32"

// Light is a point light. Colors are HDR radiance and may exceed 1.
type Light struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// MaxLights is the size of the light array in the lighting shader.
const MaxLights = 14

// TunnelLights returns the fixed light rig: a very bright sun far behind
// the tunnel exit, a warm light at the exit, and three rings of red, green,
// blue and yellow lights along the walls.
func TunnelLights() []Light {
	lights := []Light{
		{Position: mgl32.Vec3{49.5, 49.5, -255.5}, Color: mgl32.Vec3{200, 200, 200}},
		{Position: mgl32.Vec3{0, 0, -40.5}, Color: mgl32.Vec3{160, 160, 135}},
	}
	ring := [4]struct{ offset, color mgl32.Vec3 }{
		{mgl32.Vec3{2.5, 0, 0}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, -2.5, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-2.5, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 2.5, 0}, mgl32.Vec3{1, 1, 0}},
	}
	for _, z := range []float32{-22.5, -15, -7.5} {
		for _, r := range ring {
			lights = append(lights, Light{
				Position: r.offset.Add(mgl32.Vec3{0, 0, z}),
				Color:    r.color,
			})
		}
	}
	return lights
}

// TunnelModel stretches the unit cube into a 6×6×55 tunnel centred at z=-15.
func TunnelModel() mgl32.Mat4 {
	return mgl32.Translate3D(0, 0, -15).Mul4(mgl32.Scale3D(3, 3, 27.5))
}

// TunnelMesh is a unit cube without its -Z face, so the far end stays open
// onto the sky. Normals point outward; the shader flips them.
func TunnelMesh() *Mesh {
	v := func(px, py, pz, nx, ny, nz, u, w float32) Vertex {
		return Vertex{mgl32.Vec3{px, py, pz}, mgl32.Vec3{nx, ny, nz}, mgl32.Vec2{u, w}}
	}
	return &Mesh{
		Name: "tunnel",
		Vertices: []Vertex{
			// +Z
			v(-1, -1, 1, 0, 0, 1, 0, 0),
			v(1, -1, 1, 0, 0, 1, 1, 0),
			v(1, 1, 1, 0, 0, 1, 1, 1),
			v(1, 1, 1, 0, 0, 1, 1, 1),
			v(-1, 1, 1, 0, 0, 1, 0, 1),
			v(-1, -1, 1, 0, 0, 1, 0, 0),
			// -X
			v(-1, 1, 1, -1, 0, 0, 1, 0),
			v(-1, 1, -1, -1, 0, 0, 1, 1),
			v(-1, -1, -1, -1, 0, 0, 0, 1),
			v(-1, -1, -1, -1, 0, 0, 0, 1),
			v(-1, -1, 1, -1, 0, 0, 0, 0),
			v(-1, 1, 1, -1, 0, 0, 1, 0),
			// +X
			v(1, 1, 1, 1, 0, 0, 1, 0),
			v(1, -1, -1, 1, 0, 0, 0, 1),
			v(1, 1, -1, 1, 0, 0, 1, 1),
			v(1, -1, -1, 1, 0, 0, 0, 1),
			v(1, 1, 1, 1, 0, 0, 1, 0),
			v(1, -1, 1, 1, 0, 0, 0, 0),
			// -Y
			v(-1, -1, -1, 0, -1, 0, 0, 1),
			v(1, -1, -1, 0, -1, 0, 1, 1),
			v(1, -1, 1, 0, -1, 0, 1, 0),
			v(1, -1, 1, 0, -1, 0, 1, 0),
			v(-1, -1, 1, 0, -1, 0, 0, 0),
			v(-1, -1, -1, 0, -1, 0, 0, 1),
			// +Y
			v(-1, 1, -1, 0, 1, 0, 0, 1),
			v(1, 1, 1, 0, 1, 0, 1, 0),
			v(1, 1, -1, 0, 1, 0, 1, 1),
			v(1, 1, 1, 0, 1, 0, 1, 0),
			v(-1, 1, -1, 0, 1, 0, 0, 1),
			v(-1, 1, 1, 0, 1, 0, 0, 0),
		},
	}
}

// SkyboxVertices is a 36-vertex unit cube, positions only.
var SkyboxVertices = []float32{
	-1, 1, -1, -1, -1, -1, 1, -1, -1,
	1, -1, -1, 1, 1, -1, -1, 1, -1,

	-1, -1, 1, -1, -1, -1, -1, 1, -1,
	-1, 1, -1, -1, 1, 1, -1, -1, 1,

	1, -1, -1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, -1, 1, -1, -1,

	-1, -1, 1, -1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, -1, 1, -1, -1, 1,

	-1, 1, -1, 1, 1, -1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, 1, -1,

	-1, -1, -1, -1, -1, 1, 1, -1, -1,
	1, -1, -1, -1, -1, 1, 1, -1, 1,
}
