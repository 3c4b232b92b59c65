package scene

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraDefaults(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, 5})
	assert.InDelta(t, -1, c.Front.Z(), 1e-6)
	assert.InDelta(t, 1, c.Right.X(), 1e-6)
	assert.InDelta(t, 1, c.Up.Y(), 1e-6)

	// The origin is 5 units in front of the camera.
	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -5, p.Z(), 1e-5)

	sky := c.SkyboxView()
	assert.Equal(t, float32(0), sky.At(2, 3))

	// Moving the camera leaves the sky view unchanged; turning it does not.
	c.Position = mgl32.Vec3{4, -2, 30}
	assert.True(t, sky.ApproxEqual(c.SkyboxView()))
	assert.False(t, sky.ApproxEqual(c.ViewMatrix()))
	c.ProcessMouseMovement(100, 0)
	assert.False(t, sky.ApproxEqual(c.SkyboxView()))
}

func TestCameraMovement(t *testing.T) {
	c := NewCamera(mgl32.Vec3{})
	c.ProcessKeyboard(Forward, 2)
	assert.InDelta(t, -5, c.Position.Z(), 1e-5)
	c.ProcessKeyboard(Right, 1)
	assert.InDelta(t, 2.5, c.Position.X(), 1e-5)
}

func TestCameraPitchAndZoomLimits(t *testing.T) {
	c := NewCamera(mgl32.Vec3{})
	c.ProcessMouseMovement(0, 10000)
	assert.Equal(t, float32(89), c.Pitch)

	c.ProcessMouseScroll(100)
	assert.Equal(t, float32(1), c.Zoom)
	c.ProcessMouseScroll(-100)
	assert.Equal(t, float32(45), c.Zoom)
}

func TestTunnelRig(t *testing.T) {
	lights := TunnelLights()
	require.Len(t, lights, MaxLights)
	assert.Equal(t, mgl32.Vec3{49.5, 49.5, -255.5}, lights[0].Position)
	assert.Equal(t, mgl32.Vec3{2.5, 0, -22.5}, lights[2].Position)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, lights[2].Color)
	assert.Equal(t, mgl32.Vec3{0, 2.5, -7.5}, lights[13].Position)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, lights[13].Color)

	m := TunnelMesh()
	assert.Equal(t, 30, m.DrawCount())
	assert.Len(t, m.Interleaved(), 30*FloatsPerVertex)
	for _, v := range m.Vertices {
		assert.NotEqual(t, float32(-1), v.Normal.Z(), "no back face")
	}

	far := TunnelModel().Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	near := TunnelModel().Mul4x1(mgl32.Vec4{0, 0, 1, 1})
	assert.InDelta(t, -42.5, far.Z(), 1e-4)
	assert.InDelta(t, 12.5, near.Z(), 1e-4)

	assert.Len(t, SkyboxVertices, 36*3)
}

func TestMeshBounds(t *testing.T) {
	lo, hi := TunnelMesh().Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, lo)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, hi)
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.png")
	writePNG(t, path, 4, 2)

	tex, err := LoadTexture(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, tex.Width)
	assert.Equal(t, 2, tex.Height)
	require.Len(t, tex.Pixels, 4*2*4)
	assert.Equal(t, []byte{200, 100, 50, 255}, tex.Pixels[:4])
}

func TestLoadTextureDownscales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	writePNG(t, path, 64, 32)

	tex, err := LoadTexture(path, 16)
	require.NoError(t, err)
	assert.Equal(t, 16, tex.Width)
	assert.Equal(t, 8, tex.Height)
	assert.Len(t, tex.Pixels, 16*8*4)
}

func TestLoadCubemapReportsMissingFaces(t *testing.T) {
	dir := t.TempDir()
	var paths [6]string
	for i, name := range CubemapFaces {
		paths[i] = filepath.Join(dir, name+".png")
		if i != 3 {
			writePNG(t, paths[i], 2, 2)
		}
	}

	faces, errs := LoadCubemap(paths, 0)
	for i := range faces {
		if i == 3 {
			assert.Nil(t, faces[i])
			assert.Error(t, errs[i])
			continue
		}
		assert.NotNil(t, faces[i])
		assert.NoError(t, errs[i])
	}
}

func TestLoadTextureErrors(t *testing.T) {
	_, err := LoadTexture(filepath.Join(t.TempDir(), "missing.png"), 0)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = LoadTexture(bad, 0)
	assert.Error(t, err)
}

func TestLoadGLTFMesh(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 2, 1, 3})

	prim := &gltf.Primitive{Indices: &idx}
	prim.Attributes = map[string]int{"POSITION": pos}
	doc.Meshes = []*gltf.Mesh{{Name: "wall", Primitives: []*gltf.Primitive{prim, prim}}}

	path := filepath.Join(t.TempDir(), "wall.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))

	m, err := LoadGLTFMesh(path)
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 8)
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3, 4, 5, 6, 6, 5, 7}, m.Indices)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, m.Vertices[0].Normal)
	assert.Equal(t, 12, m.DrawCount())
}

func TestDecodeOBJQuad(t *testing.T) {
	src := `
# unit quad, no normals
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	m, err := DecodeOBJ("quad", strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
	for _, v := range m.Vertices {
		assert.InDelta(t, 1.0, v.Normal.Z(), 1e-6, "generated normal faces +Z")
	}
}

func TestDecodeOBJAttributes(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 -1
g first
f 1/1/1 2/2/1 3/3/1
g second
f -3/-3/-1 -1/-1/-1 -2/-2/-1
`
	m, err := DecodeOBJ("tri", strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 3, "identical corners are shared across groups")
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 1}, m.Indices)
	assert.Equal(t, mgl32.Vec2{1, 0}, m.Vertices[1].UV)
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, m.Vertices[2].Normal)
}

func TestDecodeOBJErrors(t *testing.T) {
	for name, src := range map[string]string{
		"empty":         "# nothing\n",
		"bad float":     "v 0 x 0\n",
		"short vertex":  "v 0 0\n",
		"out of range":  "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"zero index":    "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"two vertices":  "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"missing slash": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf /1 2 3\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeOBJ(name, strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadMeshByExtension(t *testing.T) {
	dir := t.TempDir()
	obj := filepath.Join(dir, "tri.OBJ")
	require.NoError(t, os.WriteFile(obj, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0o644))

	m, err := LoadMesh(obj)
	require.NoError(t, err)
	assert.Equal(t, 3, m.DrawCount())

	_, err = LoadMesh(filepath.Join(dir, "tunnel.fbx"))
	assert.Error(t, err)
}

func TestLoadGLTFMeshRejectsBadAccessors(t *testing.T) {
	tests := []struct {
		name string
		attr string
	}{
		{"position", "POSITION"},
		{"normal", "NORMAL"},
		{"texcoord", "TEXCOORD_0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := gltf.NewDocument()
			pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
			prim := &gltf.Primitive{}
			prim.Attributes = map[string]int{"POSITION": pos}
			prim.Attributes[tt.attr] = 42
			doc.Meshes = []*gltf.Mesh{{Name: "broken", Primitives: []*gltf.Primitive{prim}}}

			path := filepath.Join(t.TempDir(), "broken.glb")
			require.NoError(t, gltf.SaveBinary(doc, path))

			_, err := LoadGLTFMesh(path)
			assert.ErrorContains(t, err, "out of range")
		})
	}
}
