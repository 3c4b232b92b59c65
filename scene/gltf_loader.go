package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTFMesh opens a .glb or .gltf file and merges every triangle
// primitive of every mesh into one indexed Mesh. Node transforms are
// ignored; the tunnel model matrix places the result.
func LoadGLTFMesh(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	out := &Mesh{Name: path}
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			if err := appendGLTFPrimitive(doc, prim, out); err != nil {
				return nil, fmt.Errorf("gltf %q: mesh %d prim %d: %w", path, mi, pi, err)
			}
		}
	}
	if len(out.Vertices) == 0 {
		return nil, fmt.Errorf("gltf %q: no triangle geometry", path)
	}
	return out, nil
}

// appendGLTFPrimitive converts one glTF primitive and appends it to m,
// rebasing its indices.
func appendGLTFPrimitive(doc *gltf.Document, prim *gltf.Primitive, m *Mesh) error {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	acc, err := accessor(doc, posIdx)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if acc, err = accessor(doc, idx); err == nil {
			normals, err = modeler.ReadNormal(doc, acc, nil)
		}
		if err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if acc, err = accessor(doc, idx); err == nil {
			uvs, err = modeler.ReadTextureCoord(doc, acc, nil)
		}
		if err != nil {
			return fmt.Errorf("texcoords: %w", err)
		}
	}

	base := uint32(len(m.Vertices))
	for i, p := range positions {
		v := Vertex{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Normal:   mgl32.Vec3{0, 1, 0},
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		m.Vertices = append(m.Vertices, v)
	}

	if prim.Indices == nil {
		for i := range positions {
			m.Indices = append(m.Indices, base+uint32(i))
		}
		return nil
	}
	acc, err = accessor(doc, *prim.Indices)
	if err != nil {
		return fmt.Errorf("indices: %w", err)
	}
	indices, err := modeler.ReadIndices(doc, acc, nil)
	if err != nil {
		return fmt.Errorf("indices: %w", err)
	}
	for _, ix := range indices {
		if int(ix) >= len(positions) {
			return fmt.Errorf("index %d out of range (%d vertices)", ix, len(positions))
		}
		m.Indices = append(m.Indices, base+ix)
	}
	return nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range (%d accessors)", idx, len(doc.Accessors))
	}
	return doc.Accessors[idx], nil
}
