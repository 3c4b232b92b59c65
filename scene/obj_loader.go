package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// objFace is an already-triangulated face (three vertex references).
type objFace struct {
	vIdx, vtIdx, vnIdx [3]int // 0-based position / UV / normal indices (-1 = absent)
}

// LoadOBJMesh parses a Wavefront .obj file. All objects and groups are
// merged into one Mesh; materials are ignored.
func LoadOBJMesh(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()
	return DecodeOBJ(path, f)
}

// LoadMesh picks the loader from the file extension.
func LoadMesh(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJMesh(path)
	case ".gltf", ".glb":
		return LoadGLTFMesh(path)
	}
	return nil, fmt.Errorf("mesh %q: unsupported format", path)
}

func DecodeOBJ(name string, r io.Reader) (*Mesh, error) {
	var positions, normals []mgl32.Vec3
	var uvs []mgl32.Vec2
	var faces []objFace

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v", "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: %w", name, lineNo, err)
			}
			if fields[0] == "v" {
				positions = append(positions, mgl32.Vec3{v[0], v[1], v[2]})
			} else {
				normals = append(normals, mgl32.Vec3{v[0], v[1], v[2]})
			}

		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: %w", name, lineNo, err)
			}
			uvs = append(uvs, mgl32.Vec2{v[0], v[1]})

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj %q line %d: face with %d vertices", name, lineNo, len(fields)-1)
			}
			fverts := make([][3]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				fv, err := parseFaceVertex(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("obj %q line %d: %w", name, lineNo, err)
				}
				fverts = append(fverts, fv)
			}
			// Fan triangulation: 0-1-2, 0-2-3, 0-3-4, ...
			for i := 1; i+1 < len(fverts); i++ {
				f0, f1, f2 := fverts[0], fverts[i], fverts[i+1]
				faces = append(faces, objFace{
					vIdx:  [3]int{f0[0], f1[0], f2[0]},
					vtIdx: [3]int{f0[1], f1[1], f2[1]},
					vnIdx: [3]int{f0[2], f1[2], f2[2]},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj %q: %w", name, err)
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", name)
	}
	return buildMeshFromOBJ(name, faces, positions, normals, uvs), nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFaceVertex parses one face vertex token: "v", "v/vt", "v//vn", "v/vt/vn"
// into 0-based position, UV and normal indices (-1 if absent). Negative
// OBJ indices count back from the current end of each pool.
func parseFaceVertex(tok string, nv, nvt, nvn int) ([3]int, error) {
	res := [3]int{-1, -1, -1}
	pools := [3]int{nv, nvt, nvn}
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return res, fmt.Errorf("bad face vertex %q", tok)
	}
	for i, s := range parts {
		if s == "" {
			if i == 0 {
				return res, fmt.Errorf("face vertex %q has no position", tok)
			}
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return res, fmt.Errorf("bad face vertex %q: %w", tok, err)
		}
		switch {
		case n > 0:
			n--
		case n < 0:
			n += pools[i]
		default:
			return res, fmt.Errorf("face vertex %q: index 0", tok)
		}
		if n < 0 || n >= pools[i] {
			return res, fmt.Errorf("face vertex %q out of range", tok)
		}
		res[i] = n
	}
	return res, nil
}

// buildMeshFromOBJ converts parsed face data into a deduplicated Mesh.
func buildMeshFromOBJ(name string, faces []objFace, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) *Mesh {
	type key struct{ v, vt, vn int }
	vertMap := map[key]uint32{}
	m := &Mesh{Name: name}

	for _, face := range faces {
		for c := 0; c < 3; c++ {
			k := key{face.vIdx[c], face.vtIdx[c], face.vnIdx[c]}
			idx, ok := vertMap[k]
			if !ok {
				v := Vertex{Position: positions[k.v], Normal: mgl32.Vec3{0, 1, 0}}
				if k.vn >= 0 {
					v.Normal = normals[k.vn]
				}
				if k.vt >= 0 {
					v.UV = uvs[k.vt]
				}
				idx = uint32(len(m.Vertices))
				m.Vertices = append(m.Vertices, v)
				vertMap[k] = idx
			}
			m.Indices = append(m.Indices, idx)
		}
	}

	if len(normals) == 0 {
		generateSmoothNormals(m)
	}
	return m
}

// generateSmoothNormals writes area-weighted vertex normals.
func generateSmoothNormals(m *Mesh) {
	accum := make([]mgl32.Vec3, len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		p0 := m.Vertices[i0].Position
		n := m.Vertices[i1].Position.Sub(p0).Cross(m.Vertices[i2].Position.Sub(p0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range m.Vertices {
		if accum[i].Len() > 0 {
			m.Vertices[i].Normal = accum[i].Normalize()
		}
	}
}
