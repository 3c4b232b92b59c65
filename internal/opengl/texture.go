package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"hdr-lighting/scene"
)

// UploadTexture uploads an RGBA8 texture with mipmaps and returns its GL
// name. With srgb set the texels are linearised by the sampler, which is
// what albedo maps need for lighting in linear space.
// Call this from the main goroutine (OpenGL context must be current).
func UploadTexture(tex *scene.Texture, srgb bool) (uint32, error) {
	if tex == nil {
		return 0, fmt.Errorf("nil texture")
	}
	if len(tex.Pixels) == 0 {
		return 0, fmt.Errorf("texture %q has no pixel data", tex.Name)
	}

	internal := int32(gl.RGBA8)
	if srgb {
		internal = gl.SRGB8_ALPHA8
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(gl.TEXTURE_2D, 0, internal,
		int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tex.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id, nil
}

// UploadCubemap uploads six faces in +X, -X, +Y, -Y, +Z, -Z order. Nil
// faces are left empty; the cubemap is created regardless.
func UploadCubemap(faces [6]*scene.Texture) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)

	for i, f := range faces {
		if f == nil || len(f.Pixels) == 0 {
			continue
		}
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA8,
			int32(f.Width), int32(f.Height), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(f.Pixels))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)

	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return id
}

// DeleteTexture frees a GPU texture; id 0 is ignored.
func DeleteTexture(id uint32) {
	if id != 0 {
		gl.DeleteTextures(1, &id)
	}
}
