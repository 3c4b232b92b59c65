package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"hdr-lighting/scene"
)

// Skybox draws a cubemap behind the scene using an inside-out unit cube.
type Skybox struct {
	vao  uint32
	vbo  uint32
	prog uint32
	tex  uint32

	projLoc      int32
	viewLoc      int32
	thresholdLoc int32
}

func NewSkybox(cubemap uint32) (*Skybox, error) {
	prog, err := newProgram(skyVertSrc, skyFragSrc)
	if err != nil {
		return nil, fmt.Errorf("skybox shader: %w", err)
	}

	sb := &Skybox{
		prog:         prog,
		tex:          cubemap,
		projLoc:      uniform(prog, "projection"),
		viewLoc:      uniform(prog, "view"),
		thresholdLoc: uniform(prog, "threshold"),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(uniform(prog, "skybox"), 0)

	gl.GenVertexArrays(1, &sb.vao)
	gl.GenBuffers(1, &sb.vbo)
	gl.BindVertexArray(sb.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, sb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(scene.SkyboxVertices)*4, gl.Ptr(scene.SkyboxVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	return sb, nil
}

// Draw renders the sky into the bound framebuffer. view must already have
// its translation stripped.
func (sb *Skybox) Draw(view, proj mgl32.Mat4, threshold float32) {
	// LEQUAL so depth=1.0 fragments pass against the cleared depth value.
	gl.DepthFunc(gl.LEQUAL)

	gl.UseProgram(sb.prog)
	setMat4(sb.viewLoc, view)
	setMat4(sb.projLoc, proj)
	gl.Uniform1f(sb.thresholdLoc, threshold)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, sb.tex)
	gl.BindVertexArray(sb.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)

	gl.DepthFunc(gl.LESS)
}

// Destroy frees all GPU resources owned by this skybox, including the cubemap.
func (sb *Skybox) Destroy() {
	gl.DeleteVertexArrays(1, &sb.vao)
	gl.DeleteBuffers(1, &sb.vbo)
	gl.DeleteProgram(sb.prog)
	DeleteTexture(sb.tex)
}
