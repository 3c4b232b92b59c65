package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/rs/zerolog"
)

// HDRTarget is the floating-point off-screen target: one FBO with a scene
// radiance attachment and a bright-pass attachment sharing a depth
// renderbuffer, plus two full-resolution ping-pong FBOs for the blur.
// Everything is recreated only on resize.
type HDRTarget struct {
	FBO      uint32
	ColorTex [2]uint32 // 0 = scene radiance, 1 = bright-pass
	DepthRBO uint32

	PingFBO [2]uint32
	PingTex [2]uint32

	Width  int32
	Height int32

	log zerolog.Logger
}

func NewHDRTarget(width, height int, log zerolog.Logger) *HDRTarget {
	t := &HDRTarget{log: log}
	t.alloc(width, height)
	return t
}

func newFloatTexture(width, height int32) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, width, height, 0, gl.RGBA, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// checkComplete warns about an incomplete framebuffer; rendering carries on.
func (t *HDRTarget) checkComplete(name string) {
	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		t.log.Warn().Str("fbo", name).Str("status", fmt.Sprintf("0x%X", s)).Msg("framebuffer incomplete")
	}
}

func (t *HDRTarget) alloc(width, height int) {
	t.Width = int32(width)
	t.Height = int32(height)

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	for i := range t.ColorTex {
		t.ColorTex[i] = newFloatTexture(t.Width, t.Height)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(i),
			gl.TEXTURE_2D, t.ColorTex[i], 0)
	}
	gl.GenRenderbuffers(1, &t.DepthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.DepthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT, t.Width, t.Height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.DepthRBO)

	attachments := []uint32{gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1}
	gl.DrawBuffers(int32(len(attachments)), &attachments[0])
	t.checkComplete("hdr")

	for i := range t.PingFBO {
		t.PingTex[i] = newFloatTexture(t.Width, t.Height)
		gl.GenFramebuffers(1, &t.PingFBO[i])
		gl.BindFramebuffer(gl.FRAMEBUFFER, t.PingFBO[i])
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
			gl.TEXTURE_2D, t.PingTex[i], 0)
		t.checkComplete(fmt.Sprintf("pingpong%d", i))
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (t *HDRTarget) free() {
	if t.FBO != 0 {
		gl.DeleteFramebuffers(1, &t.FBO)
		t.FBO = 0
	}
	for i := range t.ColorTex {
		if t.ColorTex[i] != 0 {
			gl.DeleteTextures(1, &t.ColorTex[i])
			t.ColorTex[i] = 0
		}
	}
	if t.DepthRBO != 0 {
		gl.DeleteRenderbuffers(1, &t.DepthRBO)
		t.DepthRBO = 0
	}
	for i := range t.PingFBO {
		if t.PingFBO[i] != 0 {
			gl.DeleteFramebuffers(1, &t.PingFBO[i])
			t.PingFBO[i] = 0
		}
		if t.PingTex[i] != 0 {
			gl.DeleteTextures(1, &t.PingTex[i])
			t.PingTex[i] = 0
		}
	}
}

// Resize recreates every attachment at the new pixel dimensions.
func (t *HDRTarget) Resize(width, height int) {
	t.free()
	t.alloc(width, height)
}

// Destroy frees all GPU resources owned by the target.
func (t *HDRTarget) Destroy() {
	t.free()
}

// ── Post-process passes ───────────────────────────────────────────────────────

// postPrograms holds the blur and composite shaders and the empty VAO used
// to draw the fullscreen triangle.
type postPrograms struct {
	quadVAO uint32

	blur          uint32
	blurImage     int32
	blurDirection int32

	composite   uint32
	compHDR     int32
	compBloom   int32
	compHasBlur int32
	compOp      int32
	compExp     int32
	compMaxLum  int32
	compAvgLum  int32
}

func newPostPrograms() (*postPrograms, error) {
	blur, err := newProgram(ppVertSrc, blurFragSrc)
	if err != nil {
		return nil, fmt.Errorf("blur shader: %w", err)
	}
	comp, err := newProgram(ppVertSrc, compositeFragSrc)
	if err != nil {
		gl.DeleteProgram(blur)
		return nil, fmt.Errorf("composite shader: %w", err)
	}

	pp := &postPrograms{
		blur:          blur,
		blurImage:     uniform(blur, "image"),
		blurDirection: uniform(blur, "horizontal"),

		composite:   comp,
		compHDR:     uniform(comp, "hdrBuffer"),
		compBloom:   uniform(comp, "bloomBlur"),
		compHasBlur: uniform(comp, "bloom"),
		compOp:      uniform(comp, "op"),
		compExp:     uniform(comp, "exposure"),
		compMaxLum:  uniform(comp, "maxLum"),
		compAvgLum:  uniform(comp, "avgLum"),
	}

	gl.UseProgram(blur)
	gl.Uniform1i(pp.blurImage, 0)
	gl.UseProgram(comp)
	gl.Uniform1i(pp.compHDR, 0)
	gl.Uniform1i(pp.compBloom, 1)

	gl.GenVertexArrays(1, &pp.quadVAO)
	return pp, nil
}

func (pp *postPrograms) drawFullscreen() {
	gl.BindVertexArray(pp.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

func (pp *postPrograms) Destroy() {
	gl.DeleteProgram(pp.blur)
	gl.DeleteProgram(pp.composite)
	gl.DeleteVertexArrays(1, &pp.quadVAO)
}
