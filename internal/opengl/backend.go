// Package opengl is the GPU implementation of hdr.Backend on an OpenGL 4.1
// core context.
package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"hdr-lighting/hdr"
	"hdr-lighting/scene"
)

// Assets is the CPU-side content of the tunnel scene. Missing textures are
// tolerated: a nil Diffuse samples as black, nil skybox faces stay empty.
type Assets struct {
	Tunnel    *scene.Mesh
	Model     mgl32.Mat4
	Lights    []scene.Light
	Diffuse   *scene.Texture
	Skybox    [6]*scene.Texture
	Threshold float32
}

// gpuMesh is a mesh uploaded to a VAO with the 8-float interleaved layout.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	indexed       bool
}

func uploadMesh(m *scene.Mesh) *gpuMesh {
	g := &gpuMesh{count: int32(m.DrawCount()), indexed: len(m.Indices) > 0}
	data := m.Interleaved()
	stride := int32(scene.FloatsPerVertex * 4)

	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(1, &g.vbo)
	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(6*4))

	if g.indexed {
		gl.GenBuffers(1, &g.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)
	return g
}

func (g *gpuMesh) draw() {
	gl.BindVertexArray(g.vao)
	if g.indexed {
		gl.DrawElements(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, g.count)
	}
	gl.BindVertexArray(0)
}

func (g *gpuMesh) destroy() {
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
	}
}

// Backend renders the tunnel into an HDRTarget and runs the blur and
// composite passes on the GPU.
type Backend struct {
	target *HDRTarget
	post   *postPrograms
	sky    *Skybox
	tunnel *gpuMesh

	lighting      uint32
	projLoc       int32
	viewLoc       int32
	modelLoc      int32
	viewPosLoc    int32
	inverseLoc    int32
	thresholdLoc  int32
	lightCountLoc int32
	lightPosLoc   [scene.MaxLights]int32
	lightColorLoc [scene.MaxLights]int32

	diffuse   uint32
	model     mgl32.Mat4
	lights    []scene.Light
	threshold float32

	swap func()
	log  zerolog.Logger
}

// NewBackend initialises OpenGL and uploads the scene. The window's context
// must be current; swap is called by Present.
func NewBackend(width, height int, assets Assets, swap func(), log zerolog.Logger) (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info().Str("version", gl.GoStr(gl.GetString(gl.VERSION))).Msg("OpenGL initialised")

	if len(assets.Lights) > scene.MaxLights {
		return nil, fmt.Errorf("%d lights, shader supports %d", len(assets.Lights), scene.MaxLights)
	}

	prog, err := newProgram(lightingVertSrc, lightingFragSrc)
	if err != nil {
		return nil, fmt.Errorf("lighting shader: %w", err)
	}
	post, err := newPostPrograms()
	if err != nil {
		return nil, err
	}

	b := &Backend{
		post:          post,
		lighting:      prog,
		projLoc:       uniform(prog, "projection"),
		viewLoc:       uniform(prog, "view"),
		modelLoc:      uniform(prog, "model"),
		viewPosLoc:    uniform(prog, "viewPos"),
		inverseLoc:    uniform(prog, "inverse_normals"),
		thresholdLoc:  uniform(prog, "threshold"),
		lightCountLoc: uniform(prog, "lightCount"),
		model:         assets.Model,
		lights:        assets.Lights,
		threshold:     assets.Threshold,
		swap:          swap,
		log:           log,
	}
	for i := 0; i < scene.MaxLights; i++ {
		b.lightPosLoc[i] = uniform(prog, fmt.Sprintf("lights[%d].Position", i))
		b.lightColorLoc[i] = uniform(prog, fmt.Sprintf("lights[%d].Color", i))
	}
	gl.UseProgram(prog)
	gl.Uniform1i(uniform(prog, "diffuseTexture"), 0)

	if assets.Diffuse != nil {
		if b.diffuse, err = UploadTexture(assets.Diffuse, true); err != nil {
			log.Warn().Err(err).Msg("diffuse texture not uploaded")
		}
	}
	b.sky, err = NewSkybox(UploadCubemap(assets.Skybox))
	if err != nil {
		return nil, err
	}
	b.tunnel = uploadMesh(assets.Tunnel)
	b.target = NewHDRTarget(width, height, log)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	return b, nil
}

func (b *Backend) Size() (int, int) {
	return int(b.target.Width), int(b.target.Height)
}

// RenderScene draws the lit tunnel and then the sky into the HDR target.
func (b *Backend) RenderScene(fc *hdr.FrameContext) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, b.target.FBO)
	gl.Viewport(0, 0, b.target.Width, b.target.Height)
	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(b.lighting)
	setMat4(b.projLoc, fc.Projection)
	setMat4(b.viewLoc, fc.View)
	setMat4(b.modelLoc, b.model)
	setVec3(b.viewPosLoc, fc.CameraPos)
	gl.Uniform1i(b.inverseLoc, 1)
	gl.Uniform1f(b.thresholdLoc, b.threshold)
	gl.Uniform1i(b.lightCountLoc, int32(len(b.lights)))
	for i, l := range b.lights {
		setVec3(b.lightPosLoc[i], l.Position)
		setVec3(b.lightColorLoc[i], l.Color)
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, b.diffuse)
	b.tunnel.draw()

	b.sky.Draw(fc.SkyView, fc.Projection, b.threshold)

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// ReadPixels reads the scene radiance attachment back as RGB floats. This
// stalls until the GPU has finished the frame.
func (b *Backend) ReadPixels(dst []float32) error {
	need := int(b.target.Width) * int(b.target.Height) * 3
	if len(dst) < need {
		return fmt.Errorf("readback buffer holds %d floats, need %d", len(dst), need)
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, b.target.FBO)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 4)
	gl.ReadPixels(0, 0, b.target.Width, b.target.Height, gl.RGB, gl.FLOAT, gl.Ptr(dst))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("glReadPixels: error 0x%X", e)
	}
	return nil
}

func (b *Backend) sourceTexture(src hdr.BlurSource) (uint32, error) {
	switch src {
	case hdr.SourceBright:
		return b.target.ColorTex[1], nil
	case 0, 1:
		return b.target.PingTex[src], nil
	}
	return 0, fmt.Errorf("invalid blur source %s", src)
}

func (b *Backend) BlurPass(src hdr.BlurSource, dst int, horizontal bool) error {
	tex, err := b.sourceTexture(src)
	if err != nil {
		return err
	}
	if dst < 0 || dst > 1 || src == hdr.BlurSource(dst) {
		return fmt.Errorf("invalid blur destination %d for source %s", dst, src)
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, b.target.PingFBO[dst])
	gl.Viewport(0, 0, b.target.Width, b.target.Height)
	gl.UseProgram(b.post.blur)
	gl.Uniform1i(b.post.blurDirection, boolToInt32(horizontal))
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	b.post.drawFullscreen()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// Composite tone-maps into the default framebuffer.
func (b *Backend) Composite(bloom hdr.BlurSource, p hdr.ToneMapParams, bloomEnabled bool) error {
	var bloomTex uint32
	if bloomEnabled {
		var err error
		if bloomTex, err = b.sourceTexture(bloom); err != nil {
			return err
		}
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, b.target.Width, b.target.Height)
	gl.Disable(gl.DEPTH_TEST)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(b.post.composite)
	gl.Uniform1i(b.post.compOp, int32(p.Operator()))
	gl.Uniform1f(b.post.compExp, hdr.ParamsExposure(p))
	gl.Uniform1i(b.post.compHasBlur, boolToInt32(bloomEnabled))
	if d, ok := p.(hdr.DragoParams); ok {
		gl.Uniform1f(b.post.compMaxLum, d.MaxLuminance)
		gl.Uniform1f(b.post.compAvgLum, d.AvgLuminance)
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, b.target.ColorTex[0])
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, bloomTex)
	b.post.drawFullscreen()
	gl.ActiveTexture(gl.TEXTURE0)

	gl.Enable(gl.DEPTH_TEST)
	return nil
}

func (b *Backend) Present() error {
	if b.swap != nil {
		b.swap()
	}
	return nil
}

func (b *Backend) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	b.target.Resize(width, height)
	return nil
}

// Destroy frees every GPU resource the backend created.
func (b *Backend) Destroy() {
	b.target.Destroy()
	b.post.Destroy()
	b.sky.Destroy()
	b.tunnel.destroy()
	DeleteTexture(b.diffuse)
	gl.DeleteProgram(b.lighting)
}
