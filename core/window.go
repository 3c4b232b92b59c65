package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	// set by the framebuffer callback, cleared by TakeResize
	resized bool

	cursorX, cursorY float64
	firstCursor      bool
	cursorDX         float64
	cursorDY         float64
	scrollY          float64
}

type WindowConfig struct {
	Width        int
	Height       int
	Title        string
	Resizable    bool
	VSync        bool
	Fullscreen   bool
	CaptureMouse bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:        800,
		Height:       600,
		Title:        "HDR Lighting",
		Resizable:    true,
		VSync:        true,
		CaptureMouse: true,
	}
}

// NewWindow creates a window with a current OpenGL 4.1 core context.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	if config.CaptureMouse {
		handle.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	}

	window := &Window{
		Handle:      handle,
		Title:       config.Title,
		firstCursor: true,
	}
	window.Width, window.Height = handle.GetFramebufferSize()

	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
		window.resized = true
	})
	handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if window.firstCursor {
			window.cursorX, window.cursorY = x, y
			window.firstCursor = false
		}
		window.cursorDX += x - window.cursorX
		// Reversed: window y grows downward.
		window.cursorDY += window.cursorY - y
		window.cursorX, window.cursorY = x, y
	})
	handle.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		window.scrollY += yoff
	})

	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) SetShouldClose(v bool) {
	w.Handle.SetShouldClose(v)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

// Time returns seconds since GLFW was initialised.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

// TakeResize reports whether the framebuffer changed size since the last call.
func (w *Window) TakeResize() bool {
	r := w.resized
	w.resized = false
	return r
}

// TakeCursorDelta returns the accumulated cursor movement since the last
// call, with y pointing up.
func (w *Window) TakeCursorDelta() (dx, dy float64) {
	dx, dy = w.cursorDX, w.cursorDY
	w.cursorDX, w.cursorDY = 0, 0
	return dx, dy
}

// TakeScroll returns the accumulated vertical scroll since the last call.
func (w *Window) TakeScroll() float64 {
	s := w.scrollY
	w.scrollY = 0
	return s
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	KeySpace  = int(glfw.KeySpace)
	Key0      = int(glfw.Key0)
	Key1      = int(glfw.Key1)
	Key2      = int(glfw.Key2)
	Key3      = int(glfw.Key3)
	KeyA      = int(glfw.KeyA)
	KeyB      = int(glfw.KeyB)
	KeyD      = int(glfw.KeyD)
	KeyE      = int(glfw.KeyE)
	KeyQ      = int(glfw.KeyQ)
	KeyS      = int(glfw.KeyS)
	KeyW      = int(glfw.KeyW)
	KeyEscape = int(glfw.KeyEscape)
	KeyF12    = int(glfw.KeyF12)
)
