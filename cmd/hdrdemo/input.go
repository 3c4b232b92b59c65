package main

import (
	"hdr-lighting/core"
	"hdr-lighting/hdr"
	"hdr-lighting/scene"
)

// keyBindings maps each renderer action to its key.
var keyBindings = map[hdr.Action]int{
	hdr.ActionOperatorNone:        core.Key0,
	hdr.ActionOperatorReinhard:    core.Key1,
	hdr.ActionOperatorExponential: core.Key2,
	hdr.ActionOperatorDrago:       core.Key3,
	hdr.ActionToggleDynamic:       core.KeySpace,
	hdr.ActionToggleBloom:         core.KeyB,
	hdr.ActionExposureDown:        core.KeyQ,
	hdr.ActionExposureUp:          core.KeyE,
	hdr.ActionQuit:                core.KeyEscape,
	hdr.ActionSnapshot:            core.KeyF12,
}

// keyState adapts a key query (normally Window.IsKeyPressed) to the
// action-level predicate hdr.Controls polls.
func keyState(isDown func(key int) bool) func(hdr.Action) bool {
	return func(a hdr.Action) bool {
		key, ok := keyBindings[a]
		return ok && isDown(key)
	}
}

var moveBindings = [...]struct {
	key int
	dir scene.CameraMovement
}{
	{core.KeyW, scene.Forward},
	{core.KeyS, scene.Backward},
	{core.KeyA, scene.Left},
	{core.KeyD, scene.Right},
}

// CameraController feeds keyboard, mouse and scroll input to the camera.
type CameraController struct {
	maxStep float32
}

func NewCameraController() *CameraController {
	return &CameraController{maxStep: 0.05}
}

func (cc *CameraController) Update(window *core.Window, camera *scene.Camera, deltaTime float32) {
	// Cap deltaTime so a hitch does not teleport the camera.
	if deltaTime > cc.maxStep {
		deltaTime = cc.maxStep
	}
	for _, b := range moveBindings {
		if window.IsKeyPressed(b.key) {
			camera.ProcessKeyboard(b.dir, deltaTime)
		}
	}

	look(window, camera)
}

// pointer is the mouse side of core.Window.
type pointer interface {
	// TakeCursorDelta reports movement with y pointing up.
	TakeCursorDelta() (dx, dy float64)
	TakeScroll() float64
}

// look turns accumulated mouse movement into yaw/pitch and scroll into zoom.
// Moving the mouse up pitches the camera up.
func look(p pointer, camera *scene.Camera) {
	dx, dy := p.TakeCursorDelta()
	if dx != 0 || dy != 0 {
		camera.ProcessMouseMovement(float32(dx), float32(dy))
	}
	if s := p.TakeScroll(); s != 0 {
		camera.ProcessMouseScroll(float32(s))
	}
}
