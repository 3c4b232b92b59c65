package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraMovement is a keyboard-driven movement direction.
type CameraMovement int

const (
	Forward CameraMovement = iota
	Backward
	Left
	Right
)

const (
	DefaultYaw         = -90.0
	DefaultPitch       = 0.0
	DefaultSpeed       = 2.5
	DefaultSensitivity = 0.1
	DefaultZoom        = 45.0

	NearPlane = 0.1
	FarPlane  = 100.0
)

// Camera is a free-flying Euler-angle camera. Yaw and pitch are in degrees;
// Zoom is the vertical field of view in degrees.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3
	Right    mgl32.Vec3
	WorldUp  mgl32.Vec3

	Yaw   float32
	Pitch float32

	MovementSpeed    float32
	MouseSensitivity float32
	Zoom             float32
}

// NewCamera places a camera at position looking down -Z.
func NewCamera(position mgl32.Vec3) *Camera {
	c := &Camera{
		Position:         position,
		WorldUp:          mgl32.Vec3{0, 1, 0},
		Yaw:              DefaultYaw,
		Pitch:            DefaultPitch,
		MovementSpeed:    DefaultSpeed,
		MouseSensitivity: DefaultSensitivity,
		Zoom:             DefaultZoom,
	}
	c.updateVectors()
	return c
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

// SkyboxView is the view matrix with its translation removed.
func (c *Camera) SkyboxView() mgl32.Mat4 {
	return c.ViewMatrix().Mat3().Mat4()
}

// Projection returns the perspective projection for the given aspect ratio.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Zoom), aspect, NearPlane, FarPlane)
}

func (c *Camera) ProcessKeyboard(dir CameraMovement, deltaTime float32) {
	velocity := c.MovementSpeed * deltaTime
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Front.Mul(velocity))
	case Backward:
		c.Position = c.Position.Sub(c.Front.Mul(velocity))
	case Left:
		c.Position = c.Position.Sub(c.Right.Mul(velocity))
	case Right:
		c.Position = c.Position.Add(c.Right.Mul(velocity))
	}
}

// ProcessMouseMovement turns the camera by a cursor offset in pixels.
// Pitch is kept inside ±89° so the view never flips.
func (c *Camera) ProcessMouseMovement(xoffset, yoffset float32) {
	c.Yaw += xoffset * c.MouseSensitivity
	c.Pitch += yoffset * c.MouseSensitivity

	if c.Pitch > 89 {
		c.Pitch = 89
	}
	if c.Pitch < -89 {
		c.Pitch = -89
	}
	c.updateVectors()
}

// ProcessMouseScroll narrows or widens the field of view, within [1, 45].
func (c *Camera) ProcessMouseScroll(yoffset float32) {
	c.Zoom -= yoffset
	if c.Zoom < 1 {
		c.Zoom = 1
	}
	if c.Zoom > DefaultZoom {
		c.Zoom = DefaultZoom
	}
}

func (c *Camera) updateVectors() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	front := mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}
	c.Front = front.Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}
