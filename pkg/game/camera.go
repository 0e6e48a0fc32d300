package game

import (
	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/hansbonini/reevengitools/pkg/room"
)

// Step is the outcome of one movement checked against the room.
type Step struct {
	// Camera is the active camera after the step.
	Camera int
	// Switched is set when the move entered a switch zone.
	Switched bool
	// OutOfBounds is set when the move left a boundary zone of the camera
	// that was active before the step.
	OutOfBounds bool
}

// CameraController tracks the active camera of a room.
type CameraController struct {
	room   room.Room
	camera int
}

// NewCameraController starts on camera.
func NewCameraController(r room.Room, camera int) *CameraController {
	return &CameraController{room: r, camera: camera}
}

// Camera returns the active camera.
func (c *CameraController) Camera() int {
	return c.camera
}

// SetCamera forces the active camera.
func (c *CameraController) SetCamera(camera int) {
	c.camera = camera
}

// Position returns the position record of the active camera.
func (c *CameraController) Position() (room.CameraPos, bool) {
	if c.room == nil {
		return room.CameraPos{}, false
	}
	pos, ok := c.room.CameraPos(c.camera)
	if !ok {
		common.LogWarn(common.WarnCameraOutOfRange, c.camera)
	}
	return pos, ok
}

// Move applies a movement from one floor point to another. Boundaries are
// checked against the camera active before the move, then switch zones.
func (c *CameraController) Move(from, to room.Point) Step {
	step := Step{Camera: c.camera}
	if c.room == nil {
		return step
	}

	step.OutOfBounds = c.room.CheckCamBoundary(c.camera, from, to)

	if target := c.room.CheckCamSwitch(c.camera, from, to); target >= 0 {
		common.LogInfo(common.InfoCameraSwitched, c.camera, target)
		c.camera = target
		step.Camera = target
		step.Switched = true
	}
	return step
}
