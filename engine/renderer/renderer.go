package renderer

import (
	gomath "math"
	"sync"

	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
	"github.com/spaghettifunk/extrudo/engine/renderer/components"
	"github.com/spaghettifunk/extrudo/engine/systems"
)

// Node is what the engine attaches to the renderer's scene graph: the
// wrapping transform around the static, re-centered geometry.
type Node interface {
	// WorldMatrix is the composed wrapping transform.
	WorldMatrix() math.Mat4
	// GeometryOffset is the translation that re-centers the raw geometry
	// at its local origin.
	GeometryOffset() math.Vec3
}

// Renderer is the drawing collaborator. It only reads the composed
// transform; it never mutates engine state.
type Renderer interface {
	Attach(node Node)
	Camera() *components.Camera
	// SetOrbitEnabled toggles the ambient camera-orbit control.
	SetOrbitEnabled(enabled bool)
}

// Orbiter is implemented by renderers whose camera can be orbited by
// pointer travel outside of drag sessions.
type Orbiter interface {
	Orbit(dx, dy float64) bool
}

// Headless is a Renderer without a GPU backend. It keeps the attached node
// and the camera system so sessions can be driven and inspected without a
// window.
type Headless struct {
	*systems.CameraSystem

	mu   sync.Mutex
	node Node
}

func NewHeadless(width, height float64) *Headless {
	// An empty viewport still gets a valid frustum; Resize fixes it later.
	cameras, err := systems.NewCameraSystem(&systems.CameraSystemConfig{
		Width:  gomath.Max(width, 1),
		Height: gomath.Max(height, 1),
	})
	if err != nil {
		panic(err)
	}
	return &Headless{CameraSystem: cameras}
}

func (h *Headless) Attach(node Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.node = node
	core.LogDebug("headless renderer: node attached")
}

func (h *Headless) Camera() *components.Camera {
	return h.GetDefault()
}

func (h *Headless) Node() Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.node
}

// DrawFrame returns the world-space position of a raw geometry vertex as
// the renderer would place it.
func (h *Headless) DrawFrame(vertex math.Vec3) (math.Vec3, bool) {
	h.mu.Lock()
	node := h.node
	h.mu.Unlock()
	if node == nil {
		return math.Vec3{}, false
	}
	return vertex.Add(node.GeometryOffset()).Transform(node.WorldMatrix()), true
}
