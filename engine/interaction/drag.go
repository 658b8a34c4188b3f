package interaction

import (
	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
	"github.com/spaghettifunk/extrudo/engine/picking"
	"github.com/spaghettifunk/extrudo/engine/renderer/components"
)

// Damping applied to the raw pointer angle during a rotate drag.
const DEFAULT_ROTATE_SENSITIVITY float64 = 0.3

type DragState uint8

const (
	StateIdle DragState = iota
	StateDraggingMove
	StateDraggingRotate
)

func (s DragState) String() string {
	switch s {
	case StateDraggingMove:
		return "dragging-move"
	case StateDraggingRotate:
		return "dragging-rotate"
	default:
		return "idle"
	}
}

// Target is the transform a drag session mutates.
// *scene.TransformEngine implements it.
type Target interface {
	IsReady() bool
	Position() math.Vec3
	RotationZ() float64
	WorldAnchor() math.Vec3
	Translate(newPosition math.Vec3)
	SetRotationPinned(angle float64, pin math.Vec3)
	CancelZoom()
}

// View is the part of the renderer a drag session talks to.
type View interface {
	Camera() *components.Camera
	SetOrbitEnabled(enabled bool)
}

// Controller turns pointer gestures on the movement and rotation handles
// into transform changes. Only one session runs at a time and only the
// pointer that started it may move or end it.
type Controller struct {
	target      Target
	view        View
	picker      picking.Service
	events      *core.EventBus
	sensitivity float64

	state   DragState
	pointer PointerID

	initialPointer  math.Vec3
	initialPosition math.Vec3

	// Rotation sessions pin the world anchor captured on PointerDown. It is
	// never recomputed mid-drag.
	fixedAnchor   math.Vec3
	initialAngle  float64
	initialVector math.Vec2
}

// NewController wires a drag controller. A sensitivity <= 0 falls back to
// DEFAULT_ROTATE_SENSITIVITY. events may be nil.
func NewController(target Target, view View, picker picking.Service, sensitivity float64, events *core.EventBus) *Controller {
	if sensitivity <= 0 || !math.IsFinite(sensitivity) {
		sensitivity = DEFAULT_ROTATE_SENSITIVITY
	}
	return &Controller{
		target:      target,
		view:        view,
		picker:      picker,
		events:      events,
		sensitivity: sensitivity,
	}
}

func (c *Controller) State() DragState {
	return c.state
}

// Active reports whether a session is running.
func (c *Controller) Active() bool {
	return c.state != StateIdle
}

// FixedAnchor returns the pinned world anchor of a running rotate session.
func (c *Controller) FixedAnchor() (math.Vec3, bool) {
	if c.state != StateDraggingRotate {
		return math.Vec3{}, false
	}
	return c.fixedAnchor, true
}

// Handle feeds one pointer event through the state machine. It reports
// whether the event was consumed by a drag session.
func (c *Controller) Handle(ev PointerEvent) bool {
	switch ev.Type {
	case PointerDown:
		return c.pointerDown(ev)
	case PointerMove:
		return c.pointerMove(ev)
	case PointerUp, PointerCancel:
		if c.state == StateIdle || ev.ID != c.pointer {
			return false
		}
		c.end(ev.Type == PointerCancel)
		return true
	}
	return false
}

// Reset ends any running session without applying further changes.
func (c *Controller) Reset() {
	if c.state != StateIdle {
		c.end(true)
	}
}

func (c *Controller) pointerDown(ev PointerEvent) bool {
	if c.state != StateIdle {
		core.LogDebug("pointer %d down ignored: %s session already running", ev.ID, c.state)
		return false
	}
	if ev.Target == HandleNone {
		return false
	}
	if !c.target.IsReady() {
		core.LogDebug("drag on %s handle ignored: %s", ev.Target, core.ErrNotReady.Error())
		return false
	}
	world, ok := c.pick(ev.Screen)
	if !ok {
		return false
	}

	c.target.CancelZoom()
	c.pointer = ev.ID
	c.initialPointer = world

	switch ev.Target {
	case HandleMove:
		c.initialPosition = c.target.Position()
		c.state = StateDraggingMove
	case HandleRotate:
		c.fixedAnchor = c.target.WorldAnchor()
		c.initialAngle = c.target.RotationZ()
		c.initialVector = world.Sub(c.fixedAnchor).XY()
		c.state = StateDraggingRotate
	}
	c.setOrbit(false)
	core.LogDebug("drag started: %s", c.state)
	return true
}

func (c *Controller) pointerMove(ev PointerEvent) bool {
	if c.state == StateIdle || ev.ID != c.pointer {
		return false
	}
	world, ok := c.pick(ev.Screen)
	if !ok {
		return true
	}

	switch c.state {
	case StateDraggingMove:
		c.target.Translate(c.initialPosition.Add(world.Sub(c.initialPointer)))
	case StateDraggingRotate:
		current := world.Sub(c.fixedAnchor).XY()
		change := c.RotationChange(c.initialVector, current)
		c.target.SetRotationPinned(c.initialAngle+change, c.fixedAnchor)
	}
	return true
}

// RotationChange is the damped signed angle from initial to current. Near
// zero-length vectors give no change.
func (c *Controller) RotationChange(initial, current math.Vec2) float64 {
	angle, ok := initial.AngleTo(current)
	if !ok || !math.IsFinite(angle) {
		core.LogDebug("%s (%s)", core.ErrDegenerateRotationInput.Error(), core.KindDegenerateRotationInput)
		return 0
	}
	return angle * c.sensitivity
}

func (c *Controller) end(cancelled bool) {
	core.LogDebug("drag ended: %s (cancelled: %t)", c.state, cancelled)
	c.state = StateIdle
	c.fixedAnchor = math.Vec3{}
	c.initialVector = math.Vec2{}
	c.setOrbit(true)
}

func (c *Controller) pick(screen math.Vec2) (math.Vec3, bool) {
	if c.picker == nil || c.view == nil {
		return math.Vec3{}, false
	}
	return c.picker.Pick(screen, c.view.Camera())
}

func (c *Controller) setOrbit(enabled bool) {
	if c.view != nil {
		c.view.SetOrbitEnabled(enabled)
	}
	c.events.Post(core.EventContext{
		Type: core.EVENT_CODE_ORBIT_CONTROL_CHANGED,
		Data: &core.OrbitEvent{Enabled: enabled},
	})
}
