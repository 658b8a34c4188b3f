package interaction

import "github.com/spaghettifunk/extrudo/engine/math"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// PointerID tells simultaneous pointers (mouse, touches) apart.
type PointerID int

const MousePointer PointerID = 0

// HandleKind names what a pointer went down on.
type HandleKind uint8

const (
	HandleNone HandleKind = iota
	HandleMove
	HandleRotate
)

func (h HandleKind) String() string {
	switch h {
	case HandleMove:
		return "move"
	case HandleRotate:
		return "rotate"
	default:
		return "none"
	}
}

type PointerEventType uint8

const (
	PointerDown PointerEventType = iota
	PointerMove
	PointerUp
	PointerCancel
)

// PointerEvent is a pointer sample in screen pixels, origin top-left.
type PointerEvent struct {
	Type   PointerEventType
	ID     PointerID
	Screen math.Vec2
	// Target is only meaningful for PointerDown.
	Target HandleKind
}

type MouseState struct {
	X, Y    float64
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Input turns raw mouse callbacks from a platform layer into pointer events
// for a Controller. Only the left button starts drag sessions; moving with
// the right button held orbits the camera.
type Input struct {
	controller *Controller
	current    MouseState
	previous   MouseState
	// HitTest resolves the handle under the cursor on button press.
	HitTest func(screen math.Vec2) HandleKind
	// Orbit receives pointer travel while the right button is held.
	Orbit func(dx, dy float64) bool
}

func NewInput(controller *Controller, hitTest func(screen math.Vec2) HandleKind) *Input {
	return &Input{controller: controller, HitTest: hitTest}
}

// Update copies the current state into the previous one; call once a frame.
func (in *Input) Update() {
	in.previous = in.current
}

func (in *Input) IsButtonDown(button Button) bool {
	return in.current.Buttons[button]
}

func (in *Input) WasButtonDown(button Button) bool {
	return in.previous.Buttons[button]
}

func (in *Input) MousePosition() math.Vec2 {
	return math.NewVec2(in.current.X, in.current.Y)
}

func (in *Input) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS || in.current.Buttons[button] == pressed {
		return
	}
	in.current.Buttons[button] = pressed
	if button != BUTTON_LEFT {
		return
	}

	screen := in.MousePosition()
	if pressed {
		target := HandleNone
		if in.HitTest != nil {
			target = in.HitTest(screen)
		}
		in.controller.Handle(PointerEvent{Type: PointerDown, ID: MousePointer, Screen: screen, Target: target})
		return
	}
	in.controller.Handle(PointerEvent{Type: PointerUp, ID: MousePointer, Screen: screen})
}

func (in *Input) ProcessMouseMove(x, y float64) {
	if in.current.X == x && in.current.Y == y {
		return
	}
	dx, dy := x-in.current.X, y-in.current.Y
	in.current.X = x
	in.current.Y = y
	in.controller.Handle(PointerEvent{Type: PointerMove, ID: MousePointer, Screen: in.MousePosition()})
	if in.current.Buttons[BUTTON_RIGHT] && in.Orbit != nil {
		in.Orbit(dx, dy)
	}
}

// ProcessFocusLost cancels any running session, e.g. when the window loses
// focus mid-drag.
func (in *Input) ProcessFocusLost() {
	in.current.Buttons = [BUTTON_MAX_BUTTONS]bool{}
	in.controller.Handle(PointerEvent{Type: PointerCancel, ID: MousePointer, Screen: in.MousePosition()})
}
