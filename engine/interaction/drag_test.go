package interaction

import (
	m "math"
	"testing"

	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
	"github.com/spaghettifunk/extrudo/engine/renderer"
	"github.com/spaghettifunk/extrudo/engine/renderer/components"
	"github.com/spaghettifunk/extrudo/engine/scene"
)

const epsilon = 1e-6

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if m.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec(t *testing.T, name string, got, want math.Vec3) {
	t.Helper()
	if !got.Compare(want, epsilon) {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

// flatPicker maps screen pixels straight onto the z = 0 plane. Points with
// a negative x cannot be resolved.
type flatPicker struct{}

func (flatPicker) Pick(pointer math.Vec2, _ *components.Camera) (math.Vec3, bool) {
	if pointer.X < -1000 {
		return math.Vec3{}, false
	}
	return math.NewVec3(pointer.X, pointer.Y, 0), true
}

func setup(t *testing.T) (*Controller, *scene.TransformEngine, *renderer.Headless) {
	t.Helper()
	te := scene.NewTransformEngine(nil)
	if err := te.AttachGeometry(math.Extents3D{Min: math.NewVec3(-50, -50, -5), Max: math.NewVec3(50, 50, 5)}); err != nil {
		t.Fatal(err)
	}
	view := renderer.NewHeadless(800, 600)
	return NewController(te, view, flatPicker{}, 0, nil), te, view
}

func down(id PointerID, x, y float64, target HandleKind) PointerEvent {
	return PointerEvent{Type: PointerDown, ID: id, Screen: math.NewVec2(x, y), Target: target}
}

func move(id PointerID, x, y float64) PointerEvent {
	return PointerEvent{Type: PointerMove, ID: id, Screen: math.NewVec2(x, y)}
}

func TestMoveDragFollowsPointer(t *testing.T) {
	c, te, view := setup(t)
	_ = te.SetTransform(math.NewVec3(5, 5, 0), 0, 1)

	if !c.Handle(down(1, 10, 10, HandleMove)) {
		t.Fatal("PointerDown on move handle not consumed")
	}
	if c.State() != StateDraggingMove {
		t.Fatalf("state = %s", c.State())
	}
	if view.OrbitEnabled() {
		t.Error("orbit still enabled during drag")
	}

	c.Handle(move(1, 30, -5))
	assertVec(t, "position", te.Position(), math.NewVec3(25, -10, 0))
	c.Handle(move(1, 11, 12))
	assertVec(t, "position", te.Position(), math.NewVec3(6, 7, 0))

	c.Handle(PointerEvent{Type: PointerUp, ID: 1})
	if c.State() != StateIdle || !view.OrbitEnabled() {
		t.Errorf("after up: state %s, orbit %t", c.State(), view.OrbitEnabled())
	}
}

func TestRotateDragPinsFixedAnchor(t *testing.T) {
	c, te, _ := setup(t)
	_ = te.SetAnchor(scene.AnchorBottomLeft)
	anchor := te.WorldAnchor()
	assertVec(t, "anchor", anchor, math.NewVec3(-50, -50, 0))

	c.Handle(down(1, 50, -50, HandleRotate))
	fixed, ok := c.FixedAnchor()
	if !ok {
		t.Fatal("no fixed anchor during rotate")
	}
	assertVec(t, "fixed anchor", fixed, anchor)

	// A quarter turn of the pointer, damped by 0.3.
	c.Handle(move(1, -50, 50))
	assertNear(t, "rotation", te.RotationZ(), 0.3*m.Pi/2)
	assertVec(t, "anchor after move", te.WorldAnchor(), anchor)

	// Angles are measured from the initial vector, not accumulated per move.
	c.Handle(move(1, -150, -50))
	assertNear(t, "rotation", te.RotationZ(), 0.3*m.Pi)
	assertVec(t, "anchor after second move", te.WorldAnchor(), anchor)

	fixed, _ = c.FixedAnchor()
	assertVec(t, "fixed anchor unchanged", fixed, anchor)

	c.Handle(PointerEvent{Type: PointerUp, ID: 1})
	if _, ok := c.FixedAnchor(); ok {
		t.Error("fixed anchor kept after release")
	}
}

func TestRotateDragStartsFromCurrentRotation(t *testing.T) {
	c, te, _ := setup(t)
	_ = te.SetTransform(math.NewVec3(20, 0, 0), 1, 2)

	c.Handle(down(1, 120, 0, HandleRotate))
	c.Handle(move(1, 20, -100))
	assertNear(t, "rotation", te.RotationZ(), 1-0.3*m.Pi/2)
	assertVec(t, "position", te.Position(), math.NewVec3(20, 0, 0))
}

func TestDegenerateRotationInputGivesNoChange(t *testing.T) {
	c, te, _ := setup(t)
	_ = te.SetTransform(math.NewVec3Zero(), 0.4, 1)

	// Pressing exactly on the anchor leaves no initial direction.
	c.Handle(down(1, 0, 0, HandleRotate))
	c.Handle(move(1, 40, 40))
	assertNear(t, "rotation", te.RotationZ(), 0.4)
	if m.IsNaN(te.Position().X) || m.IsNaN(te.RotationZ()) {
		t.Fatal("NaN leaked into the transform")
	}

	if got := c.RotationChange(math.NewVec2(1, 0), math.NewVec2(1e-12, 0)); got != 0 {
		t.Errorf("RotationChange(short current) = %v, want 0", got)
	}
}

func TestCancelReenablesOrbit(t *testing.T) {
	for _, target := range []HandleKind{HandleMove, HandleRotate} {
		c, _, view := setup(t)
		c.Handle(down(3, 60, 0, target))
		if view.OrbitEnabled() {
			t.Fatalf("%s: orbit enabled during drag", target)
		}
		c.Handle(PointerEvent{Type: PointerCancel, ID: 3})
		if !view.OrbitEnabled() || c.Active() {
			t.Errorf("%s: cancel left orbit %t, active %t", target, view.OrbitEnabled(), c.Active())
		}
		if view.OrbitToggles() != 2 {
			t.Errorf("%s: orbit toggled %d times, want 2", target, view.OrbitToggles())
		}
	}
}

func TestResetEndsSession(t *testing.T) {
	c, _, view := setup(t)
	c.Handle(down(1, 0, 0, HandleMove))
	c.Reset()
	if c.Active() || !view.OrbitEnabled() {
		t.Error("Reset did not end the session")
	}
	c.Reset()
	if view.OrbitToggles() != 2 {
		t.Errorf("orbit toggled %d times, want 2", view.OrbitToggles())
	}
}

func TestSessionsAreExclusivePerPointer(t *testing.T) {
	c, te, _ := setup(t)
	c.Handle(down(1, 0, 0, HandleMove))

	if c.Handle(down(2, 60, 0, HandleRotate)) {
		t.Error("second PointerDown started a session")
	}
	if c.Handle(move(2, 90, 90)) {
		t.Error("foreign pointer moved the session")
	}
	assertVec(t, "position", te.Position(), math.NewVec3Zero())
	if c.Handle(PointerEvent{Type: PointerUp, ID: 2}) {
		t.Error("foreign pointer ended the session")
	}
	if c.State() != StateDraggingMove {
		t.Errorf("state = %s", c.State())
	}
}

func TestUnresolvedPointerIsSkipped(t *testing.T) {
	c, te, _ := setup(t)
	c.Handle(down(1, 0, 0, HandleMove))
	c.Handle(move(1, 10, 0))
	c.Handle(move(1, -5000, 0))
	assertVec(t, "position", te.Position(), math.NewVec3(10, 0, 0))

	c.Reset()
	if c.Handle(down(1, -5000, 0, HandleMove)) {
		t.Error("session started from an unresolved pointer")
	}
}

func TestDragBeforeGeometryIsIgnored(t *testing.T) {
	te := scene.NewTransformEngine(nil)
	view := renderer.NewHeadless(800, 600)
	c := NewController(te, view, flatPicker{}, 0.3, nil)

	if c.Handle(down(1, 0, 0, HandleMove)) || c.Active() {
		t.Error("drag started before geometry was attached")
	}
	if view.OrbitToggles() != 0 {
		t.Error("orbit toggled without a session")
	}
}

func TestDragCancelsZoom(t *testing.T) {
	c, te, _ := setup(t)
	_ = te.ZoomTo(3, 1)
	c.Handle(down(1, 0, 0, HandleMove))
	if te.IsZooming() {
		t.Error("zoom still running after drag start")
	}
}

func TestOrbitEventsArePosted(t *testing.T) {
	bus := core.NewEventBus()
	var states []bool
	bus.Register(core.EVENT_CODE_ORBIT_CONTROL_CHANGED, func(ctx core.EventContext) bool {
		states = append(states, ctx.Data.(*core.OrbitEvent).Enabled)
		return true
	})
	_, te, view := setup(t)
	c := NewController(te, view, flatPicker{}, 0, bus)
	c.Handle(down(1, 0, 0, HandleMove))
	c.Handle(PointerEvent{Type: PointerUp, ID: 1})
	bus.Flush()

	if len(states) != 2 || states[0] || !states[1] {
		t.Errorf("orbit events = %v, want [false true]", states)
	}
}

func TestInputDrivesController(t *testing.T) {
	c, te, view := setup(t)
	in := NewInput(c, func(screen math.Vec2) HandleKind {
		return HandleMove
	})

	in.ProcessMouseMove(10, 10)
	in.ProcessButton(BUTTON_LEFT, true)
	if !in.IsButtonDown(BUTTON_LEFT) || !c.Active() {
		t.Fatal("left press did not start a drag")
	}
	in.Update()
	in.ProcessMouseMove(25, 40)
	assertVec(t, "position", te.Position(), math.NewVec3(15, 30, 0))
	if !in.WasButtonDown(BUTTON_LEFT) {
		t.Error("previous state not recorded")
	}

	in.ProcessButton(BUTTON_RIGHT, true)
	in.ProcessFocusLost()
	if c.Active() || !view.OrbitEnabled() || in.IsButtonDown(BUTTON_RIGHT) {
		t.Error("focus loss did not cancel the drag")
	}
}

func TestRightButtonOrbitsOutsideDrags(t *testing.T) {
	c, _, view := setup(t)
	in := NewInput(c, func(screen math.Vec2) HandleKind {
		return HandleRotate
	})
	in.Orbit = view.Orbit
	camera := view.Camera()

	in.ProcessButton(BUTTON_RIGHT, true)
	in.ProcessMouseMove(30, 0)
	yaw := camera.Rotation.Z
	if yaw == 0 {
		t.Fatal("right-button travel did not orbit the camera")
	}
	in.ProcessButton(BUTTON_RIGHT, false)

	// A drag session disables orbiting until it ends.
	in.ProcessButton(BUTTON_LEFT, true)
	in.ProcessButton(BUTTON_RIGHT, true)
	in.ProcessMouseMove(90, 20)
	if camera.Rotation.Z != yaw {
		t.Errorf("camera orbited during a drag: yaw %v, want %v", camera.Rotation.Z, yaw)
	}
	in.ProcessButton(BUTTON_LEFT, false)
	in.ProcessMouseMove(120, 20)
	if camera.Rotation.Z == yaw {
		t.Error("orbit not restored after the drag ended")
	}
}
