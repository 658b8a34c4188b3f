package systems

import (
	m "math"
	"testing"

	"github.com/spaghettifunk/extrudo/engine/math"
	"github.com/spaghettifunk/extrudo/engine/renderer/components"
)

func newCameras(t *testing.T) *CameraSystem {
	t.Helper()
	cs, err := NewCameraSystem(&CameraSystemConfig{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("NewCameraSystem: %v", err)
	}
	return cs
}

func TestNewCameraSystemRejectsEmptyViewport(t *testing.T) {
	if _, err := NewCameraSystem(nil); err == nil {
		t.Error("nil config accepted")
	}
	if _, err := NewCameraSystem(&CameraSystemConfig{Width: 0, Height: 600}); err == nil {
		t.Error("zero width accepted")
	}
}

func TestOrbitDisabledLeavesCamera(t *testing.T) {
	cs := newCameras(t)
	cs.SetOrbitEnabled(false)
	before := cs.GetDefault().Position
	if cs.Orbit(40, 25) {
		t.Error("Orbit reported movement while disabled")
	}
	if cs.GetDefault().Position != before {
		t.Errorf("camera moved to %+v", cs.GetDefault().Position)
	}
}

func TestOrbitKeepsTargetCentered(t *testing.T) {
	cs := newCameras(t)
	if !cs.Orbit(120, -60) {
		t.Fatal("Orbit reported no movement")
	}
	c := cs.GetDefault()
	if d := c.Position.Sub(cs.Config.Target).Length(); m.Abs(d-components.DEFAULT_CAMERA_DISTANCE) > 1e-9 {
		t.Errorf("distance to target = %v, want %v", d, components.DEFAULT_CAMERA_DISTANCE)
	}
	// The target stays on the view axis in front of the camera.
	got := cs.Config.Target.Transform(c.View())
	want := math.NewVec3(0, 0, -components.DEFAULT_CAMERA_DISTANCE)
	if !got.Compare(want, 1e-6) {
		t.Errorf("target in view space = %+v, want %+v", got, want)
	}
}

func TestOrbitPitchClamped(t *testing.T) {
	cs := newCameras(t)
	cs.Orbit(0, -1e6)
	if p := cs.GetDefault().Rotation.X; m.Abs(p-MAX_ORBIT_PITCH) > 1e-12 {
		t.Errorf("pitch = %v, want %v", p, MAX_ORBIT_PITCH)
	}
}

func TestOrbitContinuesFromRestoredPose(t *testing.T) {
	cs := newCameras(t)
	c := cs.GetDefault()
	c.SetRotation(components.Euler{Z: 1, Order: ORBIT_ROTATION_ORDER})
	cs.Orbit(-100, 0)
	want := 1 + 100*DEFAULT_ORBIT_SENSITIVITY
	if m.Abs(c.Rotation.Z-want) > 1e-12 {
		t.Errorf("yaw = %v, want %v", c.Rotation.Z, want)
	}
}

func TestOrbitToggleCount(t *testing.T) {
	cs := newCameras(t)
	cs.SetOrbitEnabled(true)
	cs.SetOrbitEnabled(false)
	cs.SetOrbitEnabled(false)
	cs.SetOrbitEnabled(true)
	if cs.OrbitToggles() != 2 {
		t.Errorf("toggles = %d, want 2", cs.OrbitToggles())
	}
}
