package picking

import (
	m "math"
	"testing"

	"github.com/spaghettifunk/extrudo/engine/math"
	"github.com/spaghettifunk/extrudo/engine/renderer/components"
)

const epsilon = 1e-6

func TestPlanePickerCenterAndCorner(t *testing.T) {
	camera := components.NewCamera(800, 600)
	picker := NewPlanePicker(800, 600)

	tests := []struct {
		name    string
		pointer math.Vec2
		want    math.Vec3
	}{
		{"center", math.NewVec2(400, 300), math.NewVec3(0, 0, 0)},
		{"top right", math.NewVec2(800, 0), math.NewVec3(400, 300, 0)},
		{"bottom left", math.NewVec2(0, 600), math.NewVec3(-400, -300, 0)},
	}
	for _, tt := range tests {
		got, ok := picker.Pick(tt.pointer, camera)
		if !ok {
			t.Fatalf("%s: Pick() reported no hit", tt.name)
		}
		if !got.Compare(tt.want, epsilon) {
			t.Errorf("%s: Pick() = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestPlanePickerHonoursZoomAndPan(t *testing.T) {
	camera := components.NewCamera(800, 600)
	camera.SetZoom(2)
	camera.SetPosition(math.NewVec3(50, -20, 500))
	picker := NewPlanePicker(800, 600)

	got, ok := picker.Pick(math.NewVec2(800, 300), camera)
	if !ok {
		t.Fatal("Pick() reported no hit")
	}
	want := math.NewVec3(250, -20, 0)
	if !got.Compare(want, epsilon) {
		t.Errorf("Pick() = %+v, want %+v", got, want)
	}
}

func TestPlanePickerRejectsEdgeOnCamera(t *testing.T) {
	camera := components.NewCamera(800, 600)
	camera.SetRotation(components.Euler{X: m.Pi / 2})
	picker := NewPlanePicker(800, 600)
	if _, ok := picker.Pick(math.NewVec2(400, 300), camera); ok {
		t.Error("Pick() hit a plane seen edge-on")
	}
}

func TestPlanePickerWithoutViewport(t *testing.T) {
	picker := &PlanePicker{}
	if _, ok := picker.Pick(math.NewVec2(0, 0), components.NewCamera(1, 1)); ok {
		t.Error("Pick() succeeded without a viewport")
	}
}
