package picking

import (
	m "math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
	"github.com/spaghettifunk/extrudo/engine/renderer/components"
)

// Service resolves a pointer position (pixels, origin top-left) into a
// world-space point.
type Service interface {
	Pick(pointer math.Vec2, camera *components.Camera) (math.Vec3, bool)
}

// PlanePicker intersects the pointer ray with the plane z = PlaneZ, the
// plane the outline is extruded from.
type PlanePicker struct {
	Width, Height int
	PlaneZ        float64
}

func NewPlanePicker(width, height int) *PlanePicker {
	return &PlanePicker{Width: width, Height: height}
}

// Resize updates the viewport in pixels.
func (p *PlanePicker) Resize(width, height int) {
	p.Width = width
	p.Height = height
}

func (p *PlanePicker) Pick(pointer math.Vec2, camera *components.Camera) (math.Vec3, bool) {
	if camera == nil || p.Width <= 0 || p.Height <= 0 {
		return math.Vec3{}, false
	}
	view := mgl64.Mat4(camera.View().Data)
	proj := mgl64.Mat4(camera.Projection().Data)

	// Window coordinates grow upwards.
	winX := pointer.X
	winY := float64(p.Height) - pointer.Y

	near, err := mgl64.UnProject(mgl64.Vec3{winX, winY, 0}, view, proj, 0, 0, p.Width, p.Height)
	if err != nil {
		core.LogDebug("picking: %s", err.Error())
		return math.Vec3{}, false
	}
	far, err := mgl64.UnProject(mgl64.Vec3{winX, winY, 1}, view, proj, 0, 0, p.Width, p.Height)
	if err != nil {
		core.LogDebug("picking: %s", err.Error())
		return math.Vec3{}, false
	}

	dir := far.Sub(near)
	if m.Abs(dir.Z()) < math.K_LENGTH_EPSILON {
		return math.Vec3{}, false
	}
	t := (p.PlaneZ - near.Z()) / dir.Z()
	hit := near.Add(dir.Mul(t))
	out := math.NewVec3(hit.X(), hit.Y(), hit.Z())
	if !out.IsFinite() {
		return math.Vec3{}, false
	}
	return out, true
}
