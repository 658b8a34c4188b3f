package scene

import (
	"fmt"

	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
)

type Stage uint8

const (
	// No geometry attached yet; every transform operation is a no-op.
	StagePending Stage = iota
	// Geometry attached; bounds are known.
	StageReady
)

func (s Stage) String() string {
	if s == StageReady {
		return "ready"
	}
	return "pending"
}

// TransformEngine owns the wrapping transform, the anchor and the bounds of
// the currently attached geometry. It is not safe for concurrent use; the
// caller drives it from a single thread.
type TransformEngine struct {
	stage          Stage
	transform      *math.Transform
	anchor         AnchorPoint
	bounds         math.Extents3D
	geometryOffset math.Vec3
	events         *core.EventBus
	zoom           *zoomAnimation
}

// NewTransformEngine returns an engine in StagePending. events may be nil.
func NewTransformEngine(events *core.EventBus) *TransformEngine {
	return &TransformEngine{
		stage:     StagePending,
		transform: math.TransformCreate(),
		anchor:    DefaultAnchor,
		events:    events,
	}
}

func (te *TransformEngine) Stage() Stage {
	return te.stage
}

func (te *TransformEngine) IsReady() bool {
	return te.stage == StageReady
}

// AttachGeometry records the raw local bounds of freshly loaded geometry and
// re-centers them at the local origin. The transform and anchor are left
// untouched; restoring them is the caller's job.
func (te *TransformEngine) AttachGeometry(raw math.Extents3D) error {
	if !raw.IsValid() {
		return fmt.Errorf("attach geometry: invalid bounds %+v", raw)
	}
	te.bounds, te.geometryOffset = raw.Recentered()
	te.stage = StageReady
	te.CancelZoom()
	core.LogDebug("geometry attached, size %+v, offset %+v", te.bounds.Size(), te.geometryOffset)
	return nil
}

// Bounds are the re-centered local bounds.
func (te *TransformEngine) Bounds() math.Extents3D {
	return te.bounds
}

// GeometryOffset re-centers the raw geometry at the local origin.
func (te *TransformEngine) GeometryOffset() math.Vec3 {
	return te.geometryOffset
}

// WorldMatrix is the composed wrapping transform.
func (te *TransformEngine) WorldMatrix() math.Mat4 {
	return te.transform.Matrix()
}

// Transform returns a copy of the current transform.
func (te *TransformEngine) Transform() *math.Transform {
	return te.transform.Clone()
}

func (te *TransformEngine) Position() math.Vec3 {
	return te.transform.Position()
}

func (te *TransformEngine) RotationZ() float64 {
	return te.transform.RotationZ()
}

func (te *TransformEngine) Scale() float64 {
	return te.transform.Scale()
}

// SetTransform replaces position, rotation and scale at once. Used when a
// saved state is applied.
func (te *TransformEngine) SetTransform(position math.Vec3, rotationZ, scale float64) error {
	if !validScale(scale) {
		return fmt.Errorf("set transform scale %v: %w", scale, core.ErrInvalidScale)
	}
	if !position.IsFinite() || !math.IsFinite(rotationZ) {
		return fmt.Errorf("set transform: non-finite position %+v or rotation %v", position, rotationZ)
	}
	te.transform.SetPositionRotationScale(position, rotationZ, scale)
	te.notifyTransform()
	return nil
}

func (te *TransformEngine) Anchor() AnchorPoint {
	return te.anchor
}

// SetAnchor stores a new pivot. The transform is not changed, so the object
// stays where it is and only the marker moves.
func (te *TransformEngine) SetAnchor(p AnchorPoint) error {
	if !p.IsFinite() {
		return fmt.Errorf("set anchor: non-finite point %+v", p)
	}
	if !p.InUnitRange() {
		core.LogWarn("anchor (%.3f, %.3f) lies outside the bounding box", p.X, p.Y)
	}
	te.anchor = p
	te.notifyAnchor()
	return nil
}

// LocalAnchor is the anchor in the re-centered local frame.
func (te *TransformEngine) LocalAnchor() math.Vec3 {
	return LocalAnchor(te.bounds, te.anchor)
}

// WorldAnchor is the anchor pushed through the composed transform.
func (te *TransformEngine) WorldAnchor() math.Vec3 {
	return WorldAnchor(te.transform, te.LocalAnchor())
}

// AnchorFromWorld converts a picked world point into normalized anchor
// coordinates of the current geometry.
func (te *TransformEngine) AnchorFromWorld(world math.Vec3) (AnchorPoint, bool) {
	if !te.IsReady() || !world.IsFinite() {
		return AnchorPoint{}, false
	}
	return AnchorFromLocal(te.bounds, te.transform.Unapply(world)), true
}

// ResetToFit puts the object back at the origin, unrotated, with the
// default anchor and a scale that fits `fraction` of the viewport.
func (te *TransformEngine) ResetToFit(viewWidth, viewHeight, fraction float64) {
	scale := FitScale(te.bounds, viewWidth, viewHeight, fraction)
	te.transform.SetPositionRotationScale(math.NewVec3Zero(), 0, scale)
	te.anchor = DefaultAnchor
	te.CancelZoom()
	te.notifyTransform()
	te.notifyAnchor()
}

// FitScale picks the uniform scale at which bounds cover `fraction` of the
// view along their tighter axis. Degenerate input yields 1.
func FitScale(bounds math.Extents3D, viewWidth, viewHeight, fraction float64) float64 {
	size := bounds.Size()
	if size.X <= math.K_LENGTH_EPSILON || size.Y <= math.K_LENGTH_EPSILON ||
		viewWidth <= 0 || viewHeight <= 0 || fraction <= 0 {
		return 1
	}
	s := fraction * min(viewWidth/size.X, viewHeight/size.Y)
	if !validScale(s) {
		return 1
	}
	return s
}

func (te *TransformEngine) notReady(op string) bool {
	if te.IsReady() {
		return false
	}
	core.LogDebug("%s ignored: %s (%s)", op, core.ErrNotReady.Error(), core.KindNotReady)
	return true
}

func (te *TransformEngine) notifyTransform() {
	p := te.transform.Position()
	te.events.Post(core.EventContext{
		Type: core.EVENT_CODE_TRANSFORM_CHANGED,
		Data: &core.TransformEvent{
			PositionX: p.X, PositionY: p.Y, PositionZ: p.Z,
			RotationZ: te.transform.RotationZ(),
			Scale:     te.transform.Scale(),
		},
	})
}

func (te *TransformEngine) notifyAnchor() {
	w := te.WorldAnchor()
	te.events.Post(core.EventContext{
		Type: core.EVENT_CODE_ANCHOR_CHANGED,
		Data: &core.AnchorEvent{
			X: te.anchor.X, Y: te.anchor.Y,
			WorldX: w.X, WorldY: w.Y, WorldZ: w.Z,
		},
	})
}

func validScale(s float64) bool {
	return s > 0 && math.IsFinite(s)
}
