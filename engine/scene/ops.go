package scene

import (
	"fmt"

	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
)

// Every anchor-relative operation follows the same pattern: record the
// world anchor, change one field of the transform, then translate by the
// difference so the world anchor lands back where it was. The world anchor
// is always obtained from the composed matrix.

// ScaleAroundAnchor multiplies the uniform scale by factor while keeping the
// world anchor fixed. factor must be > 0. A running zoom animation is
// cancelled so it cannot overwrite the new scale.
func (te *TransformEngine) ScaleAroundAnchor(factor float64) error {
	if validScale(factor) && te.IsReady() {
		te.CancelZoom()
	}
	return te.scaleAroundAnchor(factor)
}

// scaleAroundAnchor is the zoom animation's per-frame step.
func (te *TransformEngine) scaleAroundAnchor(factor float64) error {
	if !validScale(factor) {
		return fmt.Errorf("scale around anchor by %v: %w", factor, core.ErrInvalidScale)
	}
	if te.notReady("scale around anchor") {
		return nil
	}
	next := te.transform.Scale() * factor
	if !validScale(next) {
		return fmt.Errorf("scale around anchor to %v: %w", next, core.ErrInvalidScale)
	}

	before := te.WorldAnchor()
	te.transform.SetScale(next)
	te.pin(before)
	te.notifyTransform()
	return nil
}

// RotateAroundAnchor adds delta radians to the Z rotation while keeping the
// world anchor fixed. The rotation is never wrapped.
func (te *TransformEngine) RotateAroundAnchor(delta float64) error {
	if !math.IsFinite(delta) {
		return fmt.Errorf("rotate around anchor: non-finite delta %v", delta)
	}
	if te.notReady("rotate around anchor") {
		return nil
	}
	te.SetRotationPinned(te.transform.RotationZ()+delta, te.WorldAnchor())
	return nil
}

// SetRotationPinned sets the Z rotation to angle and then moves the object
// so that its world anchor sits exactly on pin. Drag sessions pass the
// anchor captured when the gesture started.
func (te *TransformEngine) SetRotationPinned(angle float64, pin math.Vec3) {
	if te.notReady("set rotation") || !math.IsFinite(angle) || !pin.IsFinite() {
		return
	}
	te.transform.SetRotationZ(angle)
	te.pin(pin)
	te.notifyTransform()
}

// Translate moves the object so its position is newPosition. The world
// anchor moves along with it.
func (te *TransformEngine) Translate(newPosition math.Vec3) {
	if te.notReady("translate") || !newPosition.IsFinite() {
		return
	}
	te.transform.SetPosition(newPosition)
	te.notifyTransform()
}

// pin shifts the position so the current world anchor equals target.
// Translation is applied last in the composed matrix, so the shift moves the
// world anchor by exactly the same amount.
func (te *TransformEngine) pin(target math.Vec3) {
	after := te.WorldAnchor()
	te.transform.Translate(target.Sub(after))
}
