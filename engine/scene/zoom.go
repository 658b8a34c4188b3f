package scene

import (
	"fmt"

	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// zoomAnimation eases the uniform scale toward a target. Each step is
// applied as a ratio through scaleAroundAnchor, so the anchor stays fixed on
// every frame of the animation.
type zoomAnimation struct {
	tween  *gween.Tween
	target float64
}

// ZoomTo animates the scale to target over duration seconds. A duration of
// zero applies the target immediately.
func (te *TransformEngine) ZoomTo(target float64, duration float32) error {
	if !validScale(target) {
		return fmt.Errorf("zoom to %v: %w", target, core.ErrInvalidScale)
	}
	if te.notReady("zoom") {
		return nil
	}
	te.CancelZoom()
	if duration <= 0 {
		return te.scaleAroundAnchor(target / te.transform.Scale())
	}
	te.zoom = &zoomAnimation{
		tween:  gween.New(float32(te.transform.Scale()), float32(target), duration, ease.OutCubic),
		target: target,
	}
	return nil
}

// ZoomBy animates the scale to the current (or pending) target times factor.
func (te *TransformEngine) ZoomBy(factor float64, duration float32) error {
	if !validScale(factor) {
		return fmt.Errorf("zoom by %v: %w", factor, core.ErrInvalidScale)
	}
	base := te.transform.Scale()
	if te.zoom != nil {
		base = te.zoom.target
	}
	return te.ZoomTo(base*factor, duration)
}

// UpdateZoom advances a running zoom by dt seconds. It reports whether an
// animation is still running afterwards.
func (te *TransformEngine) UpdateZoom(dt float32) bool {
	if te.zoom == nil {
		return false
	}
	if !te.IsReady() {
		te.zoom = nil
		return false
	}
	value, finished := te.zoom.tween.Update(dt)
	next := float64(value)
	if finished {
		next = te.zoom.target
		te.zoom = nil
	}
	if validScale(next) {
		if err := te.scaleAroundAnchor(next / te.transform.Scale()); err != nil {
			core.LogWarn("zoom step dropped: %s", err.Error())
		}
	}
	return te.zoom != nil
}

// IsZooming reports whether a zoom animation is running.
func (te *TransformEngine) IsZooming() bool {
	return te.zoom != nil
}

func (te *TransformEngine) CancelZoom() {
	te.zoom = nil
}
