package scene

import (
	"strings"

	"github.com/spaghettifunk/extrudo/engine/math"
)

// AnchorPoint is a pivot normalized to the object's local bounding box:
// (0,0) is the min corner, (1,1) the max corner. Values outside [0,1] are
// legal and describe a pivot outside the box.
type AnchorPoint struct {
	X, Y float64
}

var DefaultAnchor = AnchorPoint{X: 0.5, Y: 0.5}

var (
	AnchorCenter      = DefaultAnchor
	AnchorBottomLeft  = AnchorPoint{X: 0, Y: 0}
	AnchorBottomRight = AnchorPoint{X: 1, Y: 0}
	AnchorTopLeft     = AnchorPoint{X: 0, Y: 1}
	AnchorTopRight    = AnchorPoint{X: 1, Y: 1}
	AnchorTop         = AnchorPoint{X: 0.5, Y: 1}
	AnchorBottom      = AnchorPoint{X: 0.5, Y: 0}
	AnchorLeft        = AnchorPoint{X: 0, Y: 0.5}
	AnchorRight       = AnchorPoint{X: 1, Y: 0.5}
)

var presets = map[string]AnchorPoint{
	"center":       AnchorCenter,
	"bottom-left":  AnchorBottomLeft,
	"bottom-right": AnchorBottomRight,
	"top-left":     AnchorTopLeft,
	"top-right":    AnchorTopRight,
	"top":          AnchorTop,
	"bottom":       AnchorBottom,
	"left":         AnchorLeft,
	"right":        AnchorRight,
}

// AnchorPreset looks a preset up by name, e.g. "top-left".
func AnchorPreset(name string) (AnchorPoint, bool) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// InUnitRange reports whether the anchor lies inside its bounding box.
func (p AnchorPoint) InUnitRange() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

func (p AnchorPoint) IsFinite() bool {
	return math.IsFinite(p.X) && math.IsFinite(p.Y)
}

// LocalAnchor = bounds.Min + bounds.Size * (x, y), with z = 0.
func LocalAnchor(bounds math.Extents3D, p AnchorPoint) math.Vec3 {
	size := bounds.Size()
	return math.NewVec3(
		bounds.Min.X+size.X*p.X,
		bounds.Min.Y+size.Y*p.Y,
		0,
	)
}

// WorldAnchor maps a local anchor through the transform's composed matrix.
func WorldAnchor(t *math.Transform, local math.Vec3) math.Vec3 {
	return t.Apply(local)
}

// AnchorFromLocal is the inverse of LocalAnchor. Degenerate axes map to 0.5.
func AnchorFromLocal(bounds math.Extents3D, local math.Vec3) AnchorPoint {
	size := bounds.Size()
	p := DefaultAnchor
	if size.X > math.K_LENGTH_EPSILON {
		p.X = (local.X - bounds.Min.X) / size.X
	}
	if size.Y > math.K_LENGTH_EPSILON {
		p.Y = (local.Y - bounds.Min.Y) / size.Y
	}
	return p
}
