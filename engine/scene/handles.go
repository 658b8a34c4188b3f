package scene

import "github.com/spaghettifunk/extrudo/engine/math"

// Distance of the rotation handle above the top edge, as a fraction of the
// larger side of the bounds.
const ROTATION_HANDLE_OFFSET = 0.15

type Handle struct {
	Position math.Vec3
	Visible  bool
}

// HandleState holds the on-screen proxies that drive drag gestures. It is
// always derived from the transform, bounds and anchor, never stored.
type HandleState struct {
	CurrentRotation float64
	Movement        Handle
	Rotation        Handle
}

// Handles derives the movement handle (on the world anchor) and the
// rotation handle (above the top edge, in line with the anchor).
func (te *TransformEngine) Handles() HandleState {
	if !te.IsReady() {
		return HandleState{CurrentRotation: te.transform.RotationZ()}
	}
	size := te.bounds.Size()
	offset := max(size.X, size.Y) * ROTATION_HANDLE_OFFSET
	local := te.LocalAnchor()
	rotationLocal := math.NewVec3(local.X, te.bounds.Max.Y+offset, 0)

	return HandleState{
		CurrentRotation: te.transform.RotationZ(),
		Movement: Handle{
			Position: te.WorldAnchor(),
			Visible:  true,
		},
		Rotation: Handle{
			Position: te.transform.Apply(rotationLocal),
			Visible:  true,
		},
	}
}
