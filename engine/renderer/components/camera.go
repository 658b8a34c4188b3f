package components

import (
	"strings"

	"github.com/spaghettifunk/extrudo/engine/math"
)

/** @brief The default Euler rotation order. */
const DEFAULT_ROTATION_ORDER string = "XYZ"

/** @brief Distance from the origin the camera starts at. */
const DEFAULT_CAMERA_DISTANCE float64 = 500

/** @brief Lower bound for the zoom factor. */
const MIN_ZOOM float64 = 1e-3

/**
 * @brief Euler rotation with an explicit application order. "XYZ" applies
 * Z first, then Y, then X.
 */
type Euler struct {
	X, Y, Z float64
	Order   string
}

/**
 * @brief Represents the orthographic camera the renderer draws with. The
 * engine reads and writes its pose, zoom and frustum; the renderer only
 * consumes the resulting matrices.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/**
	 * @brief The rotation of this camera using Euler angles.
	 * NOTE: Do not set this directly, use SetRotation() instead.
	 */
	Rotation Euler
	/** @brief Zoom factor applied to the frustum. */
	Zoom float64
	/** @brief Orthographic frustum bounds. */
	Left, Right, Top, Bottom float64
	/** @brief Clip planes. */
	Near, Far float64
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool
	/**
	 * @brief The view matrix of this camera.
	 * NOTE: IMPORTANT: Do not get this directly, use View() instead.
	 */
	ViewMatrix math.Mat4
}

// NewCamera creates a camera whose frustum covers a width x height viewport
// centered on the origin.
func NewCamera(width, height float64) *Camera {
	c := &Camera{}
	c.Reset()
	c.SetFrustum(-width/2, width/2, height/2, -height/2)
	return c
}

func (c *Camera) Reset() {
	c.Position = math.NewVec3(0, 0, DEFAULT_CAMERA_DISTANCE)
	c.Rotation = Euler{Order: DEFAULT_ROTATION_ORDER}
	c.Zoom = 1
	c.Near = 0.1
	c.Far = 2000
	c.IsDirty = true
	c.ViewMatrix = math.NewMat4Identity()
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) SetRotation(rotation Euler) {
	if rotation.Order == "" {
		rotation.Order = DEFAULT_ROTATION_ORDER
	}
	c.Rotation = rotation
	c.IsDirty = true
}

func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = math.Clamp(zoom, MIN_ZOOM, 1/MIN_ZOOM)
}

func (c *Camera) SetFrustum(left, right, top, bottom float64) {
	c.Left = left
	c.Right = right
	c.Top = top
	c.Bottom = bottom
}

func (c *Camera) SetClip(near, far float64) {
	c.Near = near
	c.Far = far
}

// Resize keeps the frustum centered while matching a new viewport.
func (c *Camera) Resize(width, height float64) {
	cx := (c.Left + c.Right) / 2
	cy := (c.Top + c.Bottom) / 2
	c.SetFrustum(cx-width/2, cx+width/2, cy+height/2, cy-height/2)
}

// VisibleSize returns the world-space extent covered by the frustum at the
// current zoom.
func (c *Camera) VisibleSize() (width, height float64) {
	return (c.Right - c.Left) / c.Zoom, (c.Top - c.Bottom) / c.Zoom
}

func (c *Camera) View() math.Mat4 {
	if c.IsDirty {
		rotation := eulerMatrix(c.Rotation)
		translation := math.NewMat4Translation(c.Position)

		c.ViewMatrix = rotation.Mul(translation)
		c.ViewMatrix = c.ViewMatrix.Inverse()

		c.IsDirty = false
	}
	return c.ViewMatrix
}

func (c *Camera) Projection() math.Mat4 {
	dx := (c.Right - c.Left) / (2 * c.Zoom)
	dy := (c.Top - c.Bottom) / (2 * c.Zoom)
	cx := (c.Right + c.Left) / 2
	cy := (c.Top + c.Bottom) / 2
	return math.NewMat4Orthographic(cx-dx, cx+dx, cy-dy, cy+dy, c.Near, c.Far)
}

// Matrix is the rotation the camera applies for these angles.
func (e Euler) Matrix() math.Mat4 {
	return eulerMatrix(e)
}

func eulerMatrix(e Euler) math.Mat4 {
	order := strings.ToUpper(e.Order)
	if len(order) != 3 {
		order = DEFAULT_ROTATION_ORDER
	}
	out := math.NewMat4Identity()
	// The last axis in the order string is applied first.
	for i := len(order) - 1; i >= 0; i-- {
		switch order[i] {
		case 'X':
			out = out.Mul(math.NewMat4EulerX(e.X))
		case 'Y':
			out = out.Mul(math.NewMat4EulerY(e.Y))
		case 'Z':
			out = out.Mul(math.NewMat4EulerZ(e.Z))
		}
	}
	return out
}
