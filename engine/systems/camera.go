package systems

import (
	"fmt"
	m "math"
	"sync"

	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
	"github.com/spaghettifunk/extrudo/engine/renderer/components"
)

/** @brief Pitch stays this far from straight-on-edge so the view never flips. */
const MAX_ORBIT_PITCH float64 = math.K_HALF_PI - 0.01

/** @brief Radians of orbit per pixel of pointer travel. */
const DEFAULT_ORBIT_SENSITIVITY float64 = 0.005

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/** @brief Viewport the default camera's frustum covers. */
	Width, Height float64
	/** @brief Point the orbit control circles around. */
	Target math.Vec3
	/** @brief Radians per pixel; <= 0 selects DEFAULT_ORBIT_SENSITIVITY. */
	OrbitSensitivity float64
}

/**
 * @brief Owns the default camera and the ambient orbit control. Orbiting
 * tilts (pitch about X) and spins (yaw about Z) the camera around Target
 * while keeping its distance.
 */
type CameraSystem struct {
	Config *CameraSystemConfig

	mu sync.Mutex
	// A default camera that always exists.
	defaultCamera *components.Camera
	orbitEnabled  bool
	orbitToggles  int
}

/**
 * @brief Creates the camera system with orbiting enabled.
 *
 * @param config The configuration for this system.
 * @return The camera system, or an error if the viewport is empty.
 */
func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config == nil || config.Width <= 0 || config.Height <= 0 {
		err := fmt.Errorf("func NewCameraSystem - viewport must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if config.OrbitSensitivity <= 0 {
		config.OrbitSensitivity = DEFAULT_ORBIT_SENSITIVITY
	}
	return &CameraSystem{
		Config:        config,
		defaultCamera: components.NewCamera(config.Width, config.Height),
		orbitEnabled:  true,
	}, nil
}

/**
 * @brief Gets a pointer to the default camera.
 *
 * @return A pointer to the default camera.
 */
func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.defaultCamera
}

func (cs *CameraSystem) SetOrbitEnabled(enabled bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.orbitEnabled != enabled {
		cs.orbitToggles++
	}
	cs.orbitEnabled = enabled
}

func (cs *CameraSystem) OrbitEnabled() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.orbitEnabled
}

/** @brief Counts orbit state changes; balanced sessions toggle an even number of times. */
func (cs *CameraSystem) OrbitToggles() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.orbitToggles
}

/**
 * @brief Orbits the default camera by a pointer delta in pixels. The angles
 * are read back from the camera every time, so a restored camera pose keeps
 * orbiting from where it was put.
 *
 * @return False when orbiting is disabled and nothing moved.
 */
func (cs *CameraSystem) Orbit(dx, dy float64) bool {
	if !cs.OrbitEnabled() {
		return false
	}
	c := cs.defaultCamera
	s := cs.Config.OrbitSensitivity

	distance := c.Position.Sub(cs.Config.Target).Length()
	if distance < math.K_LENGTH_EPSILON {
		distance = components.DEFAULT_CAMERA_DISTANCE
	}
	yaw := c.Rotation.Z - dx*s
	pitch := math.Clamp(c.Rotation.X-dy*s, -MAX_ORBIT_PITCH, MAX_ORBIT_PITCH)
	if m.IsNaN(yaw) || m.IsNaN(pitch) {
		return false
	}

	rotation := components.Euler{X: pitch, Z: yaw, Order: ORBIT_ROTATION_ORDER}
	// The camera looks down its local -Z, so it sits on its local +Z axis.
	offset := math.NewVec3(0, 0, distance).Transform(rotation.Matrix())
	c.SetRotation(rotation)
	c.SetPosition(cs.Config.Target.Add(offset))
	return true
}

/** @brief Pitch is applied first, then yaw about the world Z axis. */
const ORBIT_ROTATION_ORDER string = "ZYX"
