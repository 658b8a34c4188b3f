package viewstate

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
	"github.com/spaghettifunk/extrudo/engine/renderer/components"
	"github.com/spaghettifunk/extrudo/engine/scene"
	"github.com/spaghettifunk/extrudo/engine/storage"
)

const DEFAULT_KEY = "viewState"

// Viewport describes how default (unsaved) sessions fit the object.
type Viewport struct {
	Width, Height float64
	FitFraction   float64
}

// Store saves and loads view states under one key of a key-value store.
type Store struct {
	kv      storage.KeyValueStore
	key     string
	session core.Identifier
}

func NewStore(kv storage.KeyValueStore, key string) (*Store, error) {
	if kv == nil {
		return nil, errors.New("view state store needs a key-value store")
	}
	if key == "" {
		key = DEFAULT_KEY
	}
	return &Store{kv: kv, key: key, session: core.NewIdentifier()}, nil
}

func (s *Store) Key() string {
	return s.key
}

// Session identifies the records written by this process.
func (s *Store) Session() core.Identifier {
	return s.session
}

// Save captures the current session. It fails with core.ErrNotReady before
// geometry is attached.
func (s *Store) Save(te *scene.TransformEngine, camera *components.Camera, rendering RenderingParams, lighting Lighting) (*ViewState, error) {
	vs, err := Capture(te, camera, rendering, lighting)
	if err != nil {
		return nil, err
	}
	vs.Session = s.session
	return vs, nil
}

// Persist writes vs under the store key.
func (s *Store) Persist(vs *ViewState) error {
	data, err := Encode(vs)
	if err != nil {
		return err
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("persist view state: %w", err)
	}
	core.LogDebug("view state persisted under %q (%d bytes)", s.key, len(data))
	return nil
}

// Load reads the stored record. A missing record, a store failure and a
// corrupt record all give nil; the latter two are logged.
func (s *Store) Load() *ViewState {
	data, ok, err := s.kv.Get(s.key)
	if err != nil {
		core.LogError("failed to read view state %q: %s", s.key, err.Error())
		return nil
	}
	if !ok {
		return nil
	}
	vs, err := Decode([]byte(data))
	if err != nil {
		core.LogWarn("ignoring saved view state (%s): %s", core.KindOf(err), err.Error())
		return nil
	}
	return vs
}

// Capture snapshots the engine, camera and rendering settings without
// touching any store.
func Capture(te *scene.TransformEngine, camera *components.Camera, rendering RenderingParams, lighting Lighting) (*ViewState, error) {
	if te == nil || !te.IsReady() {
		return nil, fmt.Errorf("save view state: %w", core.ErrNotReady)
	}

	rot := te.RotationZ()
	scale := te.Scale()
	handles := te.Handles()
	anchor := te.Anchor()
	r := rendering
	lights, err := lighting.Normalized()
	if err != nil {
		return nil, fmt.Errorf("save view state: %w", err)
	}

	vs := &ViewState{
		Transform: &TransformRecord{
			Position: newVec3Record(te.Position()),
			Rotation: &Vec3Record{Z: rot},
			Scale:    &Vec3Record{X: scale, Y: scale, Z: scale},
		},
		Handles: &HandlesRecord{
			CurrentRotation:     &rot,
			MovementHandle:      &HandleRecord{Position: newVec3Record(handles.Movement.Position), Visible: handles.Movement.Visible},
			RotationHandle:      &HandleRecord{Position: newVec3Record(handles.Rotation.Position), Visible: handles.Rotation.Visible},
			AnchorPoint:         &AnchorRecord{X: anchor.X, Y: anchor.Y},
			AnchorWorldPosition: newVec3Record(te.WorldAnchor()),
		},
		Rendering: &r,
		Lighting:  lights,
	}
	if camera != nil {
		vs.Camera = captureCamera(camera)
	}
	return vs, nil
}

func captureCamera(c *components.Camera) *CameraRecord {
	return &CameraRecord{
		Position: newVec3Record(c.Position),
		Rotation: &EulerRecord{X: c.Rotation.X, Y: c.Rotation.Y, Z: c.Rotation.Z, Order: c.Rotation.Order},
		Zoom:     ptr(c.Zoom),
		Left:     ptr(c.Left),
		Right:    ptr(c.Right),
		Top:      ptr(c.Top),
		Bottom:   ptr(c.Bottom),
		Near:     ptr(c.Near),
		Far:      ptr(c.Far),
	}
}

// Restore attaches fresh geometry to te and applies vs on top of it. With a
// nil vs the object is fitted to the viewport with the default anchor.
// Otherwise the saved transform and anchor are applied and the object is
// shifted so the anchor lands on its saved world position, which keeps the
// pivot in place when the geometry's bounds changed since the save.
func Restore(vs *ViewState, fresh math.Extents3D, te *scene.TransformEngine, camera *components.Camera, vp Viewport) error {
	if err := te.AttachGeometry(fresh); err != nil {
		return fmt.Errorf("restore view state: %w", err)
	}
	if vs == nil {
		te.ResetToFit(vp.Width, vp.Height, vp.FitFraction)
		return nil
	}

	position := math.NewVec3Zero()
	rotation := 0.0
	scale := scene.FitScale(te.Bounds(), vp.Width, vp.Height, vp.FitFraction)
	if t := vs.Transform; t != nil {
		if t.Position != nil && t.Position.Vec3().IsFinite() {
			position = t.Position.Vec3()
		}
		if t.Rotation != nil && math.IsFinite(t.Rotation.Z) {
			rotation = t.Rotation.Z
		}
		if t.Scale != nil && t.Scale.X > 0 && math.IsFinite(t.Scale.X) {
			scale = t.Scale.X
		}
	}
	if err := te.SetTransform(position, rotation, scale); err != nil {
		return fmt.Errorf("restore view state: %w", err)
	}

	anchor := scene.DefaultAnchor
	var savedWorld *Vec3Record
	if h := vs.Handles; h != nil {
		if h.AnchorPoint != nil {
			anchor = scene.AnchorPoint{X: h.AnchorPoint.X, Y: h.AnchorPoint.Y}
		}
		savedWorld = h.AnchorWorldPosition
	}
	if err := te.SetAnchor(anchor); err != nil {
		core.LogWarn("saved anchor rejected, using default: %s", err.Error())
		_ = te.SetAnchor(scene.DefaultAnchor)
	}

	if savedWorld != nil && savedWorld.Vec3().IsFinite() {
		offset := savedWorld.Vec3().Sub(te.WorldAnchor())
		te.Translate(te.Position().Add(offset))
	}

	if camera != nil && vs.Camera != nil {
		applyCamera(vs.Camera, camera)
	}
	return nil
}

func applyCamera(r *CameraRecord, c *components.Camera) {
	if r.Position != nil && r.Position.Vec3().IsFinite() {
		c.SetPosition(r.Position.Vec3())
	}
	if r.Rotation != nil {
		c.SetRotation(components.Euler{X: r.Rotation.X, Y: r.Rotation.Y, Z: r.Rotation.Z, Order: r.Rotation.Order})
	}
	if r.Zoom != nil && *r.Zoom > 0 {
		c.SetZoom(*r.Zoom)
	}
	left, right, top, bottom := c.Left, c.Right, c.Top, c.Bottom
	setIf(&left, r.Left)
	setIf(&right, r.Right)
	setIf(&top, r.Top)
	setIf(&bottom, r.Bottom)
	if right > left && top > bottom {
		c.SetFrustum(left, right, top, bottom)
	}
	near, far := c.Near, c.Far
	setIf(&near, r.Near)
	setIf(&far, r.Far)
	if far > near {
		c.SetClip(near, far)
	}
}

func setIf(dst *float64, src *float64) {
	if src != nil && math.IsFinite(*src) {
		*dst = *src
	}
}

// RenderingOrDefault returns the saved rendering settings, normalized, or
// the defaults when none were saved.
func (vs *ViewState) RenderingOrDefault() RenderingParams {
	if vs == nil || vs.Rendering == nil {
		return DefaultRendering()
	}
	return vs.Rendering.Normalized()
}

func (vs *ViewState) LightingOrDefault() Lighting {
	if vs == nil || len(vs.Lighting) == 0 {
		return DefaultLighting()
	}
	return vs.Lighting.Clone()
}
