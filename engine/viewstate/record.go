package viewstate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
)

// ViewState is one saved session. Every section is optional so records
// written by older builds, or cut short, still restore what they carry.
type ViewState struct {
	Session   core.Identifier  `json:"session,omitempty"`
	Camera    *CameraRecord    `json:"camera,omitempty"`
	Transform *TransformRecord `json:"transform,omitempty"`
	Handles   *HandlesRecord   `json:"handles,omitempty"`
	Rendering *RenderingParams `json:"rendering,omitempty"`
	Lighting  Lighting         `json:"lighting,omitempty"`
}

type Vec3Record struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func newVec3Record(v math.Vec3) *Vec3Record {
	return &Vec3Record{X: v.X, Y: v.Y, Z: v.Z}
}

func (r *Vec3Record) Vec3() math.Vec3 {
	return math.NewVec3(r.X, r.Y, r.Z)
}

type EulerRecord struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Order string  `json:"order,omitempty"`
}

type CameraRecord struct {
	Position *Vec3Record  `json:"position,omitempty"`
	Rotation *EulerRecord `json:"rotation,omitempty"`
	Zoom     *float64     `json:"zoom,omitempty"`
	Left     *float64     `json:"left,omitempty"`
	Right    *float64     `json:"right,omitempty"`
	Top      *float64     `json:"top,omitempty"`
	Bottom   *float64     `json:"bottom,omitempty"`
	Near     *float64     `json:"near,omitempty"`
	Far      *float64     `json:"far,omitempty"`
}

// TransformRecord keeps the three-axis layout of the stored format. Only
// rotation.z and scale.x are read back; the engine is z-rotation and
// uniform-scale only.
type TransformRecord struct {
	Position *Vec3Record `json:"position,omitempty"`
	Rotation *Vec3Record `json:"rotation,omitempty"`
	Scale    *Vec3Record `json:"scale,omitempty"`
}

type HandleRecord struct {
	Position *Vec3Record `json:"position,omitempty"`
	Visible  bool        `json:"visible"`
}

type AnchorRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HandlesRecord stores the anchor and its world position at save time. The
// handle positions are written for compatibility and ignored on restore.
type HandlesRecord struct {
	CurrentRotation     *float64      `json:"currentRotation,omitempty"`
	MovementHandle      *HandleRecord `json:"movementHandle,omitempty"`
	RotationHandle      *HandleRecord `json:"rotationHandle,omitempty"`
	AnchorPoint         *AnchorRecord `json:"anchorPoint,omitempty"`
	AnchorWorldPosition *Vec3Record   `json:"anchorWorldPosition,omitempty"`
}

// Lighting maps light names to their settings.
type Lighting map[string]Light

// Light carries the common light fields plus whatever type-specific fields
// (angle, penumbra, groundColor, ...) the record contained.
type Light struct {
	Visible   *bool
	Intensity *float64
	Color     string
	Position  *Vec3Record
	Extra     map[string]any
}

var lightKeys = []string{"visible", "intensity", "color", "position"}

func (l Light) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(l.Extra)+4)
	for k, v := range l.Extra {
		out[k] = v
	}
	if l.Visible != nil {
		out["visible"] = *l.Visible
	}
	if l.Intensity != nil {
		out["intensity"] = *l.Intensity
	}
	if l.Color != "" {
		out["color"] = l.Color
	}
	if l.Position != nil {
		out["position"] = l.Position
	}
	return json.Marshal(out)
}

func (l *Light) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Light{}
	if v, ok := raw["visible"]; ok {
		if err := json.Unmarshal(v, &l.Visible); err != nil {
			return fmt.Errorf("light visible: %w", err)
		}
	}
	if v, ok := raw["intensity"]; ok {
		if err := json.Unmarshal(v, &l.Intensity); err != nil {
			return fmt.Errorf("light intensity: %w", err)
		}
	}
	if v, ok := raw["color"]; ok {
		if err := json.Unmarshal(v, &l.Color); err != nil {
			return fmt.Errorf("light color: %w", err)
		}
	}
	if v, ok := raw["position"]; ok {
		if err := json.Unmarshal(v, &l.Position); err != nil {
			return fmt.Errorf("light position: %w", err)
		}
	}
	for _, k := range lightKeys {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil
	}
	l.Extra = make(map[string]any, len(raw))
	for k, v := range raw {
		var value any
		if err := json.Unmarshal(v, &value); err != nil {
			return fmt.Errorf("light %s: %w", k, err)
		}
		l.Extra[k] = value
	}
	return nil
}

// Normalized passes the light through its JSON form, so Extra holds the
// decoded types (float64, string, bool, []any, map[string]any) a loaded
// record would carry.
func (l Light) Normalized() (Light, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return Light{}, err
	}
	var out Light
	if err := json.Unmarshal(data, &out); err != nil {
		return Light{}, err
	}
	return out, nil
}

// Normalized returns a deep copy with every light normalized.
func (l Lighting) Normalized() (Lighting, error) {
	if l == nil {
		return nil, nil
	}
	out := make(Lighting, len(l))
	for name, light := range l {
		n, err := light.Normalized()
		if err != nil {
			return nil, fmt.Errorf("light %s: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}

// Names returns the light names in a stable order.
func (l Lighting) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone copies the map and its lights deeply enough that edits to the copy
// never reach the original.
func (l Lighting) Clone() Lighting {
	if l == nil {
		return nil
	}
	out := make(Lighting, len(l))
	for name, light := range l {
		c := light
		if light.Visible != nil {
			v := *light.Visible
			c.Visible = &v
		}
		if light.Intensity != nil {
			v := *light.Intensity
			c.Intensity = &v
		}
		if light.Position != nil {
			v := *light.Position
			c.Position = &v
		}
		if light.Extra != nil {
			c.Extra = make(map[string]any, len(light.Extra))
			for k, v := range light.Extra {
				c.Extra[k] = v
			}
		}
		out[name] = c
	}
	return out
}

// DefaultLighting is the rig used when nothing was saved.
func DefaultLighting() Lighting {
	on := true
	return Lighting{
		"ambient": {Visible: &on, Intensity: ptr(0.6), Color: "#ffffff"},
		"directional": {
			Visible:   &on,
			Intensity: ptr(0.8),
			Color:     "#ffffff",
			Position:  &Vec3Record{X: 100, Y: 200, Z: 300},
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}
