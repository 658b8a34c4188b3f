package viewstate

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
	"golang.org/x/image/colornames"
)

const (
	DEFAULT_MODEL_COLOR      = "#4a90d9"
	DEFAULT_BACKGROUND_COLOR = "#f0f0f0"
	DEFAULT_EXTRUSION_DEPTH  = 20.0
	DEFAULT_CURVE_SEGMENTS   = 12
	MAX_CURVE_SEGMENTS       = 64
)

// RenderingParams are the material and extrusion settings saved alongside
// the transform.
type RenderingParams struct {
	ModelColor      string  `json:"modelColor"`
	BackgroundColor string  `json:"backgroundColor"`
	ExtrusionDepth  float64 `json:"extrusionDepth"`
	BevelEnabled    bool    `json:"bevelEnabled"`
	CurveSegments   int     `json:"curveSegments"`
	Metalness       float64 `json:"metalness"`
	Roughness       float64 `json:"roughness"`
}

func DefaultRendering() RenderingParams {
	return RenderingParams{
		ModelColor:      DEFAULT_MODEL_COLOR,
		BackgroundColor: DEFAULT_BACKGROUND_COLOR,
		ExtrusionDepth:  DEFAULT_EXTRUSION_DEPTH,
		BevelEnabled:    false,
		CurveSegments:   DEFAULT_CURVE_SEGMENTS,
		Metalness:       0.1,
		Roughness:       0.6,
	}
}

// UnmarshalJSON fills fields missing from data with their defaults.
func (r *RenderingParams) UnmarshalJSON(data []byte) error {
	type plain RenderingParams
	p := plain(DefaultRendering())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = RenderingParams(p)
	return nil
}

// Normalized clamps the numeric fields into range and swaps unparseable
// colours for the defaults.
func (r RenderingParams) Normalized() RenderingParams {
	def := DefaultRendering()
	if _, err := ParseColor(r.ModelColor); err != nil {
		core.LogWarn("model colour %q: %s", r.ModelColor, err.Error())
		r.ModelColor = def.ModelColor
	}
	if _, err := ParseColor(r.BackgroundColor); err != nil {
		core.LogWarn("background colour %q: %s", r.BackgroundColor, err.Error())
		r.BackgroundColor = def.BackgroundColor
	}
	if r.ExtrusionDepth <= 0 || !math.IsFinite(r.ExtrusionDepth) {
		r.ExtrusionDepth = def.ExtrusionDepth
	}
	r.CurveSegments = math.Clamp(r.CurveSegments, 1, MAX_CURVE_SEGMENTS)
	r.Metalness = clampUnit(r.Metalness, def.Metalness)
	r.Roughness = clampUnit(r.Roughness, def.Roughness)
	return r
}

// ModelRGBA returns the parsed model colour.
func (r RenderingParams) ModelRGBA() color.RGBA {
	c, err := ParseColor(r.ModelColor)
	if err != nil {
		c, _ = ParseColor(DEFAULT_MODEL_COLOR)
	}
	return c
}

func (r RenderingParams) BackgroundRGBA() color.RGBA {
	c, err := ParseColor(r.BackgroundColor)
	if err != nil {
		c, _ = ParseColor(DEFAULT_BACKGROUND_COLOR)
	}
	return c
}

// ParseColor accepts "#rrggbb", "#rgb" or a CSS colour name.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("unknown colour %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("malformed hex colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("malformed hex colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func clampUnit(v, fallback float64) float64 {
	if !math.IsFinite(v) {
		return fallback
	}
	return math.Clamp(v, 0.0, 1.0)
}
