package loaders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
)

var ErrEmptyOutline = errors.New("outline has no drawable path")

// Path is one closed contour of the outline with its style.
type Path struct {
	Fill   string
	Stroke string
	Points []math.Vec2
}

// Outline is the flat shape that gets extruded.
type Outline struct {
	Name  string
	Paths []Path
}

// Extents returns the planar bounds of every point, with z spanning the
// extrusion depth.
func (o *Outline) Extents(depth float64) math.Extents3D {
	e := math.NewExtents3DEmpty()
	for _, p := range o.Paths {
		for _, pt := range p.Points {
			e = e.Extend(math.NewVec3(pt.X, pt.Y, 0))
			e = e.Extend(math.NewVec3(pt.X, pt.Y, depth))
		}
	}
	return e
}

type outlineDocument struct {
	Name  string         `toml:"name"`
	Paths []pathDocument `toml:"path"`
}

type pathDocument struct {
	Fill   string      `toml:"fill"`
	Stroke string      `toml:"stroke"`
	Points [][]float64 `toml:"points"`
}

// OutlineLoader reads TOML outline documents from disk:
//
//	name = "badge"
//	[[path]]
//	fill = "#d04040"
//	stroke = "none"
//	points = [[0.0, 0.0], [100.0, 0.0], [100.0, 60.0]]
type OutlineLoader struct{}

func (ol *OutlineLoader) Load(ctx context.Context, url string) (*Outline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(url, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	outline, err := ol.parseOutlineData(data)
	if err != nil {
		return nil, fmt.Errorf("outline %s: %w", path, err)
	}
	core.LogDebug("loaded outline '%s' with %d paths", outline.Name, len(outline.Paths))
	return outline, nil
}

func (ol *OutlineLoader) parseOutlineData(data []byte) (*Outline, error) {
	var doc outlineDocument
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	outline := &Outline{Name: doc.Name}
	for i, pd := range doc.Paths {
		p := Path{Fill: pd.Fill, Stroke: pd.Stroke}
		for j, pt := range pd.Points {
			if len(pt) != 2 {
				return nil, fmt.Errorf("path %d point %d: want [x, y], got %d values", i, j, len(pt))
			}
			p.Points = append(p.Points, math.NewVec2(pt[0], pt[1]))
		}
		if len(p.Points) < 2 {
			core.LogWarn("outline '%s': skipping path %d with %d points", doc.Name, i, len(p.Points))
			continue
		}
		outline.Paths = append(outline.Paths, p)
	}
	if len(outline.Paths) == 0 {
		return nil, ErrEmptyOutline
	}
	return outline, nil
}
