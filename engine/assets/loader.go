package assets

import (
	"context"

	"github.com/spaghettifunk/extrudo/engine/assets/loaders"
	"github.com/spaghettifunk/extrudo/engine/math"
)

// Source loads the flat outline behind a URL. Implementations may block;
// the AssetManager always calls them from a worker.
type Source interface {
	Load(ctx context.Context, url string) (*loaders.Outline, error)
}

// SourceFunc adapts a function into a Source.
type SourceFunc func(ctx context.Context, url string) (*loaders.Outline, error)

func (f SourceFunc) Load(ctx context.Context, url string) (*loaders.Outline, error) {
	return f(ctx, url)
}

// Geometry is a loaded outline plus the local-space bounds of its extrusion.
// Bounds are computed once per load and never change afterwards.
type Geometry struct {
	URL     string
	Outline *loaders.Outline
	Depth   float64
	Bounds  math.Extents3D
}
