package math

import m "math"

// NewExtents3DEmpty returns inverted extents that any point will grow.
func NewExtents3DEmpty() Extents3D {
	return Extents3D{
		Min: Vec3{m.MaxFloat64, m.MaxFloat64, m.MaxFloat64},
		Max: Vec3{-m.MaxFloat64, -m.MaxFloat64, -m.MaxFloat64},
	}
}

// Extend grows the extents to include p.
func (e Extents3D) Extend(p Vec3) Extents3D {
	e.Min = Vec3{m.Min(e.Min.X, p.X), m.Min(e.Min.Y, p.Y), m.Min(e.Min.Z, p.Z)}
	e.Max = Vec3{m.Max(e.Max.X, p.X), m.Max(e.Max.Y, p.Y), m.Max(e.Max.Z, p.Z)}
	return e
}

// IsValid reports whether min <= max on every axis.
func (e Extents3D) IsValid() bool {
	return e.Min.X <= e.Max.X && e.Min.Y <= e.Max.Y && e.Min.Z <= e.Max.Z &&
		e.Min.IsFinite() && e.Max.IsFinite()
}

func (e Extents3D) Size() Vec3 {
	return e.Max.Sub(e.Min)
}

func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

// Offset returns the extents moved by delta.
func (e Extents3D) Offset(delta Vec3) Extents3D {
	return Extents3D{Min: e.Min.Add(delta), Max: e.Max.Add(delta)}
}

// Recentered returns the extents moved so their center sits at the origin,
// along with the offset that was applied.
func (e Extents3D) Recentered() (Extents3D, Vec3) {
	offset := e.Center().MulScalar(-1)
	return e.Offset(offset), offset
}

func (e Extents3D) Compare(other Extents3D, tolerance float64) bool {
	return e.Min.Compare(other.Min, tolerance) && e.Max.Compare(other.Max, tolerance)
}
