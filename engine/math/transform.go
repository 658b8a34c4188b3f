package math

// TransformCreate returns the identity transform.
func TransformCreate() *Transform {
	return TransformFromPositionRotationScale(NewVec3Zero(), 0, 1)
}

func TransformFromPosition(position Vec3) *Transform {
	return TransformFromPositionRotationScale(position, 0, 1)
}

func TransformFromPositionRotationScale(position Vec3, rotationZ float64, scale float64) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotationZ, scale)
	return t
}

func (t *Transform) Position() Vec3 {
	return t.position
}

func (t *Transform) RotationZ() float64 {
	return t.rotationZ
}

func (t *Transform) Scale() float64 {
	return t.scale
}

func (t *Transform) SetPosition(position Vec3) {
	t.position = position
	t.isDirty = true
}

func (t *Transform) Translate(translation Vec3) {
	t.position = t.position.Add(translation)
	t.isDirty = true
}

func (t *Transform) SetRotationZ(rotationZ float64) {
	t.rotationZ = rotationZ
	t.isDirty = true
}

func (t *Transform) SetScale(scale float64) {
	t.scale = scale
	t.isDirty = true
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotationZ float64, scale float64) {
	t.position = position
	t.rotationZ = rotationZ
	t.scale = scale
	t.isDirty = true
}

// Clone returns an independent copy.
func (t *Transform) Clone() *Transform {
	c := *t
	return &c
}

/**
 * @brief Returns the composed matrix translate ∘ rotateZ ∘ scale: a local
 * point is scaled first, rotated about Z second and translated last.
 * Every local-to-world conversion in the engine goes through this matrix.
 */
func (t *Transform) Matrix() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.isDirty {
		s := NewMat4Scale(Vec3{t.scale, t.scale, t.scale})
		r := NewMat4EulerZ(t.rotationZ)
		tr := NewMat4Translation(t.position)
		t.local = s.Mul(r).Mul(tr)
		t.isDirty = false
	}
	return t.local
}

// Apply maps a local-space point into world space.
func (t *Transform) Apply(local Vec3) Vec3 {
	return local.Transform(t.Matrix())
}

// Unapply maps a world-space point back into local space.
func (t *Transform) Unapply(world Vec3) Vec3 {
	return world.Transform(t.Matrix().Inverse())
}

// Equal compares position, rotation and scale within tolerance.
func (t *Transform) Equal(other *Transform, tolerance float64) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.position.Compare(other.position, tolerance) &&
		abs(t.rotationZ-other.rotationZ) <= tolerance &&
		abs(t.scale-other.scale) <= tolerance
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
