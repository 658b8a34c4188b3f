package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float64
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float64
}

/** @brief a 4x4 matrix, typically used to represent object transformations. */
type Mat4 struct {
	/** @brief The matrix elements, column-major; translation lives in 12..14. */
	Data [16]float64
}

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

/**
 * @brief Represents the wrapping transform applied to static geometry:
 * a position, a rotation about the view-normal (Z) axis and a uniform
 * scale. NOTE: The properties of this should not be edited directly, but
 * done via the setters to ensure proper matrix generation.
 */
type Transform struct {
	/** @brief The position in the world. */
	position Vec3
	/** @brief The rotation about Z in radians. Never wrapped. */
	rotationZ float64
	/** @brief The uniform scale. Always > 0. */
	scale float64
	/**
	 * @brief Indicates if the position, rotation or scale have changed,
	 * indicating that the local matrix needs to be recalculated.
	 */
	isDirty bool
	/** @brief The cached composed matrix. */
	local Mat4
}
