package mathutil

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-12

var (
	// GroundNormal is the normal of the ground plane objects rest on.
	GroundNormal = Vec3{0, 0, 1}

	// WorldUp is the up vector used to orient look-at cameras.
	WorldUp = Vec3{0, 0, 1}
)
