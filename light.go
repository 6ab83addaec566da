package aspen

// --- Lights ---

// AmbientLight adds a constant term to every shaded material, independent
// of surface orientation.
type AmbientLight struct {
	ObjectBase

	Color     Color
	Intensity float32
}

func NewAmbientLight(name string, color Color, intensity float32) *AmbientLight {
	l := &AmbientLight{Color: color, Intensity: intensity}
	initBase(&l.ObjectBase, l, "ambientLight")
	l.Name = name
	return l
}

// DirectionalLight shines parallel rays from its world position toward the
// origin, like a distant sun. Only the direction matters; the position's
// magnitude has no effect on brightness.
type DirectionalLight struct {
	ObjectBase

	Color     Color
	Intensity float32
}

func NewDirectionalLight(name string, color Color, intensity float32) *DirectionalLight {
	l := &DirectionalLight{Color: color, Intensity: intensity}
	initBase(&l.ObjectBase, l, "directionalLight")
	l.Name = name
	return l
}

// PointLight radiates from its world position with distance falloff.
// Distance zero means no range cutoff. Decay is the falloff exponent;
// 2 is physically correct, lower values fade more gently.
type PointLight struct {
	ObjectBase

	Color     Color
	Intensity float32
	Distance  float32
	Decay     float32
}

func NewPointLight(name string, color Color, intensity float32) *PointLight {
	l := &PointLight{Color: color, Intensity: intensity, Decay: 2}
	initBase(&l.ObjectBase, l, "pointLight")
	l.Name = name
	return l
}
