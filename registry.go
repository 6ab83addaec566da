package aspen

import (
	"errors"
	"fmt"
	"sort"
)

// Constructor builds an object from declared constructor args. Args arrive
// as raw prop values; numbers may be int, float32, or float64.
type Constructor func(args []any) (Object, error)

// ErrUnknownType is wrapped by mount and update errors when an element
// names a tag no constructor was registered for.
var ErrUnknownType = errors.New("unknown element type")

// typeRegistry maps element tags to constructors
// (no lock — registration happens during init, before any mount).
var typeRegistry = map[string]Constructor{}

// RegisterType registers a constructor for an element tag, extending the
// vocabulary the bridge understands. Call it from init or before the first
// mount. Registering an empty tag, a nil constructor, or a duplicate tag
// panics.
func RegisterType(tag string, fn Constructor) {
	if tag == "" || fn == nil {
		panic("aspen: RegisterType requires a tag and a constructor")
	}
	if _, exists := typeRegistry[tag]; exists {
		panic("aspen: type " + tag + " registered twice")
	}
	typeRegistry[tag] = fn
}

// Types returns all registered element tags, sorted.
func Types() []string {
	tags := make([]string, 0, len(typeRegistry))
	for tag := range typeRegistry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func construct(tag string, args []any) (Object, error) {
	fn, ok := typeRegistry[tag]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, tag)
	}
	obj, err := fn(args)
	if err != nil {
		return nil, fmt.Errorf("construct %q: %w", tag, err)
	}
	return obj, nil
}

// --- Constructor arg helpers ---

func argFloat(args []any, i int, def float32) (float32, error) {
	if i >= len(args) {
		return def, nil
	}
	f, ok := coerceFloat(args[i])
	if !ok {
		return 0, fmt.Errorf("arg %d: expected number, got %T", i, args[i])
	}
	return float32(f), nil
}

func argInt(args []any, i int, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	f, ok := coerceFloat(args[i])
	if !ok {
		return 0, fmt.Errorf("arg %d: expected number, got %T", i, args[i])
	}
	return int(f), nil
}

func argColor(args []any, i int, def Color) (Color, error) {
	if i >= len(args) {
		return def, nil
	}
	c, ok := coerceColor(args[i])
	if !ok {
		return Color{}, fmt.Errorf("arg %d: expected color, got %T", i, args[i])
	}
	return c, nil
}

// --- Built-in types ---

func init() {
	RegisterType("group", func(args []any) (Object, error) {
		return NewGroup(""), nil
	})
	RegisterType("mesh", func(args []any) (Object, error) {
		return NewMesh("", nil, nil), nil
	})

	// Cameras: args are [fov, near, far] and [orthoSize, near, far].
	RegisterType("perspectiveCamera", func(args []any) (Object, error) {
		c := NewPerspectiveCamera("")
		var err error
		if c.Fov, err = argFloat(args, 0, 75); err != nil {
			return nil, err
		}
		if c.Near, err = argFloat(args, 1, 0.1); err != nil {
			return nil, err
		}
		if c.Far, err = argFloat(args, 2, 1000); err != nil {
			return nil, err
		}
		return c, nil
	})
	RegisterType("orthographicCamera", func(args []any) (Object, error) {
		c := NewOrthographicCamera("")
		var err error
		if c.OrthoSize, err = argFloat(args, 0, 5); err != nil {
			return nil, err
		}
		if c.Near, err = argFloat(args, 1, 0.1); err != nil {
			return nil, err
		}
		if c.Far, err = argFloat(args, 2, 1000); err != nil {
			return nil, err
		}
		return c, nil
	})

	// Lights: args are [color, intensity] plus [distance, decay] for point.
	RegisterType("ambientLight", func(args []any) (Object, error) {
		color, err := argColor(args, 0, ColorWhite)
		if err != nil {
			return nil, err
		}
		intensity, err := argFloat(args, 1, 1)
		if err != nil {
			return nil, err
		}
		return NewAmbientLight("", color, intensity), nil
	})
	RegisterType("directionalLight", func(args []any) (Object, error) {
		color, err := argColor(args, 0, ColorWhite)
		if err != nil {
			return nil, err
		}
		intensity, err := argFloat(args, 1, 1)
		if err != nil {
			return nil, err
		}
		return NewDirectionalLight("", color, intensity), nil
	})
	RegisterType("pointLight", func(args []any) (Object, error) {
		color, err := argColor(args, 0, ColorWhite)
		if err != nil {
			return nil, err
		}
		intensity, err := argFloat(args, 1, 1)
		if err != nil {
			return nil, err
		}
		l := NewPointLight("", color, intensity)
		if l.Distance, err = argFloat(args, 2, 0); err != nil {
			return nil, err
		}
		if l.Decay, err = argFloat(args, 3, 2); err != nil {
			return nil, err
		}
		return l, nil
	})

	// Geometries: args mirror the constructor dimensions.
	RegisterType("boxGeometry", func(args []any) (Object, error) {
		w, err := argFloat(args, 0, 1)
		if err != nil {
			return nil, err
		}
		h, err := argFloat(args, 1, 1)
		if err != nil {
			return nil, err
		}
		d, err := argFloat(args, 2, 1)
		if err != nil {
			return nil, err
		}
		return NewBoxGeometry(w, h, d), nil
	})
	RegisterType("planeGeometry", func(args []any) (Object, error) {
		w, err := argFloat(args, 0, 1)
		if err != nil {
			return nil, err
		}
		h, err := argFloat(args, 1, 1)
		if err != nil {
			return nil, err
		}
		return NewPlaneGeometry(w, h), nil
	})
	RegisterType("sphereGeometry", func(args []any) (Object, error) {
		radius, err := argFloat(args, 0, 1)
		if err != nil {
			return nil, err
		}
		wSegs, err := argInt(args, 1, 32)
		if err != nil {
			return nil, err
		}
		hSegs, err := argInt(args, 2, 16)
		if err != nil {
			return nil, err
		}
		return NewSphereGeometry(radius, wSegs, hSegs), nil
	})
	RegisterType("cylinderGeometry", func(args []any) (Object, error) {
		rTop, err := argFloat(args, 0, 1)
		if err != nil {
			return nil, err
		}
		rBottom, err := argFloat(args, 1, 1)
		if err != nil {
			return nil, err
		}
		h, err := argFloat(args, 2, 1)
		if err != nil {
			return nil, err
		}
		segs, err := argInt(args, 3, 32)
		if err != nil {
			return nil, err
		}
		return NewCylinderGeometry(rTop, rBottom, h, segs), nil
	})
	RegisterType("coneGeometry", func(args []any) (Object, error) {
		radius, err := argFloat(args, 0, 1)
		if err != nil {
			return nil, err
		}
		h, err := argFloat(args, 1, 1)
		if err != nil {
			return nil, err
		}
		segs, err := argInt(args, 2, 32)
		if err != nil {
			return nil, err
		}
		return NewConeGeometry(radius, h, segs), nil
	})
	RegisterType("torusGeometry", func(args []any) (Object, error) {
		radius, err := argFloat(args, 0, 1)
		if err != nil {
			return nil, err
		}
		tube, err := argFloat(args, 1, 0.4)
		if err != nil {
			return nil, err
		}
		radial, err := argInt(args, 2, 12)
		if err != nil {
			return nil, err
		}
		tubular, err := argInt(args, 3, 48)
		if err != nil {
			return nil, err
		}
		return NewTorusGeometry(radius, tube, radial, tubular), nil
	})

	RegisterType("meshBasicMaterial", func(args []any) (Object, error) {
		return NewBasicMaterial(""), nil
	})
	RegisterType("meshLambertMaterial", func(args []any) (Object, error) {
		return NewLambertMaterial(""), nil
	})
}
