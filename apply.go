package aspen

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/aspen3d/aspen/vmath"
)

// The applier assigns declared props onto mounted objects by field name.
// Setter tables are built per concrete type on first use and cached, so
// steady-state updates pay one map lookup per prop instead of a reflection
// walk. A failed prop logs a warning and is skipped; the rest still apply.

// fieldSetter writes one coerced value into a struct field.
type fieldSetter struct {
	index []int
	set   func(dst reflect.Value, v any) error
}

type setterTable map[string]fieldSetter

// setterTables caches one table per concrete object type
// (no lock; scene mutation is single-threaded between ticks).
var setterTables = map[reflect.Type]setterTable{}

func tableFor(t reflect.Type) setterTable {
	if tbl, ok := setterTables[t]; ok {
		return tbl
	}
	tbl := setterTable{}
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || f.PkgPath != "" {
			continue
		}
		tbl[lowerFirst(f.Name)] = fieldSetter{index: f.Index, set: setterForType(f.Type)}
	}
	setterTables[t] = tbl
	return tbl
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

var (
	colorType = reflect.TypeOf(Color{})
	vec3Type  = reflect.TypeOf(vmath.Vector3{})
	vec2Type  = reflect.TypeOf(vmath.Vector2{})
)

// setterForType binds a coercion to the field's type at table build time.
func setterForType(t reflect.Type) func(dst reflect.Value, v any) error {
	switch t {
	case colorType:
		return func(dst reflect.Value, v any) error {
			c, ok := coerceColor(v)
			if !ok {
				return fmt.Errorf("cannot convert %T to color", v)
			}
			dst.Set(reflect.ValueOf(c))
			return nil
		}
	case vec3Type:
		return func(dst reflect.Value, v any) error {
			vec, ok := coerceVec3(v)
			if !ok {
				return fmt.Errorf("cannot convert %T to vector3", v)
			}
			dst.Set(reflect.ValueOf(vec))
			return nil
		}
	case vec2Type:
		return func(dst reflect.Value, v any) error {
			vec, ok := coerceVec2(v)
			if !ok {
				return fmt.Errorf("cannot convert %T to vector2", v)
			}
			dst.Set(reflect.ValueOf(vec))
			return nil
		}
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return func(dst reflect.Value, v any) error {
			f, ok := coerceFloat(v)
			if !ok {
				return fmt.Errorf("cannot convert %T to %s", v, dst.Type())
			}
			dst.SetFloat(f)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(dst reflect.Value, v any) error {
			f, ok := coerceFloat(v)
			if !ok {
				return fmt.Errorf("cannot convert %T to %s", v, dst.Type())
			}
			dst.SetInt(int64(f))
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(dst reflect.Value, v any) error {
			f, ok := coerceFloat(v)
			if !ok || f < 0 {
				return fmt.Errorf("cannot convert %T to %s", v, dst.Type())
			}
			dst.SetUint(uint64(f))
			return nil
		}
	case reflect.Bool:
		return func(dst reflect.Value, v any) error {
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("cannot convert %T to bool", v)
			}
			dst.SetBool(b)
			return nil
		}
	case reflect.String:
		return func(dst reflect.Value, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("cannot convert %T to string", v)
			}
			dst.SetString(s)
			return nil
		}
	}
	return setAssignable
}

// setAssignable is the fallback for pointer, interface, and slice fields:
// assign when the dynamic type fits, zero on nil.
func setAssignable(dst reflect.Value, v any) error {
	if v == nil {
		switch dst.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		return fmt.Errorf("cannot assign nil to %s", dst.Type())
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(dst.Type()) {
		return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
	}
	dst.Set(rv)
	return nil
}

// --- Value coercions ---

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func coerceVec3(v any) (vmath.Vector3, bool) {
	switch val := v.(type) {
	case vmath.Vector3:
		return val, true
	case []any:
		if len(val) != 3 {
			return vmath.Vector3{}, false
		}
		x, okX := coerceFloat(val[0])
		y, okY := coerceFloat(val[1])
		z, okZ := coerceFloat(val[2])
		if !okX || !okY || !okZ {
			return vmath.Vector3{}, false
		}
		return vmath.V3(float32(x), float32(y), float32(z)), true
	}
	// A bare number means uniform, mirroring scale={2}.
	if n, ok := coerceFloat(v); ok {
		return vmath.V3Scalar(float32(n)), true
	}
	return vmath.Vector3{}, false
}

func coerceVec2(v any) (vmath.Vector2, bool) {
	switch val := v.(type) {
	case vmath.Vector2:
		return val, true
	case []any:
		if len(val) != 2 {
			return vmath.Vector2{}, false
		}
		x, okX := coerceFloat(val[0])
		y, okY := coerceFloat(val[1])
		if !okX || !okY {
			return vmath.Vector2{}, false
		}
		return vmath.V2(float32(x), float32(y)), true
	}
	return vmath.Vector2{}, false
}

// coerceColor accepts a Color, a hex string ("#f80" or "#ff8800"), a packed
// 0xRRGGBB int, or a [r, g, b] slice of 0..1 floats.
func coerceColor(v any) (Color, bool) {
	switch val := v.(type) {
	case Color:
		return val, true
	case string:
		return parseHexColor(val)
	case int:
		return colorFromPacked(uint32(val)), true
	case int64:
		return colorFromPacked(uint32(val)), true
	case uint32:
		return colorFromPacked(val), true
	case []any:
		if len(val) != 3 {
			return Color{}, false
		}
		r, okR := coerceFloat(val[0])
		g, okG := coerceFloat(val[1])
		b, okB := coerceFloat(val[2])
		if !okR || !okG || !okB {
			return Color{}, false
		}
		return Color{R: float32(r), G: float32(g), B: float32(b)}, true
	}
	return Color{}, false
}

func colorFromPacked(rgb uint32) Color {
	return Color{
		R: float32((rgb>>16)&0xff) / 255,
		G: float32((rgb>>8)&0xff) / 255,
		B: float32(rgb&0xff) / 255,
	}
}

func parseHexColor(s string) (Color, bool) {
	if !strings.HasPrefix(s, "#") {
		return Color{}, false
	}
	s = s[1:]
	hex := func(c byte) (uint32, bool) {
		switch {
		case c >= '0' && c <= '9':
			return uint32(c - '0'), true
		case c >= 'a' && c <= 'f':
			return uint32(c-'a') + 10, true
		case c >= 'A' && c <= 'F':
			return uint32(c-'A') + 10, true
		}
		return 0, false
	}
	switch len(s) {
	case 3:
		var n [3]uint32
		for i := 0; i < 3; i++ {
			d, ok := hex(s[i])
			if !ok {
				return Color{}, false
			}
			n[i] = d<<4 | d
		}
		return colorFromPacked(n[0]<<16 | n[1]<<8 | n[2]), true
	case 6:
		var packed uint32
		for i := 0; i < 6; i++ {
			d, ok := hex(s[i])
			if !ok {
				return Color{}, false
			}
			packed = packed<<4 | d
		}
		return colorFromPacked(packed), true
	}
	return Color{}, false
}

// --- Prop application ---

// reservedProp reports whether the name is consumed by the bridge rather
// than applied as a field.
func reservedProp(name string) bool {
	switch name {
	case "key", "args", "attach", "makeDefault":
		return true
	}
	return isHandlerProp(name)
}

func isHandlerProp(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "on") && name[2] >= 'A' && name[2] <= 'Z'
}

// handlerKinds maps handler prop names to event kinds.
var handlerKinds = map[string]EventKind{
	"onPointerOver": EventPointerOver,
	"onPointerOut":  EventPointerOut,
	"onPointerMove": EventPointerMove,
	"onPointerDown": EventPointerDown,
	"onPointerUp":   EventPointerUp,
	"onClick":       EventClick,
	"onWheel":       EventWheel,
}

// ApplyProps assigns props onto obj by name. Keys apply in sorted order, so
// a whole-value prop ("position") lands before its dotted parts
// ("position.x") when both are present. Failures log a warning on lg and
// skip the prop; reserved names are ignored. Passing the same props twice
// leaves the object unchanged.
func ApplyProps(obj Object, props Props, lg *zap.Logger) {
	if obj == nil || len(props) == 0 {
		return
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		if reservedProp(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rv := reflect.ValueOf(obj).Elem()
	applied := false
	for _, k := range keys {
		if err := applyPath(rv, strings.Split(k, "."), props[k]); err != nil {
			lg.Warn("prop apply failed",
				zap.String("type", obj.Base().TypeTag()),
				zap.String("prop", k),
				zap.Error(err))
			continue
		}
		applied = true
	}
	if applied {
		obj.Base().MarkDirty()
	}
}

// applyPath descends dotted segments through struct and pointer fields and
// sets the leaf. Pointer hops let paths cross into attached objects, as in
// "material.color" on a mesh.
func applyPath(rv reflect.Value, path []string, v any) error {
	tbl := tableFor(rv.Type())
	ent, ok := tbl[path[0]]
	if !ok {
		return fmt.Errorf("unknown property %q on %s", path[0], rv.Type())
	}
	f := rv.FieldByIndex(ent.index)
	if len(path) == 1 {
		return ent.set(f, v)
	}
	for f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return fmt.Errorf("property %q is nil", path[0])
		}
		f = f.Elem()
	}
	if f.Kind() != reflect.Struct {
		return fmt.Errorf("property %q does not support nested paths", path[0])
	}
	return applyPath(f, path[1:], v)
}

// applyHandlers replaces the object's event handlers with those declared in
// props. Handlers absent from props are removed, so an update that drops
// onClick really drops it.
func applyHandlers(obj Object, props Props, lg *zap.Logger) {
	base := obj.Base()
	base.clearHandlers()
	for name, v := range props {
		kind, ok := handlerKinds[name]
		if !ok {
			if isHandlerProp(name) && lg != nil {
				lg.Warn("unknown handler prop", zap.String("prop", name))
			}
			continue
		}
		switch fn := v.(type) {
		case Handler:
			base.SetHandler(kind, fn)
		case func(Event) Propagation:
			base.SetHandler(kind, fn)
		case nil:
			// declared but disabled
		default:
			if lg != nil {
				lg.Warn("handler prop is not a Handler",
					zap.String("prop", name),
					zap.String("got", fmt.Sprintf("%T", v)))
			}
		}
	}
}
