package aspen

import (
	"testing"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aspen3d/aspen/vmath"
)

func colorNear(a, b Color) bool {
	return math32.Abs(a.R-b.R) < 1e-3 && math32.Abs(a.G-b.G) < 1e-3 && math32.Abs(a.B-b.B) < 1e-3
}

// --- Field coercion ---

func TestApplyFloatProps(t *testing.T) {
	mat := NewBasicMaterial("m")
	ApplyProps(mat, Props{"opacity": 0.5}, nil)
	if mat.Opacity != 0.5 {
		t.Errorf("Opacity = %v, want 0.5", mat.Opacity)
	}

	ApplyProps(mat, Props{"opacity": 1}, nil) // plain int
	if mat.Opacity != 1 {
		t.Errorf("Opacity = %v, want 1 from int", mat.Opacity)
	}
}

func TestApplyBoolAndString(t *testing.T) {
	mat := NewBasicMaterial("m")
	ApplyProps(mat, Props{"wireframe": true, "doubleSide": true, "name": "renamed"}, nil)
	if !mat.Wireframe || !mat.DoubleSide {
		t.Error("bool props should apply")
	}
	if mat.Name != "renamed" {
		t.Errorf("Name = %q, want %q", mat.Name, "renamed")
	}
}

func TestApplyVec3FromSlice(t *testing.T) {
	g := NewGroup("g")
	ApplyProps(g, Props{"position": []any{1, 2.5, 3}}, nil)
	want := vmath.V3(1, 2.5, 3)
	if g.Position.Distance(want) > 1e-5 {
		t.Errorf("Position = %v, want %v", g.Position, want)
	}
}

func TestApplyVec3FromScalar(t *testing.T) {
	g := NewGroup("g")
	ApplyProps(g, Props{"scale": 2}, nil)
	if g.Scale != vmath.V3Scalar(2) {
		t.Errorf("Scale = %v, want uniform 2", g.Scale)
	}
}

func TestApplyColorForms(t *testing.T) {
	cases := []struct {
		name string
		val  any
		want Color
	}{
		{"struct", Color{R: 1, G: 0.5}, Color{R: 1, G: 0.5}},
		{"hex6", "#ff8800", Color{R: 1, G: 0x88 / 255.0, B: 0}},
		{"hex3", "#f80", Color{R: 1, G: 0x88 / 255.0, B: 0}},
		{"packed", 0xff8800, Color{R: 1, G: 0x88 / 255.0, B: 0}},
		{"slice", []any{0.25, 0.5, 0.75}, Color{R: 0.25, G: 0.5, B: 0.75}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mat := NewBasicMaterial("m")
			ApplyProps(mat, Props{"color": tc.val}, nil)
			if !colorNear(mat.Color, tc.want) {
				t.Errorf("Color = %v, want %v", mat.Color, tc.want)
			}
		})
	}
}

// --- Dotted paths ---

func TestApplyDottedPath(t *testing.T) {
	g := NewGroup("g")
	g.SetPosition(1, 2, 3)
	ApplyProps(g, Props{"position.x": 9}, nil)
	if g.Position != vmath.V3(9, 2, 3) {
		t.Errorf("Position = %v, want (9, 2, 3)", g.Position)
	}
}

func TestApplyDottedPathThroughPointer(t *testing.T) {
	mat := NewBasicMaterial("m")
	m := NewMesh("mesh", NewPlaneGeometry(1, 1), mat)
	ApplyProps(m, Props{"material.color": "#ff0000"}, nil)
	if !colorNear(mat.Color, Color{R: 1}) {
		t.Errorf("material.Color = %v, want red", mat.Color)
	}
}

func TestApplyWholeThenPart(t *testing.T) {
	// Sorted application lands "position" before "position.x".
	g := NewGroup("g")
	ApplyProps(g, Props{
		"position":   []any{1, 1, 1},
		"position.x": 5,
	}, nil)
	if g.Position != vmath.V3(5, 1, 1) {
		t.Errorf("Position = %v, want (5, 1, 1)", g.Position)
	}
}

func TestApplyIdempotent(t *testing.T) {
	mat := NewBasicMaterial("m")
	m := NewMesh("mesh", NewPlaneGeometry(1, 1), mat)
	props := Props{
		"position":         []any{1, 2, 3},
		"position.x":       5,
		"scale":            2,
		"material.color":   "#ff8800",
		"material.opacity": 0.5,
	}
	ApplyProps(m, props, nil)
	pos, scale, col, op := m.Position, m.Scale, mat.Color, mat.Opacity

	ApplyProps(m, props, nil)
	if m.Position != pos || m.Scale != scale || mat.Color != col || mat.Opacity != op {
		t.Errorf("second apply changed state: pos %v scale %v color %v opacity %v",
			m.Position, m.Scale, mat.Color, mat.Opacity)
	}
}

// --- Pointer fields ---

func TestApplyNilClearsPointer(t *testing.T) {
	tex := &Texture{}
	initBase(&tex.ObjectBase, tex, "texture")
	mat := NewBasicMaterial("m")
	mat.Map = tex

	ApplyProps(mat, Props{"map": nil}, nil)
	if mat.Map != nil {
		t.Error("nil prop should clear the pointer field")
	}

	ApplyProps(mat, Props{"map": tex}, nil)
	if mat.Map != tex {
		t.Error("pointer prop should assign")
	}
}

// --- Failure handling ---

func TestApplyUnknownPropWarnsAndSkips(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	lg := zap.New(core)

	g := NewGroup("g")
	ApplyProps(g, Props{"bogus": 1, "position.x": 4}, lg)

	if g.Position.X != 4 {
		t.Error("good prop should still apply after a failed one")
	}
	entries := logs.FilterMessage("prop apply failed").All()
	if len(entries) != 1 {
		t.Fatalf("warnings = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["prop"]; got != "bogus" {
		t.Errorf("warned prop = %v, want bogus", got)
	}
}

func TestApplyWrongTypeWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	lg := zap.New(core)

	mat := NewBasicMaterial("m")
	ApplyProps(mat, Props{"opacity": "not a number"}, lg)

	if mat.Opacity != 1 {
		t.Errorf("Opacity = %v, should be unchanged", mat.Opacity)
	}
	if logs.FilterMessage("prop apply failed").Len() != 1 {
		t.Error("type mismatch should warn")
	}
}

func TestApplyReservedPropsIgnored(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	lg := zap.New(core)

	g := NewGroup("g")
	ApplyProps(g, Props{
		"key":         "a",
		"args":        []any{1},
		"attach":      "geometry",
		"makeDefault": true,
		"onClick":     func(Event) Propagation { return Continue },
	}, lg)

	if logs.Len() != 0 {
		t.Errorf("reserved props should not warn, got %d entries", logs.Len())
	}
}

// --- MarkDirty ---

func TestApplyMarksTransformDirty(t *testing.T) {
	g := NewGroup("g")
	updateWorldTree(g, vmath.Identity())

	ApplyProps(g, Props{"position": []any{3, 0, 0}}, nil)
	updateWorldTree(g, vmath.Identity())

	if w := g.WorldMatrix(); w[12] != 3 {
		t.Errorf("world x = %v, want 3; apply should mark the transform dirty", w[12])
	}
}

// --- Handlers ---

func TestApplyHandlersInstallAndRemove(t *testing.T) {
	g := NewGroup("g")
	fired := false
	applyHandlers(g, Props{"onClick": func(Event) Propagation {
		fired = true
		return Continue
	}}, nil)

	h := g.Handler(EventClick)
	if h == nil {
		t.Fatal("onClick should install a handler")
	}
	h(Event{})
	if !fired {
		t.Error("installed handler should run")
	}

	applyHandlers(g, Props{}, nil)
	if g.Handler(EventClick) != nil {
		t.Error("an update without onClick should remove it")
	}
}

func TestApplyHandlersNilDisables(t *testing.T) {
	g := NewGroup("g")
	applyHandlers(g, Props{"onClick": nil}, nil)
	if g.Handler(EventClick) != nil {
		t.Error("nil handler prop should leave no handler")
	}
}

func TestApplyHandlersUnknownWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	lg := zap.New(core)

	g := NewGroup("g")
	applyHandlers(g, Props{"onTeleport": func(Event) Propagation { return Continue }}, lg)

	if logs.FilterMessage("unknown handler prop").Len() != 1 {
		t.Error("unknown handler prop should warn")
	}
}

func TestApplyHandlersWrongTypeWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	lg := zap.New(core)

	g := NewGroup("g")
	applyHandlers(g, Props{"onClick": "not a func"}, lg)

	if g.Handler(EventClick) != nil {
		t.Error("non-handler value should not install")
	}
	if logs.FilterMessage("handler prop is not a Handler").Len() != 1 {
		t.Error("wrong handler type should warn")
	}
}
