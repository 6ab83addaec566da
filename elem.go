package aspen

// Props holds the declared properties for one element. Keys are property
// names as the applier understands them ("position", "material.color",
// "onClick"). A handful of names are reserved and never reach the applier:
//
//	key         string   identity for sibling matching across updates
//	args        []any    constructor arguments; changing them recreates
//	attach      string   slot on the parent to assign into ("geometry")
//	makeDefault bool     on cameras, take over as the mount's camera
//	on*         Handler  pointer event handlers
type Props map[string]any

// Elem is one declared node. Trees of Elems are cheap throwaway values:
// every Update builds a fresh tree and the bridge diffs it against the
// mounted objects.
type Elem struct {
	Type     string
	Props    Props
	Children []*Elem
}

// E builds an element. Nil children are allowed and skipped, so callers
// can express conditional subtrees inline:
//
//	aspen.E("group", nil,
//		aspen.E("mesh", aspen.Props{"args": ...}),
//		maybeMarker(),  // returns nil when hidden
//	)
func E(typeTag string, props Props, children ...*Elem) *Elem {
	return &Elem{Type: typeTag, Props: props, Children: children}
}

// Key returns the element's declared key, or "" when unkeyed.
func (e *Elem) Key() string {
	if e == nil || e.Props == nil {
		return ""
	}
	if k, ok := e.Props["key"].(string); ok {
		return k
	}
	return ""
}

// args returns the declared constructor arguments, or nil.
func (e *Elem) args() []any {
	if e.Props == nil {
		return nil
	}
	if a, ok := e.Props["args"].([]any); ok {
		return a
	}
	return nil
}

// attachSlot returns the declared attach target, or "" when the element
// mounts as a regular scene child.
func (e *Elem) attachSlot() string {
	if e.Props == nil {
		return ""
	}
	if s, ok := e.Props["attach"].(string); ok {
		return s
	}
	return ""
}

// makeDefault reports whether a camera element asks to become the mount's
// active camera.
func (e *Elem) makeDefault() bool {
	if e.Props == nil {
		return false
	}
	b, _ := e.Props["makeDefault"].(bool)
	return b
}
