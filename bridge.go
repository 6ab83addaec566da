package aspen

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// The bridge turns a declared Elem tree into mutations on the mounted
// object graph. Siblings match by identity: an explicit key, or the
// element's type plus its ordinal among same-typed siblings. A matched
// object is kept and repropped; an unmatched one is disposed. Changing an
// element's args (compared with reflect.DeepEqual) recreates the object,
// since args exist only at construction.
//
// Objects added imperatively from handlers are invisible to the diff: the
// bridge only touches objects it created.

// inferSlot returns the attach slot for an element. An explicit attach
// prop wins; otherwise geometry and material types attach by convention.
func inferSlot(e *Elem) string {
	if s := e.attachSlot(); s != "" {
		return s
	}
	if strings.HasSuffix(e.Type, "Geometry") {
		return "geometry"
	}
	if strings.HasSuffix(e.Type, "Material") {
		return "material"
	}
	return ""
}

// commitChildren diffs declared elements against parent's bridge-managed
// children and attachments. On error the committed prefix stays mounted;
// the scene is still consistent, just stale.
func (rt *Root) commitChildren(parent Object, elems []*Elem) error {
	live := elems[:0:0]
	for _, e := range elems {
		if e != nil {
			live = append(live, e)
		}
	}

	// Name each element within this sibling set.
	names := make([]string, len(live))
	ordinals := map[string]int{}
	seen := map[string]bool{}
	for i, e := range live {
		var name string
		if k := e.Key(); k != "" {
			name = "key:" + k
		} else {
			n := ordinals[e.Type]
			ordinals[e.Type] = n + 1
			name = e.Type + "#" + strconv.Itoa(n)
		}
		if seen[name] {
			rt.lg.Warn("duplicate sibling key, treating as unkeyed",
				zap.String("key", name))
			name += "~" + strconv.Itoa(i)
		}
		seen[name] = true
		names[i] = name
	}

	// Index the previously committed entries.
	pb := parent.Base()
	old := map[string]Object{}
	for _, c := range pb.children {
		if rn := c.Base().recon.name; rn != "" {
			old[rn] = c
		}
	}
	for _, a := range pb.attached {
		if rn := a.Base().recon.name; rn != "" {
			old[rn] = a
		}
	}

	// Match: same name, type, slot, and args means reuse.
	matched := make([]Object, len(live))
	used := map[string]bool{}
	for i, e := range live {
		o, ok := old[names[i]]
		if !ok {
			continue
		}
		ob := o.Base()
		if ob.typeTag == e.Type && ob.recon.slot == inferSlot(e) &&
			reflect.DeepEqual(ob.recon.args, e.args()) {
			matched[i] = o
			used[names[i]] = true
		}
	}

	// Delete first so recreated slots are clear before reassignment.
	for name, o := range old {
		if !used[name] {
			rt.deleteManaged(parent, o)
		}
	}

	desired := make([]Object, 0, len(live))
	for i, e := range live {
		obj := matched[i]
		slot := inferSlot(e)
		if obj == nil {
			var err error
			obj, err = construct(e.Type, e.args())
			if err != nil {
				return err
			}
			b := obj.Base()
			b.recon = reconInfo{name: names[i], args: e.args(), slot: slot}
			if slot == "" {
				pb.AddChild(obj)
			} else if err := rt.attachManaged(parent, obj, slot); err != nil {
				disposeTree(obj)
				return err
			}
		}
		ApplyProps(obj, e.Props, rt.lg)
		applyHandlers(obj, e.Props, rt.lg)
		obj.Base().recon.props = e.Props
		if cam, ok := obj.(*Camera); ok && e.makeDefault() {
			rt.setCamera(cam)
		}
		if slot == "" {
			desired = append(desired, obj)
		}
		if err := rt.commitChildren(obj, e.Children); err != nil {
			return err
		}
	}

	reorderManaged(pb, desired)
	return nil
}

// attachManaged assigns child into the named slot on parent. Slots are
// struct fields resolved through the applier, so dotted slots like
// "material.map" reach into already-attached objects.
func (rt *Root) attachManaged(parent, child Object, slot string) error {
	rv := reflect.ValueOf(parent).Elem()
	if err := applyPath(rv, strings.Split(slot, "."), child); err != nil {
		return fmt.Errorf("attach %q on %s: %w", slot, parent.Base().TypeTag(), err)
	}
	pb := parent.Base()
	pb.attached = append(pb.attached, child)
	return nil
}

// deleteManaged unmounts one bridge-created object: detach or unparent,
// then dispose (shared subtrees are detached alive). A deleted active
// camera falls back to the mount's own.
func (rt *Root) deleteManaged(parent, o Object) {
	b := o.Base()
	if b.recon.slot != "" {
		rv := reflect.ValueOf(parent).Elem()
		if err := applyPath(rv, strings.Split(b.recon.slot, "."), nil); err != nil {
			rt.lg.Warn("detach failed", zap.String("slot", b.recon.slot), zap.Error(err))
		}
		parent.Base().removeAttached(o)
	} else {
		parent.Base().RemoveChild(o)
	}
	if cam, ok := o.(*Camera); ok && rt.camera == cam {
		rt.camera = rt.ownCamera
	}
	disposeTree(o)
}

// reorderManaged moves bridge-managed children into desired order, leaving
// imperatively added children where they sit.
func reorderManaged(pb *ObjectBase, desired []Object) {
	pos := 0
	for idx := 0; idx < len(pb.children) && pos < len(desired); idx++ {
		c := pb.children[idx]
		if c.Base().recon.name == "" {
			continue
		}
		if c != desired[pos] {
			pb.SetChildIndex(desired[pos], idx)
		}
		pos++
	}
}
