package core

import (
	"github.com/canopy-ui/canopy/pkg/element"
	"github.com/canopy-ui/canopy/pkg/flow"
	"github.com/canopy-ui/canopy/pkg/host"
)

// lifecycle tracks the state machine of an instance:
// unmounted -> mounted -> updating -> unmounted.
type lifecycle int

const (
	lifecycleUnmounted lifecycle = iota
	lifecycleMounted
	lifecycleUpdating
)

func (l lifecycle) String() string {
	switch l {
	case lifecycleMounted:
		return "mounted"
	case lifecycleUpdating:
		return "updating"
	default:
		return "unmounted"
	}
}

// Instance is the committed, stateful counterpart of an element.
//
// A component instance owns a hook context and renders exactly one child
// (the tree returned by its function, possibly nil). A primitive instance
// exclusively owns a host node and mirrors its element's children. The
// instance tree matches the previously committed element tree one-to-one
// until the next reconciliation pass.
type Instance struct {
	root     *Root
	typ      any
	props    element.Props
	key      any
	depth    int
	parent   *Instance
	children []*Instance
	state    lifecycle
	dirty    bool

	// Component instances only.
	hooks    *HookContext
	childEls []*element.Element

	// Primitive instances only.
	hostNode host.Node
	style    flow.Style
	box      flow.Box
	lastBox  flow.Box
	hasBox   bool
}

// isComponent reports whether the instance hosts a component function.
func (in *Instance) isComponent() bool {
	_, ok := in.typ.(element.Component)
	return ok
}

// typeName returns a printable type name for diagnostics.
func (in *Instance) typeName() string {
	return element.TypeName(in.typ)
}

// markDirty schedules this instance's subtree for re-render.
func (in *Instance) markDirty() {
	if in.state == lifecycleUnmounted {
		return
	}
	in.root.scheduleRender(in)
}

// hostAncestorNode returns the host node this instance's host children
// attach to: the nearest primitive ancestor's node, or the root container.
func (in *Instance) hostAncestorNode() host.Node {
	for p := in.parent; p != nil; p = p.parent {
		if p.hostNode != nil {
			return p.hostNode
		}
	}
	return in.root.container
}

// firstHostNode returns the topmost host node inside this instance's
// subtree: the instance's own node for primitives, or the rendered child's
// for components. Nil when the subtree renders nothing.
func (in *Instance) firstHostNode() host.Node {
	if in.hostNode != nil {
		return in.hostNode
	}
	for _, child := range in.children {
		if n := child.firstHostNode(); n != nil {
			return n
		}
	}
	return nil
}

// collectHostInstances appends the topmost primitive instances inside each
// subtree in order, looking through component wrappers but not descending
// past a primitive.
func collectHostInstances(children []*Instance, dst *[]*Instance) {
	for _, child := range children {
		if child.hostNode != nil {
			*dst = append(*dst, child)
			continue
		}
		collectHostInstances(child.children, dst)
	}
}

// Style implements flow.Target for primitive instances.
func (in *Instance) Style() flow.Style { return in.style }

// Children implements flow.Target: layout children are the topmost
// primitive instances below this one, with component wrappers skipped.
func (in *Instance) Children() []flow.Target {
	var hosts []*Instance
	collectHostInstances(in.children, &hosts)
	targets := make([]flow.Target, len(hosts))
	for i, h := range hosts {
		targets[i] = h
	}
	return targets
}

// Measure implements flow.Target using the host adapter's intrinsic size.
func (in *Instance) Measure() (float64, float64) {
	if in.hostNode == nil {
		return 0, 0
	}
	return in.root.adapter.Measure(in.hostNode)
}

// SetBox implements flow.Target. Boxes are written only by the layout pass.
func (in *Instance) SetBox(b flow.Box) { in.box = b }

// Box implements flow.Target.
func (in *Instance) Box() flow.Box { return in.box }
