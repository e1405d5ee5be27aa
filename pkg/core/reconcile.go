package core

import (
	"fmt"

	"github.com/canopy-ui/canopy/pkg/element"
	"github.com/canopy-ui/canopy/pkg/errors"
	"github.com/canopy-ui/canopy/pkg/host"
)

// mountInstance creates and mounts a new instance for an element.
// hostParent is the host node the subtree's primitives attach to, and
// hostIndex is the insertion position among that node's host children.
func (rt *Root) mountInstance(el *element.Element, parent *Instance, hostParent host.Node, hostIndex int) (*Instance, error) {
	inst := &Instance{
		root:   rt,
		typ:    el.Type,
		props:  el.Props,
		key:    el.Key,
		parent: parent,
		state:  lifecycleMounted,
	}
	if parent != nil {
		inst.depth = parent.depth + 1
	}

	if fn, ok := el.Type.(element.Component); ok {
		inst.hooks = newHookContext(inst)
		inst.childEls = el.Children
		rendered := invokeComponent(inst, fn)
		if rendered != nil {
			child, err := rt.mountInstance(rendered, inst, hostParent, hostIndex)
			if err != nil {
				return nil, err
			}
			inst.children = []*Instance{child}
		}
		return inst, nil
	}

	tag, ok := el.Type.(string)
	if !ok {
		return nil, &errors.RuntimeError{
			Op:   "core.mountInstance",
			Kind: errors.KindBuild,
			Err:  fmt.Errorf("element type %T is neither a tag nor a component", el.Type),
		}
	}

	style, err := styleFromProps(el.Props)
	if err != nil {
		return nil, err
	}
	node, err := rt.adapter.Create(tag, el.Props)
	if err != nil {
		return nil, err
	}
	inst.style = style
	inst.hostNode = node
	rt.countCreate()
	rt.adapter.Append(hostParent, node, hostIndex)
	rt.countAppend()

	for i, childEl := range el.Children {
		child, err := rt.mountInstance(childEl, inst, node, i)
		if err != nil {
			return nil, err
		}
		inst.children = append(inst.children, child)
	}
	return inst, nil
}

// updateInstance re-renders an existing instance for a matching element.
// The hook context is preserved; for primitives, only changed props are
// patched through the adapter. hostParent and hostIndex locate the
// subtree's topmost host node; they are passed down by the caller rather
// than recomputed, because mid-reconciliation the committed tree no longer
// reflects the host's current order.
func (rt *Root) updateInstance(inst *Instance, el *element.Element, hostParent host.Node, hostIndex int) error {
	inst.state = lifecycleUpdating
	defer func() { inst.state = lifecycleMounted }()

	inst.key = el.Key

	if fn, ok := el.Type.(element.Component); ok {
		inst.props = el.Props
		inst.childEls = el.Children
		rendered := invokeComponent(inst, fn)
		var next []*element.Element
		if rendered != nil {
			next = []*element.Element{rendered}
		}
		return rt.reconcileChildren(inst, hostParent, hostIndex, next)
	}

	style, err := styleFromProps(el.Props)
	if err != nil {
		return err
	}
	if !propsEqual(inst.props, el.Props) {
		rt.adapter.Patch(inst.hostNode, inst.props, el.Props)
		rt.countPatch()
	}
	inst.props = el.Props
	inst.style = style
	return rt.reconcileChildren(inst, inst.hostNode, 0, el.Children)
}

// removeInstance unmounts a subtree: effect cleanups run deepest-first,
// then each primitive's host node is removed. hostParent is the node the
// instance's topmost primitives are attached to.
func (rt *Root) removeInstance(inst *Instance, hostParent host.Node) {
	childHostParent := hostParent
	if inst.hostNode != nil {
		childHostParent = inst.hostNode
	}
	for _, child := range inst.children {
		rt.removeInstance(child, childHostParent)
	}
	inst.children = nil

	if inst.hooks != nil {
		inst.hooks.runCleanups()
		inst.hooks.markDead()
	}
	if inst.hostNode != nil {
		rt.adapter.Remove(hostParent, inst.hostNode)
		rt.countRemove()
		inst.hostNode = nil
	}
	inst.state = lifecycleUnmounted
	inst.dirty = false
}

// reconcileChildren diffs a parent's committed child instances against the
// next element children and applies the minimal set of host mutations.
//
// Children are matched by key, defaulting to the positional index when no
// key is set. Positional identity cannot survive insertions or removals in
// the middle of an unkeyed list; that is an accepted limitation, not a bug.
//
// hostStart is the index in hostParent at which the parent's run of host
// children begins. That run is mirrored in a working slice so every emitted
// Append index reflects the host's current order: skipped siblings and
// children pending removal still occupy their old slots mid-pass, so
// indices computed from the new order alone would land moved and inserted
// nodes in the wrong place.
func (rt *Root) reconcileChildren(parent *Instance, hostParent host.Node, hostStart int, nextEls []*element.Element) error {
	prev := parent.children

	prevByKey := make(map[any]*Instance, len(prev))
	for i, child := range prev {
		k := child.key
		if k == nil {
			k = i
		}
		prevByKey[k] = child
	}

	// order mirrors the parent's run of hostParent's children: one entry per
	// child instance currently contributing a topmost host node.
	order := make([]*Instance, 0, len(prev))
	for _, child := range prev {
		if child.firstHostNode() != nil {
			order = append(order, child)
		}
	}
	indexIn := func(inst *Instance) int {
		for i, c := range order {
			if c == inst {
				return i
			}
		}
		return -1
	}
	removeAt := func(i int) {
		order = append(order[:i], order[i+1:]...)
	}
	insertAt := func(inst *Instance, i int) {
		order = append(order[:i], append([]*Instance{inst}, order[i:]...)...)
	}

	next := make([]*Instance, 0, len(nextEls))
	// Processed children with host nodes occupy order[:placed], already in
	// their final relative positions; everything at or past placed is still
	// in old order.
	placed := 0
	for i, el := range nextEls {
		k := el.Key
		if k == nil {
			k = i
		}

		old, found := prevByKey[k]
		if found && typesMatch(old.typ, el.Type) {
			delete(prevByKey, k)
			hadNode := old.firstHostNode() != nil
			if hadNode {
				// An unprocessed child never sits before the placed boundary,
				// so any position past it means the child moved. Re-append at
				// the boundary; instance and hook context survive the move.
				if cur := indexIn(old); cur != placed {
					removeAt(cur)
					insertAt(old, placed)
					rt.adapter.Append(hostParent, old.firstHostNode(), hostStart+placed)
					rt.countAppend()
				}
			}
			if err := rt.updateInstance(old, el, hostParent, hostStart+placed); err != nil {
				return err
			}
			// A component child can gain or lose its topmost host node
			// across an update (render turning nil or non-nil).
			hasNode := old.firstHostNode() != nil
			if hasNode && !hadNode {
				insertAt(old, placed)
			} else if hadNode && !hasNode {
				removeAt(indexIn(old))
			}
			if hasNode {
				placed++
			}
			next = append(next, old)
			continue
		}
		if found {
			// Same key, different type: the old instance cannot be reused.
			delete(prevByKey, k)
			if cur := indexIn(old); cur >= 0 {
				removeAt(cur)
			}
			rt.removeInstance(old, hostParent)
		}

		mounted, err := rt.mountInstance(el, parent, hostParent, hostStart+placed)
		if err != nil {
			return err
		}
		if mounted.firstHostNode() != nil {
			insertAt(mounted, placed)
			placed++
		}
		next = append(next, mounted)
	}

	// Anything left in the map is no longer present in the new children.
	for i, old := range prev {
		k := old.key
		if k == nil {
			k = i
		}
		if leftover, ok := prevByKey[k]; ok && leftover == old {
			rt.removeInstance(old, hostParent)
		}
	}

	parent.children = next
	return nil
}

// rerenderComponent re-runs a dirty component instance in place.
func (rt *Root) rerenderComponent(inst *Instance) error {
	fn, ok := inst.typ.(element.Component)
	if !ok {
		// Primitives have no build step; a dirty primitive only needs the
		// layout/sync phases that follow the build loop.
		return nil
	}
	inst.state = lifecycleUpdating
	defer func() { inst.state = lifecycleMounted }()

	rendered := invokeComponent(inst, fn)
	var next []*element.Element
	if rendered != nil {
		next = []*element.Element{rendered}
	}
	return rt.reconcileChildren(inst, inst.hostAncestorNode(), rt.hostStartIndex(inst), next)
}

// hostStartIndex returns the index at which inst's subtree attaches under
// its host ancestor node: the number of host nodes contributed by subtrees
// that precede it. Only valid on a committed tree, where instance order and
// host order agree; mid-reconciliation callers receive the index from their
// parent instead.
func (rt *Root) hostStartIndex(inst *Instance) int {
	// Find the nearest primitive ancestor; its children bound the search.
	var scope []*Instance
	anchor := inst.parent
	for anchor != nil && anchor.hostNode == nil {
		anchor = anchor.parent
	}
	if anchor != nil {
		scope = anchor.children
	} else if rt.instance != nil {
		scope = []*Instance{rt.instance}
	}

	count, _ := countHostsBefore(scope, inst)
	return count
}

// countHostsBefore counts topmost host nodes in a DFS over the scope,
// stopping when target is reached. The second result reports whether the
// target was found.
func countHostsBefore(scope []*Instance, target *Instance) (int, bool) {
	count := 0
	for _, child := range scope {
		if child == target {
			return count, true
		}
		if child.hostNode != nil {
			// No primitive sits strictly between the target and its host
			// ancestor, so a foreign primitive subtree cannot contain it.
			count++
			continue
		}
		n, found := countHostsBefore(child.children, target)
		count += n
		if found {
			return count, true
		}
	}
	return count, false
}

// typesMatch reports whether a committed instance type can be updated in
// place by an element type.
func typesMatch(a, b any) bool {
	return element.TypesMatch(a, b)
}

// propsEqual compares two prop maps by shallow equality, the same relation
// used for hook dependency lists.
func propsEqual(a, b element.Props) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !equalDep(av, bv) {
			return false
		}
	}
	return true
}
