package core

import (
	"github.com/canopy-ui/canopy/pkg/flow"
)

// TreeNode is a point-in-time view of one committed instance, detached
// from the live tree. Inspection tooling serializes these instead of
// touching instances directly.
type TreeNode struct {
	Type      string
	Component bool
	Key       any
	Depth     int
	Dirty     bool
	HookCount int
	HasBox    bool
	Box       flow.Box
	Children  []TreeNode
}

// maxSnapshotDepth bounds recursion when snapshotting malformed trees.
const maxSnapshotDepth = 500

// TreeSnapshot copies the committed instance tree into plain data. Call
// it between commits (the inspect server does, since handlers never run
// inside a commit on the runtime goroutine). Returns nil when nothing is
// mounted.
func (rt *Root) TreeSnapshot() *TreeNode {
	if rt.instance == nil {
		return nil
	}
	node := snapshotInstance(rt.instance, 0)
	return &node
}

func snapshotInstance(in *Instance, depth int) TreeNode {
	node := TreeNode{
		Type:      in.typeName(),
		Component: in.isComponent(),
		Key:       in.key,
		Depth:     in.depth,
		Dirty:     in.dirty,
	}
	if in.hooks != nil {
		node.HookCount = len(in.hooks.slots)
	}
	if in.hostNode != nil {
		node.HasBox = in.hasBox
		node.Box = in.box
	}
	if depth < maxSnapshotDepth {
		for _, child := range in.children {
			node.Children = append(node.Children, snapshotInstance(child, depth+1))
		}
	}
	return node
}
