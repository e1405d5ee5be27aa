// Package canopytest provides a recording host adapter and a runtime
// tester for exercising the Canopy runtime without a real engine.
//
// The adapter keeps an ordered log of every mutation the reconciler emits,
// which is what most runtime tests assert on: which calls happened, in what
// order, and just as often that none happened at all.
package canopytest

import (
	"fmt"

	"github.com/canopy-ui/canopy/pkg/element"
	"github.com/canopy-ui/canopy/pkg/host"
)

// Call is one recorded adapter mutation.
type Call struct {
	Op     string // "create", "append", "remove", "patch"
	Tag    string
	Node   *Node
	Parent *Node
	Index  int
	Prev   element.Props
	Next   element.Props
}

// Node is a fake host node: a plain tree of props.
type Node struct {
	NodeKind host.Kind
	Tag      string
	Props    element.Props
	Children []*Node
	Removed  bool

	// IntrinsicW and IntrinsicH are returned by Measure.
	IntrinsicW float64
	IntrinsicH float64
}

// Kind implements host.Node.
func (n *Node) Kind() host.Kind { return n.NodeKind }

// PropFloat returns a numeric prop of the node, or 0 when absent.
func (n *Node) PropFloat(key string) float64 {
	v, _ := n.Props.Float(key)
	return v
}

// Adapter is a recording host.Adapter.
type Adapter struct {
	Calls []Call

	// MeasureFunc overrides intrinsic measurement. When nil, nodes report
	// their IntrinsicW/IntrinsicH fields.
	MeasureFunc func(n *Node) (float64, float64)

	// CreateErr, when non-nil, is returned from every Create call. Used to
	// test host-error propagation.
	CreateErr error
}

// NewContainer returns a detached group node to mount roots under.
func NewContainer() *Node {
	return &Node{NodeKind: host.KindGroup, Tag: "container", Props: element.Props{}}
}

// Create implements host.Adapter.
func (a *Adapter) Create(tag string, props element.Props) (host.Node, error) {
	if a.CreateErr != nil {
		return nil, a.CreateErr
	}
	kind, ok := host.KindForTag(tag)
	if !ok {
		return nil, fmt.Errorf("canopytest: unknown primitive tag %q", tag)
	}
	n := &Node{NodeKind: kind, Tag: tag, Props: cloneProps(props)}
	a.Calls = append(a.Calls, Call{Op: "create", Tag: tag, Node: n, Next: props})
	return n, nil
}

// Append implements host.Adapter. A child already attached under the parent
// is detached first, so indexed re-appends model keyed reordering.
func (a *Adapter) Append(parent, child host.Node, index int) {
	p := parent.(*Node)
	c := child.(*Node)
	for i, existing := range p.Children {
		if existing == c {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	if index < 0 || index > len(p.Children) {
		index = len(p.Children)
	}
	p.Children = append(p.Children[:index], append([]*Node{c}, p.Children[index:]...)...)
	a.Calls = append(a.Calls, Call{Op: "append", Tag: c.Tag, Node: c, Parent: p, Index: index})
}

// Remove implements host.Adapter.
func (a *Adapter) Remove(parent, child host.Node) {
	p := parent.(*Node)
	c := child.(*Node)
	for i, existing := range p.Children {
		if existing == c {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	c.Removed = true
	a.Calls = append(a.Calls, Call{Op: "remove", Tag: c.Tag, Node: c, Parent: p})
}

// Patch implements host.Adapter, applying the delta between prev and next.
func (a *Adapter) Patch(node host.Node, prev, next element.Props) {
	n := node.(*Node)
	if n.Props == nil {
		n.Props = element.Props{}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			delete(n.Props, k)
		}
	}
	for k, v := range next {
		n.Props[k] = v
	}
	a.Calls = append(a.Calls, Call{Op: "patch", Tag: n.Tag, Node: n, Prev: prev, Next: next})
}

// Measure implements host.Adapter.
func (a *Adapter) Measure(node host.Node) (float64, float64) {
	n := node.(*Node)
	if a.MeasureFunc != nil {
		return a.MeasureFunc(n)
	}
	return n.IntrinsicW, n.IntrinsicH
}

// Reset clears the recorded call log without touching the node tree.
func (a *Adapter) Reset() {
	a.Calls = nil
}

// CallsOf returns the recorded calls with the given op, in order.
func (a *Adapter) CallsOf(op string) []Call {
	var out []Call
	for _, c := range a.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// CountOf returns how many calls with the given op were recorded.
func (a *Adapter) CountOf(op string) int {
	return len(a.CallsOf(op))
}

// FindByTag returns all nodes with the given tag under root, depth-first.
func FindByTag(root *Node, tag string) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Tag == tag {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

func cloneProps(p element.Props) element.Props {
	out := make(element.Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
