package canopytest

import (
	"testing"

	"github.com/canopy-ui/canopy/pkg/core"
	"github.com/canopy-ui/canopy/pkg/element"
)

const (
	// DefaultWidth is the default logical width of the test surface.
	DefaultWidth = 800
	// DefaultHeight is the default logical height of the test surface.
	DefaultHeight = 600
)

// RuntimeTester mounts element trees against a recording adapter and
// drives update cycles. Use NewTester to get one wired to t.Cleanup.
type RuntimeTester struct {
	t         *testing.T
	Adapter   *Adapter
	Container *Node
	Root      *core.Root

	width  float64
	height float64
}

// NewTester creates a tester with the default surface size.
func NewTester(t *testing.T) *RuntimeTester {
	rt := &RuntimeTester{
		t:         t,
		Adapter:   &Adapter{},
		Container: NewContainer(),
		width:     DefaultWidth,
		height:    DefaultHeight,
	}
	t.Cleanup(func() {
		if rt.Root != nil {
			rt.Root.Unmount()
		}
	})
	return rt
}

// SetSize overrides the surface size. Call before Mount.
func (rt *RuntimeTester) SetSize(width, height float64) {
	rt.width = width
	rt.height = height
}

// Mount mounts the element tree, failing the test on error.
func (rt *RuntimeTester) Mount(el *element.Element) *core.Root {
	rt.t.Helper()
	root, err := core.Mount(el, rt.Container, rt.Adapter, rt.width, rt.height)
	if err != nil {
		rt.t.Fatalf("Mount: %v", err)
	}
	rt.Root = root
	return root
}

// Update reconciles a new tree against the mounted one, failing the test
// on error.
func (rt *RuntimeTester) Update(el *element.Element) {
	rt.t.Helper()
	if rt.Root == nil {
		rt.t.Fatal("Update called before Mount")
	}
	if err := rt.Root.Update(el); err != nil {
		rt.t.Fatalf("Update: %v", err)
	}
}

// MustFind returns the single node with the given tag, failing the test
// when there are zero or several.
func (rt *RuntimeTester) MustFind(tag string) *Node {
	rt.t.Helper()
	nodes := FindByTag(rt.Container, tag)
	if len(nodes) != 1 {
		rt.t.Fatalf("expected exactly one %q node, found %d", tag, len(nodes))
	}
	return nodes[0]
}
