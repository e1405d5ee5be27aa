package core_test

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/canopy-ui/canopy/pkg/canopytest"
	"github.com/canopy-ui/canopy/pkg/core"
	"github.com/canopy-ui/canopy/pkg/element"
)

// app is a representative tree with a component wrapper, used by the
// idempotence tests. Building it fresh each time mirrors how callers
// produce a new element tree every render.
var app element.Component = func(element.Props, []*element.Element) *element.Element {
	return element.New("rect", element.Props{"direction": "column", "gap": 4.0},
		element.Text("title", nil),
		element.New("rect", element.Props{"width": 40.0, "height": 12.0, "fill": "#336699"}),
	)
}

func TestIdenticalTreeProducesNoMutations(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(element.New(app, nil))
	tester.Adapter.Reset()

	tester.Update(element.New(app, nil))

	if got := len(tester.Adapter.Calls); got != 0 {
		t.Errorf("re-rendering an identical tree emitted %d adapter calls, want 0", got)
	}
}

func TestPropChangePatchesWithoutStructuralMutations(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(element.New("rect", element.Props{"width": 40.0, "height": 12.0, "fill": "#336699"}))
	tester.Adapter.Reset()

	tester.Update(element.New("rect", element.Props{"width": 40.0, "height": 12.0, "fill": "#993366"}))

	if got := tester.Adapter.CountOf("patch"); got != 1 {
		t.Errorf("patch count = %d, want 1", got)
	}
	for _, op := range []string{"create", "append", "remove"} {
		if got := tester.Adapter.CountOf(op); got != 0 {
			t.Errorf("%s count = %d, want 0", op, got)
		}
	}
	rect := tester.MustFind("rect")
	if fill, _ := rect.Props.String("fill"); fill != "#993366" {
		t.Errorf("fill = %q, want \"#993366\"", fill)
	}
}

func list(keys ...string) *element.Element {
	children := make([]any, len(keys))
	for i, k := range keys {
		children[i] = element.New("rect", element.Props{"key": k, "width": 10.0, "height": 10.0})
	}
	return element.New("rect", element.Props{"direction": "column"}, children...)
}

func TestKeyedReorderEmitsNoCreatesOrRemoves(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(list("a", "b", "c"))
	tester.Adapter.Reset()

	tester.Update(list("c", "a", "b"))

	if got := tester.Adapter.CountOf("create"); got != 0 {
		t.Errorf("create count = %d, want 0", got)
	}
	if got := tester.Adapter.CountOf("remove"); got != 0 {
		t.Errorf("remove count = %d, want 0", got)
	}
	if got := tester.Adapter.CountOf("append"); got == 0 {
		t.Error("expected indexed re-appends for the moved children")
	}
}

// hostKeys reads the key props of a node's host children, in host order.
func hostKeys(n *canopytest.Node) string {
	keys := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		k, _ := c.Props.String("key")
		keys = append(keys, k)
	}
	return strings.Join(keys, " ")
}

func TestKeyedReorderAppliesNewHostOrder(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(list("a", "b", "c"))

	// Rotating three children trips index math that only tracks the new
	// order: the untouched siblings still hold their old host slots when the
	// moved child is re-appended.
	tester.Update(list("c", "a", "b"))
	parent := tester.Container.Children[0]
	if got := hostKeys(parent); got != "c a b" {
		t.Errorf("host order after rotation = %q, want %q", got, "c a b")
	}

	tester.Update(list("c", "b", "a"))
	if got := hostKeys(parent); got != "c b a" {
		t.Errorf("host order after swap = %q, want %q", got, "c b a")
	}
}

func TestKeyedInsertionMidListKeepsHostOrder(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(list("a", "c"))
	tester.Adapter.Reset()

	tester.Update(list("a", "b", "c"))

	parent := tester.Container.Children[0]
	if got := hostKeys(parent); got != "a b c" {
		t.Errorf("host order after insertion = %q, want %q", got, "a b c")
	}
	if got := tester.Adapter.CountOf("create"); got != 1 {
		t.Errorf("create count = %d, want 1", got)
	}
	if got := tester.Adapter.CountOf("remove"); got != 0 {
		t.Errorf("remove count = %d, want 0", got)
	}
}

func TestKeyedRemovalWithInsertionKeepsHostOrder(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(list("a", "b"))

	// The removed child still occupies its host slot while the surviving
	// children are placed, so indices must come from the host's current
	// state rather than from the new order alone.
	tester.Update(list("b", "c"))

	parent := tester.Container.Children[0]
	if got := hostKeys(parent); got != "b c" {
		t.Errorf("host order after removal and insertion = %q, want %q", got, "b c")
	}
}

func TestKeyedReorderPreservesComponentState(t *testing.T) {
	tester := canopytest.NewTester(t)

	setters := map[string]*core.Setter[int]{}
	var item element.Component = func(props element.Props, _ []*element.Element) *element.Element {
		label, _ := props.String("label")
		n, set := core.UseState(0)
		setters[label] = set
		return element.Text(fmt.Sprintf("%s:%d", label, n), nil)
	}
	row := func(labels ...string) *element.Element {
		children := make([]any, len(labels))
		for i, l := range labels {
			children[i] = element.New(item, element.Props{"key": l, "label": l})
		}
		return element.New("rect", element.Props{"direction": "row"}, children...)
	}

	tester.Mount(row("a", "b"))
	setters["b"].Set(3)
	tester.Adapter.Reset()

	tester.Update(row("b", "a"))

	if got := tester.Adapter.CountOf("create"); got != 0 {
		t.Errorf("create count = %d, want 0: keyed moves must reuse instances", got)
	}
	contents := map[string]bool{}
	for _, n := range canopytest.FindByTag(tester.Container, "text") {
		c, _ := n.Props.String("content")
		contents[c] = true
	}
	if !contents["b:3"] {
		t.Errorf("state did not follow key b after reorder: %v", contents)
	}
	if !contents["a:0"] {
		t.Errorf("state did not follow key a after reorder: %v", contents)
	}
}

func TestSameKeyDifferentTypeRemounts(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(element.New("rect", nil,
		element.New("rect", element.Props{"key": "a", "width": 10.0, "height": 10.0}),
	))
	tester.Adapter.Reset()

	tester.Update(element.New("rect", nil,
		element.New("text", element.Props{"key": "a", "content": "x"}),
	))

	if got := tester.Adapter.CountOf("remove"); got != 1 {
		t.Errorf("remove count = %d, want 1", got)
	}
	if got := tester.Adapter.CountOf("create"); got != 1 {
		t.Errorf("create count = %d, want 1", got)
	}
}

func TestChildRemoval(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(list("a", "b", "c"))
	tester.Adapter.Reset()

	tester.Update(list("a", "c"))

	if got := tester.Adapter.CountOf("remove"); got != 1 {
		t.Errorf("remove count = %d, want 1", got)
	}
	if got := tester.Adapter.CountOf("create"); got != 0 {
		t.Errorf("create count = %d, want 0", got)
	}
}

func TestUnkeyedChildrenMatchByPosition(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(element.New("rect", nil,
		element.New("rect", element.Props{"width": 10.0, "height": 10.0}),
		element.Text("hello", nil),
	))
	tester.Adapter.Reset()

	// Swapping unkeyed children of different types cannot be detected as a
	// move; both positions remount.
	tester.Update(element.New("rect", nil,
		element.Text("hello", nil),
		element.New("rect", element.Props{"width": 10.0, "height": 10.0}),
	))

	if got := tester.Adapter.CountOf("create"); got != 2 {
		t.Errorf("create count = %d, want 2", got)
	}
	if got := tester.Adapter.CountOf("remove"); got != 2 {
		t.Errorf("remove count = %d, want 2", got)
	}
}

func TestComponentRenderingNilProducesNoHostNodes(t *testing.T) {
	tester := canopytest.NewTester(t)

	var empty element.Component = func(element.Props, []*element.Element) *element.Element {
		return nil
	}
	tester.Mount(element.New("rect", nil, element.New(empty, nil)))

	if got := tester.Adapter.CountOf("create"); got != 1 {
		t.Errorf("create count = %d, want 1 (the enclosing rect only)", got)
	}
}

func TestConditionalChildToggles(t *testing.T) {
	tester := canopytest.NewTester(t)

	build := func(show bool) *element.Element {
		var badge *element.Element
		if show {
			badge = element.New("rect", element.Props{"key": "badge", "width": 8.0, "height": 8.0})
		}
		return element.New("rect", nil, element.Text("always", nil), badge)
	}

	tester.Mount(build(false))
	tester.Adapter.Reset()

	tester.Update(build(true))
	if got := tester.Adapter.CountOf("create"); got != 1 {
		t.Errorf("create count after showing = %d, want 1", got)
	}

	tester.Adapter.Reset()
	tester.Update(build(false))
	if got := tester.Adapter.CountOf("remove"); got != 1 {
		t.Errorf("remove count after hiding = %d, want 1", got)
	}
}

func TestCreateErrorPropagatesFromMount(t *testing.T) {
	adapter := &canopytest.Adapter{CreateErr: fmt.Errorf("engine out of handles")}
	container := canopytest.NewContainer()

	_, err := core.Mount(element.New("rect", nil), container, adapter, 100, 100)
	if err == nil {
		t.Fatal("expected Mount to surface the adapter error")
	}
}

func TestRootTypeSwapRemounts(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(element.New("rect", element.Props{"width": 10.0, "height": 10.0}))
	tester.Adapter.Reset()

	tester.Update(element.Text(strconv.Itoa(1), nil))

	if got := tester.Adapter.CountOf("remove"); got != 1 {
		t.Errorf("remove count = %d, want 1", got)
	}
	if got := tester.Adapter.CountOf("create"); got != 1 {
		t.Errorf("create count = %d, want 1", got)
	}
}
