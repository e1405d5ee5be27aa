package core_test

import (
	"testing"

	"github.com/canopy-ui/canopy/pkg/canopytest"
	"github.com/canopy-ui/canopy/pkg/core"
	"github.com/canopy-ui/canopy/pkg/element"
)

func TestGeometryIsPushedThroughPatch(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.SetSize(300, 200)

	tester.Mount(element.New("rect", element.Props{"width": "50%", "height": 100.0}))

	rect := tester.MustFind("rect")
	if got := rect.PropFloat("width"); got != 150 {
		t.Errorf("pushed width = %v, want 150", got)
	}
	if got := rect.PropFloat("height"); got != 100 {
		t.Errorf("pushed height = %v, want 100", got)
	}
	if got := rect.PropFloat("x"); got != 0 {
		t.Errorf("pushed x = %v, want 0", got)
	}
}

func TestGeometryNotRepatchedWhenUnchanged(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(element.New("rect", element.Props{"width": 40.0, "height": 12.0}))
	tester.Adapter.Reset()

	tester.Update(element.New("rect", element.Props{"width": 40.0, "height": 12.0}))

	if got := tester.Adapter.CountOf("patch"); got != 0 {
		t.Errorf("unchanged geometry was re-patched %d times", got)
	}
}

func TestSetViewportRelayoutsWithoutRebuilding(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.SetSize(800, 600)

	renders := 0
	var comp element.Component = func(element.Props, []*element.Element) *element.Element {
		renders++
		return element.New("rect", element.Props{"width": "50vw", "height": 10.0})
	}
	tester.Mount(element.New(comp, nil))

	rect := tester.MustFind("rect")
	if got := rect.PropFloat("width"); got != 400 {
		t.Fatalf("initial width = %v, want 400", got)
	}
	rendersBefore := renders

	if err := tester.Root.SetViewport(400, 600); err != nil {
		t.Fatalf("SetViewport failed: %v", err)
	}

	if got := rect.PropFloat("width"); got != 200 {
		t.Errorf("width after viewport change = %v, want 200", got)
	}
	if renders != rendersBefore {
		t.Errorf("SetViewport re-rendered components: %d -> %d", rendersBefore, renders)
	}
	if vp := tester.Root.Viewport(); vp.Width != 400 || vp.Height != 600 {
		t.Errorf("viewport = %+v, want 400x600", vp)
	}
}

func TestEffectsRunChildrenBeforeParents(t *testing.T) {
	tester := canopytest.NewTester(t)

	var order []string
	effect := func(name string) func() func() {
		return func() func() {
			order = append(order, name)
			return func() { order = append(order, name+"-cleanup") }
		}
	}

	var child element.Component = func(element.Props, []*element.Element) *element.Element {
		core.UseEffect(effect("child"), []any{})
		return element.New("rect", element.Props{"width": 10.0, "height": 10.0})
	}
	var parent element.Component = func(element.Props, []*element.Element) *element.Element {
		core.UseEffect(effect("parent"), []any{})
		return element.New("rect", nil, element.New(child, nil))
	}

	tester.Mount(element.New(parent, nil))

	if len(order) != 2 || order[0] != "child" || order[1] != "parent" {
		t.Fatalf("mount effect order = %v, want [child parent]", order)
	}

	order = nil
	tester.Root.Unmount()

	if len(order) != 2 || order[0] != "child-cleanup" || order[1] != "parent-cleanup" {
		t.Errorf("unmount cleanup order = %v, want [child-cleanup parent-cleanup]", order)
	}
}

func TestEffectObservesCommittedLayout(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.SetSize(300, 200)

	var sawWidth float64
	var comp element.Component = func(element.Props, []*element.Element) *element.Element {
		core.UseEffect(func() func() {
			sawWidth = tester.MustFind("rect").PropFloat("width")
			return nil
		}, []any{})
		return element.New("rect", element.Props{"width": "50%", "height": 10.0})
	}
	tester.Mount(element.New(comp, nil))

	if sawWidth != 150 {
		t.Errorf("effect saw width %v, want 150 (layout must precede effects)", sawWidth)
	}
}

func TestStateChangeInsideEffectSettlesInOneCommitCall(t *testing.T) {
	tester := canopytest.NewTester(t)

	var comp element.Component = func(element.Props, []*element.Element) *element.Element {
		n, set := core.UseState(0)
		core.UseEffect(func() func() {
			if n == 0 {
				set.Set(1)
			}
			return nil
		}, []any{n})
		return element.New("rect", element.Props{"width": float64(10 + n), "height": 10.0})
	}
	tester.Mount(element.New(comp, nil))

	rect := tester.MustFind("rect")
	if got := rect.PropFloat("width"); got != 11 {
		t.Errorf("width after settled commit = %v, want 11", got)
	}
	if err := tester.Root.Err(); err != nil {
		t.Errorf("commit error: %v", err)
	}
}

func TestStatsCountMutations(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(element.New("rect", nil, element.Text("a", nil)))

	stats := tester.Root.StatsSnapshot()
	if stats.Creates != 2 {
		t.Errorf("creates = %d, want 2", stats.Creates)
	}
	if stats.Appends != 2 {
		t.Errorf("appends = %d, want 2", stats.Appends)
	}
	if stats.Commits == 0 {
		t.Error("commits = 0, want at least 1")
	}
}

func TestUnmountRemovesHostNodes(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.Mount(element.New("rect", nil, element.Text("a", nil)))

	tester.Root.Unmount()

	if got := len(tester.Container.Children); got != 0 {
		t.Errorf("container still has %d children after unmount", got)
	}
}

func TestTreeSnapshotReflectsCommittedTree(t *testing.T) {
	tester := canopytest.NewTester(t)
	tester.SetSize(100, 100)

	var comp element.Component = func(element.Props, []*element.Element) *element.Element {
		core.UseState(0)
		return element.New("rect", element.Props{"width": 60.0, "height": 40.0})
	}
	tester.Mount(element.New(comp, nil))

	snap := tester.Root.TreeSnapshot()
	if snap == nil {
		t.Fatal("snapshot is nil for a mounted tree")
	}
	if !snap.Component {
		t.Error("root snapshot should be a component")
	}
	if snap.HookCount != 1 {
		t.Errorf("root hook count = %d, want 1", snap.HookCount)
	}
	if len(snap.Children) != 1 {
		t.Fatalf("root snapshot has %d children, want 1", len(snap.Children))
	}
	rect := snap.Children[0]
	if rect.Type != "rect" || !rect.HasBox || rect.Box.Width != 60 {
		t.Errorf("rect snapshot = %+v, want a 60-wide box", rect)
	}
}
