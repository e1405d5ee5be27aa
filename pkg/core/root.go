package core

import (
	"sort"
	"sync"

	"github.com/canopy-ui/canopy/pkg/element"
	"github.com/canopy-ui/canopy/pkg/errors"
	"github.com/canopy-ui/canopy/pkg/flow"
	"github.com/canopy-ui/canopy/pkg/host"
	"github.com/canopy-ui/canopy/pkg/size"
)

// Stats counts host mutations and commits since mount. The inspect server
// reads snapshots from another goroutine, so access goes through a mutex;
// everything else in the runtime stays on the single cooperative thread.
type Stats struct {
	Commits int
	Creates int
	Appends int
	Patches int
	Removes int
}

// Root is the handle for one mounted element tree.
type Root struct {
	adapter   host.Adapter
	container host.Node
	viewport  size.Viewport
	bounds    flow.Box

	rootEl   *element.Element
	instance *Instance

	dirty          []*Instance
	dirtySet       map[*Instance]bool
	effectsPending bool
	inCommit       bool
	err            error

	stats   Stats
	statsMu sync.Mutex
}

// Mount builds the instance tree for rootEl, attaches its host nodes under
// container, runs the first layout pass, and executes mount effects. The
// given width and height seed both the root bounds and the viewport used
// for vw/vh units.
func Mount(rootEl *element.Element, container host.Node, adapter host.Adapter, width, height float64) (*Root, error) {
	rt := &Root{
		adapter:   adapter,
		container: container,
		viewport:  size.Viewport{Width: width, Height: height},
		bounds:    flow.Box{Width: width, Height: height},
		rootEl:    rootEl,
		dirtySet:  make(map[*Instance]bool),
	}

	rt.inCommit = true
	defer func() { rt.inCommit = false }()

	inst, err := rt.mountInstance(rootEl, nil, container, 0)
	if err != nil {
		return nil, err
	}
	rt.instance = inst
	if err := rt.completeCommit(); err != nil {
		return nil, err
	}
	return rt, nil
}

// Update reconciles a new element tree against the committed one, the same
// way a dirty component re-render would. Rendering an identical tree is
// guaranteed to produce zero host mutations.
func (rt *Root) Update(rootEl *element.Element) error {
	if rt.instance == nil {
		return nil
	}
	rt.inCommit = true
	defer func() { rt.inCommit = false }()

	if typesMatch(rt.instance.typ, rootEl.Type) {
		if err := rt.updateInstance(rt.instance, rootEl, rt.container, 0); err != nil {
			return err
		}
	} else {
		rt.removeInstance(rt.instance, rt.container)
		inst, err := rt.mountInstance(rootEl, nil, rt.container, 0)
		if err != nil {
			return err
		}
		rt.instance = inst
	}
	rt.rootEl = rootEl
	return rt.completeCommit()
}

// Unmount tears down the whole tree: effect cleanups run deepest-first,
// host nodes are destroyed, and stale setters become no-ops.
func (rt *Root) Unmount() {
	if rt.instance == nil {
		return
	}
	rt.removeInstance(rt.instance, rt.container)
	rt.instance = nil
	rt.dirty = nil
	clear(rt.dirtySet)
}

// SetViewport updates the viewport dimensions and re-runs layout for the
// whole tree. Geometry changes are pushed to the host; no components are
// re-rendered, since build output cannot depend on the viewport directly.
func (rt *Root) SetViewport(width, height float64) error {
	rt.viewport = size.Viewport{Width: width, Height: height}
	rt.bounds = flow.Box{Width: width, Height: height}
	if rt.instance == nil {
		return nil
	}
	if err := rt.layoutAndSync(); err != nil {
		rt.fail(err)
		return err
	}
	return nil
}

// Viewport returns the current viewport dimensions.
func (rt *Root) Viewport() size.Viewport {
	return rt.viewport
}

// Err returns the first error from a setter-triggered commit, if any.
// Errors from Mount and Update are returned directly instead.
func (rt *Root) Err() error {
	return rt.err
}

// StatsSnapshot returns a copy of the mutation counters.
func (rt *Root) StatsSnapshot() Stats {
	rt.statsMu.Lock()
	defer rt.statsMu.Unlock()
	return rt.stats
}

// scheduleRender marks an instance dirty. Outside a commit this flushes
// synchronously: the triggering setter call performs diff, layout, host
// mutation, and effect execution before returning. During a commit the
// instance joins the current flush loop instead.
func (rt *Root) scheduleRender(inst *Instance) {
	if inst.state == lifecycleUnmounted {
		return
	}
	if !rt.dirtySet[inst] {
		rt.dirtySet[inst] = true
		rt.dirty = append(rt.dirty, inst)
		inst.dirty = true
	}
	if rt.inCommit {
		return
	}
	rt.inCommit = true
	defer func() { rt.inCommit = false }()
	if err := rt.flush(); err != nil {
		rt.fail(err)
	}
}

// queueEffects notes that at least one effect became due this render.
func (rt *Root) queueEffects(inst *Instance) {
	rt.effectsPending = true
}

// completeCommit runs the post-build phases, looping until the tree
// settles: effects may set state, which re-enters the build phase within
// the same commit.
func (rt *Root) completeCommit() error {
	for {
		if err := rt.flush(); err != nil {
			return err
		}
		if len(rt.dirty) == 0 && !rt.effectsPending {
			return nil
		}
	}
}

// flush drives one settle loop: rebuild dirty instances in depth order,
// lay out, push geometry, then run due effects (children before parents).
func (rt *Root) flush() error {
	for {
		for len(rt.dirty) > 0 {
			sort.SliceStable(rt.dirty, func(i, j int) bool {
				return rt.dirty[i].depth < rt.dirty[j].depth
			})
			batch := rt.dirty
			rt.dirty = nil
			clear(rt.dirtySet)
			for _, inst := range batch {
				if inst.state == lifecycleUnmounted || !inst.dirty {
					continue
				}
				inst.dirty = false
				if err := rt.rerenderComponent(inst); err != nil {
					return err
				}
			}
		}

		if err := rt.layoutAndSync(); err != nil {
			return err
		}

		if rt.effectsPending {
			rt.effectsPending = false
			runEffectsPostOrder(rt.instance)
		}
		rt.countCommit()

		if len(rt.dirty) == 0 && !rt.effectsPending {
			return nil
		}
	}
}

// layoutAndSync computes geometry for the committed tree and patches boxes
// that changed since the previous pass through the host adapter.
func (rt *Root) layoutAndSync() error {
	if rt.instance == nil {
		return nil
	}
	for _, top := range rt.topHostInstances() {
		if err := flow.Layout(top, rt.viewport, rt.bounds); err != nil {
			return err
		}
	}
	rt.syncGeometry(rt.instance)
	return nil
}

// topHostInstances returns the topmost primitive instances of the tree.
func (rt *Root) topHostInstances() []*Instance {
	var tops []*Instance
	collectHostInstances([]*Instance{rt.instance}, &tops)
	return tops
}

// syncGeometry pushes changed boxes to the host as prop patches on the
// reserved geometry keys. Unchanged boxes produce no adapter calls.
func (rt *Root) syncGeometry(inst *Instance) {
	if inst == nil {
		return
	}
	if inst.hostNode != nil {
		if !inst.hasBox || inst.box != inst.lastBox {
			rt.adapter.Patch(inst.hostNode, geometryProps(inst.lastBox, inst.hasBox), geometryProps(inst.box, true))
			rt.countPatch()
			inst.lastBox = inst.box
			inst.hasBox = true
		}
	}
	for _, child := range inst.children {
		rt.syncGeometry(child)
	}
}

func geometryProps(b flow.Box, present bool) element.Props {
	if !present {
		return nil
	}
	return element.Props{
		host.PropX:      b.X,
		host.PropY:      b.Y,
		host.PropWidth:  b.Width,
		host.PropHeight: b.Height,
	}
}

// runEffectsPostOrder runs due effects children-first, so a parent's
// effect always observes fully mounted and laid-out children.
func runEffectsPostOrder(inst *Instance) {
	if inst == nil {
		return
	}
	for _, child := range inst.children {
		runEffectsPostOrder(child)
	}
	if inst.hooks != nil && inst.state != lifecycleUnmounted {
		inst.hooks.runPendingEffects()
	}
}

// fail records and reports a commit error that had no direct caller to
// return to (setter-triggered flushes).
func (rt *Root) fail(err error) {
	if rt.err == nil {
		rt.err = err
	}
	reportCommitError(err)
}

// reportCommitError routes a commit failure through the global handler.
func reportCommitError(err error) {
	switch e := err.(type) {
	case *errors.RuntimeError:
		errors.Report(e)
	case *errors.SizeParseError:
		errors.Report(&errors.RuntimeError{Op: "core.Commit", Kind: errors.KindParse, Err: e})
	default:
		errors.Report(&errors.RuntimeError{Op: "core.Commit", Kind: errors.KindUnknown, Err: err})
	}
}

func (rt *Root) countCommit() { rt.statsMu.Lock(); rt.stats.Commits++; rt.statsMu.Unlock() }
func (rt *Root) countCreate() { rt.statsMu.Lock(); rt.stats.Creates++; rt.statsMu.Unlock() }
func (rt *Root) countAppend() { rt.statsMu.Lock(); rt.stats.Appends++; rt.statsMu.Unlock() }
func (rt *Root) countPatch()  { rt.statsMu.Lock(); rt.stats.Patches++; rt.statsMu.Unlock() }
func (rt *Root) countRemove() { rt.statsMu.Lock(); rt.stats.Removes++; rt.statsMu.Unlock() }
