package core

import (
	"reflect"

	"github.com/canopy-ui/canopy/pkg/element"
	"github.com/canopy-ui/canopy/pkg/errors"
)

// currentHooks is the hook context of the component invocation in progress.
// The runtime is single-threaded, so a plain package variable suffices.
var currentHooks *HookContext

// HookContext is per-instance ordered storage for stable values across
// renders. Its lifetime equals the owning instance's lifetime.
//
// The slot cursor resets to zero at the start of every render, and every
// render of the same instance must visit the same slots in the same order.
// Violating that corrupts slot alignment; with DebugMode on, a slot-count
// mismatch is caught and raised as a *errors.HookError panic.
type HookContext struct {
	owner    *Instance
	slots    []any
	cursor   int
	expected int  // slot count from the first completed render, -1 before it
	dead     bool // set on unmount; stale setters become no-ops
}

func newHookContext(owner *Instance) *HookContext {
	return &HookContext{owner: owner, expected: -1}
}

// beginRender resets the slot cursor for a new render of the instance.
func (h *HookContext) beginRender() {
	h.cursor = 0
}

// finishRender runs the development-time slot-count assertion.
func (h *HookContext) finishRender() {
	if !DebugMode {
		return
	}
	if h.expected >= 0 && h.cursor != h.expected {
		panic(&errors.HookError{
			Op:        "core.HookContext",
			Component: h.owner.typeName(),
			Reason:    "hook count changed between renders: slots must be called in the same order every render",
		})
	}
	h.expected = h.cursor
}

// markDead disables the context after unmount.
func (h *HookContext) markDead() {
	h.dead = true
}

// activeHooks returns the current hook context or panics: calling a hook
// outside an active render is a programmer error, not a recoverable one.
func activeHooks(op string) *HookContext {
	if currentHooks == nil {
		panic(&errors.HookError{Op: op, Reason: "hook called outside an active render"})
	}
	return currentHooks
}

// nextSlot returns the slot at the cursor, creating it with make on first
// visit, and advances the cursor. A type mismatch on an existing slot means
// hook order changed between renders.
func nextSlot[S any](h *HookContext, op string, make func() S) S {
	if h.cursor < len(h.slots) {
		slot, ok := h.slots[h.cursor].(S)
		if !ok {
			panic(&errors.HookError{
				Op:        op,
				Component: h.owner.typeName(),
				Reason:    "hook order changed between renders",
			})
		}
		h.cursor++
		return slot
	}
	slot := make()
	h.slots = append(h.slots, slot)
	h.cursor++
	return slot
}

// stateSlot stores one UseState cell. Updates queue in call order and are
// applied sequentially when the slot is next read, so functional updaters
// always observe the value produced by the previous update rather than a
// stale closure.
type stateSlot[T any] struct {
	value  T
	queue  []func(T) T
	setter *Setter[T]
}

// Setter updates a state slot and schedules a re-render of the owning
// instance's subtree. Its identity is stable across renders.
type Setter[T any] struct {
	hooks *HookContext
	slot  *stateSlot[T]
}

// Set replaces the slot value on the next render.
// Calling a setter after its instance has been removed is a no-op.
func (s *Setter[T]) Set(value T) {
	s.enqueue(func(T) T { return value })
}

// Update applies a transformation to the slot value on the next render.
// Updates queue in call order and apply sequentially.
func (s *Setter[T]) Update(transform func(T) T) {
	if transform == nil {
		return
	}
	s.enqueue(transform)
}

func (s *Setter[T]) enqueue(apply func(T) T) {
	if s.hooks.dead {
		return
	}
	s.slot.queue = append(s.slot.queue, apply)
	s.hooks.owner.markDirty()
}

// UseState returns the current value of a state slot and its setter.
// The first render stores initial; later renders ignore it.
func UseState[T any](initial T) (T, *Setter[T]) {
	h := activeHooks("core.UseState")
	slot := nextSlot(h, "core.UseState", func() *stateSlot[T] {
		s := &stateSlot[T]{value: initial}
		s.setter = &Setter[T]{hooks: h, slot: s}
		return s
	})
	for _, apply := range slot.queue {
		slot.value = apply(slot.value)
	}
	slot.queue = nil
	return slot.value, slot.setter
}

// Ref is a mutable box whose identity persists across renders.
// Mutating Current never triggers a re-render.
type Ref[T any] struct {
	Current T
}

// UseRef returns a stable mutable box, initialized on the first render.
func UseRef[T any](initial T) *Ref[T] {
	h := activeHooks("core.UseRef")
	return nextSlot(h, "core.UseRef", func() *Ref[T] {
		return &Ref[T]{Current: initial}
	})
}

// effectSlot stores one UseEffect registration.
type effectSlot struct {
	fn      func() func()
	deps    []any
	hasDeps bool
	ran     bool
	pending bool
	cleanup func()
}

// UseEffect registers a deferred callback that runs after commit.
//
// With a nil deps slice the effect runs after every commit. With an empty
// non-nil slice it runs once, on mount. Otherwise it runs on commits where
// deps changed by shallow inequality. The cleanup returned by fn runs
// before the effect's next run and on unmount.
func UseEffect(fn func() func(), deps []any) {
	h := activeHooks("core.UseEffect")
	slot := nextSlot(h, "core.UseEffect", func() *effectSlot { return &effectSlot{} })
	shouldRun := !slot.ran || deps == nil || !slot.hasDeps || !shallowEqual(slot.deps, deps)
	slot.fn = fn
	slot.deps = deps
	slot.hasDeps = deps != nil
	if shouldRun {
		slot.pending = true
		h.owner.root.queueEffects(h.owner)
	}
}

// memoSlot caches one UseMemo/UseCallback result.
type memoSlot[T any] struct {
	value T
	deps  []any
	valid bool
}

// UseMemo caches a computed value, recomputing only when deps change by
// shallow inequality.
func UseMemo[T any](compute func() T, deps []any) T {
	h := activeHooks("core.UseMemo")
	slot := nextSlot(h, "core.UseMemo", func() *memoSlot[T] { return &memoSlot[T]{} })
	if !slot.valid || !shallowEqual(slot.deps, deps) {
		slot.value = compute()
		slot.deps = deps
		slot.valid = true
	}
	return slot.value
}

// UseCallback caches a function value keyed by deps, so children comparing
// props shallowly see a stable identity until deps change.
func UseCallback[F any](fn F, deps []any) F {
	h := activeHooks("core.UseCallback")
	slot := nextSlot(h, "core.UseCallback", func() *memoSlot[F] { return &memoSlot[F]{} })
	if !slot.valid || !shallowEqual(slot.deps, deps) {
		slot.value = fn
		slot.deps = deps
		slot.valid = true
	}
	return slot.value
}

// runPendingEffects runs this context's due effects in slot order, cleaning
// up the previous run of each slot first.
func (h *HookContext) runPendingEffects() {
	for _, raw := range h.slots {
		slot, ok := raw.(*effectSlot)
		if !ok || !slot.pending {
			continue
		}
		slot.pending = false
		slot.ran = true
		if slot.cleanup != nil {
			slot.cleanup()
			slot.cleanup = nil
		}
		if slot.fn != nil {
			slot.cleanup = slot.fn()
		}
	}
}

// runCleanups runs all outstanding effect cleanups, in slot order.
// Called on unmount.
func (h *HookContext) runCleanups() {
	for _, raw := range h.slots {
		if slot, ok := raw.(*effectSlot); ok && slot.cleanup != nil {
			slot.cleanup()
			slot.cleanup = nil
		}
	}
}

// shallowEqual compares two dependency lists element-wise. Comparable
// values use ==, functions compare by identity, anything else is treated
// as changed.
func shallowEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalDep(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalDep(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Kind() == reflect.Func {
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}

// invokeComponent runs a component function under its hook context.
// Panics are reported through the global error handler and re-raised: the
// core has no error boundary, so a failed build aborts the in-progress
// commit and propagates to whoever triggered the render.
func invokeComponent(inst *Instance, fn element.Component) *element.Element {
	prev := currentHooks
	currentHooks = inst.hooks
	inst.hooks.beginRender()
	defer func() {
		currentHooks = prev
		if r := recover(); r != nil {
			if _, isHook := r.(*errors.HookError); !isHook {
				errors.ReportBuildError(&errors.BuildError{
					Component:  inst.typeName(),
					Recovered:  r,
					StackTrace: errors.CaptureStack(),
				})
			}
			panic(r)
		}
		inst.hooks.finishRender()
	}()
	return fn(inst.props, inst.childEls)
}
