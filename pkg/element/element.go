// Package element defines the immutable virtual-node model of the Canopy
// runtime.
//
// An Element is a pure description of a node: a type tag (a host primitive
// tag string or a component function), a props map, an optional stable key,
// and ordered children. Elements carry no behavior and are never mutated
// after construction; every render pass builds a fresh tree and hands it to
// the reconciler.
package element

import (
	"reflect"
	"runtime"
)

// Props holds the declarative properties of an element.
type Props map[string]any

// Get returns the raw value for a key.
func (p Props) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p[key]
	return v, ok
}

// Float returns a numeric prop, accepting any of Go's common numeric types.
func (p Props) Float(key string) (float64, bool) {
	v, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// String returns a string prop.
func (p Props) String(key string) (string, bool) {
	v, ok := p.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Component is a function component. It receives the element's props and
// children and returns the element tree to render, or nil to render nothing.
//
// Hooks (core.UseState and friends) may only be called while the component
// is being invoked by the reconciler.
type Component func(props Props, children []*Element) *Element

// Element is an immutable description of a virtual node.
//
// Type is either a string identifying a host primitive ("rect", "text", ...)
// or a Component function. Children order is significant unless overridden
// by Key during reconciliation.
type Element struct {
	Type     any
	Props    Props
	Key      any
	Children []*Element
}

// New builds an Element. Children may be *Element values, nested
// []*Element or []any slices (flattened in order), or nil / false
// (dropped). Any other child value panics: it indicates a malformed tree
// that would otherwise surface confusingly later, during reconciliation.
//
// The "key" prop, if present, is lifted out of props onto the element.
func New(typ any, props Props, children ...any) *Element {
	e := &Element{Type: typ, Props: props}
	if props != nil {
		if key, ok := props["key"]; ok {
			e.Key = key
		}
	}
	e.Children = flatten(nil, children)
	return e
}

// Text is shorthand for a "text" primitive with the given content.
func Text(content string, props Props) *Element {
	merged := Props{"content": content}
	for k, v := range props {
		merged[k] = v
	}
	return New("text", merged)
}

// Fragment groups children without introducing a host node of its own.
// It renders as a transparent component.
var Fragment Component = func(props Props, children []*Element) *Element {
	return New("group", props, children)
}

func flatten(dst []*Element, children []any) []*Element {
	for _, child := range children {
		switch c := child.(type) {
		case nil:
			// Conditional rendering: skip.
		case bool:
			if c {
				panic("element.New: boolean true is not a valid child")
			}
			// false is the conventional "render nothing" value.
		case *Element:
			if c != nil {
				dst = append(dst, c)
			}
		case []*Element:
			for _, e := range c {
				if e != nil {
					dst = append(dst, e)
				}
			}
		case []any:
			dst = flatten(dst, c)
		default:
			panic("element.New: unsupported child type " + reflect.TypeOf(child).String())
		}
	}
	return dst
}

// SameType reports whether two elements have a matching type for
// reconciliation purposes.
func SameType(a, b *Element) bool {
	if a == nil || b == nil {
		return false
	}
	return TypesMatch(a.Type, b.Type)
}

// TypesMatch compares two element types. Primitive tags compare by string
// equality; component functions compare by function identity.
func TypesMatch(a, b any) bool {
	aTag, aIsTag := a.(string)
	bTag, bIsTag := b.(string)
	if aIsTag != bIsTag {
		return false
	}
	if aIsTag {
		return aTag == bTag
	}
	aFn, aOK := a.(Component)
	bFn, bOK := b.(Component)
	if !aOK || !bOK {
		return a != nil && b != nil && reflect.TypeOf(a) == reflect.TypeOf(b)
	}
	return reflect.ValueOf(aFn).Pointer() == reflect.ValueOf(bFn).Pointer()
}

// TypeName returns a printable name for an element type, for diagnostics.
func TypeName(typ any) string {
	switch t := typ.(type) {
	case string:
		return t
	case Component:
		if fn := runtime.FuncForPC(reflect.ValueOf(t).Pointer()); fn != nil {
			return fn.Name()
		}
		return "component"
	default:
		if typ == nil {
			return "<nil>"
		}
		return reflect.TypeOf(typ).String()
	}
}
