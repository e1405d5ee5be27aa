// Package host defines the adapter boundary between the Canopy runtime and
// the external rendering engine.
//
// The runtime owns the element/instance trees and decides what to mutate;
// the adapter owns the engine's visual objects and performs the mutations.
// Everything the runtime needs from the engine fits in the Adapter
// interface: create, append, remove, patch, and measure.
package host

import (
	"fmt"

	"github.com/canopy-ui/canopy/pkg/element"
)

// Kind is the tagged discriminator carried on every host node handle.
// It is resolved once from the element tag at creation time, so the runtime
// and adapters never need to sniff node shapes at runtime.
type Kind int

const (
	// KindGroup is an invisible container node.
	KindGroup Kind = iota
	// KindRect is a solid rectangle.
	KindRect
	// KindText is a text run.
	KindText
	// KindImage is a bitmap.
	KindImage
	// KindEmitter is a particle emitter.
	KindEmitter
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindRect:
		return "rect"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindEmitter:
		return "emitter"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindForTag maps a primitive element tag to its node kind.
func KindForTag(tag string) (Kind, bool) {
	switch tag {
	case "group":
		return KindGroup, true
	case "rect":
		return KindRect, true
	case "text":
		return KindText, true
	case "image":
		return KindImage, true
	case "emitter":
		return KindEmitter, true
	}
	return 0, false
}

// Node is a handle to one engine visual object. The adapter that created a
// node is the only code that understands its concrete type; the runtime
// only reads the kind tag.
type Node interface {
	Kind() Kind
}

// Reserved geometry prop keys. The runtime writes resolved layout boxes
// through Patch using these keys after every layout pass.
const (
	PropX      = "x"
	PropY      = "y"
	PropWidth  = "width"
	PropHeight = "height"
)

// Adapter is implemented by a rendering backend. All methods are called on
// the runtime's single cooperative thread, never concurrently.
type Adapter interface {
	// Create materializes a visual node for a primitive tag. It fails if
	// the tag is not a known primitive.
	Create(tag string, props element.Props) (Node, error)

	// Append inserts child under parent at the given index. It is used both
	// for mounting and for keyed reordering; an adapter must tolerate a
	// child that is already attached elsewhere under the same parent.
	Append(parent, child Node, index int)

	// Remove detaches child from parent and destroys the child's owned
	// engine resources.
	Remove(parent, child Node)

	// Patch applies only the prop deltas between prev and next. It must be
	// a no-op when prev and next are identical.
	Patch(node Node, prev, next element.Props)

	// Measure returns the node's intrinsic content size, used to resolve
	// auto sizes.
	Measure(node Node) (width, height float64)
}
