// Package flow computes concrete pixel geometry for a tree of styled nodes.
//
// The model is a flexbox-like box model with three directions (row, column,
// stack), gaps, padding, margins, alignment, and proportional flex weights.
// Sizes are declarative size.Value expressions resolved against the parent's
// content box and the viewport. Layout runs in two phases: sizes resolve
// bottom-up (auto containers take the union bounding box of their children),
// then positions are assigned top-down.
package flow

import (
	"fmt"

	"github.com/canopy-ui/canopy/pkg/size"
)

// Direction is the layout axis of a container.
type Direction int

const (
	// Row lays children out left to right along the horizontal axis.
	Row Direction = iota
	// Column lays children out top to bottom along the vertical axis.
	Column
	// Stack overlays children at the container's content origin with no
	// main-axis advancement.
	Stack
)

// String returns a human-readable representation of the direction.
func (d Direction) String() string {
	switch d {
	case Row:
		return "row"
	case Column:
		return "column"
	case Stack:
		return "stack"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Alignment controls cross-axis placement of children.
type Alignment int

const (
	// AlignAuto inherits the container's AlignItems (the zero value).
	AlignAuto Alignment = iota
	// AlignStart places the child at the start of the cross axis.
	AlignStart
	// AlignCenter centers the child along the cross axis.
	AlignCenter
	// AlignEnd places the child at the end of the cross axis.
	AlignEnd
	// AlignStretch sets the child's cross size to the container's content
	// cross size.
	AlignStretch
)

// String returns a human-readable representation of the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignAuto:
		return "auto"
	case AlignStart:
		return "start"
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	case AlignStretch:
		return "stretch"
	default:
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
}

// Justify controls main-axis distribution of children.
type Justify int

const (
	// JustifyStart packs children at the start of the main axis.
	JustifyStart Justify = iota
	// JustifyCenter centers the run of children.
	JustifyCenter
	// JustifyEnd packs children at the end of the main axis.
	JustifyEnd
	// JustifySpaceBetween splits extra space evenly between consecutive
	// children, with none at the edges.
	JustifySpaceBetween
)

// String returns a human-readable representation of the justification.
func (j Justify) String() string {
	switch j {
	case JustifyStart:
		return "start"
	case JustifyCenter:
		return "center"
	case JustifyEnd:
		return "end"
	case JustifySpaceBetween:
		return "space-between"
	default:
		return fmt.Sprintf("Justify(%d)", int(j))
	}
}

// Insets describes padding or margin on the four sides of a box.
type Insets struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Uniform returns equal insets on all four sides.
func Uniform(v float64) Insets {
	return Insets{Top: v, Right: v, Bottom: v, Left: v}
}

// Horizontal returns the sum of the left and right insets.
func (i Insets) Horizontal() float64 { return i.Left + i.Right }

// Vertical returns the sum of the top and bottom insets.
func (i Insets) Vertical() float64 { return i.Top + i.Bottom }

// Style holds the layout-relevant properties of one node.
// The zero value is an auto-sized, non-flexible row container with no
// spacing.
type Style struct {
	Width  size.Value
	Height size.Value

	MinWidth  *float64
	MaxWidth  *float64
	MinHeight *float64
	MaxHeight *float64

	Direction Direction
	Gap       float64
	Padding   Insets
	Margin    Insets

	AlignItems Alignment
	AlignSelf  Alignment
	Justify    Justify

	// Flex is the proportional weight for distributing the container's
	// remaining main-axis space. Zero means the node uses its own size.
	Flex float64
}

// Box is a node's resolved geometry in pixels, in the root's coordinate
// space. It is written only by the layout pass and read-only elsewhere.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// ContentWidth returns the box width minus the given padding.
func (b Box) ContentWidth(p Insets) float64 { return b.Width - p.Horizontal() }

// ContentHeight returns the box height minus the given padding.
func (b Box) ContentHeight(p Insets) float64 { return b.Height - p.Vertical() }

// Target is a node the layout engine can size and position. The reconciler
// adapts committed instances to this interface; tests use lightweight fakes.
type Target interface {
	// Style returns the node's layout style.
	Style() Style
	// Children returns the node's layout children in order.
	Children() []Target
	// Measure returns the node's intrinsic content size, used to resolve
	// auto sizes on leaves.
	Measure() (width, height float64)
	// SetBox stores the resolved geometry for this pass.
	SetBox(Box)
	// Box returns the last resolved geometry.
	Box() Box
}
