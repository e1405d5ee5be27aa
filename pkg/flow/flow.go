package flow

import (
	"github.com/canopy-ui/canopy/pkg/size"
)

// Layout resolves geometry for the whole tree rooted at root.
//
// avail is the rectangle handed down by the embedder (the host container's
// box); the root's own size expressions resolve against its width and
// height. Sizes resolve bottom-up so that auto containers can take the
// union bounding box of their children, then positions are assigned
// top-down. Size-expression failures abort the pass and surface to the
// caller unchanged.
func Layout(root Target, vp size.Viewport, avail Box) error {
	w, h, err := resolveSize(root, avail.Width, avail.Height, vp)
	if err != nil {
		return err
	}
	st := root.Style()
	return layoutInto(root, avail.X+st.Margin.Left, avail.Y+st.Margin.Top, w, h, vp)
}

// resolveSize computes a node's outer size against its parent's content box.
// Auto axes fall back to intrinsic measurement: leaves ask the node itself,
// containers take the union extent of their children.
func resolveSize(n Target, parentContentW, parentContentH float64, vp size.Viewport) (float64, float64, error) {
	st := n.Style()

	var w, h float64
	var err error
	if st.Width.IsAuto() {
		w, err = intrinsicExtent(n, vp, true)
	} else {
		w, err = st.Width.Resolve(size.Context{ParentContent: parentContentW, Viewport: vp})
	}
	if err != nil {
		return 0, 0, err
	}
	w = size.Clamp(w, st.MinWidth, st.MaxWidth)

	if st.Height.IsAuto() {
		h, err = intrinsicExtent(n, vp, false)
	} else {
		h, err = st.Height.Resolve(size.Context{ParentContent: parentContentH, Viewport: vp})
	}
	if err != nil {
		return 0, 0, err
	}
	h = size.Clamp(h, st.MinHeight, st.MaxHeight)

	return w, h, nil
}

// intrinsicExtent measures one axis of an auto-sized node. Children with
// percentage or fill sizes resolve against zero here: an auto parent's size
// cannot depend on a fraction of itself, so such children contribute
// nothing to the measured extent.
func intrinsicExtent(n Target, vp size.Viewport, horizontal bool) (float64, error) {
	st := n.Style()
	children := n.Children()
	pad := st.Padding.Vertical()
	if horizontal {
		pad = st.Padding.Horizontal()
	}

	if len(children) == 0 {
		mw, mh := n.Measure()
		if horizontal {
			return mw + pad, nil
		}
		return mh + pad, nil
	}

	mainIsMeasured := (st.Direction == Row) == horizontal && st.Direction != Stack
	total := 0.0
	maxExtent := 0.0
	for _, child := range children {
		cw, ch, err := resolveSize(child, 0, 0, vp)
		if err != nil {
			return 0, err
		}
		cm := child.Style().Margin
		extent := ch + cm.Vertical()
		if horizontal {
			extent = cw + cm.Horizontal()
		}
		total += extent
		if extent > maxExtent {
			maxExtent = extent
		}
	}
	if mainIsMeasured {
		if len(children) > 1 {
			total += st.Gap * float64(len(children)-1)
		}
		return total + pad, nil
	}
	return maxExtent + pad, nil
}

// layoutInto commits a node's box and lays out its children inside it.
func layoutInto(n Target, x, y, w, h float64, vp size.Viewport) error {
	n.SetBox(Box{X: x, Y: y, Width: w, Height: h})

	children := n.Children()
	if len(children) == 0 {
		return nil
	}

	st := n.Style()
	contentW := w - st.Padding.Horizontal()
	contentH := h - st.Padding.Vertical()
	originX := x + st.Padding.Left
	originY := y + st.Padding.Top

	if st.Direction == Stack {
		return layoutStack(n, children, originX, originY, contentW, contentH, vp)
	}
	return layoutFlow(n, children, originX, originY, contentW, contentH, vp)
}

// layoutStack overlays children at the content origin. Alignment applies on
// both axes; the default start/start keeps every child at the same origin.
func layoutStack(n Target, children []Target, originX, originY, contentW, contentH float64, vp size.Viewport) error {
	st := n.Style()
	for _, child := range children {
		cw, ch, err := resolveSize(child, contentW, contentH, vp)
		if err != nil {
			return err
		}
		cs := child.Style()
		align := alignFor(cs, st)
		if align == AlignStretch {
			cw = size.Clamp(contentW-cs.Margin.Horizontal(), cs.MinWidth, cs.MaxWidth)
			ch = size.Clamp(contentH-cs.Margin.Vertical(), cs.MinHeight, cs.MaxHeight)
		}
		px := originX + cs.Margin.Left + alignOffset(align, contentW-cw-cs.Margin.Horizontal())
		py := originY + cs.Margin.Top + alignOffset(align, contentH-ch-cs.Margin.Vertical())
		if err := layoutInto(child, px, py, cw, ch, vp); err != nil {
			return err
		}
	}
	return nil
}

// layoutFlow lays out row and column containers: fixed children first, then
// flexible children share what remains, then positions are assigned.
func layoutFlow(n Target, children []Target, originX, originY, contentW, contentH float64, vp size.Viewport) error {
	st := n.Style()
	horizontal := st.Direction == Row

	contentMain := contentH
	contentCross := contentW
	if horizontal {
		contentMain = contentW
		contentCross = contentH
	}

	mains := make([]float64, len(children))
	crosses := make([]float64, len(children))

	// Phase one: resolve every child's declared size. Flexible children's
	// main-axis result is discarded below.
	fixedMain := 0.0
	totalFlex := 0.0
	marginMain := 0.0
	for i, child := range children {
		cw, ch, err := resolveSize(child, contentW, contentH, vp)
		if err != nil {
			return err
		}
		cs := child.Style()
		main, cross := cw, ch
		cm := cs.Margin.Horizontal()
		if !horizontal {
			main, cross = ch, cw
			cm = cs.Margin.Vertical()
		}
		mains[i] = main
		crosses[i] = cross
		marginMain += cm
		if cs.Flex > 0 {
			totalFlex += cs.Flex
		} else {
			fixedMain += main
		}
	}

	totalGap := 0.0
	if len(children) > 1 {
		totalGap = st.Gap * float64(len(children)-1)
	}

	// Phase two: distribute remaining main-axis space to flexible children
	// by weight. The distribution never goes negative: a deficit clamps
	// each flexible child to zero.
	if totalFlex > 0 {
		remaining := contentMain - fixedMain - totalGap - marginMain
		if remaining < 0 {
			remaining = 0
		}
		for i, child := range children {
			cs := child.Style()
			if cs.Flex <= 0 {
				continue
			}
			share := remaining * cs.Flex / totalFlex
			if horizontal {
				mains[i] = size.Clamp(share, cs.MinWidth, cs.MaxWidth)
			} else {
				mains[i] = size.Clamp(share, cs.MinHeight, cs.MaxHeight)
			}
		}
	}

	// Phase three: main-axis distribution and cross-axis alignment.
	occupied := totalGap + marginMain
	for _, m := range mains {
		occupied += m
	}
	free := contentMain - occupied
	if free < 0 {
		free = 0
	}
	spacing, lead := justifySpacing(st.Justify, free, len(children))

	cursor := lead
	for i, child := range children {
		cs := child.Style()
		cross := crosses[i]
		align := alignFor(cs, st)

		marginCross := cs.Margin.Vertical()
		if !horizontal {
			marginCross = cs.Margin.Horizontal()
		}
		if align == AlignStretch {
			cross = contentCross - marginCross
			if horizontal {
				cross = size.Clamp(cross, cs.MinHeight, cs.MaxHeight)
			} else {
				cross = size.Clamp(cross, cs.MinWidth, cs.MaxWidth)
			}
		}
		crossOffset := alignOffset(align, contentCross-cross-marginCross)

		var px, py, cw, ch float64
		if horizontal {
			px = originX + cursor + cs.Margin.Left
			py = originY + crossOffset + cs.Margin.Top
			cw, ch = mains[i], cross
			cursor += cs.Margin.Horizontal() + mains[i] + st.Gap + spacing
		} else {
			px = originX + crossOffset + cs.Margin.Left
			py = originY + cursor + cs.Margin.Top
			cw, ch = cross, mains[i]
			cursor += cs.Margin.Vertical() + mains[i] + st.Gap + spacing
		}
		if err := layoutInto(child, px, py, cw, ch, vp); err != nil {
			return err
		}
	}
	return nil
}

// alignFor resolves a child's effective alignment: AlignSelf overrides the
// container's AlignItems, and an unset pair defaults to start.
func alignFor(child Style, container Style) Alignment {
	if child.AlignSelf != AlignAuto {
		return child.AlignSelf
	}
	if container.AlignItems != AlignAuto {
		return container.AlignItems
	}
	return AlignStart
}

// alignOffset returns the leading offset for the given free space.
func alignOffset(a Alignment, free float64) float64 {
	if free <= 0 {
		return 0
	}
	switch a {
	case AlignCenter:
		return free * 0.5
	case AlignEnd:
		return free
	default:
		return 0
	}
}

// justifySpacing returns the extra per-gap spacing and the leading offset
// for the given free main-axis space.
func justifySpacing(j Justify, free float64, count int) (spacing, lead float64) {
	switch j {
	case JustifyEnd:
		lead = free
	case JustifyCenter:
		lead = free * 0.5
	case JustifySpaceBetween:
		if count > 1 {
			spacing = free / float64(count-1)
		}
	}
	return
}
