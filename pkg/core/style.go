package core

import (
	"fmt"

	"github.com/canopy-ui/canopy/pkg/element"
	"github.com/canopy-ui/canopy/pkg/errors"
	"github.com/canopy-ui/canopy/pkg/flow"
	"github.com/canopy-ui/canopy/pkg/size"
)

// styleFromProps extracts the layout-relevant props of a primitive into a
// flow.Style. Size expressions are parsed here, once per prop change, so
// the layout pass itself never re-parses strings.
func styleFromProps(props element.Props) (flow.Style, error) {
	var st flow.Style
	var err error

	if st.Width, err = sizeProp(props, "width"); err != nil {
		return st, err
	}
	if st.Height, err = sizeProp(props, "height"); err != nil {
		return st, err
	}
	st.MinWidth = floatProp(props, "minWidth")
	st.MaxWidth = floatProp(props, "maxWidth")
	st.MinHeight = floatProp(props, "minHeight")
	st.MaxHeight = floatProp(props, "maxHeight")

	if dir, ok := props.String("direction"); ok {
		switch dir {
		case "row":
			st.Direction = flow.Row
		case "column":
			st.Direction = flow.Column
		case "stack":
			st.Direction = flow.Stack
		default:
			return st, &errors.SizeParseError{Input: dir, Pos: -1, Reason: "unknown direction"}
		}
	}
	if gap, ok := props.Float("gap"); ok {
		st.Gap = gap
	}
	if flex, ok := props.Float("flex"); ok {
		st.Flex = flex
	}
	st.Padding = insetsProp(props, "padding")
	st.Margin = insetsProp(props, "margin")

	if st.AlignItems, err = alignProp(props, "alignItems"); err != nil {
		return st, err
	}
	if st.AlignSelf, err = alignProp(props, "alignSelf"); err != nil {
		return st, err
	}

	if j, ok := props.String("justify"); ok {
		switch j {
		case "start":
			st.Justify = flow.JustifyStart
		case "center":
			st.Justify = flow.JustifyCenter
		case "end":
			st.Justify = flow.JustifyEnd
		case "space-between":
			st.Justify = flow.JustifySpaceBetween
		default:
			return st, &errors.SizeParseError{Input: j, Pos: -1, Reason: "unknown justify value"}
		}
	}
	return st, nil
}

func sizeProp(props element.Props, key string) (size.Value, error) {
	raw, ok := props.Get(key)
	if !ok {
		return size.Auto, nil
	}
	return size.Parse(raw)
}

func floatProp(props element.Props, key string) *float64 {
	if v, ok := props.Float(key); ok {
		return &v
	}
	return nil
}

// insetsProp reads either a uniform inset ("padding": 8) or per-side values
// ("paddingTop", "paddingRight", "paddingBottom", "paddingLeft"), with the
// per-side values overriding the uniform one.
func insetsProp(props element.Props, key string) flow.Insets {
	var in flow.Insets
	if v, ok := props.Float(key); ok {
		in = flow.Uniform(v)
	}
	if v, ok := props.Float(key + "Top"); ok {
		in.Top = v
	}
	if v, ok := props.Float(key + "Right"); ok {
		in.Right = v
	}
	if v, ok := props.Float(key + "Bottom"); ok {
		in.Bottom = v
	}
	if v, ok := props.Float(key + "Left"); ok {
		in.Left = v
	}
	return in
}

func alignProp(props element.Props, key string) (flow.Alignment, error) {
	v, ok := props.String(key)
	if !ok {
		return flow.AlignAuto, nil
	}
	switch v {
	case "start":
		return flow.AlignStart, nil
	case "center":
		return flow.AlignCenter, nil
	case "end":
		return flow.AlignEnd, nil
	case "stretch":
		return flow.AlignStretch, nil
	default:
		return flow.AlignAuto, &errors.SizeParseError{
			Input:  v,
			Pos:    -1,
			Reason: fmt.Sprintf("unknown %s value", key),
		}
	}
}
