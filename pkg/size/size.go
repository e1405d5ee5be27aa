// Package size parses and resolves declarative size expressions.
//
// A size is written as a fixed pixel number, a percentage of the parent's
// content box, a viewport-relative length (vw/vh), the keywords "fill" and
// "auto", or an algebraic calc() expression combining any of the above.
// Resolution is a pure function of an explicit Context; the package holds
// no process-wide state.
package size

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/canopy-ui/canopy/pkg/errors"
)

// Viewport holds the current rendering-surface dimensions, used to resolve
// vw/vh units.
type Viewport struct {
	Width  float64
	Height float64
}

// Unit identifies the kind of a size value.
// UnitAuto is the zero value so that an unset Style field means "auto".
type Unit int

const (
	// UnitAuto delegates to the node's intrinsic measurement.
	UnitAuto Unit = iota
	// UnitPx is a fixed pixel length.
	UnitPx
	// UnitPercent is a fraction of the parent's content box.
	UnitPercent
	// UnitVw is a fraction of the viewport width.
	UnitVw
	// UnitVh is a fraction of the viewport height.
	UnitVh
	// UnitFill takes the parent's full content size; identical to 100%.
	UnitFill
	// UnitCalc is an algebraic expression over the other units.
	UnitCalc
)

func (u Unit) String() string {
	switch u {
	case UnitAuto:
		return "auto"
	case UnitPx:
		return "px"
	case UnitPercent:
		return "%"
	case UnitVw:
		return "vw"
	case UnitVh:
		return "vh"
	case UnitFill:
		return "fill"
	case UnitCalc:
		return "calc"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Value is a parsed size expression.
type Value struct {
	Unit   Unit
	Amount float64
	expr   *calcNode // parse tree when Unit == UnitCalc
	src    string    // original text, for error reporting
}

// Px returns a fixed pixel value.
func Px(v float64) Value { return Value{Unit: UnitPx, Amount: v} }

// Percent returns a percentage of the parent content box.
func Percent(v float64) Value { return Value{Unit: UnitPercent, Amount: v} }

// Vw returns a viewport-width-relative value.
func Vw(v float64) Value { return Value{Unit: UnitVw, Amount: v} }

// Vh returns a viewport-height-relative value.
func Vh(v float64) Value { return Value{Unit: UnitVh, Amount: v} }

// Fill is the parent's full content size.
var Fill = Value{Unit: UnitFill}

// Auto delegates to intrinsic measurement.
var Auto = Value{Unit: UnitAuto}

// IsAuto reports whether the value delegates to intrinsic measurement.
func (v Value) IsAuto() bool { return v.Unit == UnitAuto }

func (v Value) String() string {
	switch v.Unit {
	case UnitAuto:
		return "auto"
	case UnitFill:
		return "fill"
	case UnitCalc:
		return v.src
	case UnitPx:
		return strconv.FormatFloat(v.Amount, 'g', -1, 64) + "px"
	default:
		return strconv.FormatFloat(v.Amount, 'g', -1, 64) + v.Unit.String()
	}
}

// Context supplies the numeric environment a size resolves against.
type Context struct {
	// ParentContent is the parent's box size on the resolved axis, minus the
	// parent's own padding on that axis. Percentages and fill resolve
	// against this, never against the raw parent box.
	ParentContent float64
	// Viewport resolves vw/vh units.
	Viewport Viewport
	// AutoMeasure returns the node's intrinsic size on the resolved axis.
	// When nil, auto resolves to 0.
	AutoMeasure func() float64
}

// Parse converts a raw prop value into a Value. Numeric types become fixed
// pixel lengths. Strings accept "123", "123px", "50%", "10vw", "8vh",
// "fill", "auto", and "calc(...)". Anything else is a *errors.SizeParseError.
func Parse(raw any) (Value, error) {
	switch v := raw.(type) {
	case Value:
		return v, nil
	case float64:
		return Px(v), nil
	case float32:
		return Px(float64(v)), nil
	case int:
		return Px(float64(v)), nil
	case int64:
		return Px(float64(v)), nil
	case string:
		return parseString(v)
	case nil:
		return Auto, nil
	default:
		return Value{}, &errors.SizeParseError{
			Input:  fmt.Sprintf("%v", raw),
			Pos:    -1,
			Reason: fmt.Sprintf("unsupported size type %T", raw),
		}
	}
}

func parseString(s string) (Value, error) {
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case "fill":
		return Fill, nil
	case "auto":
		return Auto, nil
	}
	if strings.HasPrefix(trimmed, "calc(") && strings.HasSuffix(trimmed, ")") {
		inner := trimmed[len("calc(") : len(trimmed)-1]
		node, err := parseCalc(inner, trimmed)
		if err != nil {
			return Value{}, err
		}
		return Value{Unit: UnitCalc, expr: node, src: trimmed}, nil
	}
	return parseScalar(trimmed, trimmed, 0)
}

// parseScalar parses a single "<number><unit>" term. base and offset locate
// the term inside the full expression for error reporting.
func parseScalar(term, base string, offset int) (Value, error) {
	unit := UnitPx
	digits := term
	switch {
	case strings.HasSuffix(term, "px"):
		digits = term[:len(term)-2]
	case strings.HasSuffix(term, "%"):
		unit = UnitPercent
		digits = term[:len(term)-1]
	case strings.HasSuffix(term, "vw"):
		unit = UnitVw
		digits = term[:len(term)-2]
	case strings.HasSuffix(term, "vh"):
		unit = UnitVh
		digits = term[:len(term)-2]
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(digits), 64)
	if err != nil {
		reason := "expected a number with optional px/%/vw/vh suffix"
		if digits != term {
			reason = fmt.Sprintf("invalid number %q", strings.TrimSpace(digits))
		}
		return Value{}, &errors.SizeParseError{Input: base, Pos: offset, Reason: reason}
	}
	return Value{Unit: unit, Amount: amount}, nil
}

// Resolve evaluates the value against a context, returning pixels.
// Malformed calc arithmetic (division by zero) surfaces as a
// *errors.SizeParseError; callers decide whether to fall back.
func (v Value) Resolve(ctx Context) (float64, error) {
	switch v.Unit {
	case UnitPx:
		return v.Amount, nil
	case UnitPercent:
		return v.Amount / 100 * ctx.ParentContent, nil
	case UnitFill:
		return ctx.ParentContent, nil
	case UnitVw:
		return v.Amount / 100 * ctx.Viewport.Width, nil
	case UnitVh:
		return v.Amount / 100 * ctx.Viewport.Height, nil
	case UnitAuto:
		if ctx.AutoMeasure != nil {
			return ctx.AutoMeasure(), nil
		}
		return 0, nil
	case UnitCalc:
		return v.expr.eval(ctx, v.src)
	default:
		return 0, &errors.SizeParseError{
			Input:  v.String(),
			Pos:    -1,
			Reason: fmt.Sprintf("unknown unit %d", int(v.Unit)),
		}
	}
}

// Clamp applies optional min/max bounds to an already-resolved length.
// Min wins when the bounds cross.
func Clamp(v float64, min, max *float64) float64 {
	if max != nil && v > *max {
		v = *max
	}
	if min != nil && v < *min {
		v = *min
	}
	return v
}
