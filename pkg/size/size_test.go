package size

import (
	"testing"

	"github.com/canopy-ui/canopy/pkg/errors"
)

func TestParseScalars(t *testing.T) {
	cases := []struct {
		input  string
		unit   Unit
		amount float64
	}{
		{"120", UnitPx, 120},
		{"120px", UnitPx, 120},
		{"-8px", UnitPx, -8},
		{"50%", UnitPercent, 50},
		{"12.5%", UnitPercent, 12.5},
		{"10vw", UnitVw, 10},
		{"8vh", UnitVh, 8},
		{"fill", UnitFill, 0},
		{"auto", UnitAuto, 0},
		{"  50%  ", UnitPercent, 50},
	}
	for _, tc := range cases {
		v, err := Parse(tc.input)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tc.input, err)
			continue
		}
		if v.Unit != tc.unit || v.Amount != tc.amount {
			t.Errorf("Parse(%q) = {%v %v}, want {%v %v}", tc.input, v.Unit, v.Amount, tc.unit, tc.amount)
		}
	}
}

func TestParseNumericTypes(t *testing.T) {
	for _, raw := range []any{42, int64(42), 42.0, float32(42)} {
		v, err := Parse(raw)
		if err != nil {
			t.Errorf("Parse(%T) failed: %v", raw, err)
			continue
		}
		if v.Unit != UnitPx || v.Amount != 42 {
			t.Errorf("Parse(%T) = %v, want 42px", raw, v)
		}
	}
}

func TestParseNilIsAuto(t *testing.T) {
	v, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) failed: %v", err)
	}
	if !v.IsAuto() {
		t.Errorf("Parse(nil) = %v, want auto", v)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "px", "12pt", "banana%", "1 2px"} {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("Parse(%q) should fail", input)
			continue
		}
		if _, ok := err.(*errors.SizeParseError); !ok {
			t.Errorf("Parse(%q) returned %T, want *errors.SizeParseError", input, err)
		}
	}
}

func TestParseRejectsUnsupportedType(t *testing.T) {
	_, err := Parse(struct{}{})
	if err == nil {
		t.Fatal("Parse(struct{}{}) should fail")
	}
	if _, ok := err.(*errors.SizeParseError); !ok {
		t.Errorf("got %T, want *errors.SizeParseError", err)
	}
}

func TestResolvePercentAgainstParentContent(t *testing.T) {
	v := Percent(50)
	got, err := v.Resolve(Context{ParentContent: 160})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != 80 {
		t.Errorf("50%% of 160 = %v, want 80", got)
	}
}

func TestResolveFillEqualsHundredPercent(t *testing.T) {
	ctx := Context{ParentContent: 317}
	fill, err := Fill.Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve(fill) failed: %v", err)
	}
	hundred, err := Percent(100).Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve(100%%) failed: %v", err)
	}
	if fill != hundred {
		t.Errorf("fill = %v, 100%% = %v; want equal", fill, hundred)
	}
}

func TestResolveViewportUnits(t *testing.T) {
	ctx := Context{Viewport: Viewport{Width: 1000, Height: 500}}

	w, err := Vw(10).Resolve(ctx)
	if err != nil || w != 100 {
		t.Errorf("10vw of 1000 = %v (err %v), want 100", w, err)
	}
	h, err := Vh(10).Resolve(ctx)
	if err != nil || h != 50 {
		t.Errorf("10vh of 500 = %v (err %v), want 50", h, err)
	}
}

func TestResolveAutoUsesMeasure(t *testing.T) {
	got, err := Auto.Resolve(Context{AutoMeasure: func() float64 { return 37 }})
	if err != nil || got != 37 {
		t.Errorf("auto with measure = %v (err %v), want 37", got, err)
	}

	got, err = Auto.Resolve(Context{})
	if err != nil || got != 0 {
		t.Errorf("auto without measure = %v (err %v), want 0", got, err)
	}
}

func TestClamp(t *testing.T) {
	min, max := 10.0, 20.0

	if got := Clamp(5, &min, &max); got != 10 {
		t.Errorf("Clamp(5) = %v, want 10", got)
	}
	if got := Clamp(25, &min, &max); got != 20 {
		t.Errorf("Clamp(25) = %v, want 20", got)
	}
	if got := Clamp(15, &min, &max); got != 15 {
		t.Errorf("Clamp(15) = %v, want 15", got)
	}
	if got := Clamp(15, nil, nil); got != 15 {
		t.Errorf("Clamp with no bounds = %v, want 15", got)
	}
}

func TestClampMinWinsWhenBoundsCross(t *testing.T) {
	min, max := 30.0, 20.0
	if got := Clamp(25, &min, &max); got != 30 {
		t.Errorf("crossed bounds: Clamp(25) = %v, want 30", got)
	}
}

func TestValueString(t *testing.T) {
	cases := map[string]Value{
		"120px": Px(120),
		"50%":   Percent(50),
		"fill":  Fill,
		"auto":  Auto,
	}
	for want, v := range cases {
		if got := v.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
