package size

import (
	"strings"
	"testing"

	"github.com/canopy-ui/canopy/pkg/errors"
)

func mustParse(t *testing.T, input string) Value {
	t.Helper()
	v, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	return v
}

func TestCalcMixedUnits(t *testing.T) {
	v := mustParse(t, "calc(50% + 10px)")
	got, err := v.Resolve(Context{ParentContent: 300})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != 160 {
		t.Errorf("calc(50%% + 10px) at 300 = %v, want 160", got)
	}
}

func TestCalcPrecedence(t *testing.T) {
	v := mustParse(t, "calc(50% * 2 - 10px)")
	got, err := v.Resolve(Context{ParentContent: 300})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != 290 {
		t.Errorf("calc(50%% * 2 - 10px) at 300 = %v, want 290", got)
	}
}

func TestCalcParentheses(t *testing.T) {
	v := mustParse(t, "calc((100px + 50px) / 3)")
	got, err := v.Resolve(Context{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != 50 {
		t.Errorf("calc((100px + 50px) / 3) = %v, want 50", got)
	}
}

func TestCalcKeywordOperands(t *testing.T) {
	v := mustParse(t, "calc(fill - 20px)")
	got, err := v.Resolve(Context{ParentContent: 120})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != 100 {
		t.Errorf("calc(fill - 20px) at 120 = %v, want 100", got)
	}
}

func TestCalcNegativeNumbers(t *testing.T) {
	v := mustParse(t, "calc(-10px + 30px)")
	got, err := v.Resolve(Context{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != 20 {
		t.Errorf("calc(-10px + 30px) = %v, want 20", got)
	}
}

func TestCalcViewportUnits(t *testing.T) {
	v := mustParse(t, "calc(10vw + 10vh)")
	got, err := v.Resolve(Context{Viewport: Viewport{Width: 1000, Height: 600}})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != 160 {
		t.Errorf("calc(10vw + 10vh) = %v, want 160", got)
	}
}

func TestCalcDivisionByZero(t *testing.T) {
	v := mustParse(t, "calc(100px / 0)")
	_, err := v.Resolve(Context{})
	if err == nil {
		t.Fatal("division by zero should fail")
	}
	perr, ok := err.(*errors.SizeParseError)
	if !ok {
		t.Fatalf("got %T, want *errors.SizeParseError", err)
	}
	if !strings.Contains(perr.Reason, "division by zero") {
		t.Errorf("unexpected reason %q", perr.Reason)
	}
}

func TestCalcParseErrors(t *testing.T) {
	cases := []string{
		"calc()",
		"calc(10px +)",
		"calc(+ 10px)",
		"calc(10px 20px)",
		"calc((10px + 5px)",
		"calc(10px ! 5px)",
		"calc(banana)",
		"calc(10foo)",
	}
	for _, input := range cases {
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

func TestCalcErrorPositionPointsIntoSource(t *testing.T) {
	_, err := Parse("calc(10px @ 5px)")
	perr, ok := err.(*errors.SizeParseError)
	if !ok {
		t.Fatalf("got %T, want *errors.SizeParseError", err)
	}
	if perr.Pos < 0 || perr.Pos >= len(perr.Input) {
		t.Fatalf("position %d outside input %q", perr.Pos, perr.Input)
	}
	if perr.Input[perr.Pos] != '@' {
		t.Errorf("position %d points at %q, want '@'", perr.Pos, perr.Input[perr.Pos])
	}
}

func TestCalcStringRoundTrips(t *testing.T) {
	src := "calc(50% + 10px)"
	v := mustParse(t, src)
	if v.String() != src {
		t.Errorf("String() = %q, want original source %q", v.String(), src)
	}
}
