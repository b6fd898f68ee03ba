package roll

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/louisbranch/kobold-keeper/internal/dice/notation"
	"github.com/louisbranch/kobold-keeper/internal/random"
)

// scriptedSource returns queued values and fails the test on exhaustion or
// when a value falls outside the requested range.
type scriptedSource struct {
	t      *testing.T
	values []int64
	calls  int
}

func (s *scriptedSource) IntInRange(low, high int64) int64 {
	s.t.Helper()
	if s.calls >= len(s.values) {
		s.t.Fatalf("scripted source exhausted after %d draws", s.calls)
	}
	v := s.values[s.calls]
	s.calls++
	if v < low || v > high {
		s.t.Fatalf("scripted value %d outside [%d, %d]", v, low, high)
	}
	return v
}

func evaluate(t *testing.T, input string, values ...int64) Result {
	t.Helper()
	node, err := notation.ParseString(input, notation.DefaultLimits())
	if err != nil {
		t.Fatalf("ParseString(%q) returned error: %v", input, err)
	}
	result, err := NewEvaluator(notation.DefaultLimits()).Evaluate(node, &scriptedSource{t: t, values: values})
	if err != nil {
		t.Fatalf("Evaluate(%q) returned error: %v", input, err)
	}
	return result
}

func keptFlags(term TermResult) []bool {
	flags := make([]bool, len(term.Dice))
	for i, d := range term.Dice {
		flags[i] = d.Kept
	}
	return flags
}

func TestEvaluateKeepHighest(t *testing.T) {
	result := evaluate(t, "2d6kh1", 3, 5)
	term := result.Terms[0]
	if term.Subtotal != 5 || result.Total != 5 {
		t.Fatalf("subtotal/total = %d/%d, want 5/5", term.Subtotal, result.Total)
	}
	if !reflect.DeepEqual(keptFlags(term), []bool{false, true}) {
		t.Fatalf("kept = %v, want [false true]", keptFlags(term))
	}
	if term.Dice[0].Value != 3 || term.Dice[1].Value != 5 {
		t.Fatalf("display order changed: %+v", term.Dice)
	}
}

func TestEvaluateFateDice(t *testing.T) {
	result := evaluate(t, "4dF", 1, -1, 0, 1)
	term := result.Terms[0]
	if term.Subtotal != 1 || result.Total != 1 {
		t.Fatalf("subtotal/total = %d/%d, want 1/1", term.Subtotal, result.Total)
	}
	if term.Die != "dF" || !term.Fate {
		t.Fatalf("term = %+v, want fate die", term)
	}
}

func TestEvaluateSumOfTerms(t *testing.T) {
	result := evaluate(t, "1d8+5d6+4", 7, 1, 2, 3, 4, 6)
	if result.Total != 7+1+2+3+4+6+4 {
		t.Fatalf("total = %d, want 27", result.Total)
	}
	if len(result.Terms) != 3 {
		t.Fatalf("terms = %d, want 3", len(result.Terms))
	}
	if result.Terms[2].Kind != TermLiteral || result.Terms[2].Literal != 4 {
		t.Fatalf("last term = %+v, want literal 4", result.Terms[2])
	}
	if result.Expression != "1d8+5d6+4" {
		t.Fatalf("expression = %q, want 1d8+5d6+4", result.Expression)
	}
	if got := len(result.DiceTerms()); got != 2 {
		t.Fatalf("dice terms = %d, want 2", got)
	}
}

func TestEvaluateKeepDropTieBreaks(t *testing.T) {
	tcs := []struct {
		input    string
		values   []int64
		kept     []bool
		subtotal int64
	}{
		{input: "3d6kh1", values: []int64{6, 2, 6}, kept: []bool{true, false, false}, subtotal: 6},
		{input: "3d6kl1", values: []int64{2, 5, 2}, kept: []bool{true, false, false}, subtotal: 2},
		{input: "3d6dh1", values: []int64{6, 2, 6}, kept: []bool{true, true, false}, subtotal: 8},
		{input: "3d6dl1", values: []int64{2, 5, 2}, kept: []bool{true, true, false}, subtotal: 7},
		{input: "4d6dl1", values: []int64{4, 1, 6, 3}, kept: []bool{true, false, true, true}, subtotal: 13},
		{input: "4d6kh2", values: []int64{5, 5, 5, 1}, kept: []bool{true, true, false, false}, subtotal: 10},
		{input: "3d6dh3", values: []int64{1, 2, 3}, kept: []bool{false, false, false}, subtotal: 0},
		{input: "2d20kh2", values: []int64{1, 20}, kept: []bool{true, true}, subtotal: 21},
	}
	for _, tc := range tcs {
		result := evaluate(t, tc.input, tc.values...)
		term := result.Terms[0]
		if !reflect.DeepEqual(keptFlags(term), tc.kept) {
			t.Fatalf("%s over %v kept = %v, want %v", tc.input, tc.values, keptFlags(term), tc.kept)
		}
		if term.Subtotal != tc.subtotal {
			t.Fatalf("%s over %v subtotal = %d, want %d", tc.input, tc.values, term.Subtotal, tc.subtotal)
		}
		for i, d := range term.Dice {
			if d.Index != i || d.Value != tc.values[i] {
				t.Fatalf("%s die %d = %+v, want index %d value %d", tc.input, i, d, i, tc.values[i])
			}
		}
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	tcs := map[string]int64{
		"2+3*4":     14,
		"(2+3)*4":   20,
		"7/2":       3,
		"-7/2":      -3,
		"7/-2":      -3,
		"10-2-3":    5,
		"1d6*-2":    -8,
		"(1d4+1)/2": 2,
	}
	for input, want := range tcs {
		result := evaluate(t, input, 4, 4)
		if result.Total != want {
			t.Fatalf("%s total = %d, want %d", input, result.Total, want)
		}
	}
}

func TestEvaluateRuntimeDivisionByZero(t *testing.T) {
	node, err := notation.ParseString("3d6/(1-1)", notation.DefaultLimits())
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	_, err = NewEvaluator(notation.Limits{}).Evaluate(node, &scriptedSource{t: t, values: []int64{1, 2, 3}})
	var divErr *DivisionByZeroError
	if !errors.As(err, &divErr) {
		t.Fatalf("Evaluate error = %v, want DivisionByZeroError", err)
	}
	if divErr.Pos != 4 || divErr.Divisor != "(1-1)" {
		t.Fatalf("DivisionByZeroError = %+v, want pos 4 divisor (1-1)", divErr)
	}

	node, err = notation.ParseString("1d6/(1d2-1)", notation.DefaultLimits())
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	_, err = NewEvaluator(notation.Limits{}).Evaluate(node, &scriptedSource{t: t, values: []int64{3, 1}})
	if !errors.As(err, &divErr) {
		t.Fatalf("Evaluate error = %v, want DivisionByZeroError", err)
	}
}

func TestEvaluateOverflow(t *testing.T) {
	tcs := []string{
		"9223372036854775807+1",
		"-9223372036854775807-2",
		"4611686018427387904*2",
		"-9223372036854775808/-1",
		"-9223372036854775808*-1",
	}
	for _, input := range tcs {
		node, err := notation.ParseString(input, notation.DefaultLimits())
		if err != nil {
			t.Fatalf("ParseString(%q) returned error: %v", input, err)
		}
		_, err = NewEvaluator(notation.Limits{}).Evaluate(node, &scriptedSource{t: t})
		var overflowErr *OverflowError
		if !errors.As(err, &overflowErr) {
			t.Fatalf("Evaluate(%q) error = %v, want OverflowError", input, err)
		}
	}
}

// maxSource always draws the highest face.
type maxSource struct{}

func (maxSource) IntInRange(_, high int64) int64 { return high }

func TestEvaluateDiceSubtotalOverflow(t *testing.T) {
	limits := notation.Limits{MaxTotalDice: 10, MaxSides: math.MaxInt}
	node, err := notation.ParseString("1+2d9223372036854775807", limits)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	result, err := NewEvaluator(limits).Evaluate(node, maxSource{})
	var overflowErr *OverflowError
	if !errors.As(err, &overflowErr) {
		t.Fatalf("Evaluate error = %v, total = %d, want OverflowError", err, result.Total)
	}
	if overflowErr.Op != notation.OpAdd || overflowErr.Pos != 2 {
		t.Fatalf("OverflowError = %+v, want + at position 2", overflowErr)
	}
	if overflowErr.Left != math.MaxInt64 || overflowErr.Right != math.MaxInt64 {
		t.Fatalf("OverflowError operands = %d, %d, want both %d", overflowErr.Left, overflowErr.Right, int64(math.MaxInt64))
	}
}

func TestEvaluateValidatesBeforeSampling(t *testing.T) {
	node := &notation.DiceTerm{Count: 9999, Sides: 6}
	src := &scriptedSource{t: t}
	_, err := NewEvaluator(notation.DefaultLimits()).Evaluate(node, src)
	var resErr *notation.ResourceError
	if !errors.As(err, &resErr) {
		t.Fatalf("Evaluate error = %v, want ResourceError", err)
	}
	if src.calls != 0 {
		t.Fatalf("source drawn %d times before rejection", src.calls)
	}
}

func TestEvaluateRequiresInputs(t *testing.T) {
	evaluator := NewEvaluator(notation.DefaultLimits())
	if _, err := evaluator.Evaluate(nil, random.NewSeeded(1)); !errors.Is(err, ErrMissingExpression) {
		t.Fatalf("Evaluate(nil) error = %v, want %v", err, ErrMissingExpression)
	}
	if _, err := evaluator.Evaluate(&notation.Literal{Value: 1}, nil); !errors.Is(err, ErrMissingSource) {
		t.Fatalf("Evaluate without source error = %v, want %v", err, ErrMissingSource)
	}
}

func TestEvaluateSeededIsDeterministicAndInRange(t *testing.T) {
	node, err := notation.ParseString("10d20kh3+4dF+8d6dl2", notation.DefaultLimits())
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	evaluator := NewEvaluator(notation.DefaultLimits())
	for seed := int64(0); seed < 50; seed++ {
		first, err := evaluator.Evaluate(node, random.NewSeeded(seed))
		if err != nil {
			t.Fatalf("Evaluate returned error: %v", err)
		}
		second, err := evaluator.Evaluate(node, random.NewSeeded(seed))
		if err != nil {
			t.Fatalf("Evaluate returned error: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("seed %d produced different results", seed)
		}
		for _, term := range first.DiceTerms() {
			low, high := int64(1), int64(term.Sides)
			if term.Fate {
				low, high = -1, 1
			}
			for _, d := range term.Dice {
				if d.Value < low || d.Value > high {
					t.Fatalf("%s rolled %d outside [%d, %d]", term.Notation, d.Value, low, high)
				}
			}
		}
		if kept := first.Terms[0].KeptCount(); kept != 3 {
			t.Fatalf("10d20kh3 kept %d dice, want 3", kept)
		}
		if kept := first.Terms[2].KeptCount(); kept != 6 {
			t.Fatalf("8d6dl2 kept %d dice, want 6", kept)
		}
	}
}

func TestTermResultString(t *testing.T) {
	result := evaluate(t, "4d6dl1+3", 6, 4, 1, 3)
	if got := result.Terms[0].String(); got != "4d6dl1 [6 4 ~1 3] = 13" {
		t.Fatalf("String() = %q", got)
	}
	if got := result.Terms[1].String(); got != "3" {
		t.Fatalf("String() = %q, want 3", got)
	}
}
