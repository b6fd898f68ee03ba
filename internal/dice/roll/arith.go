package roll

import (
	"fmt"
	"math"

	"github.com/louisbranch/kobold-keeper/internal/dice/notation"
)

// DivisionByZeroError reports a divisor that evaluated to zero.
type DivisionByZeroError struct {
	Pos int
	// Divisor is the notation of the right operand.
	Divisor string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero at position %d: %s evaluated to 0", e.Pos, e.Divisor)
}

// OverflowError reports an intermediate value outside the int64 range.
type OverflowError struct {
	Op    notation.Op
	Pos   int
	Left  int64
	Right int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("integer overflow at position %d: %d %s %d", e.Pos, e.Left, e.Op, e.Right)
}

// addChecked returns a+b and false when the sum leaves the int64 range.
func addChecked(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// apply combines a and b with integer semantics; division truncates toward
// zero.
func apply(n *notation.BinaryOp, a, b int64) (int64, error) {
	overflow := &OverflowError{Op: n.Op, Pos: n.Pos, Left: a, Right: b}
	switch n.Op {
	case notation.OpAdd:
		sum, ok := addChecked(a, b)
		if !ok {
			return 0, overflow
		}
		return sum, nil
	case notation.OpSub:
		if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
			return 0, overflow
		}
		return a - b, nil
	case notation.OpMul:
		if a == 0 || b == 0 {
			return 0, nil
		}
		if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return 0, overflow
		}
		product := a * b
		if product/b != a {
			return 0, overflow
		}
		return product, nil
	case notation.OpDiv:
		if b == 0 {
			return 0, &DivisionByZeroError{Pos: n.Right.Position(), Divisor: n.Right.String()}
		}
		if a == math.MinInt64 && b == -1 {
			return 0, overflow
		}
		return a / b, nil
	default:
		panic(fmt.Sprintf("roll: unknown operator %q", n.Op))
	}
}
