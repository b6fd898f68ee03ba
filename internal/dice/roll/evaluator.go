package roll

import (
	"errors"
	"fmt"

	"github.com/louisbranch/kobold-keeper/internal/dice/notation"
)

// Source yields uniformly distributed integers.
type Source interface {
	// IntInRange returns an integer in [low, high].
	IntInRange(low, high int64) int64
}

// ErrMissingExpression indicates Evaluate was called without a tree.
var ErrMissingExpression = errors.New("expression is required")

// ErrMissingSource indicates Evaluate was called without a randomness source.
var ErrMissingSource = errors.New("randomness source is required")

// Evaluator walks parsed expressions. It holds no mutable state and is safe
// for concurrent use; the Source passed to Evaluate is not shared by it.
type Evaluator struct {
	limits notation.Limits
}

// NewEvaluator returns an evaluator enforcing limits.
func NewEvaluator(limits notation.Limits) *Evaluator {
	return &Evaluator{limits: limits.Normalize()}
}

// Evaluate validates root against the limits and then rolls it.
//
// Validation happens before the first die is drawn, so a rejected
// expression consumes nothing from src. Evaluation either returns a complete
// Result or an error (*notation.ResourceError, *DivisionByZeroError,
// *OverflowError); never a partial result.
func (e *Evaluator) Evaluate(root notation.Node, src Source) (Result, error) {
	if root == nil {
		return Result{}, ErrMissingExpression
	}
	if src == nil {
		return Result{}, ErrMissingSource
	}
	if err := e.limits.Validate(root); err != nil {
		return Result{}, err
	}

	w := &walker{src: src}
	total, err := w.eval(root)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Total:      total,
		Terms:      w.terms,
		Expression: root.String(),
	}, nil
}

type walker struct {
	src   Source
	terms []TermResult
}

func (w *walker) eval(node notation.Node) (int64, error) {
	switch n := node.(type) {
	case *notation.Literal:
		w.terms = append(w.terms, TermResult{
			Kind:     TermLiteral,
			Notation: n.String(),
			Literal:  n.Value,
			Subtotal: n.Value,
		})
		return n.Value, nil
	case *notation.DiceTerm:
		return w.rollTerm(n)
	case *notation.Group:
		return w.eval(n.Inner)
	case *notation.BinaryOp:
		left, err := w.eval(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := w.eval(n.Right)
		if err != nil {
			return 0, err
		}
		return apply(n, left, right)
	default:
		panic(fmt.Sprintf("roll: unknown node %T", node))
	}
}

func (w *walker) rollTerm(n *notation.DiceTerm) (int64, error) {
	low, high := int64(1), int64(n.Sides)
	if n.Fate {
		low, high = -1, 1
	}

	dice := make([]Die, n.Count)
	for i := range dice {
		dice[i] = Die{Value: w.src.IntInRange(low, high), Index: i, Kept: true}
	}
	if n.KeepDrop != nil {
		applyKeepDrop(dice, *n.KeepDrop)
	}

	subtotal := int64(0)
	for _, d := range dice {
		if !d.Kept {
			continue
		}
		sum, ok := addChecked(subtotal, d.Value)
		if !ok {
			return 0, &OverflowError{Op: notation.OpAdd, Pos: n.Pos, Left: subtotal, Right: d.Value}
		}
		subtotal = sum
	}
	w.terms = append(w.terms, TermResult{
		Kind:     TermDice,
		Notation: n.String(),
		Die:      n.DieLabel(),
		Sides:    n.Sides,
		Fate:     n.Fate,
		Dice:     dice,
		Subtotal: subtotal,
	})
	return subtotal, nil
}
