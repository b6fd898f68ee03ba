// Package roll evaluates parsed dice expressions into itemized results.
//
// # Determinism
//
// Evaluation draws every die from the Source passed to Evaluate, in
// left-to-right order of the expression. Given a deterministic Source, the
// same tree always yields the same Result.
package roll

import (
	"strconv"
	"strings"
)

// TermKind distinguishes dice terms from constants in a Result.
type TermKind string

const (
	TermDice    TermKind = "dice"
	TermLiteral TermKind = "literal"
)

// Die is one sampled die. Index is its position within its term.
type Die struct {
	Value int64 `json:"value"`
	Index int   `json:"index"`
	Kept  bool  `json:"kept"`
}

// TermResult is the outcome of one leaf of the expression.
type TermResult struct {
	Kind     TermKind `json:"kind"`
	Notation string   `json:"notation"`
	// Die is the die label ("d20", "dF"); empty for literals.
	Die      string `json:"die,omitempty"`
	Sides    int    `json:"sides,omitempty"`
	Fate     bool   `json:"fate,omitempty"`
	Dice     []Die  `json:"dice,omitempty"`
	Subtotal int64  `json:"subtotal"`
	Literal  int64  `json:"literal,omitempty"`
}

// Result is the itemized outcome of one evaluation.
type Result struct {
	Total int64        `json:"total"`
	Terms []TermResult `json:"terms"`
	// Expression echoes the evaluated expression in compact notation.
	Expression string `json:"expression"`
	// Seed is the seed the source was built from. Evaluate leaves it zero;
	// callers that seed the source record it here for replay.
	Seed int64 `json:"seed"`
}

// KeptCount returns how many dice of the term were kept.
func (t TermResult) KeptCount() int {
	kept := 0
	for _, d := range t.Dice {
		if d.Kept {
			kept++
		}
	}
	return kept
}

// String renders the term as "4d6dl1 [6 4 ~1 3] = 13"; dropped dice are
// prefixed with '~'.
func (t TermResult) String() string {
	if t.Kind == TermLiteral {
		return strconv.FormatInt(t.Literal, 10)
	}
	var b strings.Builder
	b.WriteString(t.Notation)
	b.WriteString(" [")
	for i, d := range t.Dice {
		if i > 0 {
			b.WriteByte(' ')
		}
		if !d.Kept {
			b.WriteByte('~')
		}
		b.WriteString(strconv.FormatInt(d.Value, 10))
	}
	b.WriteString("] = ")
	b.WriteString(strconv.FormatInt(t.Subtotal, 10))
	return b.String()
}

// DiceTerms returns only the dice terms of the result, in order.
func (r Result) DiceTerms() []TermResult {
	out := make([]TermResult, 0, len(r.Terms))
	for _, term := range r.Terms {
		if term.Kind == TermDice {
			out = append(out, term)
		}
	}
	return out
}
