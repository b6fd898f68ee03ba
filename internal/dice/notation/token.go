// Package notation tokenizes and parses tabletop dice notation such as
// "3d6+5", "2d20kh1", "4dF" or "(1d8+2)*3" into an evaluable syntax tree.
//
// Parsing enforces the resource limits in Limits so an accepted tree is
// always safe to hand to an evaluator.
package notation

import "fmt"

// Kind identifies the lexical class of a token.
type Kind int

const (
	KindEOF Kind = iota
	KindNumber
	KindDice
	KindOperator
	KindLParen
	KindRParen
	KindModifier
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "end of input"
	case KindNumber:
		return "number"
	case KindDice:
		return "dice"
	case KindOperator:
		return "operator"
	case KindLParen:
		return "'('"
	case KindRParen:
		return "')'"
	case KindModifier:
		return "modifier"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of a dice expression.
type Token struct {
	Kind Kind
	Text string
	// Pos is the 0-based byte offset of the token in the input.
	Pos int
}

func (t Token) describe() string {
	if t.Kind == KindEOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
