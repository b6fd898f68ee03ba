package notation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError reports a grammar violation.
type ParseError struct {
	Pos      int
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

// ParseString tokenizes and parses input.
func ParseString(input string, limits Limits) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, limits)
}

// Parse builds a syntax tree from tokens using precedence climbing:
//
//	expr     := term (('+' | '-') term)*
//	term     := factor (('*' | '/') factor)*
//	factor   := '-'? NUMBER | diceTerm | '(' expr ')'
//	diceTerm := NUMBER? DICE MODIFIER?
//
// Per-term bounds and parenthesis nesting are checked against limits while
// parsing; callers still run Limits.Validate on the result for the totals.
func Parse(tokens []Token, limits Limits) (Node, error) {
	p := &parser{tokens: tokens, limits: limits.Normalize()}
	if p.peek().Kind == KindEOF {
		return nil, &ParseError{Pos: p.peek().Pos, Expected: "expression", Found: "end of input"}
	}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != KindEOF {
		expected := "operator or end of input"
		if tok.Kind == KindRParen {
			expected = "matching '(' for ')'"
		}
		if tok.Kind == KindModifier {
			expected = "modifier directly after a dice term"
		}
		return nil, &ParseError{Pos: tok.Pos, Expected: expected, Found: tok.describe()}
	}
	return root, nil
}

type parser struct {
	tokens []Token
	pos    int
	limits Limits
	depth  int
}

func (p *parser) peek() Token {
	return p.peekAt(0)
}

func (p *parser) peekAt(offset int) Token {
	i := p.pos + offset
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	end := 0
	if len(p.tokens) > 0 {
		last := p.tokens[len(p.tokens)-1]
		end = last.Pos + len(last.Text)
	}
	return Token{Kind: KindEOF, Pos: end}
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) atOperator(ops ...Op) (Op, bool) {
	tok := p.peek()
	if tok.Kind != KindOperator {
		return 0, false
	}
	op := Op(tok.Text[0])
	for _, candidate := range ops {
		if op == candidate {
			return op, true
		}
	}
	return 0, false
}

func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.atOperator(OpAdd, OpSub)
		if !ok {
			return left, nil
		}
		opTok := p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right, Pos: opTok.Pos}
	}
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.atOperator(OpMul, OpDiv)
		if !ok {
			return left, nil
		}
		opTok := p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		if op == OpDiv {
			if lit, ok := Unwrap(right).(*Literal); ok && lit.Value == 0 {
				return nil, &ParseError{Pos: right.Position(), Expected: "non-zero divisor", Found: "0"}
			}
		}
		left = &BinaryOp{Op: op, Left: left, Right: right, Pos: opTok.Pos}
	}
}

func (p *parser) parseFactor() (Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case KindNumber:
		p.next()
		if p.peek().Kind == KindDice {
			return p.parseDice(&tok)
		}
		value, err := parseLiteral(tok.Text, tok.Pos)
		if err != nil {
			return nil, err
		}
		return &Literal{Value: value, Pos: tok.Pos}, nil
	case KindDice:
		return p.parseDice(nil)
	case KindLParen:
		p.next()
		p.depth++
		if err := p.limits.checkDepth(p.depth+1, tok.Pos); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing := p.peek()
		if closing.Kind != KindRParen {
			return nil, &ParseError{Pos: closing.Pos, Expected: "')'", Found: closing.describe()}
		}
		p.next()
		p.depth--
		return &Group{Inner: inner, Pos: tok.Pos}, nil
	case KindOperator:
		if Op(tok.Text[0]) == OpSub {
			return p.parseNegative()
		}
		return nil, &ParseError{Pos: tok.Pos, Expected: "number, dice or '('", Found: tok.describe()}
	case KindModifier:
		return nil, &ParseError{Pos: tok.Pos, Expected: "modifier directly after a dice term", Found: tok.describe()}
	default:
		return nil, &ParseError{Pos: tok.Pos, Expected: "number, dice or '('", Found: tok.describe()}
	}
}

// parseNegative accepts unary minus only directly before a number literal.
func (p *parser) parseNegative() (Node, error) {
	minus := p.next()
	tok := p.peek()
	if tok.Kind != KindNumber || p.peekAt(1).Kind == KindDice {
		return nil, &ParseError{Pos: tok.Pos, Expected: "number literal after unary minus", Found: tok.describe()}
	}
	p.next()
	value, err := parseLiteral("-"+tok.Text, tok.Pos)
	if err != nil {
		return nil, err
	}
	return &Literal{Value: value, Pos: minus.Pos}, nil
}

// parseDice consumes a DICE token and an optional MODIFIER. countTok is the
// already consumed leading count, if any.
func (p *parser) parseDice(countTok *Token) (Node, error) {
	diceTok := p.next()
	term := &DiceTerm{Count: 1, Pos: diceTok.Pos}
	if countTok != nil {
		term.Pos = countTok.Pos
		count, err := p.parseBound(countTok.Text, countTok.Pos, "dice count of at least 1", ReasonTotalDice, p.limits.MaxTotalDice)
		if err != nil {
			return nil, err
		}
		term.Count = count
	}

	sides := diceTok.Text[1:]
	if strings.EqualFold(sides, "f") {
		term.Fate = true
	} else {
		value, err := p.parseBound(sides, diceTok.Pos+1, "at least 1 side", ReasonSides, p.limits.MaxSides)
		if err != nil {
			return nil, err
		}
		term.Sides = value
	}
	if err := p.limits.checkTerm(term.Count, term.Sides, term.Fate, term.Pos); err != nil {
		return nil, err
	}

	if p.peek().Kind == KindModifier {
		kd, err := parseKeepDrop(p.next(), term.Count)
		if err != nil {
			return nil, err
		}
		term.KeepDrop = kd
	}
	return term, nil
}

// parseBound parses a positive count or sides literal. Zero is a grammar
// error; anything above limit is a resource error.
func (p *parser) parseBound(text string, pos int, expected string, reason Reason, limit int) (int, error) {
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &ResourceError{Reason: reason, Limit: limit, Actual: math.MaxInt64, Pos: pos}
		}
		return 0, &ParseError{Pos: pos, Expected: expected, Found: fmt.Sprintf("%q", text)}
	}
	if value < 1 {
		return 0, &ParseError{Pos: pos, Expected: expected, Found: text}
	}
	if value > int64(limit) {
		return 0, &ResourceError{Reason: reason, Limit: limit, Actual: value, Pos: pos}
	}
	return int(value), nil
}

func parseKeepDrop(tok Token, count int) (*KeepDrop, error) {
	var mode KeepDropMode
	switch strings.ToLower(tok.Text[:2]) {
	case "kh":
		mode = KeepHigh
	case "kl":
		mode = KeepLow
	case "dh":
		mode = DropHigh
	case "dl":
		mode = DropLow
	default:
		return nil, &ParseError{Pos: tok.Pos, Expected: "kh, kl, dh or dl", Found: tok.describe()}
	}
	expected := fmt.Sprintf("%s count between 1 and %d", mode, count)
	n, err := strconv.ParseInt(tok.Text[2:], 10, 64)
	if err != nil || n < 1 || n > int64(count) {
		return nil, &ParseError{Pos: tok.Pos, Expected: expected, Found: tok.describe()}
	}
	return &KeepDrop{Mode: mode, N: int(n)}, nil
}

func parseLiteral(text string, pos int) (int64, error) {
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &ParseError{Pos: pos, Expected: "integer within 64-bit range", Found: text}
	}
	return value, nil
}
