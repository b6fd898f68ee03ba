package notation

import (
	"fmt"
	"unicode/utf8"
)

// LexError reports a character outside the notation alphabet.
type LexError struct {
	Pos int
	// Char is the offending character, or 0 when input ended early.
	Char rune
}

func (e *LexError) Error() string {
	if e.Char == 0 {
		return fmt.Sprintf("unexpected end of input at position %d", e.Pos)
	}
	return fmt.Sprintf("unexpected character %q at position %d", e.Char, e.Pos)
}

// Tokenize splits input into tokens in a single left-to-right pass.
// Whitespace is skipped. The returned slice always ends with a KindEOF token
// positioned at len(input).
func Tokenize(input string) ([]Token, error) {
	tokens := make([]Token, 0, len(input)/2+1)
	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case isSpace(ch):
			i++
		case isDigit(ch):
			start := i
			i = scanDigits(input, i)
			tokens = append(tokens, Token{Kind: KindNumber, Text: input[start:i], Pos: start})
		case ch == '+' || ch == '-' || ch == '*' || ch == '/':
			tokens = append(tokens, Token{Kind: KindOperator, Text: input[i : i+1], Pos: i})
			i++
		case ch == '(':
			tokens = append(tokens, Token{Kind: KindLParen, Text: "(", Pos: i})
			i++
		case ch == ')':
			tokens = append(tokens, Token{Kind: KindRParen, Text: ")", Pos: i})
			i++
		case ch == 'd' || ch == 'D':
			tok, next, err := scanDice(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next
		case ch == 'k' || ch == 'K':
			tok, next, err := scanModifier(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next
		default:
			return nil, unexpectedAt(input, i)
		}
	}
	tokens = append(tokens, Token{Kind: KindEOF, Pos: len(input)})
	return tokens, nil
}

// scanDice handles every token that starts with 'd': a die ("d20", "dF")
// or a drop modifier ("dh1", "dl2").
func scanDice(input string, start int) (Token, int, error) {
	next := start + 1
	if next >= len(input) {
		return Token{}, 0, &LexError{Pos: next}
	}
	switch ch := input[next]; {
	case isDigit(ch):
		end := scanDigits(input, next)
		return Token{Kind: KindDice, Text: input[start:end], Pos: start}, end, nil
	case ch == 'f' || ch == 'F':
		return Token{Kind: KindDice, Text: input[start : next+1], Pos: start}, next + 1, nil
	case ch == 'h' || ch == 'H' || ch == 'l' || ch == 'L':
		return modifierCount(input, start, next+1)
	default:
		return Token{}, 0, unexpectedAt(input, next)
	}
}

// scanModifier handles "kh<n>" and "kl<n>".
func scanModifier(input string, start int) (Token, int, error) {
	next := start + 1
	if next >= len(input) {
		return Token{}, 0, &LexError{Pos: next}
	}
	if ch := input[next]; ch != 'h' && ch != 'H' && ch != 'l' && ch != 'L' {
		return Token{}, 0, unexpectedAt(input, next)
	}
	return modifierCount(input, start, next+1)
}

func modifierCount(input string, start, digits int) (Token, int, error) {
	if digits >= len(input) {
		return Token{}, 0, &LexError{Pos: digits}
	}
	if !isDigit(input[digits]) {
		return Token{}, 0, unexpectedAt(input, digits)
	}
	end := scanDigits(input, digits)
	return Token{Kind: KindModifier, Text: input[start:end], Pos: start}, end, nil
}

func scanDigits(input string, i int) int {
	for i < len(input) && isDigit(input[i]) {
		i++
	}
	return i
}

func unexpectedAt(input string, i int) *LexError {
	r, _ := utf8.DecodeRuneInString(input[i:])
	return &LexError{Pos: i, Char: r}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
