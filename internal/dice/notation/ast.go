package notation

import (
	"strconv"
	"strings"
)

// Node is a node of a parsed dice expression. The set of implementations is
// closed: *Literal, *DiceTerm, *BinaryOp and *Group.
type Node interface {
	// Position is the byte offset in the source that the node starts at
	// (for binary operations, the operator).
	Position() int
	// String renders the node back to compact notation.
	String() string
	node()
}

// Op is an arithmetic operator.
type Op byte

const (
	OpAdd Op = '+'
	OpSub Op = '-'
	OpMul Op = '*'
	OpDiv Op = '/'
)

func (o Op) String() string {
	return string(rune(o))
}

// KeepDropMode selects which dice of a term survive.
type KeepDropMode int

const (
	KeepHigh KeepDropMode = iota + 1
	KeepLow
	DropHigh
	DropLow
)

func (m KeepDropMode) String() string {
	switch m {
	case KeepHigh:
		return "kh"
	case KeepLow:
		return "kl"
	case DropHigh:
		return "dh"
	case DropLow:
		return "dl"
	default:
		return "?"
	}
}

// Keeps reports whether N counts the dice kept (true) or dropped (false).
func (m KeepDropMode) Keeps() bool {
	return m == KeepHigh || m == KeepLow
}

// KeepDrop is the optional selection applied to a dice term.
type KeepDrop struct {
	Mode KeepDropMode
	N    int
}

// Literal is an integer constant.
type Literal struct {
	Value int64
	Pos   int
}

// DiceTerm rolls Count dice with Sides faces, or Fate dice when Fate is set.
type DiceTerm struct {
	Count    int
	Sides    int
	Fate     bool
	KeepDrop *KeepDrop
	Pos      int
}

// BinaryOp combines two subtrees with an arithmetic operator.
type BinaryOp struct {
	Op    Op
	Left  Node
	Right Node
	Pos   int
}

// Group is a parenthesized subexpression.
type Group struct {
	Inner Node
	Pos   int
}

func (n *Literal) Position() int  { return n.Pos }
func (n *DiceTerm) Position() int { return n.Pos }
func (n *BinaryOp) Position() int { return n.Pos }
func (n *Group) Position() int    { return n.Pos }

func (*Literal) node()  {}
func (*DiceTerm) node() {}
func (*BinaryOp) node() {}
func (*Group) node()    {}

func (n *Literal) String() string {
	return strconv.FormatInt(n.Value, 10)
}

func (n *DiceTerm) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(n.Count))
	b.WriteByte('d')
	if n.Fate {
		b.WriteByte('F')
	} else {
		b.WriteString(strconv.Itoa(n.Sides))
	}
	if n.KeepDrop != nil {
		b.WriteString(n.KeepDrop.Mode.String())
		b.WriteString(strconv.Itoa(n.KeepDrop.N))
	}
	return b.String()
}

func (n *BinaryOp) String() string {
	return n.Left.String() + n.Op.String() + n.Right.String()
}

func (n *Group) String() string {
	return "(" + n.Inner.String() + ")"
}

// DieLabel names the die type of the term: "d20", or "dF" for Fate dice.
func (n *DiceTerm) DieLabel() string {
	if n.Fate {
		return "dF"
	}
	return "d" + strconv.Itoa(n.Sides)
}

// Unwrap strips any enclosing groups from node.
func Unwrap(node Node) Node {
	for {
		g, ok := node.(*Group)
		if !ok {
			return node
		}
		node = g.Inner
	}
}
