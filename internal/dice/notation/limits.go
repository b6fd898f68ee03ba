package notation

import "fmt"

// Default resource limits.
const (
	DefaultMaxTotalDice = 1000
	DefaultMaxSides     = 1000
	DefaultMaxDepth     = 64
)

// Reason names the bound a ResourceError exceeded.
type Reason string

const (
	ReasonTotalDice Reason = "total_dice"
	ReasonSides     Reason = "sides"
	ReasonDepth     Reason = "depth"
)

// ResourceError reports an expression that exceeds a configured limit.
type ResourceError struct {
	Reason Reason
	Limit  int
	Actual int64
	// Pos is the source offset of the node that crossed the limit.
	Pos int
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s limit exceeded at position %d: %d > %d", e.Reason, e.Pos, e.Actual, e.Limit)
}

// Limits bounds the resources a single expression may consume. Zero fields
// fall back to the package defaults.
type Limits struct {
	MaxTotalDice int
	MaxSides     int
	MaxDepth     int
}

// DefaultLimits returns the package default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxTotalDice: DefaultMaxTotalDice,
		MaxSides:     DefaultMaxSides,
		MaxDepth:     DefaultMaxDepth,
	}
}

// Normalize replaces non-positive fields with the defaults.
func (l Limits) Normalize() Limits {
	if l.MaxTotalDice <= 0 {
		l.MaxTotalDice = DefaultMaxTotalDice
	}
	if l.MaxSides <= 0 {
		l.MaxSides = DefaultMaxSides
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	return l
}

// Validate checks the whole tree against the limits: the total number of
// dice sampled, the sides of every term, and the tree depth. The walk is
// iterative so arbitrarily deep input cannot exhaust the stack.
func (l Limits) Validate(root Node) error {
	l = l.Normalize()
	if root == nil {
		return nil
	}

	type frame struct {
		node  Node
		depth int
	}
	stack := []frame{{node: root, depth: 1}}
	total := int64(0)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := l.checkDepth(f.depth, f.node.Position()); err != nil {
			return err
		}

		switch n := f.node.(type) {
		case *Literal:
		case *DiceTerm:
			if err := l.checkTerm(n.Count, n.Sides, n.Fate, n.Pos); err != nil {
				return err
			}
			total += int64(n.Count)
			if total > int64(l.MaxTotalDice) {
				return &ResourceError{Reason: ReasonTotalDice, Limit: l.MaxTotalDice, Actual: total, Pos: n.Pos}
			}
		case *BinaryOp:
			stack = append(stack, frame{n.Right, f.depth + 1}, frame{n.Left, f.depth + 1})
		case *Group:
			stack = append(stack, frame{n.Inner, f.depth + 1})
		default:
			panic(fmt.Sprintf("notation: unknown node %T", n))
		}
	}
	return nil
}

func (l Limits) checkTerm(count, sides int, fate bool, pos int) error {
	if count > l.MaxTotalDice {
		return &ResourceError{Reason: ReasonTotalDice, Limit: l.MaxTotalDice, Actual: int64(count), Pos: pos}
	}
	if !fate && sides > l.MaxSides {
		return &ResourceError{Reason: ReasonSides, Limit: l.MaxSides, Actual: int64(sides), Pos: pos}
	}
	return nil
}

func (l Limits) checkDepth(depth, pos int) error {
	if depth > l.MaxDepth {
		return &ResourceError{Reason: ReasonDepth, Limit: l.MaxDepth, Actual: int64(depth), Pos: pos}
	}
	return nil
}
