package analytics

import (
	"cmp"
	"errors"
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ErrInvalidFilter indicates a ranking filter that does not parse, does not
// type-check, or uses an unsupported function.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterError reports the rejected filter. It matches ErrInvalidFilter.
type FilterError struct {
	Filter string
	Err    error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrInvalidFilter, e.Filter, e.Err)
}

func (e *FilterError) Unwrap() error { return e.Err }

func (e *FilterError) Is(target error) bool { return target == ErrInvalidFilter }

// rankDeclarations declares the fields a ranking filter may reference.
// Float fields compare against float literals (`luck_index > 1.0`).
func rankDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("scope", filtering.TypeString),
		filtering.DeclareIdent("luck_index", filtering.TypeFloat),
		filtering.DeclareIdent("luck_delta", filtering.TypeFloat),
		filtering.DeclareIdent("observed_mean", filtering.TypeFloat),
		filtering.DeclareIdent("sample_count", filtering.TypeInt),
	)
}

type predicate func(Ranking) (bool, error)

func compileFilter(filter string) (predicate, error) {
	if strings.TrimSpace(filter) == "" {
		return func(Ranking) (bool, error) { return true, nil }, nil
	}
	decls, err := rankDeclarations()
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(filter, decls)
	if err != nil {
		return nil, &FilterError{Filter: filter, Err: err}
	}
	if parsed.CheckedExpr == nil || parsed.CheckedExpr.GetExpr() == nil {
		return func(Ranking) (bool, error) { return true, nil }, nil
	}
	root := parsed.CheckedExpr.GetExpr()
	// Reject unsupported functions up front rather than on the first scope.
	if _, err := evalBool(root, Ranking{}); err != nil {
		return nil, &FilterError{Filter: filter, Err: err}
	}
	return func(r Ranking) (bool, error) { return evalBool(root, r) }, nil
}

func evalBool(e *expr.Expr, r Ranking) (bool, error) {
	call := e.GetCallExpr()
	if call == nil {
		return false, fmt.Errorf("unsupported expression type: %T", e.GetExprKind())
	}
	args := call.GetArgs()

	switch call.GetFunction() {
	case "AND", "_&&_":
		if len(args) != 2 {
			return false, errors.New("AND requires 2 arguments")
		}
		left, err := evalBool(args[0], r)
		if err != nil {
			return false, err
		}
		right, err := evalBool(args[1], r)
		if err != nil {
			return false, err
		}
		return left && right, nil
	case "OR", "_||_":
		if len(args) != 2 {
			return false, errors.New("OR requires 2 arguments")
		}
		left, err := evalBool(args[0], r)
		if err != nil {
			return false, err
		}
		right, err := evalBool(args[1], r)
		if err != nil {
			return false, err
		}
		return left || right, nil
	case "NOT", "!_":
		if len(args) != 1 {
			return false, errors.New("NOT requires 1 argument")
		}
		inner, err := evalBool(args[0], r)
		return !inner, err
	}

	if len(args) != 2 {
		return false, fmt.Errorf("%s requires 2 arguments", call.GetFunction())
	}
	c, err := compareOperands(args[0], args[1], r)
	if err != nil {
		return false, err
	}
	switch call.GetFunction() {
	case "=", "_==_":
		return c == 0, nil
	case "!=", "_!=_":
		return c != 0, nil
	case "<", "_<_":
		return c < 0, nil
	case "<=", "_<=_":
		return c <= 0, nil
	case ">", "_>_":
		return c > 0, nil
	case ">=", "_>=_":
		return c >= 0, nil
	default:
		return false, fmt.Errorf("unsupported function: %s", call.GetFunction())
	}
}

func compareOperands(left, right *expr.Expr, r Ranking) (int, error) {
	a, err := operand(left, r)
	if err != nil {
		return 0, err
	}
	b, err := operand(right, r)
	if err != nil {
		return 0, err
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y), nil
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y), nil
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func operand(e *expr.Expr, r Ranking) (any, error) {
	if ident := e.GetIdentExpr(); ident != nil {
		switch ident.GetName() {
		case "scope":
			return r.Scope, nil
		case "luck_index":
			return r.Overall.LuckIndex, nil
		case "luck_delta":
			return r.Overall.Delta, nil
		case "observed_mean":
			return r.Overall.ObservedMean, nil
		case "sample_count":
			return r.Overall.SampleCount, nil
		default:
			return nil, fmt.Errorf("unknown field: %s", ident.GetName())
		}
	}
	if c := e.GetConstExpr(); c != nil {
		switch v := c.GetConstantKind().(type) {
		case *expr.Constant_StringValue:
			return v.StringValue, nil
		case *expr.Constant_Int64Value:
			return v.Int64Value, nil
		case *expr.Constant_DoubleValue:
			return v.DoubleValue, nil
		default:
			return nil, fmt.Errorf("unsupported constant: %T", v)
		}
	}
	return nil, fmt.Errorf("unsupported operand: %T", e.GetExprKind())
}
