package analytics

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"go.einride.tech/aip/ordering"
)

// DefaultRankOrder ranks the luckiest scopes first.
const DefaultRankOrder = "luck_index desc, sample_count desc"

// rankPaths are the fields accepted in a ranking order_by.
var rankPaths = []string{"scope", "luck_index", "luck_delta", "observed_mean", "sample_count"}

// ErrInvalidOrderBy indicates a ranking order_by that does not parse or
// names an unknown field.
var ErrInvalidOrderBy = errors.New("invalid order_by")

// OrderByError reports the rejected order_by. It matches ErrInvalidOrderBy.
type OrderByError struct {
	OrderBy string
	Err     error
}

func (e *OrderByError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrInvalidOrderBy, e.OrderBy, e.Err)
}

func (e *OrderByError) Unwrap() error { return e.Err }

func (e *OrderByError) Is(target error) bool { return target == ErrInvalidOrderBy }

// Ranking is one scope's pooled comparison.
type Ranking struct {
	Scope   string     `json:"scope"`
	Overall Comparison `json:"overall"`
}

type rankRequest string

func (r rankRequest) GetOrderBy() string { return string(r) }

// Rank orders every scope with at least minSamples dice terms recorded by an
// AIP-132 order_by expression, e.g. "luck_index desc, scope". Ties on every
// listed field fall back to the scope name.
func (a *Aggregator) Rank(orderBy string, minSamples int64) ([]Ranking, error) {
	return a.RankMatching("", orderBy, minSamples)
}

// RankMatching is Rank restricted to the scopes matching an AIP-160 filter
// over the ranking fields, e.g. `sample_count >= 10 AND luck_index > 1.0`.
// An empty filter matches every scope.
func (a *Aggregator) RankMatching(filter, orderBy string, minSamples int64) ([]Ranking, error) {
	if orderBy == "" {
		orderBy = DefaultRankOrder
	}
	order, err := ordering.ParseOrderBy(rankRequest(orderBy))
	if err != nil {
		return nil, &OrderByError{OrderBy: orderBy, Err: err}
	}
	if err := order.ValidateForPaths(rankPaths...); err != nil {
		return nil, &OrderByError{OrderBy: orderBy, Err: err}
	}
	match, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	var rankings []Ranking
	for _, scope := range a.Scopes() {
		snapshot, ok := a.Compare(scope)
		if !ok || snapshot.Overall.SampleCount == 0 || snapshot.Overall.SampleCount < minSamples {
			continue
		}
		ranking := Ranking{Scope: scope, Overall: snapshot.Overall}
		matched, err := match(ranking)
		if err != nil {
			return nil, &FilterError{Filter: filter, Err: err}
		}
		if matched {
			rankings = append(rankings, ranking)
		}
	}

	slices.SortStableFunc(rankings, func(x, y Ranking) int {
		for _, field := range order.Fields {
			c := compareField(field.Path, x, y)
			if field.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(x.Scope, y.Scope)
	})
	return rankings, nil
}

func compareField(path string, x, y Ranking) int {
	switch path {
	case "scope":
		return cmp.Compare(x.Scope, y.Scope)
	case "luck_index":
		return cmp.Compare(x.Overall.LuckIndex, y.Overall.LuckIndex)
	case "luck_delta":
		return cmp.Compare(x.Overall.Delta, y.Overall.Delta)
	case "observed_mean":
		return cmp.Compare(x.Overall.ObservedMean, y.Overall.ObservedMean)
	case "sample_count":
		return cmp.Compare(x.Overall.SampleCount, y.Overall.SampleCount)
	default:
		return 0
	}
}
