package analytics

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/louisbranch/kobold-keeper/internal/dice/roll"
)

// ErrEmptyScope indicates a record or lookup without a scope.
var ErrEmptyScope = errors.New("scope is required")

// Snapshot is a point-in-time copy of a scope's statistics.
type Snapshot struct {
	Scope string `json:"scope"`
	// Dice holds one comparison per die type, ordered by die size with Fate
	// dice first.
	Dice    []Comparison `json:"dice"`
	Overall Comparison   `json:"overall"`
}

// Aggregator holds statistics for every scope. Updates to one scope are
// serialized by that scope's lock; different scopes never contend except
// briefly when a scope is first created.
type Aggregator struct {
	mu     sync.RWMutex
	scopes map[string]*scopeStats
}

// scopeStats stores fixed-size records in a slice indexed by die label.
type scopeStats struct {
	mu      sync.Mutex
	slots   map[string]int
	records []Stats
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{scopes: map[string]*scopeStats{}}
}

// Record folds every dice term of result into scope and returns the updated
// snapshot. Each call counts as one real roll; nothing is deduplicated.
// A result without dice terms records nothing and does not create the scope.
func (a *Aggregator) Record(scope string, result roll.Result) (Snapshot, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return Snapshot{}, ErrEmptyScope
	}
	terms := result.DiceTerms()
	if len(terms) == 0 {
		snapshot, _ := a.Compare(scope)
		return snapshot, nil
	}
	s := a.scope(scope)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, term := range terms {
		slot := s.slot(scope, term.Die)
		expected := float64(term.KeptCount()) * ExpectedDie(term.Sides, term.Fate)
		s.records[slot].observe(term.Subtotal, expected)
	}
	return s.snapshotLocked(scope), nil
}

// Compare returns the current snapshot of scope. The boolean is false when
// nothing was recorded for it.
func (a *Aggregator) Compare(scope string) (Snapshot, bool) {
	scope = strings.TrimSpace(scope)
	a.mu.RLock()
	s, ok := a.scopes[scope]
	a.mu.RUnlock()
	if !ok {
		return Snapshot{Scope: scope, Overall: Comparison{Die: OverallDie}}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(scope), true
}

// Scopes returns every known scope, sorted.
func (a *Aggregator) Scopes() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.scopes))
	for scope := range a.scopes {
		out = append(out, scope)
	}
	sort.Strings(out)
	return out
}

func (a *Aggregator) scope(scope string) *scopeStats {
	a.mu.RLock()
	s, ok := a.scopes[scope]
	a.mu.RUnlock()
	if ok {
		return s
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.scopes[scope]; ok {
		return s
	}
	s = &scopeStats{slots: map[string]int{}}
	a.scopes[scope] = s
	return s
}

func (s *scopeStats) slot(scope, die string) int {
	if i, ok := s.slots[die]; ok {
		return i
	}
	s.records = append(s.records, Stats{Scope: scope, Die: die})
	i := len(s.records) - 1
	s.slots[die] = i
	return i
}

func (s *scopeStats) snapshotLocked(scope string) Snapshot {
	overall := Stats{Scope: scope, Die: OverallDie}
	dice := make([]Comparison, 0, len(s.records))
	for _, record := range s.records {
		dice = append(dice, record.Compare())
		overall.merge(record)
	}
	sort.Slice(dice, func(i, j int) bool {
		return dieOrder(dice[i].Die) < dieOrder(dice[j].Die)
	})
	return Snapshot{Scope: scope, Dice: dice, Overall: overall.Compare()}
}

// dieOrder sorts "dF" before numbered dice and numbered dice by size.
func dieOrder(label string) int {
	sides, err := strconv.Atoi(strings.TrimPrefix(label, "d"))
	if err != nil {
		return 0
	}
	return sides
}
