package analytics

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/louisbranch/kobold-keeper/internal/dice/notation"
	"github.com/louisbranch/kobold-keeper/internal/dice/roll"
	"github.com/louisbranch/kobold-keeper/internal/random"
)

func diceResult(die string, sides int, values ...int64) roll.Result {
	dice := make([]roll.Die, len(values))
	subtotal := int64(0)
	for i, v := range values {
		dice[i] = roll.Die{Value: v, Index: i, Kept: true}
		subtotal += v
	}
	return roll.Result{
		Total: subtotal,
		Terms: []roll.TermResult{{
			Kind:     roll.TermDice,
			Die:      die,
			Sides:    sides,
			Fate:     die == "dF",
			Dice:     dice,
			Subtotal: subtotal,
		}},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecordWelford(t *testing.T) {
	agg := NewAggregator()
	samples := []int64{2, 4, 4, 4, 5, 5, 7, 9}
	var snapshot Snapshot
	for _, v := range samples {
		var err error
		snapshot, err = agg.Record("character:1", diceResult("d10", 10, v))
		if err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}
	if len(snapshot.Dice) != 1 {
		t.Fatalf("dice comparisons = %d, want 1", len(snapshot.Dice))
	}
	got := snapshot.Dice[0]
	if got.SampleCount != 8 || !almostEqual(got.ObservedMean, 5) {
		t.Fatalf("comparison = %+v, want 8 samples mean 5", got)
	}
	// Sample variance of the series is 32/7.
	if !almostEqual(got.StdDev, math.Sqrt(32.0/7.0)) {
		t.Fatalf("stddev = %v, want %v", got.StdDev, math.Sqrt(32.0/7.0))
	}
	if !almostEqual(got.TheoreticalMean, 5.5) || !almostEqual(got.Delta, -0.5) {
		t.Fatalf("theoretical/delta = %v/%v, want 5.5/-0.5", got.TheoreticalMean, got.Delta)
	}
	if got.Min != 2 || got.Max != 9 {
		t.Fatalf("min/max = %d/%d, want 2/9", got.Min, got.Max)
	}
}

func TestRecordTheoreticalCountsKeptDiceOnly(t *testing.T) {
	result := roll.Result{Terms: []roll.TermResult{{
		Kind:  roll.TermDice,
		Die:   "d20",
		Sides: 20,
		Dice: []roll.Die{
			{Value: 3, Index: 0, Kept: false},
			{Value: 17, Index: 1, Kept: true},
		},
		Subtotal: 17,
	}}}
	agg := NewAggregator()
	snapshot, err := agg.Record(GlobalScope, result)
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if got := snapshot.Dice[0].TheoreticalMean; !almostEqual(got, 10.5) {
		t.Fatalf("theoretical mean = %v, want 10.5", got)
	}
}

func TestRecordFateHasZeroExpectation(t *testing.T) {
	agg := NewAggregator()
	snapshot, err := agg.Record(GlobalScope, diceResult("dF", 0, 1, -1, 0, 1))
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	got := snapshot.Dice[0]
	if got.Die != "dF" || got.TheoreticalMean != 0 || got.LuckIndex != 0 || got.ObservedMean != 1 {
		t.Fatalf("comparison = %+v", got)
	}
}

func TestSnapshotOrdersDiceAndPoolsOverall(t *testing.T) {
	agg := NewAggregator()
	scope := GroupScope("table")
	for _, result := range []roll.Result{
		diceResult("d20", 20, 20),
		diceResult("d6", 6, 1),
		diceResult("dF", 0, 1),
		diceResult("d20", 20, 10),
	} {
		if _, err := agg.Record(scope, result); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}
	snapshot, ok := agg.Compare(scope)
	if !ok {
		t.Fatal("expected recorded scope")
	}
	labels := []string{}
	for _, c := range snapshot.Dice {
		labels = append(labels, c.Die)
	}
	if len(labels) != 3 || labels[0] != "dF" || labels[1] != "d6" || labels[2] != "d20" {
		t.Fatalf("die order = %v, want [dF d6 d20]", labels)
	}
	overall := snapshot.Overall
	if overall.Die != OverallDie || overall.SampleCount != 4 || !almostEqual(overall.ObservedMean, 8) {
		t.Fatalf("overall = %+v, want 4 samples mean 8", overall)
	}
	// Expected: 10.5 + 3.5 + 0 + 10.5 over four samples.
	if !almostEqual(overall.TheoreticalMean, 6.125) {
		t.Fatalf("overall theoretical = %v, want 6.125", overall.TheoreticalMean)
	}
	// Population of subtotals {20, 1, 1, 10}: mean 8, squared deviations 246.
	if !almostEqual(overall.StdDev, math.Sqrt(246.0/3.0)) {
		t.Fatalf("overall stddev = %v, want %v", overall.StdDev, math.Sqrt(246.0/3.0))
	}
	if overall.Min != 1 || overall.Max != 20 {
		t.Fatalf("overall min/max = %d/%d, want 1/20", overall.Min, overall.Max)
	}
}

func TestRecordRejectsEmptyScope(t *testing.T) {
	agg := NewAggregator()
	if _, err := agg.Record("  ", diceResult("d6", 6, 3)); !errors.Is(err, ErrEmptyScope) {
		t.Fatalf("Record error = %v, want %v", err, ErrEmptyScope)
	}
	if _, ok := agg.Compare("missing"); ok {
		t.Fatal("expected unknown scope")
	}
}

func TestRecordLiteralOnlyLeavesStatsEmpty(t *testing.T) {
	agg := NewAggregator()
	snapshot, err := agg.Record(UserScope("u1"), roll.Result{Total: 4, Terms: []roll.TermResult{{Kind: roll.TermLiteral, Literal: 4}}})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if len(snapshot.Dice) != 0 || snapshot.Overall.SampleCount != 0 {
		t.Fatalf("snapshot = %+v, want empty", snapshot)
	}
	if scopes := agg.Scopes(); len(scopes) != 0 {
		t.Fatalf("Scopes = %v, want none", scopes)
	}
	if _, ok := agg.Compare(UserScope("u1")); ok {
		t.Fatal("Compare reported statistics for a literal-only scope")
	}
	rankings, err := agg.Rank("", 0)
	if err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}
	if len(rankings) != 0 {
		t.Fatalf("Rank = %+v, want no entries", rankings)
	}
}

func TestRecordConcurrentSameScope(t *testing.T) {
	agg := NewAggregator()
	scope := CharacterScope("c1")
	const workers, perWorker = 8, 250
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := agg.Record(scope, diceResult("d6", 6, 4)); err != nil {
					t.Errorf("Record returned error: %v", err)
					return
				}
				if _, err := agg.Record(GlobalScope, diceResult("d6", 6, 4)); err != nil {
					t.Errorf("Record returned error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	for _, s := range []string{scope, GlobalScope} {
		snapshot, _ := agg.Compare(s)
		if snapshot.Overall.SampleCount != workers*perWorker {
			t.Fatalf("%s sample count = %d, want %d", s, snapshot.Overall.SampleCount, workers*perWorker)
		}
		if !almostEqual(snapshot.Overall.ObservedMean, 4) {
			t.Fatalf("%s mean = %v, want 4", s, snapshot.Overall.ObservedMean)
		}
	}
}

func TestObservedMeanConvergesForD20(t *testing.T) {
	node, err := notation.ParseString("1d20", notation.DefaultLimits())
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	evaluator := roll.NewEvaluator(notation.DefaultLimits())
	src := random.NewSeeded(2024)
	agg := NewAggregator()

	checkpoints := []struct {
		rolls     int
		tolerance float64
	}{
		{rolls: 1000, tolerance: 1.0},
		{rolls: 20000, tolerance: 0.25},
		{rolls: 200000, tolerance: 0.08},
	}
	recorded := 0
	for _, cp := range checkpoints {
		for ; recorded < cp.rolls; recorded++ {
			result, err := evaluator.Evaluate(node, src)
			if err != nil {
				t.Fatalf("Evaluate returned error: %v", err)
			}
			if _, err := agg.Record(GlobalScope, result); err != nil {
				t.Fatalf("Record returned error: %v", err)
			}
		}
		snapshot, _ := agg.Compare(GlobalScope)
		got := snapshot.Dice[0]
		if got.TheoreticalMean != 10.5 {
			t.Fatalf("theoretical mean = %v, want 10.5", got.TheoreticalMean)
		}
		if diff := math.Abs(got.ObservedMean - 10.5); diff > cp.tolerance {
			t.Fatalf("after %d rolls observed mean = %v, off by %v (> %v)", cp.rolls, got.ObservedMean, diff, cp.tolerance)
		}
	}
	snapshot, _ := agg.Compare(GlobalScope)
	// A fair d20 has standard deviation sqrt(399/12).
	if diff := math.Abs(snapshot.Dice[0].StdDev - math.Sqrt(399.0/12.0)); diff > 0.05 {
		t.Fatalf("stddev = %v, off by %v", snapshot.Dice[0].StdDev, diff)
	}
}
