// Package analytics keeps running roll statistics per scope and compares
// them with the theoretical expectation of the dice involved.
//
// Statistics use Welford's online algorithm, so memory per scope is constant
// regardless of how many rolls are recorded.
package analytics

import (
	"math"
	"strings"
)

// GlobalScope aggregates every roll.
const GlobalScope = "global"

// OverallDie labels the comparison that pools every die type of a scope.
const OverallDie = "all"

// CharacterScope returns the scope key for a character.
func CharacterScope(id string) string { return "character:" + strings.TrimSpace(id) }

// GroupScope returns the scope key for a group.
func GroupScope(id string) string { return "group:" + strings.TrimSpace(id) }

// UserScope returns the scope key for a user.
func UserScope(id string) string { return "user:" + strings.TrimSpace(id) }

// Stats is the running record for one (scope, die type) pair. Each sample
// is the subtotal of one dice term.
type Stats struct {
	Scope string
	Die   string
	Count int64
	Mean  float64
	// M2 is the sum of squared deviations from Mean.
	M2 float64
	// TheoreticalSum accumulates the expected subtotal of every sample.
	TheoreticalSum float64
	Min            int64
	Max            int64
}

// Comparison contrasts observed and expected values.
type Comparison struct {
	Die             string  `json:"die"`
	SampleCount     int64   `json:"sample_count"`
	ObservedMean    float64 `json:"observed_mean"`
	TheoreticalMean float64 `json:"theoretical_mean"`
	StdDev          float64 `json:"stddev"`
	// LuckIndex is ObservedMean / TheoreticalMean, 0 when nothing is expected.
	LuckIndex float64 `json:"luck_index"`
	// Delta is ObservedMean - TheoreticalMean.
	Delta float64 `json:"luck_delta"`
	Min   int64   `json:"min"`
	Max   int64   `json:"max"`
}

// ExpectedDie returns the mean face of a fair die: (sides+1)/2, or 0 for
// Fate dice.
func ExpectedDie(sides int, fate bool) float64 {
	if fate || sides <= 0 {
		return 0
	}
	return float64(sides+1) / 2
}

func (s *Stats) observe(sample int64, expected float64) {
	if s.Count == 0 || sample < s.Min {
		s.Min = sample
	}
	if s.Count == 0 || sample > s.Max {
		s.Max = sample
	}
	s.Count++
	x := float64(sample)
	delta := x - s.Mean
	s.Mean += delta / float64(s.Count)
	s.M2 += delta * (x - s.Mean)
	s.TheoreticalSum += expected
}

// merge folds other into s using the parallel form of Welford's update.
func (s *Stats) merge(other Stats) {
	if other.Count == 0 {
		return
	}
	if s.Count == 0 {
		scope, die := s.Scope, s.Die
		*s = other
		s.Scope, s.Die = scope, die
		return
	}
	n := s.Count + other.Count
	delta := other.Mean - s.Mean
	s.M2 += other.M2 + delta*delta*float64(s.Count)*float64(other.Count)/float64(n)
	s.Mean += delta * float64(other.Count) / float64(n)
	s.TheoreticalSum += other.TheoreticalSum
	s.Min = min(s.Min, other.Min)
	s.Max = max(s.Max, other.Max)
	s.Count = n
}

// Variance returns the sample variance, 0 with fewer than two samples.
func (s Stats) Variance() float64 {
	if s.Count < 2 {
		return 0
	}
	return s.M2 / float64(s.Count-1)
}

// TheoreticalMean returns the expected mean subtotal.
func (s Stats) TheoreticalMean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.TheoreticalSum / float64(s.Count)
}

// Compare summarizes the record.
func (s Stats) Compare() Comparison {
	c := Comparison{
		Die:             s.Die,
		SampleCount:     s.Count,
		ObservedMean:    s.Mean,
		TheoreticalMean: s.TheoreticalMean(),
		StdDev:          math.Sqrt(s.Variance()),
		Min:             s.Min,
		Max:             s.Max,
	}
	c.Delta = c.ObservedMean - c.TheoreticalMean
	if c.TheoreticalMean > 0 {
		c.LuckIndex = c.ObservedMean / c.TheoreticalMean
	}
	return c
}
