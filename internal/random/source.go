package random

import (
	"math/rand"
	"sync"
)

// Source yields uniformly distributed integers.
type Source interface {
	// IntInRange returns an integer in [low, high]. high must be >= low.
	IntInRange(low, high int64) int64
}

// Seeded is a deterministic source backed by math/rand. It is not safe for
// concurrent use; create one per roll or wrap it with NewLocked.
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded returns a source whose sequence is fully determined by seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

// IntInRange implements Source.
func (s *Seeded) IntInRange(low, high int64) int64 {
	return low + s.rng.Int63n(high-low+1)
}

// Locked serializes access to a shared source.
type Locked struct {
	mu  sync.Mutex
	src Source
}

// NewLocked wraps src so it may be shared between goroutines.
func NewLocked(src Source) *Locked {
	return &Locked{src: src}
}

// IntInRange implements Source.
func (l *Locked) IntInRange(low, high int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntInRange(low, high)
}
