// Package random provides seed generation and the randomness sources used
// to sample dice.
//
// Seeds come from crypto/rand so independent rolls do not share a stream.
// Sources built from a seed are deterministic, which is what makes a roll
// replayable from its recorded seed.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SeedSource records where the seed of a roll came from.
type SeedSource string

const (
	// SeedSourceServer marks a seed generated by NewSeed.
	SeedSourceServer SeedSource = "server"
	// SeedSourceClient marks a seed supplied by the caller for replay.
	SeedSourceClient SeedSource = "client"
)

// ErrSeedOutOfRange indicates a seed that does not fit in an int64.
var ErrSeedOutOfRange = errors.New("seed must fit in a signed 64-bit integer")

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed returns the caller's seed when one is given, otherwise a fresh
// seed from generate.
func ResolveSeed(requested *int64, generate func() (int64, error)) (int64, SeedSource, error) {
	if requested != nil {
		return *requested, SeedSourceClient, nil
	}
	if generate == nil {
		return 0, "", errors.New("seed generator is not configured")
	}
	seed, err := generate()
	if err != nil {
		return 0, "", err
	}
	return seed, SeedSourceServer, nil
}

// ParseSeed parses a decimal seed. An empty string means no seed.
func ParseSeed(text string) (*int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	seed, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("parse seed %q: %w", text, ErrSeedOutOfRange)
		}
		return nil, fmt.Errorf("parse seed %q: %w", text, err)
	}
	return &seed, nil
}
