package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Source is a math/rand source that counts how many values it has produced.
// A (seed, draws) pair is enough to rebuild the exact generator position, which
// is what lets a restored game continue rolling and shuffling identically.
//
// Source deliberately does not implement rand.Source64 so every draw from a
// *rand.Rand goes through Int63 and is counted.
type Source struct {
	seed  int64
	draws uint64
	src   rand.Source
}

// NewSource creates a counting source from seed.
func NewSource(seed int64) *Source {
	return &Source{seed: seed, src: rand.NewSource(seed)}
}

// RestoreSource rebuilds a source and advances it past draws values.
func RestoreSource(seed int64, draws uint64) *Source {
	s := NewSource(seed)
	for i := uint64(0); i < draws; i++ {
		s.Int63()
	}
	return s
}

// Int63 implements rand.Source.
func (s *Source) Int63() int64 {
	s.draws++
	return s.src.Int63()
}

// Seed implements rand.Source and resets the draw counter.
func (s *Source) Seed(seed int64) {
	s.seed = seed
	s.draws = 0
	s.src.Seed(seed)
}

// SeedValue returns the seed the source started from.
func (s *Source) SeedValue() int64 {
	return s.seed
}

// Draws returns the number of values produced since seeding.
func (s *Source) Draws() uint64 {
	return s.draws
}

// AdvanceTo burns values until Draws reaches n. It reports false when the
// source is already past n.
func (s *Source) AdvanceTo(n uint64) bool {
	if s.draws > n {
		return false
	}
	for s.draws < n {
		s.Int63()
	}
	return true
}

// RandomSeed returns a seed read from the operating system's entropy source.
func RandomSeed() (int64, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) &^ (1 << 63)), nil
}
