package dice

import (
	"fmt"
	"math/rand"
)

// Sides is the number of faces on each die.
const Sides = 6

// Result is the outcome of rolling the pair of dice.
type Result struct {
	Die1 int `json:"die1"`
	Die2 int `json:"die2"`
}

// Total returns the sum of both dice.
func (r Result) Total() int {
	return r.Die1 + r.Die2
}

// IsDouble reports whether both dice show the same face.
func (r Result) IsDouble() bool {
	return r.Die1 == r.Die2
}

func (r Result) String() string {
	return fmt.Sprintf("%d+%d", r.Die1, r.Die2)
}

// Valid reports whether both dice are within [1, Sides].
func (r Result) Valid() bool {
	return r.Die1 >= 1 && r.Die1 <= Sides && r.Die2 >= 1 && r.Die2 <= Sides
}

// Roller produces dice results. The game only depends on this interface so
// tests and replays can substitute fixed sequences.
type Roller interface {
	Roll() Result
}

// Dice rolls a fair pair of six-sided dice from a deterministic generator.
type Dice struct {
	rng *rand.Rand
}

// New creates dice drawing from rng.
func New(rng *rand.Rand) *Dice {
	return &Dice{rng: rng}
}

// NewSeeded creates dice with their own seeded generator.
func NewSeeded(seed int64) *Dice {
	return New(rand.New(NewSource(seed)))
}

// Roll rolls both dice.
func (d *Dice) Roll() Result {
	return Result{
		Die1: d.rng.Intn(Sides) + 1,
		Die2: d.rng.Intn(Sides) + 1,
	}
}

// Sequence replays a fixed list of results in order, wrapping when exhausted.
type Sequence struct {
	results []Result
	next    int
}

// NewSequence creates a roller that yields results in order.
func NewSequence(results ...Result) *Sequence {
	cp := make([]Result, len(results))
	copy(cp, results)
	return &Sequence{results: cp}
}

// Roll returns the next scripted result.
func (s *Sequence) Roll() Result {
	if len(s.results) == 0 {
		return Result{Die1: 1, Die2: 2}
	}
	r := s.results[s.next%len(s.results)]
	s.next++
	return r
}

// Push appends more scripted results.
func (s *Sequence) Push(results ...Result) {
	s.results = append(s.results, results...)
}
