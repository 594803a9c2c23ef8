// Package dice provides the randomness abstraction shared by the rarity
// weighter and the card drafter. A run owns exactly one Source so that a
// recorded seed replays the same drafts.
package dice

// Source is the randomness provider for tier sampling and card picks.
//
// Implementations are not required to be safe for concurrent use; the
// upgrade engine calls them from a single frame-stepped goroutine.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

// Seeded is a Source whose sequence is fully determined by its seed and
// the number of values drawn so far.
type Seeded interface {
	Source
	// Seed returns the seed the Source was constructed with.
	Seed() uint64
	// State returns the generator's current position, suitable for
	// RestoreSeededSource.
	State() ([]byte, error)
}
