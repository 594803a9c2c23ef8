package dice

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
)

// seedStream is the PCG stream constant paired with every run seed.
const seedStream = 0x9e3779b97f4a7c15

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are cryptographically secure and uniformly
// distributed in [0, n) for any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a cryptographically secure float64 in [0.0, 1.0).
func (c *cryptoSource) Float64() float64 {
	return float64(c.Intn(1<<53)) / (1 << 53)
}

// NewSeed draws a fresh run seed from crypto/rand.
//
// Postcondition: Returns a non-zero seed.
func NewSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	seed := binary.LittleEndian.Uint64(buf[:])
	if seed == 0 {
		seed = 1
	}
	return seed
}

// seededSource implements Seeded on top of a PCG generator.
type seededSource struct {
	seed uint64
	pcg  *mrand.PCG
	rng  *mrand.Rand
}

// NewSeededSource returns a deterministic Source for seed.
//
// Postcondition: Two Sources built from the same seed produce identical
// sequences for identical call patterns.
func NewSeededSource(seed uint64) Seeded {
	pcg := mrand.NewPCG(seed, seedStream)
	return &seededSource{seed: seed, pcg: pcg, rng: mrand.New(pcg)}
}

// RestoreSeededSource rebuilds a Source for seed positioned at state, as
// returned by Seeded.State. An empty state starts from the beginning of the
// seed's sequence.
//
// Postcondition: the returned Source continues exactly where the Source that
// produced state left off; or a non-nil error for a malformed state.
func RestoreSeededSource(seed uint64, state []byte) (Seeded, error) {
	src := NewSeededSource(seed).(*seededSource)
	if len(state) == 0 {
		return src, nil
	}
	if err := src.pcg.UnmarshalBinary(state); err != nil {
		return nil, fmt.Errorf("dice: restoring generator state: %w", err)
	}
	return src, nil
}

// Seed returns the construction seed.
func (s *seededSource) Seed() uint64 { return s.seed }

// State returns the PCG generator's marshalled position.
func (s *seededSource) State() ([]byte, error) {
	return s.pcg.MarshalBinary()
}

// Intn returns a deterministic int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return s.rng.IntN(n)
}

// Float64 returns a deterministic float64 in [0.0, 1.0).
func (s *seededSource) Float64() float64 {
	return s.rng.Float64()
}
