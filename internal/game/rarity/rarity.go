// Package rarity converts player luck into a probability distribution over
// the four rarity tiers and samples tiers from it.
package rarity

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/arena/internal/game/catalog"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Tiers is the fixed tier order used for weights and sampling.
var Tiers = catalog.Rarities

// Params are the tuning knobs of the weighter. Base and Shift are indexed in
// Tiers order.
type Params struct {
	Base         [4]float64
	Shift        [4]float64
	MinCommon    float64
	MaxLegendary float64
}

// DefaultParams returns the shipped tuning: 70/20/8/2 base odds, each luck
// point moving one percent from common to the higher tiers.
func DefaultParams() Params {
	return Params{
		Base:         [4]float64{0.70, 0.20, 0.08, 0.02},
		Shift:        [4]float64{-0.01, 0.005, 0.003, 0.002},
		MinCommon:    0.30,
		MaxLegendary: 0.10,
	}
}

// Validate reports every violation in p.
func (p Params) Validate() error {
	var errs []error
	sum := 0.0
	for i, b := range p.Base {
		if b < 0 || math.IsNaN(b) || math.IsInf(b, 0) {
			errs = append(errs, fmt.Errorf("base weight for %s must be a non-negative number, got %v", Tiers[i], b))
		}
		sum += b
	}
	if math.Abs(sum-1) > 1e-6 {
		errs = append(errs, fmt.Errorf("base weights must sum to 1, got %v", sum))
	}
	for i, s := range p.Shift {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			errs = append(errs, fmt.Errorf("luck shift for %s must be finite", Tiers[i]))
		}
	}
	if p.MinCommon < 0 || p.MinCommon > 1 {
		errs = append(errs, fmt.Errorf("min_common must be in [0,1], got %v", p.MinCommon))
	}
	if p.MaxLegendary < 0 || p.MaxLegendary > 1 {
		errs = append(errs, fmt.Errorf("max_legendary must be in [0,1], got %v", p.MaxLegendary))
	}
	if p.MinCommon+p.MaxLegendary > 1 {
		errs = append(errs, fmt.Errorf("min_common + max_legendary must not exceed 1, got %v", p.MinCommon+p.MaxLegendary))
	}
	return errors.Join(errs...)
}

// Weights is a probability per tier in Tiers order.
type Weights struct {
	P [4]float64
	// Degenerate is set when the luck-adjusted weights summed to zero or a
	// non-finite value and the uniform distribution was substituted.
	Degenerate bool
}

// Uniform returns equal odds for every tier.
func Uniform() Weights {
	return Weights{P: [4]float64{0.25, 0.25, 0.25, 0.25}}
}

// Of returns the probability of tier r, or 0 for an unknown tier.
func (w Weights) Of(r catalog.Rarity) float64 {
	i := r.Index()
	if i < 0 {
		return 0
	}
	return w.P[i]
}

// Compute derives tier weights from luck. The luck-shifted weights are
// clamped at zero and normalized. A tier that then breaks its bound (common
// below p.MinCommon, legendary above p.MaxLegendary) is pinned at the bound
// and the remaining mass is shared across the other tiers in proportion to
// their shifted weights.
//
// Precondition: p.Validate() == nil for the bounds to hold.
// Postcondition: every weight is >= 0 and the weights sum to 1. Unless the
// result is Degenerate, common >= p.MinCommon and legendary <= p.MaxLegendary.
func Compute(luck int, p Params) Weights {
	var raw [4]float64
	sum := 0.0
	for i := range raw {
		raw[i] = p.Base[i] + float64(luck)*p.Shift[i]
		if raw[i] < 0 {
			raw[i] = 0
		}
		sum += raw[i]
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		u := Uniform()
		u.Degenerate = true
		return u
	}

	var w Weights
	var pinned [4]bool
	for {
		mass, free := 1.0, 0.0
		for i, r := range raw {
			if pinned[i] {
				mass -= w.P[i]
			} else {
				free += r
			}
		}
		for i, r := range raw {
			if pinned[i] {
				continue
			}
			w.P[i] = 0
			if free > 0 {
				w.P[i] = mass * r / free
			}
		}
		if free <= 0 {
			// No unpinned tier has weight left; common takes the remainder.
			w.P[0] += mass
			return w
		}

		changed := false
		if !pinned[0] && w.P[0] < p.MinCommon {
			w.P[0], pinned[0], changed = p.MinCommon, true, true
		}
		if !pinned[3] && w.P[3] > p.MaxLegendary {
			w.P[3], pinned[3], changed = p.MaxLegendary, true, true
		}
		if !changed {
			return w
		}
	}
}

// Sample draws one tier by cumulative weight, walking tiers from common to
// legendary.
//
// Precondition: src is non-nil.
func (w Weights) Sample(src dice.Source) catalog.Rarity {
	roll := src.Float64()
	cumulative := 0.0
	last := 0
	for i, p := range w.P {
		if p <= 0 {
			continue
		}
		last = i
		cumulative += p
		if roll < cumulative {
			return Tiers[i]
		}
	}
	// Rounding can leave cumulative a hair below 1.
	return Tiers[last]
}
