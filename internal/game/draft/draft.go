// Package draft draws the upgrade cards offered on a level-up.
package draft

import (
	"github.com/cory-johannsen/arena/internal/game/catalog"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/pool"
	"github.com/cory-johannsen/arena/internal/game/rarity"
)

// Card is one player-facing upgrade option.
type Card struct {
	ItemID        string
	Name          string
	Kind          catalog.Kind
	Rarity        catalog.Rarity
	IsNew         bool
	TargetLevel   int
	EffectSummary string
}

// NewCard builds the card for a candidate.
func NewCard(c pool.Candidate) Card {
	return Card{
		ItemID:        c.Def.ID,
		Name:          c.Def.Name,
		Kind:          c.Def.Kind,
		Rarity:        c.Def.Rarity,
		IsNew:         c.IsNew(),
		TargetLevel:   c.TargetLevel(),
		EffectSummary: c.Def.Summary(c.TargetLevel()),
	}
}

// Draft draws min(n, len(cands)) cards with distinct item IDs.
//
// Cards are first drawn tier by tier: a tier is sampled from w and, if any
// candidates of that tier remain, one of them is picked uniformly. Once every
// tier has come up empty at least once, no tier with positive weight has
// candidates left, or the attempt budget of n*4 samples per tier is spent,
// the remaining cards are picked uniformly from whatever is left.
//
// Precondition: src is non-nil; cands contains no duplicate IDs.
// Postcondition: the result is non-nil, has length min(max(n, 0), len(cands)),
// and never repeats an item ID.
func Draft(cands []pool.Candidate, w rarity.Weights, n int, src dice.Source) []Card {
	target := min(n, len(cands))
	if target <= 0 {
		return []Card{}
	}
	cards := make([]Card, 0, target)

	byTier := pool.ByRarity(cands)
	left := len(cands)
	missed := make(map[catalog.Rarity]bool, len(rarity.Tiers))
	budget := n * 4 * len(rarity.Tiers)

	for attempts := 0; len(cards) < target && left > 0 && attempts < budget; attempts++ {
		if len(missed) == len(rarity.Tiers) || !weightedStock(byTier, w) {
			break
		}
		tier := w.Sample(src)
		group := byTier[tier]
		if len(group) == 0 {
			missed[tier] = true
			continue
		}
		i := src.Intn(len(group))
		cards = append(cards, NewCard(group[i]))
		byTier[tier] = append(group[:i], group[i+1:]...)
		left--
	}

	if len(cards) < target {
		var rest []pool.Candidate
		for _, tier := range rarity.Tiers {
			rest = append(rest, byTier[tier]...)
		}
		for len(cards) < target && len(rest) > 0 {
			i := src.Intn(len(rest))
			cards = append(cards, NewCard(rest[i]))
			rest = append(rest[:i], rest[i+1:]...)
		}
	}
	return cards
}

// weightedStock reports whether any tier with positive weight still has candidates.
func weightedStock(byTier map[catalog.Rarity][]pool.Candidate, w rarity.Weights) bool {
	for i, tier := range rarity.Tiers {
		if w.P[i] > 0 && len(byTier[tier]) > 0 {
			return true
		}
	}
	return false
}
