// Package upgrade implements the level-up menu: drafting cards, applying the
// picked card to the inventory, rerolling for coins, and skipping.
package upgrade

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/buffs"
	"github.com/cory-johannsen/arena/internal/game/catalog"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/draft"
	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/inventory"
	"github.com/cory-johannsen/arena/internal/game/pool"
	"github.com/cory-johannsen/arena/internal/game/rarity"
)

// InventorySource is the player state the menu reads and mutates.
type InventorySource interface {
	OwnedPassives() []inventory.OwnedItem
	Owned(id string) (inventory.OwnedItem, bool)
	// Levels maps every owned item ID to its current level.
	Levels() map[string]int
	Luck() int
	Coins() int
	FreeWeaponSlots() int
	// FreePassiveSlots returns inventory.Unlimited when no passive limit applies.
	FreePassiveSlots() int
	AddOwnedItem(def *catalog.ItemDef) (inventory.OwnedItem, error)
	LevelUpOwnedItem(def *catalog.ItemDef) (inventory.OwnedItem, error)
	DeductCoins(n int) error
}

// Recorder receives menu activity for metrics.
type Recorder interface {
	Drafted(cards []draft.Card)
	Picked(kind catalog.Kind)
	Rerolled()
	Skipped()
	Rejected(reason string)
}

// Config tunes the menu.
type Config struct {
	CardsPerDraft int
	// RerollCost may be 0, in which case rerolls are free and always allowed.
	RerollCost int
	Rarity     rarity.Params
}

// State is the menu's open/closed state.
type State int

const (
	// Closed means gameplay runs and no cards are shown.
	Closed State = iota
	// Open means cards are shown and the host should pause gameplay.
	Open
)

// String returns "closed" or "open".
func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Menu is the level-up selection state machine.
//
// Not safe for concurrent use; drive it from the game loop.
type Menu struct {
	cfg      Config
	reg      *catalog.Registry
	inv      InventorySource
	buffs    *buffs.Tracker
	bus      event.Bus
	src      dice.Source
	logger   *zap.Logger
	recorder Recorder

	state   State
	cards   []draft.Card
	pending int
}

// NewMenu creates a closed Menu.
//
// Precondition: reg, inv, tracker and src must be non-nil; bus, logger and
// recorder may be nil (events, logs and metrics are dropped when nil).
// Postcondition: Returns a Menu in the Closed state with nothing pending.
func NewMenu(
	cfg Config,
	reg *catalog.Registry,
	inv InventorySource,
	tracker *buffs.Tracker,
	bus event.Bus,
	src dice.Source,
	logger *zap.Logger,
	recorder Recorder,
) *Menu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Menu{
		cfg:      cfg,
		reg:      reg,
		inv:      inv,
		buffs:    tracker,
		bus:      bus,
		src:      src,
		logger:   logger,
		recorder: recorder,
	}
}

// IsOpen reports whether the menu is showing cards.
func (m *Menu) IsOpen() bool { return m.state == Open }

// State returns the current state.
func (m *Menu) State() State { return m.state }

// Cards returns a copy of the current draft. Empty when closed.
func (m *Menu) Cards() []draft.Card {
	out := make([]draft.Card, len(m.cards))
	copy(out, m.cards)
	return out
}

// Pending returns the number of queued level-ups, including the one currently
// shown.
func (m *Menu) Pending() int { return m.pending }

// Luck returns the luck used for drafting: the inventory's base luck with
// luck passives applied, rounded to the nearest integer.
func (m *Menu) Luck() int {
	return int(math.Round(m.buffs.Apply(catalog.StatLuck, float64(m.inv.Luck()))))
}

// Open drafts cards for one level-up and opens the menu.
//
// Precondition: the menu is Closed.
// Postcondition: on success the menu is Open with a fresh draft (possibly
// empty) and MenuOpened has been published; returns ErrAlreadyOpen otherwise.
func (m *Menu) Open(ctx context.Context) error {
	if m.state == Open {
		return m.reject(ErrAlreadyOpen)
	}
	m.pending++
	m.open(ctx)
	return nil
}

// LevelUp queues one level-up. A closed menu opens immediately; an open menu
// re-opens for the queued level-up after the current Pick or Skip.
func (m *Menu) LevelUp(ctx context.Context) {
	m.pending++
	if m.state == Closed {
		m.open(ctx)
		return
	}
	m.logger.Debug("level-up queued", zap.Int("pending", m.pending))
}

// Pick applies the card at index. An unowned item is added at level 1; an
// owned item gains one level. Picking a passive recomputes buffs before
// returning.
//
// Precondition: the menu is Open and 0 <= index < len(Cards()).
// Postcondition: on success Selected then MenuClosed are published and the
// menu closes (re-opening if level-ups are pending); on error nothing changes.
func (m *Menu) Pick(ctx context.Context, index int) (inventory.OwnedItem, error) {
	if m.state != Open {
		return inventory.OwnedItem{}, m.reject(ErrNotOpen)
	}
	if len(m.cards) == 0 {
		return inventory.OwnedItem{}, m.reject(ErrNoCards)
	}
	if index < 0 || index >= len(m.cards) {
		return inventory.OwnedItem{}, m.reject(fmt.Errorf("%w: choose 1 to %d", ErrInvalidIndex, len(m.cards)))
	}

	card := m.cards[index]
	def, ok := m.reg.Item(card.ItemID)
	if !ok {
		return inventory.OwnedItem{}, fmt.Errorf("upgrade: drafted item %q is not in the catalog", card.ItemID)
	}

	var (
		item inventory.OwnedItem
		err  error
	)
	if _, owned := m.inv.Owned(def.ID); owned {
		item, err = m.inv.LevelUpOwnedItem(def)
	} else {
		item, err = m.inv.AddOwnedItem(def)
	}
	if err != nil {
		return inventory.OwnedItem{}, fmt.Errorf("upgrade: applying %q: %w", def.ID, err)
	}
	if def.Kind == catalog.KindPassive {
		m.buffs.Recompute(m.inv.OwnedPassives())
	}

	m.logger.Info("upgrade selected",
		zap.String("item_id", item.ItemID),
		zap.String("kind", string(item.Kind)),
		zap.Int("level", item.Level),
		zap.Bool("new", card.IsNew),
	)
	if m.recorder != nil {
		m.recorder.Picked(def.Kind)
	}
	m.publish(ctx, event.Selected, event.SelectedPayload{
		ItemID:   item.ItemID,
		Kind:     string(item.Kind),
		IsNew:    card.IsNew,
		NewLevel: item.Level,
	})
	m.close(ctx)
	return item, nil
}

// Reroll pays RerollCost and replaces the current draft with a fresh one. A
// zero cost never touches the coin balance.
//
// Precondition: the menu is Open and Coins() >= RerollCost.
// Postcondition: on success exactly RerollCost coins are deducted, the menu
// stays Open with a new draft, and Rerolled is published; on error coins and
// cards are unchanged.
func (m *Menu) Reroll(ctx context.Context) error {
	if m.state != Open {
		return m.reject(ErrNotOpen)
	}
	cost := m.cfg.RerollCost
	if have := m.inv.Coins(); have < cost {
		return m.reject(fmt.Errorf("%w: have %s, need %s", ErrInsufficientCoins, inventory.FormatCoins(have), inventory.FormatCoins(cost)))
	}
	if cost > 0 {
		if err := m.inv.DeductCoins(cost); err != nil {
			return fmt.Errorf("upgrade: reroll: %w", err)
		}
	}

	m.cards = m.draw()
	m.logger.Info("upgrade rerolled",
		zap.Int("cost", cost),
		zap.Int("coins", m.inv.Coins()),
		zap.Strings("cards", itemIDs(m.cards)),
	)
	if m.recorder != nil {
		m.recorder.Rerolled()
		m.recorder.Drafted(m.cards)
	}
	m.publish(ctx, event.Rerolled, event.RerolledPayload{
		Cost:    cost,
		Coins:   m.inv.Coins(),
		ItemIDs: itemIDs(m.cards),
	})
	return nil
}

// Skip closes the menu without changing the inventory.
//
// Precondition: the menu is Open.
// Postcondition: Skipped then MenuClosed are published and the menu closes
// (re-opening if level-ups are pending).
func (m *Menu) Skip(ctx context.Context) error {
	if m.state != Open {
		return m.reject(ErrNotOpen)
	}
	m.logger.Info("upgrade skipped", zap.Strings("cards", itemIDs(m.cards)))
	if m.recorder != nil {
		m.recorder.Skipped()
	}
	m.publish(ctx, event.Skipped, event.SkippedPayload{Pending: m.pending - 1})
	m.close(ctx)
	return nil
}

func (m *Menu) open(ctx context.Context) {
	m.cards = m.draw()
	m.state = Open
	m.logger.Info("upgrade menu opened",
		zap.Strings("cards", itemIDs(m.cards)),
		zap.Int("pending", m.pending),
	)
	if m.recorder != nil {
		m.recorder.Drafted(m.cards)
	}
	m.publish(ctx, event.MenuOpened, event.MenuOpenedPayload{
		ItemIDs: itemIDs(m.cards),
		Pending: m.pending,
	})
}

func (m *Menu) close(ctx context.Context) {
	m.state = Closed
	m.cards = nil
	m.pending--
	m.publish(ctx, event.MenuClosed, event.MenuClosedPayload{Pending: m.pending})
	if m.pending > 0 {
		m.open(ctx)
	}
}

// draw builds the candidate pool from the inventory and drafts a new hand.
func (m *Menu) draw() []draft.Card {
	cands := pool.Build(m.reg, m.inv.Levels(), m.inv.FreeWeaponSlots(), m.inv.FreePassiveSlots())

	luck := m.Luck()
	weights := rarity.Compute(luck, m.cfg.Rarity)
	if weights.Degenerate {
		m.logger.Debug("rarity weights degenerate, using uniform odds", zap.Int("luck", luck))
	}
	return draft.Draft(cands, weights, m.cfg.CardsPerDraft, m.src)
}

func (m *Menu) reject(err error) error {
	reason := RejectionReason(err)
	m.logger.Debug("upgrade action rejected", zap.String("reason", reason), zap.Error(err))
	if m.recorder != nil {
		m.recorder.Rejected(reason)
	}
	return err
}

// publish delivers an event. Handler failures are logged and never undo the
// state change that produced the event.
func (m *Menu) publish(ctx context.Context, t event.Type, payload any) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(ctx, event.Event{Type: t, Payload: payload}); err != nil {
		m.logger.Error("upgrade event handler failed", zap.Stringer("event", t), zap.Error(err))
	}
}

func itemIDs(cards []draft.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ItemID
	}
	return out
}
