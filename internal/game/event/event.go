// Package event carries upgrade menu notifications to the host game loop,
// UI and metrics.
package event

import (
	"context"
	"errors"
	"fmt"
)

// Type is the closed set of upgrade menu events.
type Type int

const (
	// MenuOpened fires when a fresh draft is shown; the host should pause gameplay.
	MenuOpened Type = iota + 1
	// Selected fires when a card is picked and applied to the inventory.
	Selected
	// Skipped fires when the player closes the menu without picking.
	Skipped
	// Rerolled fires when the player pays for a fresh draft.
	Rerolled
	// MenuClosed fires after Selected or Skipped; the host may resume gameplay.
	MenuClosed
)

var typeNames = map[Type]string{
	MenuOpened: "UPGRADE_MENU_OPENED",
	Selected:   "UPGRADE_SELECTED",
	Skipped:    "UPGRADE_SKIPPED",
	Rerolled:   "UPGRADE_REROLLED",
	MenuClosed: "UPGRADE_MENU_CLOSED",
}

// String returns the wire name of t.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is one of the declared event types.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// Event is one notification published on a Bus.
type Event struct {
	Type    Type
	Payload any
}

// MenuOpenedPayload lists the drafted cards by item ID.
type MenuOpenedPayload struct {
	ItemIDs []string
	// Pending is the number of level-ups still queued, including this one.
	Pending int
}

// SelectedPayload describes the applied card.
type SelectedPayload struct {
	ItemID   string
	Kind     string
	IsNew    bool
	NewLevel int
}

// SkippedPayload is published when the menu closes without a pick.
type SkippedPayload struct {
	Pending int
}

// RerolledPayload reports the cost paid and the balance afterwards.
type RerolledPayload struct {
	Cost    int
	Coins   int
	ItemIDs []string
}

// MenuClosedPayload reports the queued level-ups left after closing.
type MenuClosedPayload struct {
	Pending int
}

// Handler handles one event. A returned error is reported to the publisher
// but does not stop delivery to other handlers.
type Handler func(ctx context.Context, e Event) error

// Bus delivers events synchronously to subscribers.
type Bus interface {
	Publish(ctx context.Context, e Event) error
	Subscribe(t Type, h Handler)
}

// MemoryBus is an in-process Bus. Handlers run in subscription order on the
// publisher's goroutine.
//
// Not safe for concurrent use.
type MemoryBus struct {
	handlers map[Type][]Handler
}

// NewMemoryBus creates a MemoryBus with no subscribers.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[Type][]Handler)}
}

// Subscribe registers h for events of type t.
//
// Precondition: t.Valid() and h is non-nil.
func (b *MemoryBus) Subscribe(t Type, h Handler) {
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish delivers e to every handler subscribed to e.Type.
//
// Postcondition: every handler is called exactly once; the returned error
// joins all handler errors, or is nil.
func (b *MemoryBus) Publish(ctx context.Context, e Event) error {
	if !e.Type.Valid() {
		return fmt.Errorf("event: unknown type %s", e.Type)
	}
	var errs []error
	for _, h := range b.handlers[e.Type] {
		if err := h(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("%s handler: %w", e.Type, err))
		}
	}
	return errors.Join(errs...)
}

// Recording returns a Handler that appends every event it receives to *log.
func Recording(log *[]Event) Handler {
	return func(_ context.Context, e Event) error {
		*log = append(*log, e)
		return nil
	}
}

// SubscribeAll registers h for every event type.
func SubscribeAll(b Bus, h Handler) {
	for t := MenuOpened; t <= MenuClosed; t++ {
		b.Subscribe(t, h)
	}
}
