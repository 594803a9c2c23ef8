package event_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/event"
)

func TestType_String(t *testing.T) {
	assert.Equal(t, "UPGRADE_MENU_OPENED", event.MenuOpened.String())
	assert.Equal(t, "UPGRADE_SELECTED", event.Selected.String())
	assert.Equal(t, "UPGRADE_SKIPPED", event.Skipped.String())
	assert.Equal(t, "UPGRADE_REROLLED", event.Rerolled.String())
	assert.Equal(t, "UPGRADE_MENU_CLOSED", event.MenuClosed.String())
	assert.Equal(t, "Type(99)", event.Type(99).String())
	assert.False(t, event.Type(0).Valid())
}

func TestMemoryBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := event.NewMemoryBus()
	var order []string
	bus.Subscribe(event.Selected, func(context.Context, event.Event) error {
		order = append(order, "first")
		return nil
	})
	bus.Subscribe(event.Selected, func(context.Context, event.Event) error {
		order = append(order, "second")
		return nil
	})
	bus.Subscribe(event.Skipped, func(context.Context, event.Event) error {
		order = append(order, "wrong type")
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), event.Event{Type: event.Selected}))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestMemoryBus_JoinsHandlerErrors(t *testing.T) {
	bus := event.NewMemoryBus()
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	called := 0
	bus.Subscribe(event.MenuClosed, func(context.Context, event.Event) error { called++; return errA })
	bus.Subscribe(event.MenuClosed, func(context.Context, event.Event) error { called++; return nil })
	bus.Subscribe(event.MenuClosed, func(context.Context, event.Event) error { called++; return errB })

	err := bus.Publish(context.Background(), event.Event{Type: event.MenuClosed})
	assert.Equal(t, 3, called)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestMemoryBus_RejectsUnknownType(t *testing.T) {
	bus := event.NewMemoryBus()
	assert.Error(t, bus.Publish(context.Background(), event.Event{Type: event.Type(42)}))
}

func TestSubscribeAll_Recording(t *testing.T) {
	bus := event.NewMemoryBus()
	var log []event.Event
	event.SubscribeAll(bus, event.Recording(&log))

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, event.Event{Type: event.MenuOpened, Payload: event.MenuOpenedPayload{Pending: 1}}))
	require.NoError(t, bus.Publish(ctx, event.Event{Type: event.Rerolled}))

	require.Len(t, log, 2)
	assert.Equal(t, event.MenuOpened, log[0].Type)
	assert.Equal(t, 1, log[0].Payload.(event.MenuOpenedPayload).Pending)
	assert.Equal(t, event.Rerolled, log[1].Type)
}
