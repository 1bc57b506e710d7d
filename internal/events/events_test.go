package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscribePublishUnsubscribe(t *testing.T) {
	bus := NewBus()

	var received []*Event
	unsub := bus.Subscribe(func(e *Event) {
		received = append(received, e)
	})

	bus.Publish(&Event{Type: ItemSold, Module: "items"})
	require.Len(t, received, 1)
	assert.Equal(t, ItemSold, received[0].Type)

	unsub()
	bus.Publish(&Event{Type: ItemSold, Module: "items"})
	assert.Len(t, received, 1)
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := NewBus()

	countA, countB := 0, 0
	bus.Subscribe(func(*Event) { countA++ })
	bus.Subscribe(func(*Event) { countB++ })

	bus.Publish(&Event{Type: PalletCreated, Module: "pallets"})

	assert.Equal(t, 1, countA)
	assert.Equal(t, 1, countB)
}

func TestManager_EmitSetsTimestampAndDelivers(t *testing.T) {
	bus := NewBus()
	mgr := NewManager(bus, zerolog.Nop())

	var got *Event
	bus.Subscribe(func(e *Event) { got = e })

	mgr.Emit(ExpenseCreated, "expenses", map[string]interface{}{"id": "e1"})

	require.NotNil(t, got)
	assert.Equal(t, ExpenseCreated, got.Type)
	assert.Equal(t, "expenses", got.Module)
	assert.Equal(t, "e1", got.Data["id"])
	assert.False(t, got.Timestamp.IsZero())
}
