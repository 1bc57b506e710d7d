// Package events provides event management functionality.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	PalletCreated  EventType = "PALLET_CREATED"
	PalletUpdated  EventType = "PALLET_UPDATED"
	PalletDeleted  EventType = "PALLET_DELETED"
	ItemCreated    EventType = "ITEM_CREATED"
	ItemUpdated    EventType = "ITEM_UPDATED"
	ItemDeleted    EventType = "ITEM_DELETED"
	ItemSold       EventType = "ITEM_SOLD"
	ExpenseCreated EventType = "EXPENSE_CREATED"
	ExpenseUpdated EventType = "EXPENSE_UPDATED"
	ExpenseDeleted EventType = "EXPENSE_DELETED"
	MileageLogged  EventType = "MILEAGE_LOGGED"

	SettingsChanged   EventType = "SETTINGS_CHANGED"
	SnapshotCaptured  EventType = "SNAPSHOT_CAPTURED"
	ExportCompleted   EventType = "EXPORT_COMPLETED"
	BackupCompleted   EventType = "BACKUP_COMPLETED"
	SubscriptionSwept EventType = "SUBSCRIPTION_SWEPT"
	ErrorOccurred     EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Module    string                 `json:"module"`
	Data      map[string]interface{} `json:"data"`
}

// Handler receives published events. Handlers must not block; slow
// consumers (the websocket stream) buffer on their own channels.
type Handler func(*Event)

// Bus is an in-process publish/subscribe fan-out for system events.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers a handler for all events and returns an
// unsubscribe function.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish delivers an event to every subscriber.
func (b *Bus) Publish(e *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, h := range b.handlers {
		h(e)
	}
}

// Manager handles event emission and logging
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("service", "events").Logger(),
	}
}

// Emit publishes an event to the bus and logs it.
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Module:    module,
		Data:      data,
	}

	m.log.Debug().
		Str("type", string(eventType)).
		Str("module", module).
		Msg("Event emitted")

	m.bus.Publish(event)
}

// Bus exposes the underlying bus for subscribers.
func (m *Manager) Bus() *Bus {
	return m.bus
}
