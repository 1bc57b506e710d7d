package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/palletpulse/palletpulse/internal/events"
)

// EventsWSHandler streams system events to websocket clients: sales,
// inventory changes, snapshots, exports. Each connection gets its own
// buffered channel; a client that falls too far behind loses events rather
// than blocking the bus.
type EventsWSHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsWSHandler creates a new websocket event handler
func NewEventsWSHandler(bus *events.Bus, log zerolog.Logger) *EventsWSHandler {
	return &EventsWSHandler{
		bus: bus,
		log: log.With().Str("component", "events_ws").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws requests. An optional ?types=A,B
// query filters which event types the client receives.
func (h *EventsWSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var allowedTypes map[events.EventType]bool
	if filter := r.URL.Query().Get("types"); filter != "" {
		allowedTypes = make(map[events.EventType]bool)
		for _, t := range strings.Split(filter, ",") {
			allowedTypes[events.EventType(strings.TrimSpace(t))] = true
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection closed")

	h.log.Info().Str("remote", r.RemoteAddr).Msg("Client connected to event feed")

	eventChan := make(chan *events.Event, 64)
	unsubscribe := h.bus.Subscribe(func(event *events.Event) {
		if allowedTypes != nil && !allowedTypes[event.Type] {
			return
		}
		select {
		case eventChan <- event:
		default:
			// Slow consumer; drop instead of blocking publishers
		}
	})
	defer unsubscribe()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "server shutting down")
			return

		case event := <-eventChan:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, event)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("Client disconnected from event feed")
				return
			}
		}
	}
}
