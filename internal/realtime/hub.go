package realtime

import (
	"context"
	"encoding/json"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/metrics"
)

const publishBuffer = 1024

type outbound struct {
	room    string // empty means every client
	event   Event
	payload []byte
}

// joinRequest adds client to room, or reports reason back to it when the
// join was refused.
type joinRequest struct {
	client *Client
	room   string
	reason string
}

// Hub owns channel membership. All mutations happen on the Run goroutine.
// register is unbuffered so a client is known to the hub before it can join.
type Hub struct {
	logg    *logger.Logger
	metrics *metrics.RealtimeMetrics

	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	joins      chan joinRequest
	publish    chan outbound
	done       chan struct{}
}

func NewHub(logg *logger.Logger, m *metrics.RealtimeMetrics) *Hub {
	return &Hub{
		logg:       logg,
		metrics:    m,
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client, 16),
		joins:      make(chan joinRequest, 64),
		publish:    make(chan outbound, publishBuffer),
		done:       make(chan struct{}),
	}
}

// Run processes hub traffic until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c)
			}
			return nil

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.metrics.ClientConnected()

		case c := <-h.unregister:
			h.remove(c)

		case req := <-h.joins:
			if _, ok := h.clients[req.client]; !ok {
				continue
			}
			if req.reason != "" {
				h.deliver(req.client, eventError, mustEncode(eventError, req.reason))
				continue
			}
			members, ok := h.rooms[req.room]
			if !ok {
				members = make(map[*Client]struct{})
				h.rooms[req.room] = members
			}
			members[req.client] = struct{}{}
			req.client.rooms[req.room] = struct{}{}
			h.deliver(req.client, eventJoined, mustEncode(eventJoined, map[string]string{"room": req.room}))

		case msg := <-h.publish:
			if msg.room == "" {
				for c := range h.clients {
					h.deliver(c, msg.event, msg.payload)
				}
				continue
			}
			for c := range h.rooms[msg.room] {
				h.deliver(c, msg.event, msg.payload)
			}
		}
	}
}

// deliver never blocks; a client whose buffer is full is disconnected.
func (h *Hub) deliver(c *Client, event Event, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.metrics.IncDropped(string(event))
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	close(c.send)
	h.metrics.ClientDisconnected()
}

func (h *Hub) enqueue(ctx context.Context, room string, event Event, data any) {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		if h.logg != nil {
			h.logg.Error(h.logg.WithField(ctx, "event", string(event)), "realtime.encode_failed", err)
		}
		return
	}
	h.enqueueRaw(room, event, payload)
}

func (h *Hub) enqueueRaw(room string, event Event, payload []byte) {
	select {
	case h.publish <- outbound{room: room, event: event, payload: payload}:
		h.metrics.IncPublished(string(event))
	default:
		h.metrics.IncDropped(string(event))
	}
}

func (h *Hub) ToUser(ctx context.Context, userID int64, event Event, data any) {
	h.enqueue(ctx, UserRoom(userID), event, data)
}

func (h *Hub) ToOwner(ctx context.Context, locationID int64, event Event, data any) {
	h.enqueue(ctx, OwnerRoom(locationID), event, data)
}

func (h *Hub) Broadcast(ctx context.Context, event Event, data any) {
	h.enqueue(ctx, "", event, data)
}

func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) join(c *Client, room string) {
	h.sendJoin(joinRequest{client: c, room: room})
}

func (h *Hub) refuse(c *Client, reason string) {
	h.sendJoin(joinRequest{client: c, reason: reason})
}

func (h *Hub) sendJoin(req joinRequest) {
	select {
	case h.joins <- req:
	case <-h.done:
	}
}

func mustEncode(event Event, data any) []byte {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return []byte(`{"event":"error","data":"encoding failed"}`)
	}
	return payload
}

var _ Notifier = (*Hub)(nil)
