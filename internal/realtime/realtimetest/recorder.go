// Package realtimetest provides a recording Notifier for service tests.
package realtimetest

import (
	"context"
	"sync"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime"
)

// Sent is one captured push. Room is empty for broadcasts.
type Sent struct {
	Room  string
	Event realtime.Event
	Data  any
}

// Recorder captures every event it is asked to deliver.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
}

func (r *Recorder) record(room string, event realtime.Event, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{Room: room, Event: event, Data: data})
}

func (r *Recorder) ToUser(_ context.Context, userID int64, event realtime.Event, data any) {
	r.record(realtime.UserRoom(userID), event, data)
}

func (r *Recorder) ToOwner(_ context.Context, locationID int64, event realtime.Event, data any) {
	r.record(realtime.OwnerRoom(locationID), event, data)
}

func (r *Recorder) Broadcast(_ context.Context, event realtime.Event, data any) {
	r.record("", event, data)
}

// Sent returns a copy of everything recorded so far.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// Count returns how many pushes carried event.
func (r *Recorder) Count(event realtime.Event) int {
	n := 0
	for _, s := range r.Sent() {
		if s.Event == event {
			n++
		}
	}
	return n
}

// ForRoom returns pushes addressed to room.
func (r *Recorder) ForRoom(room string) []Sent {
	var out []Sent
	for _, s := range r.Sent() {
		if s.Room == room {
			out = append(out, s)
		}
	}
	return out
}
