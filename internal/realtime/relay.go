package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

// RelayChannel is the Redis channel shared by publishers and relays.
const RelayChannel = "realtime"

type relayMessage struct {
	Room    string          `json:"room,omitempty"`
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type publisherStore interface {
	Publish(ctx context.Context, channel string, message any) error
	ChannelName(name string) string
}

type subscriberStore interface {
	Subscribe(ctx context.Context, channels ...string) (*goredis.PubSub, error)
	ChannelName(name string) string
}

// RedisPublisher is a Notifier for processes without a hub, such as the cron
// worker. A Relay in the API process forwards its events to local clients.
type RedisPublisher struct {
	store publisherStore
	logg  *logger.Logger
}

func NewRedisPublisher(store publisherStore, logg *logger.Logger) *RedisPublisher {
	return &RedisPublisher{store: store, logg: logg}
}

func (p *RedisPublisher) publish(ctx context.Context, room string, event Event, data any) {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err == nil {
		var msg []byte
		msg, err = json.Marshal(relayMessage{Room: room, Event: event, Payload: payload})
		if err == nil {
			err = p.store.Publish(ctx, p.store.ChannelName(RelayChannel), msg)
		}
	}
	if err != nil && p.logg != nil {
		p.logg.Warn(p.logg.WithFields(ctx, map[string]any{"event": string(event), "error": err.Error()}), "realtime.relay.publish_failed")
	}
}

func (p *RedisPublisher) ToUser(ctx context.Context, userID int64, event Event, data any) {
	p.publish(ctx, UserRoom(userID), event, data)
}

func (p *RedisPublisher) ToOwner(ctx context.Context, locationID int64, event Event, data any) {
	p.publish(ctx, OwnerRoom(locationID), event, data)
}

func (p *RedisPublisher) Broadcast(ctx context.Context, event Event, data any) {
	p.publish(ctx, "", event, data)
}

const (
	relayBaseBackoff = time.Second
	relayMaxBackoff  = 30 * time.Second
)

// Relay feeds events published by other processes into the local hub.
type Relay struct {
	store     subscriberStore
	hub       *Hub
	logg      *logger.Logger
	baseDelay time.Duration
	maxDelay  time.Duration
}

func NewRelay(store subscriberStore, hub *Hub, logg *logger.Logger) *Relay {
	return &Relay{store: store, hub: hub, logg: logg, baseDelay: relayBaseBackoff, maxDelay: relayMaxBackoff}
}

// Run blocks until ctx is cancelled. Subscribe failures are logged and retried
// with exponential backoff.
func (r *Relay) Run(ctx context.Context) error {
	backoff := r.baseDelay
	for {
		if ctx.Err() != nil {
			return nil
		}
		sub, err := r.store.Subscribe(ctx, r.store.ChannelName(RelayChannel))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if r.logg != nil {
				r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
					"error":    err.Error(),
					"retry_in": backoff.String(),
				}), "realtime.relay.subscribe_failed")
			}
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, r.baseDelay, r.maxDelay)
			continue
		}

		backoff = r.baseDelay
		if r.logg != nil {
			r.logg.Info(ctx, "realtime relay subscribed")
		}
		r.consume(ctx, sub)
		_ = sub.Close()
	}
}

func (r *Relay) consume(ctx context.Context, sub *goredis.PubSub) {
	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-messages:
			if !ok {
				return
			}
			r.forward(ctx, m.Payload)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	if next := current * 2; next < max {
		return next
	}
	return max
}

func (r *Relay) forward(ctx context.Context, raw string) {
	var msg relayMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil || msg.Event == "" {
		if r.logg != nil {
			r.logg.Warn(ctx, "realtime.relay.malformed_message")
		}
		return
	}
	r.hub.enqueueRaw(msg.Room, msg.Event, msg.Payload)
}

var _ Notifier = (*RedisPublisher)(nil)
